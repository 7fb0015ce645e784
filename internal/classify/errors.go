package classify

import "errors"

var (
	ErrEntryNotFound   = errors.New("classification entry not found")
	ErrUnknownRole     = errors.New("entry has no such line")
	ErrUnknownAccount  = errors.New("account is not in the chart")
	ErrPendingEntries  = errors.New("entries still pending classification")
	ErrNothingToPost   = errors.New("nothing to post")
	ErrInvalidMapping  = errors.New("invalid account mapping")
	ErrAlreadyPosted   = errors.New("source document already posted")
	ErrUnresolvedEntry = errors.New("source could not be resolved")
	ErrUnknownSource   = errors.New("unknown source kind")
)
