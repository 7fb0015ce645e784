package ledger

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
)

// AccountType is the level of an account in the PGC hierarchy.
type AccountType string

const (
	TypeClasse   AccountType = "CLASSE"
	TypeGrupo    AccountType = "GRUPO"
	TypeSubgrupo AccountType = "SUBGRUPO"
	TypeConta    AccountType = "CONTA"
	TypeSubconta AccountType = "SUBCONTA"
)

var AllTypes = []AccountType{TypeClasse, TypeGrupo, TypeSubgrupo, TypeConta, TypeSubconta}

// Nature is the side on which an account normally carries its balance.
type Nature string

const (
	NatureDebito  Nature = "DEBITO"
	NatureCredito Nature = "CREDITO"
	NatureAmbos   Nature = "AMBOS"
)

type Account struct {
	Code        string      `json:"code"`
	Description string      `json:"description"`
	Type        AccountType `json:"type"`
	Nature      Nature      `json:"nature"`
	ParentCode  string      `json:"parent_code,omitempty"`
	CreatedAt   time.Time   `json:"created_at,omitempty"`
}

var codePattern = regexp.MustCompile(`^[1-9][0-9]*(\.[0-9]+)*$`)

// ValidCode reports whether code is a dot-segmented PGC code such as "31.1.2.1".
func ValidCode(code string) bool {
	return codePattern.MatchString(code)
}

// ParentCode derives the parent of a code: the code without its last
// dot-segment, or without its last character when the code has no dot and
// is longer than two characters. Classes and two-digit groups have no
// parent code.
func ParentCode(code string) string {
	if i := strings.LastIndex(code, "."); i >= 0 {
		return code[:i]
	}
	if len(code) > 2 {
		return code[:len(code)-1]
	}
	return ""
}

// rollupParent is the account a code totals into: its parent code, or its
// class when the code is a group without one.
func rollupParent(code string) string {
	if p := ParentCode(code); p != "" {
		return p
	}
	if cl := Class(code); cl != code {
		return cl
	}
	return ""
}

// Level is the display indentation of a code, one per dot.
func Level(code string) int {
	return strings.Count(code, ".")
}

// Class returns the first digit of a code.
func Class(code string) string {
	if code == "" {
		return ""
	}
	return code[:1]
}

// TypeForCode derives the default hierarchy level from the shape of a code.
func TypeForCode(code string) AccountType {
	switch dots := Level(code); {
	case dots == 0 && len(code) == 1:
		return TypeClasse
	case dots == 0:
		return TypeGrupo
	case dots == 1:
		return TypeSubgrupo
	case dots == 2:
		return TypeConta
	default:
		return TypeSubconta
	}
}

// NatureForCode returns the usual nature of an account in the given class.
func NatureForCode(code string) Nature {
	switch Class(code) {
	case "1", "2", "4", "7":
		return NatureDebito
	case "5", "6":
		return NatureCredito
	default:
		return NatureAmbos
	}
}

// IsDescendant reports whether code sits below ancestor in the hierarchy.
func IsDescendant(code, ancestor string) bool {
	return slices.Contains(Ancestors(code), ancestor)
}

// CompareCodes orders codes the way the chart is printed: the first segment
// digit by digit (so "3" < "31" < "4"), later segments numerically.
func CompareCodes(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		if as[i] == bs[i] {
			continue
		}
		if i == 0 {
			return strings.Compare(as[i], bs[i])
		}
		ai, aerr := strconv.Atoi(as[i])
		bi, berr := strconv.Atoi(bs[i])
		if aerr != nil || berr != nil {
			return strings.Compare(as[i], bs[i])
		}
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		}
	}
	return len(as) - len(bs)
}

func validType(t AccountType) bool {
	for _, v := range AllTypes {
		if v == t {
			return true
		}
	}
	return false
}

func validNature(n Nature) bool {
	return n == NatureDebito || n == NatureCredito || n == NatureAmbos
}

// Normalize trims the account fields, fills the type and nature from the
// code when missing, and derives the parent code.
func (a *Account) Normalize() {
	a.Code = strings.TrimSpace(a.Code)
	a.Description = strings.TrimSpace(a.Description)
	if a.Type == "" {
		a.Type = TypeForCode(a.Code)
	}
	if a.Nature == "" {
		a.Nature = NatureForCode(a.Code)
	}
	a.ParentCode = ParentCode(a.Code)
}

// Validate checks the account invariants.
func (a *Account) Validate() error {
	if !ValidCode(a.Code) {
		return fmt.Errorf("%w: %q", ErrInvalidAccountCode, a.Code)
	}
	if a.Description == "" {
		return ErrEmptyDescription
	}
	if !validType(a.Type) {
		return fmt.Errorf("%w: %s", ErrInvalidAccountType, a.Type)
	}
	if !validNature(a.Nature) {
		return fmt.Errorf("%w: %s", ErrInvalidNature, a.Nature)
	}
	if a.ParentCode != ParentCode(a.Code) {
		return fmt.Errorf("%w: parent of %s must be %q", ErrInvalidAccountCode, a.Code, ParentCode(a.Code))
	}
	return nil
}
