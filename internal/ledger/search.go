package ledger

import (
	"slices"
	"strings"
	"unicode"

	"github.com/schollz/closestmatch"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldText lowercases s and strips accents so "Prestações" matches "prestacoes".
func foldText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// Search backs the account autocomplete. Code prefix matches come first,
// then description matches, and when nothing matches literally the closest
// descriptions by fuzzy distance.
func (c *Chart) Search(query string, limit int) []Account {
	if limit <= 0 {
		limit = 10
	}
	q := foldText(query)
	if q == "" {
		all := c.All()
		if len(all) > limit {
			all = all[:limit]
		}
		return all
	}

	var byCode, byDesc []Account
	for _, a := range c.All() {
		switch {
		case strings.HasPrefix(a.Code, q):
			byCode = append(byCode, a)
		case strings.Contains(foldText(a.Description), q):
			byDesc = append(byDesc, a)
		}
	}
	results := append(byCode, byDesc...)
	if len(results) > 0 {
		if len(results) > limit {
			results = results[:limit]
		}
		return results
	}

	return c.fuzzy(q, limit)
}

func (c *Chart) fuzzy(q string, limit int) []Account {
	index := make(map[string][]string)
	var keys []string
	for _, a := range c.accounts {
		k := foldText(a.Description)
		if _, seen := index[k]; !seen {
			keys = append(keys, k)
		}
		index[k] = append(index[k], a.Code)
	}
	if len(keys) == 0 {
		return nil
	}
	slices.Sort(keys)

	cm := closestmatch.New(keys, []int{2, 3})
	var results []Account
	for _, match := range cm.ClosestN(q, limit) {
		codes := index[match]
		slices.SortFunc(codes, CompareCodes)
		for _, code := range codes {
			results = append(results, c.accounts[code])
		}
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}
