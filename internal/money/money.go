// Package money holds the decimal helpers shared by every package that
// handles kwanza amounts.
package money

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Currency is the reporting currency of every ledger.
const Currency = "AOA"

// Tolerance is the largest difference accepted when two totals must match.
var Tolerance = decimal.New(1, -2)

// Round rounds to currency precision (2 decimal places, half away from zero).
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Sum adds amounts.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// WithinTolerance reports whether |a - b| <= 0.01.
func WithinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Tolerance)
}

// Percent returns amount * rate / 100 rounded to currency precision.
func Percent(amount, rate decimal.Decimal) decimal.Decimal {
	return Round(amount.Mul(rate).Div(decimal.NewFromInt(100)))
}

// printer groups the whole part with the Portuguese thousands separator.
var printer = message.NewPrinter(language.Portuguese)

// Format renders an amount the way Angolan documents print it: "150.000,00".
func Format(d decimal.Decimal) string {
	r := Round(d)
	abs := r.Abs()
	_, frac, _ := strings.Cut(abs.StringFixed(2), ".")
	out := printer.Sprintf("%d", abs.IntPart()) + "," + frac
	if r.IsNegative() {
		return "-" + out
	}
	return out
}

// FormatKz renders an amount followed by the kwanza symbol.
func FormatKz(d decimal.Decimal) string {
	return Format(d) + " Kz"
}

var thousandsOnly = regexp.MustCompile(`^[1-9][0-9]{0,2}(\.[0-9]{3})+$`)

// Parse accepts "150000.50", the local "150.000,50" notation and
// thousands without decimals such as "150.000". Dotted input that is none
// of these is rejected.
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "Kz")
	s = strings.ReplaceAll(s, " ", "")
	raw := s
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	switch {
	case strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case thousandsOnly.MatchString(s):
		s = strings.ReplaceAll(s, ".", "")
	case strings.Count(s, ".") > 1:
		return decimal.Zero, fmt.Errorf("invalid amount %q: ambiguous separators", raw)
	}
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(sign + s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	return d, nil
}
