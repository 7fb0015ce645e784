// Package tax computes the salary withholdings due to the Angolan tax
// authority (IRT) and social security (INSS).
package tax

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/simonvc/pgcledger/internal/money"
)

var ErrInvalidBrackets = errors.New("invalid IRT bracket table")

// Bracket is one row of the IRT table. Income above From pays Fixed plus
// Rate percent of the excess over From.
type Bracket struct {
	From  decimal.Decimal `json:"from" yaml:"from"`
	Fixed decimal.Decimal `json:"fixed" yaml:"fixed"`
	Rate  decimal.Decimal `json:"rate" yaml:"rate"`
}

// Calculator bundles the contribution rates and the IRT table in force.
type Calculator struct {
	INSSRate         decimal.Decimal
	EmployerINSSRate decimal.Decimal
	Brackets         []Bracket
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// DefaultBrackets is the group A table of Lei 28/20.
func DefaultBrackets() []Bracket {
	return []Bracket{
		{From: d("0"), Fixed: d("0"), Rate: d("0")},
		{From: d("100000"), Fixed: d("0"), Rate: d("13")},
		{From: d("150000"), Fixed: d("12500"), Rate: d("16")},
		{From: d("200000"), Fixed: d("31250"), Rate: d("18")},
		{From: d("300000"), Fixed: d("49250"), Rate: d("19")},
		{From: d("500000"), Fixed: d("87250"), Rate: d("20")},
		{From: d("1000000"), Fixed: d("187249"), Rate: d("21")},
		{From: d("1500000"), Fixed: d("292249"), Rate: d("22")},
		{From: d("2000000"), Fixed: d("402249"), Rate: d("23")},
		{From: d("2500000"), Fixed: d("517249"), Rate: d("24")},
		{From: d("5000000"), Fixed: d("1117249"), Rate: d("24.5")},
		{From: d("10000000"), Fixed: d("2342248"), Rate: d("25")},
	}
}

// Default returns the calculator with the statutory rates: 3% employee
// INSS, 8% employer INSS.
func Default() *Calculator {
	return &Calculator{
		INSSRate:         d("3"),
		EmployerINSSRate: d("8"),
		Brackets:         DefaultBrackets(),
	}
}

// New validates a bracket table and builds a calculator from it.
func New(inssRate, employerRate decimal.Decimal, brackets []Bracket) (*Calculator, error) {
	if len(brackets) == 0 {
		return nil, fmt.Errorf("%w: empty table", ErrInvalidBrackets)
	}
	if !brackets[0].From.IsZero() {
		return nil, fmt.Errorf("%w: first bracket must start at 0", ErrInvalidBrackets)
	}
	for i := 1; i < len(brackets); i++ {
		if !brackets[i].From.GreaterThan(brackets[i-1].From) {
			return nil, fmt.Errorf("%w: bracket %d does not ascend", ErrInvalidBrackets, i)
		}
	}
	return &Calculator{INSSRate: inssRate, EmployerINSSRate: employerRate, Brackets: brackets}, nil
}

// INSS is the employee social security contribution on gross salary.
func (c *Calculator) INSS(gross decimal.Decimal) decimal.Decimal {
	if !gross.IsPositive() {
		return decimal.Zero
	}
	return money.Percent(gross, c.INSSRate)
}

// INSSEntity is the employer contribution on gross salary.
func (c *Calculator) INSSEntity(gross decimal.Decimal) decimal.Decimal {
	if !gross.IsPositive() {
		return decimal.Zero
	}
	return money.Percent(gross, c.EmployerINSSRate)
}

// IRT is the income tax withheld on gross salary after the employee INSS
// contribution is deducted.
func (c *Calculator) IRT(gross, inss decimal.Decimal) decimal.Decimal {
	taxable := gross.Sub(inss)
	if !taxable.IsPositive() {
		return decimal.Zero
	}

	b := c.bracketFor(taxable)
	excess := taxable.Sub(b.From)
	return money.Round(b.Fixed.Add(excess.Mul(b.Rate).Div(decimal.NewFromInt(100))))
}

// Withholdings returns INSS and IRT for a gross salary.
func (c *Calculator) Withholdings(gross decimal.Decimal) (inss, irt decimal.Decimal) {
	inss = c.INSS(gross)
	return inss, c.IRT(gross, inss)
}

func (c *Calculator) bracketFor(taxable decimal.Decimal) Bracket {
	chosen := c.Brackets[0]
	for _, b := range c.Brackets {
		if taxable.GreaterThan(b.From) {
			chosen = b
		}
	}
	return chosen
}

var std = Default()

// INSS computes the employee contribution with the statutory rate.
func INSS(gross decimal.Decimal) decimal.Decimal { return std.INSS(gross) }

// IRT computes the income tax with the statutory table.
func IRT(gross, inss decimal.Decimal) decimal.Decimal { return std.IRT(gross, inss) }

// INSSEntity computes the employer contribution with the statutory rate.
func INSSEntity(gross decimal.Decimal) decimal.Decimal { return std.INSSEntity(gross) }
