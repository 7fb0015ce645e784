package ledger

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/simonvc/pgcledger/internal/money"
)

// AccountTotal is the sum of the journal entries posted to one account in
// a period.
type AccountTotal struct {
	Code   string          `json:"code"`
	Debit  decimal.Decimal `json:"debit"`
	Credit decimal.Decimal `json:"credit"`
}

// BalanceteLine is one account row of the trial balance. Amounts of parent
// accounts include every descendant.
type BalanceteLine struct {
	Code          string          `json:"code"`
	Description   string          `json:"description"`
	Type          AccountType     `json:"type"`
	Level         int             `json:"level"`
	OpeningDebit  decimal.Decimal `json:"opening_debit"`
	OpeningCredit decimal.Decimal `json:"opening_credit"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	BalanceDebit  decimal.Decimal `json:"balance_debit"`
	BalanceCredit decimal.Decimal `json:"balance_credit"`
}

type Balancete struct {
	Year               int             `json:"year"`
	FromMonth          int             `json:"from_month"`
	ToMonth            int             `json:"to_month"`
	Lines              []BalanceteLine `json:"lines"`
	TotalOpeningDebit  decimal.Decimal `json:"total_opening_debit"`
	TotalOpeningCredit decimal.Decimal `json:"total_opening_credit"`
	TotalDebit         decimal.Decimal `json:"total_debit"`
	TotalCredit        decimal.Decimal `json:"total_credit"`
	TotalBalanceDebit  decimal.Decimal `json:"total_balance_debit"`
	TotalBalanceCredit decimal.Decimal `json:"total_balance_credit"`
	Balanced           bool            `json:"balanced"`
	GeneratedAt        time.Time       `json:"generated_at"`
}

type sums struct {
	openingDebit, openingCredit, debit, credit decimal.Decimal
}

func (s *sums) net() decimal.Decimal {
	return s.openingDebit.Sub(s.openingCredit).Add(s.debit).Sub(s.credit)
}

// BuildBalancete assembles the trial balance for a period from the chart,
// the opening balances of the year and the movement totals per account.
func BuildBalancete(year, fromMonth, toMonth int, accounts []Account, opening []OpeningBalance, movements []AccountTotal) *Balancete {
	names := make(map[string]Account, len(accounts))
	for _, a := range accounts {
		names[a.Code] = a
	}

	own := make(map[string]*sums)
	rolled := make(map[string]*sums)
	get := func(m map[string]*sums, code string) *sums {
		s, ok := m[code]
		if !ok {
			s = &sums{}
			m[code] = s
		}
		return s
	}
	apply := func(code string, fn func(*sums)) {
		fn(get(own, code))
		fn(get(rolled, code))
		for _, p := range Ancestors(code) {
			fn(get(rolled, p))
		}
	}

	for _, o := range opening {
		apply(o.AccountCode, func(s *sums) {
			s.openingDebit = s.openingDebit.Add(o.Debit)
			s.openingCredit = s.openingCredit.Add(o.Credit)
		})
	}
	for _, m := range movements {
		apply(m.Code, func(s *sums) {
			s.debit = s.debit.Add(m.Debit)
			s.credit = s.credit.Add(m.Credit)
		})
	}

	b := &Balancete{
		Year:        year,
		FromMonth:   fromMonth,
		ToMonth:     toMonth,
		GeneratedAt: time.Now().UTC(),
	}

	for code, s := range rolled {
		a, ok := names[code]
		if !ok {
			a = Account{Code: code, Type: TypeForCode(code)}
		}
		line := BalanceteLine{
			Code:          code,
			Description:   a.Description,
			Type:          a.Type,
			Level:         Level(code),
			OpeningDebit:  s.openingDebit,
			OpeningCredit: s.openingCredit,
			Debit:         s.debit,
			Credit:        s.credit,
		}
		if net := s.net(); net.IsNegative() {
			line.BalanceCredit = net.Neg()
		} else {
			line.BalanceDebit = net
		}
		b.Lines = append(b.Lines, line)
	}
	slices.SortFunc(b.Lines, func(x, y BalanceteLine) int { return CompareCodes(x.Code, y.Code) })

	// Totals come from the accounts that were posted to directly so parents
	// are not counted twice.
	for _, s := range own {
		b.TotalOpeningDebit = b.TotalOpeningDebit.Add(s.openingDebit)
		b.TotalOpeningCredit = b.TotalOpeningCredit.Add(s.openingCredit)
		b.TotalDebit = b.TotalDebit.Add(s.debit)
		b.TotalCredit = b.TotalCredit.Add(s.credit)
		if net := s.net(); net.IsNegative() {
			b.TotalBalanceCredit = b.TotalBalanceCredit.Add(net.Neg())
		} else {
			b.TotalBalanceDebit = b.TotalBalanceDebit.Add(net)
		}
	}
	b.Balanced = b.TotalDebit.Equal(b.TotalCredit) &&
		money.WithinTolerance(b.TotalOpeningDebit, b.TotalOpeningCredit) &&
		money.WithinTolerance(b.TotalBalanceDebit, b.TotalBalanceCredit)
	return b
}

// ExtractLine is one movement of an account extract.
type ExtractLine struct {
	Date          time.Time       `json:"date"`
	TransactionID string          `json:"transaction_id,omitempty"`
	Description   string          `json:"description"`
	AccountCode   string          `json:"account_code"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	Balance       decimal.Decimal `json:"balance"`
	Opening       bool            `json:"opening,omitempty"`
}

type Extract struct {
	Account     Account         `json:"account"`
	Year        int             `json:"year"`
	Lines       []ExtractLine   `json:"lines"`
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`
	Balance     decimal.Decimal `json:"balance"`
}

// OpeningDescription labels the synthesized first row of an extract.
const OpeningDescription = "Saldo de abertura"

// BuildExtract synthesizes the extract of an account for a year: one
// opening row aggregating the opening balances of the account and its
// descendants, then the movements in date order with a running balance of
// debit minus credit.
func BuildExtract(account Account, year int, opening []OpeningBalance, movements []ExtractLine) *Extract {
	ex := &Extract{Account: account, Year: year}

	var od, oc decimal.Decimal
	hasOpening := false
	for _, o := range opening {
		if o.Year != year {
			continue
		}
		if o.AccountCode == account.Code || IsDescendant(o.AccountCode, account.Code) {
			od = od.Add(o.Debit)
			oc = oc.Add(o.Credit)
			hasOpening = true
		}
	}

	running := decimal.Zero
	if hasOpening {
		running = od.Sub(oc)
		ex.Lines = append(ex.Lines, ExtractLine{
			Date:        time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
			Description: OpeningDescription,
			AccountCode: account.Code,
			Debit:       od,
			Credit:      oc,
			Balance:     running,
			Opening:     true,
		})
		ex.TotalDebit = od
		ex.TotalCredit = oc
	}

	sorted := slices.Clone(movements)
	slices.SortStableFunc(sorted, func(a, b ExtractLine) int { return a.Date.Compare(b.Date) })
	for _, m := range sorted {
		running = running.Add(m.Debit).Sub(m.Credit)
		m.Balance = running
		ex.Lines = append(ex.Lines, m)
		ex.TotalDebit = ex.TotalDebit.Add(m.Debit)
		ex.TotalCredit = ex.TotalCredit.Add(m.Credit)
	}
	ex.Balance = running
	return ex
}
