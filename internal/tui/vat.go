package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/simonvc/pgcledger/internal/client"
	"github.com/simonvc/pgcledger/internal/money"
	"github.com/simonvc/pgcledger/internal/vat"
)

type vatLoadedMsg struct {
	settlement *vat.Settlement
	err        error
}

type vatRegisteredMsg struct {
	settlement *vat.Settlement
	err        error
}

// vatModel shows the settlement of one month and registers it on demand.
type vatModel struct {
	year, month int
	settlement  *vat.Settlement
	loading     bool
	confirm     bool
	err         error
	width       int
}

func (m *vatModel) init(c *client.Client) tea.Cmd {
	m.loading = true
	year, month := m.year, m.month
	return func() tea.Msg {
		s, err := c.VAT(context.Background(), year, month, decimal.Zero, decimal.Zero)
		return vatLoadedMsg{settlement: s, err: err}
	}
}

func (m *vatModel) shift(delta int) {
	m.month += delta
	for m.month < 1 {
		m.month += 12
		m.year--
	}
	for m.month > 12 {
		m.month -= 12
		m.year++
	}
}

func (m vatModel) update(msg tea.Msg, c *client.Client) (vatModel, tea.Cmd) {
	switch msg := msg.(type) {
	case vatLoadedMsg:
		m.loading = false
		m.settlement = msg.settlement
		m.err = msg.err
	case vatRegisteredMsg:
		m.err = msg.err
		if msg.err == nil {
			m.settlement = msg.settlement
		}
	case tea.KeyMsg:
		if m.confirm {
			m.confirm = false
			if k := strings.ToLower(msg.String()); k != "s" && k != "y" {
				return m, nil
			}
			year, month := m.year, m.month
			return m, func() tea.Msg {
				s, err := c.RegisterVAT(context.Background(), year, month, decimal.Zero, decimal.Zero, true)
				return vatRegisteredMsg{settlement: s, err: err}
			}
		}
		switch {
		case key.Matches(msg, keys.PrevPeriod):
			m.shift(-1)
			return m, m.init(c)
		case key.Matches(msg, keys.NextPeriod):
			m.shift(1)
			return m, m.init(c)
		case key.Matches(msg, keys.Register):
			if m.settlement != nil && m.settlement.ID == "" {
				m.confirm = true
			}
		}
	}
	return m, nil
}

func (m *vatModel) view() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Apuramento do IVA %04d-%02d", m.year, m.month)))
	b.WriteString("\n")

	if m.loading {
		b.WriteString("A carregar apuramento...")
		return b.String()
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render("Erro: " + m.err.Error()))
		b.WriteString("\n\n")
	}
	s := m.settlement
	if s == nil {
		return b.String()
	}

	row := func(label string, amt decimal.Decimal) string {
		return fmt.Sprintf("%-36s %16s\n", label, money.Format(amt))
	}
	var body strings.Builder
	body.WriteString(row(fmt.Sprintf("IVA liquidado (%d faturas)", s.InvoiceCount), s.OutputVAT))
	body.WriteString(row("Regularizações a favor do Estado", s.SalesAdjust))
	body.WriteString(row(fmt.Sprintf("IVA dedutível (%d compras)", s.PurchaseCount), s.InputVAT))
	body.WriteString(row("Regularizações a favor da empresa", s.PurchaseAdjust))
	body.WriteString(strings.Repeat("─", 53) + "\n")
	var label string
	switch s.Label {
	case vat.LabelPayable:
		label = errorStyle.Render(fmt.Sprintf("%-36s", s.Label))
	case vat.LabelRecoverable:
		label = successStyle.Render(fmt.Sprintf("%-36s", s.Label))
	default:
		label = fmt.Sprintf("%-36s", s.Label)
	}
	body.WriteString(fmt.Sprintf("%s %16s", label, money.Format(s.Balance.Abs())))
	b.WriteString(boxStyle.Render(body.String()))
	b.WriteString("\n\n")

	switch {
	case s.ID != "":
		b.WriteString(successStyle.Render("  Registado em " + s.CreatedAt.Format("2006-01-02")))
		if s.TransactionID != "" {
			b.WriteString(dimStyle.Render("  lançamento " + s.TransactionID))
		}
	case m.confirm:
		b.WriteString(warnStyle.Render("  Registar este apuramento e lançar no diário? (s/n)"))
	default:
		b.WriteString(dimStyle.Render("  Não registado. Prima r para registar."))
	}
	return b.String()
}
