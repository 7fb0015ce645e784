package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/simonvc/pgcledger/internal/client"
	"github.com/simonvc/pgcledger/internal/ledger"
	"github.com/simonvc/pgcledger/internal/money"
)

type balanceteLoadedMsg struct {
	b   *ledger.Balancete
	err error
}

type balanceteModel struct {
	year    int
	b       *ledger.Balancete
	cursor  int
	loading bool
	err     error
	width   int
	height  int
}

func (m *balanceteModel) init(c *client.Client) tea.Cmd {
	m.loading = true
	year := m.year
	return func() tea.Msg {
		b, err := c.Balancete(context.Background(), year, 1, 12)
		return balanceteLoadedMsg{b: b, err: err}
	}
}

func (m balanceteModel) update(msg tea.Msg, c *client.Client) (balanceteModel, tea.Cmd) {
	switch msg := msg.(type) {
	case balanceteLoadedMsg:
		m.loading = false
		m.b = msg.b
		m.err = msg.err
		m.cursor = 0
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.PrevPeriod):
			m.year--
			return m, m.init(c)
		case key.Matches(msg, keys.NextPeriod):
			m.year++
			return m, m.init(c)
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.b != nil && m.cursor < len(m.b.Lines)-1 {
				m.cursor++
			}
		}
	}
	return m, nil
}

// selectedCode is the account under the cursor, opened as an extract on enter.
func (m *balanceteModel) selectedCode() string {
	if m.b != nil && m.cursor >= 0 && m.cursor < len(m.b.Lines) {
		return m.b.Lines[m.cursor].Code
	}
	return ""
}

func (m *balanceteModel) view() string {
	if m.loading {
		return "A carregar balancete..."
	}
	if m.err != nil {
		return errorStyle.Render("Erro: " + m.err.Error())
	}
	if m.b == nil {
		return ""
	}
	bal := m.b

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Balancete %d", bal.Year)))
	b.WriteString("\n")

	if len(bal.Lines) == 0 {
		b.WriteString(dimStyle.Render("Sem movimentos nem saldos iniciais neste ano."))
		return b.String()
	}

	header := fmt.Sprintf("  %-12s %-28s %14s %14s %14s %14s %14s %14s",
		"CÓDIGO", "DESCRIÇÃO", "ABERT. DÉB", "ABERT. CRÉD", "DÉBITO", "CRÉDITO", "SALDO DEV", "SALDO CRED")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	start, end := window(m.cursor, m.height-8, len(bal.Lines))
	for i := start; i < end; i++ {
		l := bal.Lines[i]
		line := fmt.Sprintf("  %-12s %-28s %14s %14s %14s %14s %14s %14s",
			l.Code, clip(strings.Repeat(" ", l.Level-1)+l.Description, 28),
			cell(l.OpeningDebit), cell(l.OpeningCredit), cell(l.Debit), cell(l.Credit),
			cell(l.BalanceDebit), cell(l.BalanceCredit))
		switch {
		case i == m.cursor:
			b.WriteString(selectedStyle.Render("> " + line[2:]))
		case l.Level == 1:
			b.WriteString(subtitleStyle.Bold(true).Render(line))
		default:
			b.WriteString(line)
		}
		b.WriteString("\n")
	}

	totals := fmt.Sprintf("  %-41s %14s %14s %14s %14s %14s %14s", "TOTAIS",
		money.Format(bal.TotalOpeningDebit), money.Format(bal.TotalOpeningCredit),
		money.Format(bal.TotalDebit), money.Format(bal.TotalCredit),
		money.Format(bal.TotalBalanceDebit), money.Format(bal.TotalBalanceCredit))
	b.WriteString(headerStyle.Render(totals))
	b.WriteString("\n")

	if bal.Balanced {
		b.WriteString(successStyle.Render("  [EQUILIBRADO]"))
	} else {
		b.WriteString(errorStyle.Render("  [DESEQUILIBRADO!]"))
	}
	return b.String()
}
