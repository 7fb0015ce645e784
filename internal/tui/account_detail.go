package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/simonvc/pgcledger/internal/client"
	"github.com/simonvc/pgcledger/internal/ledger"
	"github.com/simonvc/pgcledger/internal/money"
)

type accountDetailLoadedMsg struct {
	extract *ledger.Extract
	err     error
}

// accountDetailModel shows the extract of one account for a year.
type accountDetailModel struct {
	code    string
	year    int
	extract *ledger.Extract
	loading bool
	err     error
	width   int
	height  int
	offset  int
}

func (m *accountDetailModel) init(c *client.Client, code string, year int) tea.Cmd {
	m.code, m.year = code, year
	m.loading = true
	m.offset = 0
	return func() tea.Msg {
		ex, err := c.Extract(context.Background(), code, year)
		return accountDetailLoadedMsg{extract: ex, err: err}
	}
}

func (m accountDetailModel) update(msg tea.Msg, c *client.Client) (accountDetailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case accountDetailLoadedMsg:
		m.loading = false
		m.extract = msg.extract
		m.err = msg.err
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.PrevPeriod):
			return m, m.init(c, m.code, m.year-1)
		case key.Matches(msg, keys.NextPeriod):
			return m, m.init(c, m.code, m.year+1)
		case key.Matches(msg, keys.Up):
			if m.offset > 0 {
				m.offset--
			}
		case key.Matches(msg, keys.Down):
			if m.extract != nil && m.offset < len(m.extract.Lines)-1 {
				m.offset++
			}
		}
	}
	return m, nil
}

func (m *accountDetailModel) view() string {
	if m.loading {
		return "A carregar extrato..."
	}
	if m.err != nil {
		return errorStyle.Render("Erro: " + m.err.Error())
	}
	if m.extract == nil {
		return ""
	}
	ex := m.extract

	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Extrato %s  %d", ex.Account.Code, ex.Year)))
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Descrição:"), ex.Account.Description))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Tipo:"), ex.Account.Type))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Natureza:"), ex.Account.Nature))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Saldo:"), money.FormatKz(ex.Balance)))
	b.WriteString("\n")

	header := fmt.Sprintf("  %-10s %-14s %-34s %15s %15s %15s", "DATA", "CONTA", "DESCRIÇÃO", "DÉBITO", "CRÉDITO", "SALDO")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	rows := max(m.height-10, 5)
	for i := m.offset; i < len(ex.Lines) && i < m.offset+rows; i++ {
		l := ex.Lines[i]
		date := ""
		if !l.Date.IsZero() {
			date = l.Date.Format(time.DateOnly)
		}
		line := fmt.Sprintf("  %-10s %-14s %-34s %15s %15s %15s",
			date, l.AccountCode, clip(l.Description, 34), cell(l.Debit), cell(l.Credit), money.Format(l.Balance))
		switch {
		case l.Opening:
			b.WriteString(dimStyle.Render(line))
		case l.Debit.IsPositive():
			b.WriteString(debitStyle.Render(line))
		default:
			b.WriteString(creditStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("  %-60s %15s %15s %15s\n", "TOTAIS",
		money.Format(ex.TotalDebit), money.Format(ex.TotalCredit), money.Format(ex.Balance)))
	b.WriteString("\n" + dimStyle.Render("  [ ] mudar ano  ESC voltar"))
	return b.String()
}
