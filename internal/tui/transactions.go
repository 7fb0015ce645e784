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

type txnsLoadedMsg struct {
	txns []ledger.Transaction
	err  error
}

type txnListModel struct {
	txns    []ledger.Transaction
	cursor  int
	loading bool
	err     error
	width   int
	height  int
}

func (m *txnListModel) init(c *client.Client) tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		txns, err := c.ListTransactions(context.Background(), client.TxnFilter{Limit: 500})
		return txnsLoadedMsg{txns: txns, err: err}
	}
}

func (m txnListModel) update(msg tea.Msg) (txnListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case txnsLoadedMsg:
		m.loading = false
		m.txns = msg.txns
		m.err = msg.err

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.txns)-1 {
				m.cursor++
			}
		}
	}
	return m, nil
}

func (m *txnListModel) selectedID() string {
	if m.cursor >= 0 && m.cursor < len(m.txns) {
		return m.txns[m.cursor].ID
	}
	return ""
}

func (m *txnListModel) view() string {
	if m.loading {
		return "A carregar diário..."
	}
	if m.err != nil {
		return errorStyle.Render("Erro: " + m.err.Error())
	}
	if len(m.txns) == 0 {
		return dimStyle.Render("Ainda não há lançamentos.")
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Diário"))
	b.WriteString("\n")

	header := fmt.Sprintf("  %-10s %-16s %-40s %16s", "DATA", "ORIGEM", "DESCRIÇÃO", "VALOR")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	start, end := window(m.cursor, m.height-4, len(m.txns))
	for i := start; i < end; i++ {
		t := m.txns[i]
		debit, _ := t.Totals()
		line := fmt.Sprintf("  %-10s %-16s %-40s %16s",
			t.Date.Format(time.DateOnly),
			t.SourceKind,
			clip(t.Description, 40),
			money.Format(debit),
		)
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line[2:]))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("\n  %d lançamentos", len(m.txns)))
	return b.String()
}
