package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/simonvc/pgcledger/internal/client"
	"github.com/simonvc/pgcledger/internal/ledger"
	"github.com/simonvc/pgcledger/internal/money"
)

type txnDetailLoadedMsg struct {
	txn *ledger.Transaction
	err error
}

type txnDetailModel struct {
	txn     *ledger.Transaction
	loading bool
	err     error
	width   int
}

func (m *txnDetailModel) init(c *client.Client, id string) tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		txn, err := c.GetTransaction(context.Background(), id)
		return txnDetailLoadedMsg{txn: txn, err: err}
	}
}

func (m txnDetailModel) update(msg tea.Msg) (txnDetailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case txnDetailLoadedMsg:
		m.loading = false
		m.txn = msg.txn
		m.err = msg.err
	}
	return m, nil
}

func (m *txnDetailModel) view() string {
	if m.loading {
		return "A carregar lançamento..."
	}
	if m.err != nil {
		return errorStyle.Render("Erro: " + m.err.Error())
	}
	if m.txn == nil {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Lançamento"))
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("ID:"), m.txn.ID))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Data:"), m.txn.Date.Format(time.DateOnly)))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Descrição:"), m.txn.Description))
	b.WriteString(fmt.Sprintf("%s %s %s\n", labelStyle.Render("Origem:"), m.txn.SourceKind, m.txn.SourceID))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Lançado:"), m.txn.PostedAt.Format("2006-01-02 15:04:05")))
	b.WriteString("\n")

	header := fmt.Sprintf("  %-4s %-16s %16s  %s", "", "CONTA", "VALOR", "MEMO")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	for _, e := range m.txn.Entries {
		if e.Debit.IsPositive() {
			b.WriteString(debitStyle.Render(fmt.Sprintf("  %-4s %-16s %16s  %s", "D", e.AccountCode, money.Format(e.Debit), e.Memo)))
		} else {
			b.WriteString(creditStyle.Render(fmt.Sprintf("  %-4s %-16s %16s  %s", "C", e.AccountCode, money.Format(e.Credit), e.Memo)))
		}
		b.WriteString("\n")
	}

	debit, credit := m.txn.Totals()
	b.WriteString(fmt.Sprintf("\n  Débito %s  Crédito %s\n", money.Format(debit), money.Format(credit)))
	b.WriteString("\n" + dimStyle.Render("  ESC para voltar"))
	return b.String()
}
