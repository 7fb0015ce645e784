package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/simonvc/pgcledger/internal/classify"
	"github.com/simonvc/pgcledger/internal/client"
	"github.com/simonvc/pgcledger/internal/money"
)

var classifySources = []struct{ name, label string }{
	{"sales", "Vendas"},
	{"purchases", "Compras"},
	{"payroll", "Processamento salarial"},
	{"payroll-payment", "Pagamento de salários"},
}

type classifyLoadedMsg struct {
	source  string
	preview *client.Preview
	err     error
}

type classifyPostedMsg struct {
	batch *classify.Batch
	err   error
}

// classifyModel lists the pending entries of one source. Auto-classify
// previews the batch; post commits it.
type classifyModel struct {
	source  int
	auto    bool
	preview *client.Preview
	cursor  int
	loading bool
	err     error
	width   int
	height  int
}

func (m *classifyModel) sourceName() string {
	return classifySources[m.source].name
}

func (m *classifyModel) init(c *client.Client) tea.Cmd {
	m.loading = true
	source, auto := m.sourceName(), m.auto
	return func() tea.Msg {
		p, err := c.PreviewClassification(context.Background(), source, client.ClassifyRequest{Auto: auto})
		return classifyLoadedMsg{source: source, preview: p, err: err}
	}
}

func (m classifyModel) update(msg tea.Msg, c *client.Client) (classifyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case classifyLoadedMsg:
		if msg.source != m.sourceName() {
			return m, nil
		}
		m.loading = false
		m.preview = msg.preview
		m.err = msg.err
		m.cursor = 0
	case classifyPostedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.auto = false
			return m, m.init(c)
		}
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Source):
			m.source = (m.source + 1) % len(classifySources)
			m.auto = false
			m.preview = nil
			return m, m.init(c)
		case key.Matches(msg, keys.Auto):
			m.auto = true
			return m, m.init(c)
		case key.Matches(msg, keys.Post):
			if m.preview == nil || !m.preview.Ready {
				return m, nil
			}
			source, auto := m.sourceName(), m.auto
			return m, func() tea.Msg {
				b, err := c.PostClassification(context.Background(), source, client.ClassifyRequest{Auto: auto})
				return classifyPostedMsg{batch: b, err: err}
			}
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.preview != nil && m.cursor < len(m.preview.Entries)-1 {
				m.cursor++
			}
		}
	}
	return m, nil
}

func statusStyle(s classify.Status) string {
	switch s {
	case classify.StatusClassified:
		return successStyle.Render(fmt.Sprintf("%-11s", s))
	default:
		return warnStyle.Render(fmt.Sprintf("%-11s", s))
	}
}

func (m *classifyModel) view() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Classificação: " + classifySources[m.source].label))
	b.WriteString("\n")

	if m.loading {
		b.WriteString("A carregar documentos pendentes...")
		return b.String()
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render("Erro: " + m.err.Error()))
		b.WriteString("\n\n")
	}
	p := m.preview
	if p == nil {
		return b.String()
	}
	if len(p.Entries) == 0 && len(p.Unresolved) == 0 {
		b.WriteString(dimStyle.Render("Nada pendente nesta origem."))
		return b.String()
	}

	header := fmt.Sprintf("  %-11s %-10s %-40s %-3s %-22s %-16s %14s", "ESTADO", "DATA", "DESCRIÇÃO", "", "PAPEL", "CONTA", "VALOR")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	start, end := window(m.cursor, (m.height-10)/3, len(p.Entries))
	for i := start; i < end; i++ {
		e := p.Entries[i]
		prefix := "  "
		desc := clip(e.Description, 40)
		if i == m.cursor {
			prefix = selectedStyle.Render("> ")
			desc = selectedStyle.Render(fmt.Sprintf("%-40s", desc))
		} else {
			desc = fmt.Sprintf("%-40s", desc)
		}
		b.WriteString(fmt.Sprintf("%s%s %-10s %s\n", prefix, statusStyle(e.Status), e.Date.Format(time.DateOnly), desc))
		for _, l := range e.Lines {
			side, amt, style := "D", l.Debit, debitStyle
			if l.Credit.IsPositive() {
				side, amt, style = "C", l.Credit, creditStyle
			}
			account := l.Account
			if account == "" {
				account = "?"
			}
			b.WriteString(style.Render(fmt.Sprintf("  %-64s %-3s %-22s %-16s %14s", "", side, l.Role, account, money.Format(amt))))
			b.WriteString("\n")
		}
	}

	for _, r := range p.Unresolved {
		b.WriteString(errorStyle.Render(fmt.Sprintf("  POR RESOLVER  %s  %s", r.Key, r.Reason)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case p.Ready:
		b.WriteString(successStyle.Render(fmt.Sprintf("  Pronto: %d lançamentos, %d contas novas. Prima p para lançar.",
			len(p.Batch.Transactions), len(p.Batch.NewAccounts))))
	case p.Problem != "":
		b.WriteString(dimStyle.Render("  " + p.Problem + ". Prima a para classificar."))
	}
	return b.String()
}
