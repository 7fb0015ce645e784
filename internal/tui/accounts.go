package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/simonvc/pgcledger/internal/client"
	"github.com/simonvc/pgcledger/internal/ledger"
)

type accountsLoadedMsg struct {
	accounts []ledger.Account
	query    string
	err      error
}

// accountDeleteConfirmedMsg is sent when the user confirms deletion in the TUI.
type accountDeleteConfirmedMsg struct {
	code string
}

// accountDeletedMsg is sent after the server processes the delete.
type accountDeletedMsg struct {
	code string
	err  error
}

type accountListModel struct {
	accounts         []ledger.Account
	cursor           int
	loading          bool
	err              error
	width            int
	height           int
	confirmDelete    bool
	deleteTargetCode string
	searching        bool
	search           textinput.Model
	query            string
}

func newAccountList() accountListModel {
	ti := textinput.New()
	ti.Placeholder = "código ou descrição"
	ti.Prompt = "/ "
	ti.CharLimit = 64
	return accountListModel{search: ti}
}

func (m *accountListModel) init(c *client.Client) tea.Cmd {
	m.loading = true
	query := m.query
	return func() tea.Msg {
		var accounts []ledger.Account
		var err error
		if query == "" {
			accounts, err = c.ListAccounts(context.Background(), "", "")
		} else {
			accounts, err = c.SearchAccounts(context.Background(), query, 50)
		}
		return accountsLoadedMsg{accounts: accounts, query: query, err: err}
	}
}

// busy reports whether the list is capturing keys for its own input.
func (m *accountListModel) busy() bool {
	return m.searching || m.confirmDelete
}

func (m accountListModel) update(msg tea.Msg, c *client.Client) (accountListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case accountsLoadedMsg:
		if msg.query != m.query {
			return m, nil
		}
		m.loading = false
		m.accounts = msg.accounts
		m.err = msg.err
		if m.cursor >= len(m.accounts) {
			m.cursor = max(len(m.accounts)-1, 0)
		}

	case accountDeletedMsg:
		m.confirmDelete = false
		m.deleteTargetCode = ""
		if msg.err != nil {
			m.err = msg.err
		}

	case tea.KeyMsg:
		if m.confirmDelete {
			switch msg.String() {
			case "s", "S", "y", "Y":
				code := m.deleteTargetCode
				m.confirmDelete = false
				return m, func() tea.Msg {
					return accountDeleteConfirmedMsg{code: code}
				}
			default:
				m.confirmDelete = false
				m.deleteTargetCode = ""
			}
			return m, nil
		}

		if m.searching {
			switch msg.Type {
			case tea.KeyEnter, tea.KeyEsc:
				m.searching = false
				m.search.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			if q := strings.TrimSpace(m.search.Value()); q != m.query {
				m.query = q
				m.cursor = 0
				return m, tea.Batch(cmd, m.init(c))
			}
			return m, cmd
		}

		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.accounts)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Search):
			m.searching = true
			return m, m.search.Focus()
		case key.Matches(msg, keys.Delete):
			if code := m.selectedCode(); code != "" {
				m.confirmDelete = true
				m.deleteTargetCode = code
				m.err = nil
			}
		}
	}
	return m, nil
}

func (m *accountListModel) selectedCode() string {
	if m.cursor >= 0 && m.cursor < len(m.accounts) {
		return m.accounts[m.cursor].Code
	}
	return ""
}

func (m *accountListModel) view() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Plano Geral de Contabilidade"))
	b.WriteString("\n")
	if m.searching || m.query != "" {
		b.WriteString(m.search.View())
		b.WriteString("\n\n")
	}

	switch {
	case m.loading && len(m.accounts) == 0:
		b.WriteString("A carregar contas...")
		return b.String()
	case m.err != nil:
		b.WriteString(errorStyle.Render("Erro: " + m.err.Error()))
		return b.String()
	case len(m.accounts) == 0:
		b.WriteString(dimStyle.Render("Nenhuma conta encontrada."))
		return b.String()
	}

	header := fmt.Sprintf("  %-16s %-50s %-9s %s", "CÓDIGO", "DESCRIÇÃO", "TIPO", "NATUREZA")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	start, end := window(m.cursor, m.height-6, len(m.accounts))
	for i := start; i < end; i++ {
		a := m.accounts[i]
		indent := strings.Repeat(" ", strings.Count(a.Code, "."))
		line := fmt.Sprintf("  %-16s %-50s %-9s %s", a.Code, clip(indent+a.Description, 50), a.Type, a.Nature)
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line[2:]))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}

	if m.confirmDelete {
		b.WriteString("\n" + errorStyle.Render(fmt.Sprintf("  Eliminar a conta %s? (s/n)", m.deleteTargetCode)))
	} else {
		b.WriteString(fmt.Sprintf("\n  %d contas", len(m.accounts)))
	}

	return b.String()
}
