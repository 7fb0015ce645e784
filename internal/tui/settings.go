package tui

import (
	"context"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/simonvc/pgcledger/internal/client"
	"github.com/simonvc/pgcledger/internal/money"
)

type settingsLoadedMsg struct {
	settings *client.Settings
	err      error
}

// settingsModel shows the company, tax and account mapping the server
// computes with. Changes go through the configuration file.
type settingsModel struct {
	settings *client.Settings
	loading  bool
	err      error
	width    int
}

func (m *settingsModel) init(c *client.Client) tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		s, err := c.Settings(context.Background())
		return settingsLoadedMsg{settings: s, err: err}
	}
}

func (m settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case settingsLoadedMsg:
		m.loading = false
		m.settings = msg.settings
		m.err = msg.err
	}
	return m, nil
}

func (m *settingsModel) view() string {
	if m.loading {
		return "A carregar configuração..."
	}
	if m.err != nil {
		return errorStyle.Render("Erro: " + m.err.Error())
	}
	s := m.settings
	if s == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Configuração"))
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Empresa:"), s.Company.Name))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("NIF:"), s.Company.NIF))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Moeda:"), s.Company.Currency))
	b.WriteString(fmt.Sprintf("%s %s%%\n", labelStyle.Render("IVA:"), s.Taxes.VATRate))
	b.WriteString(fmt.Sprintf("%s %s%%  (entidade %s%%)\n", labelStyle.Render("INSS:"), s.Taxes.INSSRate, s.Taxes.EmployerINSSRate))
	b.WriteString("\n")

	b.WriteString(headerStyle.Render(fmt.Sprintf("  %-20s %16s %8s", "IRT: A PARTIR DE", "PARCELA FIXA", "TAXA")))
	b.WriteString("\n")
	for _, br := range s.Taxes.IRTBrackets {
		b.WriteString(fmt.Sprintf("  %-20s %16s %7s%%\n", money.Format(br.From), money.Format(br.Fixed), br.Rate))
	}
	b.WriteString("\n")

	codes := s.Accounts.Codes()
	names := make([]string, 0, len(codes))
	for name := range codes {
		names = append(names, name)
	}
	slices.Sort(names)
	b.WriteString(headerStyle.Render(fmt.Sprintf("  %-24s %s", "MAPEAMENTO", "CONTA")))
	b.WriteString("\n")
	for _, name := range names {
		b.WriteString(fmt.Sprintf("  %-24s %s\n", name, codes[name]))
	}
	return b.String()
}
