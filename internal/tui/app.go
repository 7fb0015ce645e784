package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/simonvc/pgcledger/internal/client"
	"github.com/simonvc/pgcledger/internal/money"
)

type mode int

const (
	modeAccountList mode = iota
	modeAccountDetail
	modeTransactionList
	modeTransactionDetail
	modeBalancete
	modeClassify
	modeVAT
	modeSettings
)

var tabModes = []mode{modeAccountList, modeTransactionList, modeBalancete, modeClassify, modeVAT, modeSettings}

func tabLabel(m mode) string {
	switch m {
	case modeAccountList:
		return "Contas"
	case modeTransactionList:
		return "Diário"
	case modeBalancete:
		return "Balancete"
	case modeClassify:
		return "Classificação"
	case modeVAT:
		return "IVA"
	case modeSettings:
		return "Configuração"
	default:
		return ""
	}
}

func helpLine(m mode) string {
	switch m {
	case modeAccountList:
		return "tab:mudar  enter:extrato  /:pesquisar  d:eliminar  q:sair"
	case modeAccountDetail:
		return "[ ]:ano  esc:voltar  q:sair"
	case modeBalancete:
		return "tab:mudar  enter:extrato  [ ]:ano  q:sair"
	case modeClassify:
		return "tab:mudar  s:origem  a:classificar  p:lançar  q:sair"
	case modeVAT:
		return "tab:mudar  [ ]:mês  r:registar  q:sair"
	default:
		return "tab:mudar  enter:abrir  esc:voltar  ctrl+r:recarregar  q:sair"
	}
}

type App struct {
	client        *client.Client
	mode          mode
	tabIndex      int
	width, height int
	err           error
	statusMsg     string
	// detailFrom is the tab an extract was opened from.
	detailFrom mode

	accountList   accountListModel
	accountDetail accountDetailModel
	txnList       txnListModel
	txnDetail     txnDetailModel
	balancete     balanceteModel
	classify      classifyModel
	vat           vatModel
	settings      settingsModel
}

func NewApp(c *client.Client) *App {
	now := time.Now()
	app := &App{
		client:      c,
		mode:        modeAccountList,
		accountList: newAccountList(),
	}
	app.balancete.year = now.Year()
	app.vat.year, app.vat.month = now.Year(), int(now.Month())
	return app
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.accountList.init(a.client),
		a.txnList.init(a.client),
		a.balancete.init(a.client),
		a.settings.init(a.client),
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		h := msg.Height - 6
		a.accountList.width, a.accountList.height = msg.Width, h
		a.accountDetail.width, a.accountDetail.height = msg.Width, h
		a.txnList.width, a.txnList.height = msg.Width, h
		a.txnDetail.width = msg.Width
		a.balancete.width, a.balancete.height = msg.Width, h
		a.classify.width, a.classify.height = msg.Width, h
		a.vat.width = msg.Width
		a.settings.width = msg.Width
		return a, nil
	}

	// Route data-loaded messages to the correct sub-model regardless of active mode.
	// Init() fires the loads concurrently but the bottom delegation only routes to
	// the active mode's model.
	switch typedMsg := msg.(type) {
	case accountsLoadedMsg:
		var cmd tea.Cmd
		a.accountList, cmd = a.accountList.update(msg, a.client)
		return a, cmd
	case txnsLoadedMsg:
		var cmd tea.Cmd
		a.txnList, cmd = a.txnList.update(msg)
		return a, cmd
	case balanceteLoadedMsg:
		var cmd tea.Cmd
		a.balancete, cmd = a.balancete.update(msg, a.client)
		return a, cmd
	case accountDetailLoadedMsg:
		var cmd tea.Cmd
		a.accountDetail, cmd = a.accountDetail.update(msg, a.client)
		return a, cmd
	case txnDetailLoadedMsg:
		var cmd tea.Cmd
		a.txnDetail, cmd = a.txnDetail.update(msg)
		return a, cmd
	case settingsLoadedMsg:
		var cmd tea.Cmd
		a.settings, cmd = a.settings.update(msg)
		return a, cmd
	case vatLoadedMsg:
		var cmd tea.Cmd
		a.vat, cmd = a.vat.update(msg, a.client)
		return a, cmd
	case vatRegisteredMsg:
		var cmd tea.Cmd
		a.vat, cmd = a.vat.update(msg, a.client)
		if typedMsg.err == nil {
			a.statusMsg = "Apuramento do IVA registado"
			return a, tea.Batch(cmd, a.txnList.init(a.client), a.balancete.init(a.client))
		}
		return a, cmd
	case classifyLoadedMsg:
		var cmd tea.Cmd
		a.classify, cmd = a.classify.update(msg, a.client)
		return a, cmd
	case classifyPostedMsg:
		var cmd tea.Cmd
		a.classify, cmd = a.classify.update(msg, a.client)
		if typedMsg.err == nil {
			a.statusMsg = fmt.Sprintf("%d lançamentos registados", len(typedMsg.batch.Transactions))
			return a, tea.Batch(cmd,
				a.txnList.init(a.client),
				a.balancete.init(a.client),
				a.accountList.init(a.client),
			)
		}
		return a, cmd
	case accountDeleteConfirmedMsg:
		code := typedMsg.code
		return a, func() tea.Msg {
			err := a.client.DeleteAccount(context.Background(), code)
			return accountDeletedMsg{code: code, err: err}
		}
	case accountDeletedMsg:
		if typedMsg.err != nil {
			a.accountList, _ = a.accountList.update(msg, a.client)
			return a, nil
		}
		a.statusMsg = "Conta " + typedMsg.code + " eliminada"
		return a, tea.Batch(
			a.accountList.init(a.client),
			a.balancete.init(a.client),
		)
	}

	// When the account list has inline input (search, delete confirm), delegate all keys directly
	if a.mode == modeAccountList && a.accountList.busy() {
		var cmd tea.Cmd
		a.accountList, cmd = a.accountList.update(msg, a.client)
		return a, cmd
	}
	if a.mode == modeVAT && a.vat.confirm {
		var cmd tea.Cmd
		a.vat, cmd = a.vat.update(msg, a.client)
		return a, cmd
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit

		case key.Matches(msg, keys.Tab):
			a.tabIndex = (a.tabIndex + 1) % len(tabModes)
			a.mode = tabModes[a.tabIndex]
			a.statusMsg = ""
			return a, a.refreshTab()

		case key.Matches(msg, keys.ShiftTab):
			a.tabIndex = (a.tabIndex - 1 + len(tabModes)) % len(tabModes)
			a.mode = tabModes[a.tabIndex]
			a.statusMsg = ""
			return a, a.refreshTab()

		case key.Matches(msg, keys.Refresh):
			return a, a.refreshTab()

		case key.Matches(msg, keys.Escape):
			switch a.mode {
			case modeAccountDetail:
				a.mode = a.detailFrom
			case modeTransactionDetail:
				a.mode = modeTransactionList
			}
			return a, nil

		case key.Matches(msg, keys.Enter):
			switch a.mode {
			case modeAccountList:
				return a, a.openExtract(a.accountList.selectedCode(), time.Now().Year())
			case modeBalancete:
				return a, a.openExtract(a.balancete.selectedCode(), a.balancete.year)
			case modeTransactionList:
				if txnID := a.txnList.selectedID(); txnID != "" {
					a.mode = modeTransactionDetail
					return a, a.txnDetail.init(a.client, txnID)
				}
				return a, nil
			}
		}
	}

	// Delegate update to active sub-model
	var cmd tea.Cmd
	switch a.mode {
	case modeAccountList:
		a.accountList, cmd = a.accountList.update(msg, a.client)
	case modeAccountDetail:
		a.accountDetail, cmd = a.accountDetail.update(msg, a.client)
	case modeTransactionList:
		a.txnList, cmd = a.txnList.update(msg)
	case modeTransactionDetail:
		a.txnDetail, cmd = a.txnDetail.update(msg)
	case modeBalancete:
		a.balancete, cmd = a.balancete.update(msg, a.client)
	case modeClassify:
		a.classify, cmd = a.classify.update(msg, a.client)
	case modeVAT:
		a.vat, cmd = a.vat.update(msg, a.client)
	case modeSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a *App) openExtract(code string, year int) tea.Cmd {
	if code == "" {
		return nil
	}
	a.detailFrom = a.mode
	a.mode = modeAccountDetail
	return a.accountDetail.init(a.client, code, year)
}

func (a *App) refreshTab() tea.Cmd {
	switch a.mode {
	case modeAccountList:
		return a.accountList.init(a.client)
	case modeTransactionList:
		return a.txnList.init(a.client)
	case modeBalancete:
		return a.balancete.init(a.client)
	case modeClassify:
		return a.classify.init(a.client)
	case modeVAT:
		return a.vat.init(a.client)
	case modeSettings:
		return a.settings.init(a.client)
	}
	return nil
}

func (a *App) View() string {
	// Tab bar
	tabs := ""
	for i, m := range tabModes {
		label := tabLabel(m)
		if i == a.tabIndex {
			tabs += activeTabStyle.Render(label)
		} else {
			tabs += inactiveTabStyle.Render(label)
		}
		if i < len(tabModes)-1 {
			tabs += " "
		}
	}

	// Content
	var content string
	switch a.mode {
	case modeAccountList:
		content = a.accountList.view()
	case modeAccountDetail:
		content = a.accountDetail.view()
	case modeTransactionList:
		content = a.txnList.view()
	case modeTransactionDetail:
		content = a.txnDetail.view()
	case modeBalancete:
		content = a.balancete.view()
	case modeClassify:
		content = a.classify.view()
	case modeVAT:
		content = a.vat.view()
	case modeSettings:
		content = a.settings.view()
	}

	// Status bar
	status := ""
	if a.statusMsg != "" {
		status = successStyle.Render(a.statusMsg)
	}
	if a.err != nil {
		status = errorStyle.Render(a.err.Error())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		tabs,
		"",
		content,
		"",
		status,
		dimStyle.Render(helpLine(a.mode)),
	)
}

// window returns the visible slice of a list of n rows that keeps cursor
// on screen.
func window(cursor, rows, n int) (start, end int) {
	if rows < 1 {
		rows = 10
	}
	if cursor >= rows {
		start = cursor - rows + 1
	}
	return start, min(start+rows, n)
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-2]) + ".."
}

// cell formats an amount, leaving zero blank.
func cell(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return money.Format(d)
}
