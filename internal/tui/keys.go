package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit       key.Binding
	Tab        key.Binding
	ShiftTab   key.Binding
	Enter      key.Binding
	Escape     key.Binding
	Search     key.Binding
	Delete     key.Binding
	Up         key.Binding
	Down       key.Binding
	PrevPeriod key.Binding
	NextPeriod key.Binding
	Source     key.Binding
	Auto       key.Binding
	Post       key.Binding
	Register   key.Binding
	Refresh    key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "sair"),
	),
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "vista seguinte"),
	),
	ShiftTab: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "vista anterior"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "abrir/confirmar"),
	),
	Escape: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "voltar"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "pesquisar contas"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "eliminar conta"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("up/k", "subir"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("down/j", "descer"),
	),
	PrevPeriod: key.NewBinding(
		key.WithKeys("[", "left"),
		key.WithHelp("[", "período anterior"),
	),
	NextPeriod: key.NewBinding(
		key.WithKeys("]", "right"),
		key.WithHelp("]", "período seguinte"),
	),
	Source: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "origem seguinte"),
	),
	Auto: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "classificar"),
	),
	Post: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "lançar"),
	),
	Register: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "registar"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("ctrl+r", "recarregar"),
	),
}
