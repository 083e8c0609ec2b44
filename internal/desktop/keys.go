package desktop

import "github.com/charmbracelet/bubbles/key"

// keyMap is the desktop's keyboard surface. Everything else is mouse driven.
type keyMap struct {
	Quit       key.Binding
	Connect    key.Binding // login screen only
	Fullscreen key.Binding
	CloseMenu  key.Binding
	Disconnect key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("C-c", "quit"),
	),
	Connect: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "connect wallet"),
	),
	Fullscreen: key.NewBinding(
		key.WithKeys("f11", "ctrl+f"),
		key.WithHelp("F11", "fullscreen"),
	),
	CloseMenu: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "close menu"),
	),
	Disconnect: key.NewBinding(
		key.WithKeys("ctrl+q"),
		key.WithHelp("C-q", "disconnect wallet"),
	),
}
