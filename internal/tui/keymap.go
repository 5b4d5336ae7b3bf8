package tui

import "charm.land/bubbles/v2/key"

// keyMap holds the dashboard key bindings.
type keyMap struct {
	quit        key.Binding
	reload      key.Binding
	toggleHelp  key.Binding
	prevSection key.Binding
	nextSection key.Binding
	moveUp      key.Binding
	moveDown    key.Binding
	open        key.Binding
	back        key.Binding
	search      key.Binding
}

// newKeyMap constructs the default bindings.
func newKeyMap() keyMap {
	return keyMap{
		quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		reload:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		toggleHelp:  key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		prevSection: key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "prev section")),
		nextSection: key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "next section")),
		moveUp:      key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		moveDown:    key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		open:        key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open documents")),
		back:        key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
		search:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	}
}

// ShortHelp returns the compact help line.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.open, k.back, k.search, k.reload, k.toggleHelp, k.quit}
}

// FullHelp returns the expanded help columns.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.open, k.back, k.search, k.reload, k.toggleHelp, k.quit},
		{k.prevSection, k.nextSection, k.moveUp, k.moveDown},
	}
}
