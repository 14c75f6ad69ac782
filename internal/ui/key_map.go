package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the bindings surfaced in the per-view help lines. The bubbles
// lists handle their own navigation keys.
type keyMap struct {
	choose  key.Binding // pick a playlist or queue its tracks
	back    key.Binding
	confirm key.Binding // start the download from the confirm view
	decline key.Binding
	restart key.Binding // return to the playlist list after a run
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		choose:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		confirm: key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "download")),
		decline: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "cancel")),
		restart: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "start over")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.choose, k.back},
		{k.confirm, k.decline},
		{k.restart, k.quit},
	}
}
