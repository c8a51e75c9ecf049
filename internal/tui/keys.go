package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Toggle   key.Binding
	Faster   key.Binding
	Slower   key.Binding
	MoreReps key.Binding
	LessReps key.Binding
	Higher   key.Binding
	Lower    key.Binding
	Louder   key.Binding
	Quieter  key.Binding
	Language key.Binding
	Announce key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Toggle:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "start/stop")),
		Faster:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "faster")),
		Slower:   key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "slower")),
		MoreReps: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "more reps")),
		LessReps: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "fewer reps")),
		Higher:   key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑", "higher tone")),
		Lower:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓", "lower tone")),
		Louder:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "louder")),
		Quieter:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "quieter")),
		Language: key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "language")),
		Announce: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "announce")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Faster, k.Slower, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Announce, k.Language},
		{k.Faster, k.Slower, k.MoreReps, k.LessReps},
		{k.Higher, k.Lower, k.Louder, k.Quieter},
		{k.Help, k.Quit},
	}
}
