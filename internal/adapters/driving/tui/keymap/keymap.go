// Package keymap defines keybindings for the submission form.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the form.
type KeyMap struct {
	// Next moves focus to the next field.
	Next key.Binding
	// Prev moves focus to the previous field.
	Prev key.Binding
	// Submit sends the form. Enter on the last field also submits.
	Submit key.Binding
	// Again clears the form after a run.
	Again key.Binding
	// Quit exits the form.
	Quit key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Next: key.NewBinding(
			key.WithKeys("tab", "down", "enter"),
			key.WithHelp("tab/↓", "next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab/↑", "previous field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "submit"),
		),
		Again: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new submission"),
		),
		Quit: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "quit"),
		),
	}
}

// FormHelp returns the bindings shown while editing.
func (k *KeyMap) FormHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Submit, k.Quit}
}

// ResultHelp returns the bindings shown after a run.
func (k *KeyMap) ResultHelp() []key.Binding {
	return []key.Binding{k.Again, k.Quit}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
