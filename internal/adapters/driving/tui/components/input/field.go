// Package input provides labelled text fields for the TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docrelay/internal/adapters/driving/tui/styles"
)

// Field is a single labelled line of input.
type Field struct {
	label     string
	textinput textinput.Model
	styles    *styles.Styles
}

// NewField creates a blurred field.
func NewField(label, placeholder string, s *styles.Styles) *Field {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = placeholder
	ti.CharLimit = 256
	ti.Width = 50

	return &Field{label: label, textinput: ti, styles: s}
}

// Update handles input messages.
func (f *Field) Update(msg tea.Msg) (*Field, tea.Cmd) {
	var cmd tea.Cmd
	f.textinput, cmd = f.textinput.Update(msg)
	return f, cmd
}

// View renders the label and input on one line.
func (f *Field) View() string {
	label := f.styles.Label.Render(f.label)
	if f.textinput.Focused() {
		label = f.styles.Focused.Render(f.label)
	}
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, f.textinput.View())
}

// Label returns the field label.
func (f *Field) Label() string {
	return f.label
}

// Value returns the current input value.
func (f *Field) Value() string {
	return f.textinput.Value()
}

// SetValue sets the input value.
func (f *Field) SetValue(value string) {
	f.textinput.SetValue(value)
}

// Focus sets focus on the field.
func (f *Field) Focus() tea.Cmd {
	return f.textinput.Focus()
}

// Blur removes focus from the field.
func (f *Field) Blur() {
	f.textinput.Blur()
}

// Focused returns whether the field is focused.
func (f *Field) Focused() bool {
	return f.textinput.Focused()
}

// SetWidth sets the input width, leaving room for the label.
func (f *Field) SetWidth(width int) {
	inputWidth := width - 16
	if inputWidth < 20 {
		inputWidth = 20
	}
	f.textinput.Width = inputWidth
}

// Reset clears the field.
func (f *Field) Reset() {
	f.textinput.Reset()
}
