package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cockroachdb/errors"

	"github.com/custodia-labs/docrelay/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/docrelay/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docrelay/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docrelay/internal/core/domain"
)

// phase is where the form is in its lifecycle.
type phase int

const (
	phaseEditing phase = iota
	phaseSubmitting
	phaseDone
)

// Field indexes, in display order.
const (
	fieldName = iota
	fieldEmail
	fieldAddress
	fieldRecipient
)

// reportMsg carries a finished run back into Update.
type reportMsg struct {
	report domain.SubmissionReport
}

// App is the submission form, following the Elm architecture.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keys   *keymap.KeyMap
	help   help.Model

	fields  []*input.Field
	focus   int
	phase   phase
	spinner spinner.Model

	report *domain.SubmissionReport
	width  int
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a form bound to ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, errors.Wrap(err, "creating app")
	}

	s := styles.DefaultStyles()
	a := &App{
		ports:  ports,
		ctx:    context.Background(),
		styles: s,
		keys:   keymap.DefaultKeyMap(),
		help:   help.New(),
		fields: []*input.Field{
			input.NewField("Name", "Ada Lovelace", s),
			input.NewField("Email", "ada@example.com", s),
			input.NewField("Address", "12 Analytical Row, London", s),
			input.NewField("Recipient", "blank uses the configured default", s),
		},
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	a.fields[fieldName].Focus()
	return a, nil
}

// WithContext sets the context submissions run under.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Prefill copies non-empty values from raw into the form.
func (a *App) Prefill(raw domain.RawSubmission) *App {
	for i, v := range []string{raw.Name, raw.Email, raw.Address, raw.RecipientEmail} {
		if v != "" {
			a.fields[i].SetValue(v)
		}
	}
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.SetWindowTitle("docrelay - new submission")
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.help.Width = msg.Width
		for _, f := range a.fields {
			f.SetWidth(msg.Width)
		}
		return a, nil

	case reportMsg:
		report := msg.report
		a.report = &report
		a.phase = phaseDone
		return a, nil

	case spinner.TickMsg:
		if a.phase != phaseSubmitting {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// ctrl+c always quits, even mid-run
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	switch a.phase {
	case phaseSubmitting:
		return a, nil

	case phaseDone:
		switch {
		case key.Matches(msg, a.keys.Again):
			return a, a.reset()
		case key.Matches(msg, a.keys.Quit):
			return a, tea.Quit
		}
		return a, nil
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, a.keys.Submit):
		return a, a.submit()
	case msg.Type == tea.KeyEnter && a.focus == len(a.fields)-1:
		return a, a.submit()
	case key.Matches(msg, a.keys.Next):
		return a, a.moveFocus(1)
	case key.Matches(msg, a.keys.Prev):
		return a, a.moveFocus(-1)
	}

	var cmd tea.Cmd
	a.fields[a.focus], cmd = a.fields[a.focus].Update(msg)
	return a, cmd
}

func (a *App) moveFocus(delta int) tea.Cmd {
	a.fields[a.focus].Blur()
	a.focus = (a.focus + delta + len(a.fields)) % len(a.fields)
	return a.fields[a.focus].Focus()
}

func (a *App) submit() tea.Cmd {
	a.phase = phaseSubmitting
	raw := a.Submission()
	ctx := a.ctx
	processor := a.ports.Submissions

	run := func() tea.Msg {
		return reportMsg{report: processor.ProcessSubmission(ctx, raw)}
	}
	return tea.Batch(run, a.spinner.Tick)
}

func (a *App) reset() tea.Cmd {
	for _, f := range a.fields {
		f.Reset()
		f.Blur()
	}
	a.report = nil
	a.phase = phaseEditing
	a.focus = fieldName
	return a.fields[fieldName].Focus()
}

// View implements tea.Model.
func (a *App) View() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("docrelay · new submission"))
	b.WriteString("\n")

	switch a.phase {
	case phaseSubmitting:
		fmt.Fprintf(&b, "%s Processing submission...\n", a.spinner.View())
		return b.String()

	case phaseDone:
		b.WriteString(a.styles.Panel.Render(a.renderReport()))
		b.WriteString("\n")
		b.WriteString(a.styles.Help.Render(a.help.ShortHelpView(a.keys.ResultHelp())))
		return b.String()
	}

	for _, f := range a.fields {
		b.WriteString(f.View())
		b.WriteString("\n")
	}
	b.WriteString(a.styles.Help.Render(a.help.ShortHelpView(a.keys.FormHelp())))
	return b.String()
}

func (a *App) renderReport() string {
	r := a.report
	var b strings.Builder
	if r.Success {
		b.WriteString(a.styles.Success.Render(r.Message))
	} else {
		b.WriteString(a.styles.Error.Render(r.Message))
	}
	if r.RunID != "" {
		b.WriteString("\n")
		b.WriteString(a.styles.Muted.Render("Run ID: " + r.RunID))
	}
	return b.String()
}

// Submission returns the form's current values.
func (a *App) Submission() domain.RawSubmission {
	return domain.RawSubmission{
		Name:           a.fields[fieldName].Value(),
		Email:          a.fields[fieldEmail].Value(),
		Address:        a.fields[fieldAddress].Value(),
		RecipientEmail: a.fields[fieldRecipient].Value(),
	}
}

// Report returns the last run's report, or nil if none finished.
func (a *App) Report() *domain.SubmissionReport {
	return a.report
}

// Focused returns the index of the focused field.
func (a *App) Focused() int {
	return a.focus
}

// Submitting returns true while a run is in flight.
func (a *App) Submitting() bool {
	return a.phase == phaseSubmitting
}
