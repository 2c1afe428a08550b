package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/agenticauto/autobuilder/internal/automation"
)

// configFormKeyMap defines key bindings for the configuration form
type configFormKeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k configFormKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Submit}
}

// FullHelp returns keybindings for the expanded help view
func (k configFormKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Next, k.Prev, k.Submit}}
}

func newConfigFormKeys() configFormKeyMap {
	return configFormKeyMap{
		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab/↓", "next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab/↑", "previous"),
		),
		Submit: key.NewBinding(
			key.WithKeys("ctrl+s", "enter"),
			key.WithHelp("enter", "generate"),
		),
	}
}

// ConfigForm collects the configuration of one automation type. It renders
// exactly the fields of that type plus an interval picker, validates all of
// them in one pass on submit and hands a valid config to OnSubmit. The form
// itself never talks to the backend.
type ConfigForm struct {
	Type     automation.Type
	Fields   []automation.Field
	Inputs   []textinput.Model
	Interval selector
	Errors   automation.FieldErrors

	// OnSubmit receives a valid config and the chosen interval
	OnSubmit func(cfg automation.Config, intervalMinutes int) tea.Cmd

	// Disabled blocks submission while a request is in flight
	Disabled bool

	focus int
	keys  configFormKeyMap
	width int
}

// NewConfigForm builds a form for t
func NewConfigForm(t automation.Type, onSubmit func(automation.Config, int) tea.Cmd) ConfigForm {
	fields := t.Fields()
	inputs := make([]textinput.Model, len(fields))
	for i, f := range fields {
		in := textinput.New()
		in.Placeholder = f.Placeholder
		in.CharLimit = 2048
		in.Width = 56
		in.Prompt = ""
		inputs[i] = in
	}

	f := ConfigForm{
		Type:     t,
		Fields:   fields,
		Inputs:   inputs,
		Interval: newIntervalSelector(automation.DefaultIntervalMinutes),
		OnSubmit: onSubmit,
		keys:     newConfigFormKeys(),
	}
	f.setFocus(0)
	return f
}

func newIntervalSelector(minutes int) selector {
	opts := automation.IntervalOptions()
	out := make([]option, len(opts))
	for i, o := range opts {
		out[i] = option{Label: o.Label, Value: strconv.Itoa(o.Minutes)}
	}
	return newSelector(out, strconv.Itoa(minutes))
}

// rows is the number of focusable rows: every field plus the interval
func (f ConfigForm) rows() int { return len(f.Inputs) + 1 }

func (f ConfigForm) onInterval() bool { return f.focus == len(f.Inputs) }

func (f *ConfigForm) setFocus(i int) {
	n := f.rows()
	f.focus = ((i % n) + n) % n
	for j := range f.Inputs {
		if j == f.focus {
			f.Inputs[j].Focus()
		} else {
			f.Inputs[j].Blur()
		}
	}
}

// Focused returns the name of the focused field, "interval" for the picker
func (f ConfigForm) Focused() string {
	if f.onInterval() {
		return "interval"
	}
	return f.Fields[f.focus].Name
}

// SetValue fills a field by name
func (f *ConfigForm) SetValue(name, value string) {
	for i, field := range f.Fields {
		if field.Name == name {
			f.Inputs[i].SetValue(value)
		}
	}
}

// SetInterval selects an interval by minutes
func (f *ConfigForm) SetInterval(minutes int) {
	f.Interval.Select(strconv.Itoa(minutes))
}

// Values returns the current input as a config
func (f ConfigForm) Values() automation.Config {
	cfg := automation.Config{}
	for i, field := range f.Fields {
		cfg[field.Name] = f.Inputs[i].Value()
	}
	return cfg
}

// IntervalMinutes returns the selected interval
func (f ConfigForm) IntervalMinutes() int {
	n, err := strconv.Atoi(f.Interval.Value())
	if err != nil {
		return automation.DefaultIntervalMinutes
	}
	return n
}

// Submit validates the form and, when valid, returns the OnSubmit command.
// Invalid fields keep their messages until edited.
func (f ConfigForm) Submit() (ConfigForm, tea.Cmd) {
	if f.Disabled {
		return f, nil
	}
	cfg := f.Values()
	f.Errors = automation.ValidateConfig(f.Type, cfg)
	if f.Errors != nil {
		// focus the first invalid field in display order
		for i, field := range f.Fields {
			if f.Errors.Has(field.Name) {
				f.setFocus(i)
				break
			}
		}
		return f, nil
	}
	if f.OnSubmit == nil {
		return f, nil
	}
	return f, f.OnSubmit(cfg, f.IntervalMinutes())
}

// Update handles navigation, editing and submission
func (f ConfigForm) Update(msg tea.Msg) (ConfigForm, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if f.onInterval() {
			return f, nil
		}
		var cmd tea.Cmd
		f.Inputs[f.focus], cmd = f.Inputs[f.focus].Update(msg)
		return f, cmd
	}

	switch {
	case key.Matches(keyMsg, f.keys.Submit):
		// enter advances through the fields and submits from the last row
		if keyMsg.String() == "enter" && f.focus < f.rows()-1 {
			f.setFocus(f.focus + 1)
			return f, nil
		}
		return f.Submit()
	case key.Matches(keyMsg, f.keys.Next):
		f.setFocus(f.focus + 1)
		return f, nil
	case key.Matches(keyMsg, f.keys.Prev):
		f.setFocus(f.focus - 1)
		return f, nil
	}

	if f.onInterval() {
		switch keyMsg.String() {
		case "left", "h":
			f.Interval.Prev()
		case "right", "l", " ":
			f.Interval.Next()
		}
		return f, nil
	}

	before := f.Inputs[f.focus].Value()
	var cmd tea.Cmd
	f.Inputs[f.focus], cmd = f.Inputs[f.focus].Update(msg)
	if f.Inputs[f.focus].Value() != before {
		delete(f.Errors, f.Fields[f.focus].Name)
	}
	return f, cmd
}

// SetWidth sets the render width
func (f *ConfigForm) SetWidth(w int) {
	f.width = w
	inputWidth := w - 10
	if inputWidth < 20 {
		inputWidth = 20
	}
	for i := range f.Inputs {
		f.Inputs[i].Width = inputWidth
	}
}

// View renders the fields with their errors beside them
func (f ConfigForm) View() string {
	var b strings.Builder

	labelStyle := lipgloss.NewStyle().Bold(true)
	focusedLabel := FocusedInputStyle
	helpStyle := lipgloss.NewStyle().Foreground(SubtleColor)
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(SubtleColor).
		Padding(0, 1)

	for i, field := range f.Fields {
		label := field.Label
		if field.Required {
			label += " *"
		}
		focused := i == f.focus
		if focused {
			b.WriteString(focusedLabel.Render("→ " + label))
			b.WriteString("\n")
			b.WriteString(box.BorderForeground(PrimaryColor).Render(f.Inputs[i].View()))
		} else {
			b.WriteString(labelStyle.Render("  " + label))
			b.WriteString("\n")
			b.WriteString(box.Render(f.Inputs[i].View()))
		}
		b.WriteString("\n")
		if msg := f.Errors[field.Name]; msg != "" {
			b.WriteString(RenderFieldError(msg))
			b.WriteString("\n")
		} else if field.Help != "" {
			b.WriteString(helpStyle.Render("  " + field.Help))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if f.onInterval() {
		b.WriteString(focusedLabel.Render("→ Check interval"))
	} else {
		b.WriteString(labelStyle.Render("  Check interval"))
	}
	b.WriteString("\n")
	b.WriteString(f.Interval.View(f.onInterval()))
	b.WriteString("\n")

	for _, name := range f.Errors.Fields() {
		if _, ok := f.Type.Field(name); !ok {
			b.WriteString(RenderFieldError(fmt.Sprintf("%s: %s", name, f.Errors[name])))
			b.WriteString("\n")
		}
	}

	return b.String()
}
