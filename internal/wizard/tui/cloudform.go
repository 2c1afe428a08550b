package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/agenticauto/autobuilder/internal/api"
	"github.com/agenticauto/autobuilder/internal/automation"
	"github.com/agenticauto/autobuilder/internal/logging"
	"github.com/agenticauto/autobuilder/internal/urls"
)

// RedirectDelay is how long the success panel stays before the hosted list opens
const RedirectDelay = 2 * time.Second

// EmailPlaceholder is shown in the email field until email delivery ships
const EmailPlaceholder = "Coming soon - Discord only for now"

// redirectMsg fires RedirectDelay after a successful create
type redirectMsg struct{}

// Focusable rows of the cloud form, top to bottom. The email field is
// rendered between discord and submit but never takes focus.
const (
	cloudRowType = iota
	cloudRowName
	cloudRowURL
	cloudRowSelector
	cloudRowInterval
	cloudRowDiscord
	cloudRowSubmit
	cloudRows
)

// cloudFormKeyMap defines key bindings for the cloud form
type cloudFormKeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Choose key.Binding
	Submit key.Binding
	Back   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k cloudFormKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Choose, k.Submit, k.Back}
}

// FullHelp returns keybindings for the expanded help view
func (k cloudFormKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Next, k.Prev, k.Choose}, {k.Submit, k.Back}}
}

// CloudFormModel creates a hosted automation. It posts straight to the
// backend and, on success, opens the hosted list after RedirectDelay.
type CloudFormModel struct {
	TypeSelect     selector
	IntervalSelect selector
	Name           textinput.Model
	URL            textinput.Model
	Selector       textinput.Model
	Discord        textinput.Model
	Email          textinput.Model

	Focus  int
	Errors automation.FieldErrors

	// Submitting is set while the create request is in flight
	Submitting bool

	// Err is the backend detail of the last failed create
	Err string

	// Created is the new record once the backend accepted it
	Created *automation.HostedAutomation

	Spinner spinner.Model
	Width   int
	Height  int
	Help    help.Model
	Keys    cloudFormKeyMap

	svc *Services
}

// NewCloudFormModel returns an empty form with the default interval
func NewCloudFormModel(svc *Services) CloudFormModel {
	newInput := func(placeholder string, limit int) textinput.Model {
		in := textinput.New()
		in.Placeholder = placeholder
		in.CharLimit = limit
		in.Width = 56
		in.Prompt = ""
		return in
	}

	typeOpts := make([]option, 0, 3)
	for _, t := range automation.CloudTypes() {
		typeOpts = append(typeOpts, option{Label: t.Label(), Value: string(t)})
	}
	typeOpts = append(typeOpts, option{Label: "More coming soon", Disabled: true})

	email := newInput(EmailPlaceholder, 254)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	m := CloudFormModel{
		TypeSelect:     newSelector(typeOpts, string(automation.WebsiteMonitor)),
		IntervalSelect: newIntervalSelector(automation.DefaultIntervalMinutes),
		Name:           newInput("My website monitor", 100),
		URL:            newInput("https://example.com", 2048),
		Selector:       newInput(automation.DefaultCSSSelector, 512),
		Discord:        newInput("https://discord.com/api/webhooks/...", 2048),
		Email:          email,
		Spinner:        s,
		Help:           help.New(),
		svc:            svc,
		Keys: cloudFormKeyMap{
			Next:   key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab/↓", "next")),
			Prev:   key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab/↑", "previous")),
			Choose: key.NewBinding(key.WithKeys("left", "right"), key.WithHelp("←/→", "choose")),
			Submit: key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "create")),
			Back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		},
	}
	m.setFocus(cloudRowType)
	return m
}

// Init satisfies tea.Model
func (m CloudFormModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *CloudFormModel) inputFor(row int) *textinput.Model {
	switch row {
	case cloudRowName:
		return &m.Name
	case cloudRowURL:
		return &m.URL
	case cloudRowSelector:
		return &m.Selector
	case cloudRowDiscord:
		return &m.Discord
	}
	return nil
}

// errorKeyFor maps a row to the validation key reported for it
func errorKeyFor(row int) string {
	switch row {
	case cloudRowType:
		return "automation_type"
	case cloudRowName:
		return "name"
	case cloudRowURL:
		return automation.FieldURL
	case cloudRowInterval:
		return "interval_minutes"
	case cloudRowDiscord:
		return "discord_webhook"
	}
	return ""
}

func (m *CloudFormModel) setFocus(row int) {
	m.Focus = ((row % cloudRows) + cloudRows) % cloudRows
	for _, r := range []int{cloudRowName, cloudRowURL, cloudRowSelector, cloudRowDiscord} {
		in := m.inputFor(r)
		if r == m.Focus {
			in.Focus()
		} else {
			in.Blur()
		}
	}
}

// Request builds the create request from the current input
func (m CloudFormModel) Request() automation.HostedCreateRequest {
	interval, _ := strconv.Atoi(m.IntervalSelect.Value())
	return automation.HostedCreateRequest{
		AutomationType:  automation.Type(m.TypeSelect.Value()),
		Name:            m.Name.Value(),
		IntervalMinutes: interval,
		Config: automation.HostedConfig{
			URL:            m.URL.Value(),
			DiscordWebhook: m.Discord.Value(),
			Email:          m.Email.Value(),
			CSSSelector:    m.Selector.Value(),
		},
	}
}

// CanSubmit reports whether the create button is enabled
func (m CloudFormModel) CanSubmit() bool {
	return !m.Submitting && m.Created == nil
}

// Submit validates and posts the form
func (m CloudFormModel) Submit() (CloudFormModel, tea.Cmd) {
	if !m.CanSubmit() {
		return m, nil
	}
	req := m.Request()
	m.Errors = automation.ValidateHostedRequest(req)
	if m.Errors != nil {
		return m, nil
	}
	m.Err = ""
	m.Submitting = true
	logging.Debug("Creating hosted automation",
		zap.String("type", string(req.AutomationType)),
		zap.Int("interval_minutes", req.IntervalMinutes),
	)
	return m, tea.Batch(createHostedCmd(m.svc, req), m.Spinner.Tick)
}

// Update handles form input and the create result
func (m CloudFormModel) Update(msg tea.Msg) (CloudFormModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.Submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case cloudCreatedMsg:
		m.Submitting = false
		if msg.err != nil {
			m.Err = api.Message(msg.err)
			logging.Warn("Hosted automation create failed", zap.Error(msg.err))
			return m, nil
		}
		m.Created = msg.record
		if m.Created == nil {
			m.Created = &automation.HostedAutomation{Name: strings.TrimSpace(m.Name.Value())}
		}
		return m, tea.Tick(RedirectDelay, func(time.Time) tea.Msg { return redirectMsg{} })

	case redirectMsg:
		return m, transition(ScreenHosted, nil)

	case tea.KeyMsg:
		if key.Matches(msg, m.Keys.Back) {
			return m, goBack
		}
		if m.Created != nil || m.Submitting {
			return m, nil
		}
		return m.updateKeys(msg)
	}

	if in := m.inputFor(m.Focus); in != nil {
		var cmd tea.Cmd
		*in, cmd = in.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m CloudFormModel) updateKeys(msg tea.KeyMsg) (CloudFormModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Submit):
		return m.Submit()
	case key.Matches(msg, m.Keys.Next):
		m.setFocus(m.Focus + 1)
		return m, nil
	case key.Matches(msg, m.Keys.Prev):
		m.setFocus(m.Focus - 1)
		return m, nil
	case msg.String() == "enter":
		if m.Focus == cloudRowSubmit {
			return m.Submit()
		}
		m.setFocus(m.Focus + 1)
		return m, nil
	}

	switch m.Focus {
	case cloudRowType, cloudRowInterval:
		sel := &m.TypeSelect
		if m.Focus == cloudRowInterval {
			sel = &m.IntervalSelect
		}
		switch msg.String() {
		case "left", "h":
			sel.Prev()
		case "right", "l", " ":
			sel.Next()
		}
		return m, nil
	case cloudRowSubmit:
		return m, nil
	}

	in := m.inputFor(m.Focus)
	before := in.Value()
	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	if in.Value() != before {
		delete(m.Errors, errorKeyFor(m.Focus))
		if m.Focus == cloudRowDiscord {
			delete(m.Errors, "notifications")
		}
	}
	return m, cmd
}

// View renders the form, or the success panel once created
func (m CloudFormModel) View() string {
	var content string
	if m.Created != nil {
		content = m.buildSuccess()
	} else {
		content = m.buildForm()
	}
	return RenderApplicationContainer(content, m.Help.View(m.Keys), m.Width, m.Height)
}

func (m CloudFormModel) buildSuccess() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(RenderSuccess(fmt.Sprintf("Automation %q created!", m.Created.Name)))
	b.WriteString("\n\n")
	b.WriteString(RenderSubtitle("  It runs in the cloud from now on. Opening your automations..."))
	b.WriteString("\n")
	return b.String()
}

func (m CloudFormModel) buildForm() string {
	var b strings.Builder

	b.WriteString(RenderTitle("New cloud automation"))
	b.WriteString("\n")
	b.WriteString(RenderSubtitle("Runs on our servers and notifies you when something changes."))
	b.WriteString("\n\n")

	label := func(row int, text string) string {
		if m.Focus == row {
			return FocusedInputStyle.Render("→ " + text)
		}
		return lipgloss.NewStyle().Bold(true).Render("  " + text)
	}
	box := func(row int, view string) string {
		style := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(SubtleColor).
			Padding(0, 1)
		if m.Focus == row {
			style = style.BorderForeground(PrimaryColor)
		}
		return style.Render(view)
	}
	fieldErr := func(name string) {
		if msg := m.Errors[name]; msg != "" {
			b.WriteString(RenderFieldError(msg))
			b.WriteString("\n")
		}
	}

	b.WriteString(label(cloudRowType, "Automation type"))
	b.WriteString("\n")
	b.WriteString(m.TypeSelect.View(m.Focus == cloudRowType))
	b.WriteString("\n")
	fieldErr("automation_type")
	b.WriteString("\n")

	for _, f := range []struct {
		row   int
		text  string
		input textinput.Model
		err   string
	}{
		{cloudRowName, "Name *", m.Name, "name"},
		{cloudRowURL, "URL to monitor *", m.URL, automation.FieldURL},
		{cloudRowSelector, "CSS selector (optional)", m.Selector, automation.FieldCSSSelector},
	} {
		b.WriteString(label(f.row, f.text))
		b.WriteString("\n")
		b.WriteString(box(f.row, f.input.View()))
		b.WriteString("\n")
		fieldErr(f.err)
	}
	b.WriteString("\n")

	b.WriteString(label(cloudRowInterval, "Check every"))
	b.WriteString("\n")
	b.WriteString(m.IntervalSelect.View(m.Focus == cloudRowInterval))
	b.WriteString("\n\n")
	fieldErr("interval_minutes")

	b.WriteString(lipgloss.NewStyle().Bold(true).Render("  Notifications"))
	b.WriteString("\n")
	b.WriteString(label(cloudRowDiscord, "Discord webhook"))
	b.WriteString("\n")
	b.WriteString(box(cloudRowDiscord, m.Discord.View()))
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("  How to create a webhook: " + urls.DiscordWebhookHelp))
	b.WriteString("\n")
	fieldErr("discord_webhook")

	b.WriteString(DisabledStyle.Render("  Email"))
	b.WriteString("\n")
	b.WriteString(DisabledStyle.Render("  " + EmailPlaceholder))
	b.WriteString("\n")
	fieldErr("notifications")
	b.WriteString("\n")

	button := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderColor).
		Padding(0, 2)
	text := "Create automation"
	switch {
	case m.Submitting:
		button = button.Foreground(SubtleColor).BorderForeground(SubtleColor)
		text = m.Spinner.View() + " Creating..."
	case m.Focus == cloudRowSubmit:
		button = button.BorderForeground(HighlightColor).Foreground(HighlightColor).Bold(true)
	}
	b.WriteString(lipgloss.NewStyle().MarginLeft(2).Render(button.Render(text)))
	b.WriteString("\n")

	if m.Err != "" {
		b.WriteString("\n")
		b.WriteString(RenderError(m.Err))
		b.WriteString("\n")
	}
	return b.String()
}
