package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/agenticauto/autobuilder/internal/api"
	"github.com/agenticauto/autobuilder/internal/automation"
	"github.com/agenticauto/autobuilder/internal/logging"
)

// automationsKeyMap defines key bindings for the download-mode list
type automationsKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	View    key.Binding
	Delete  key.Binding
	New     key.Binding
	Refresh key.Binding
	Back    key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k automationsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.View, k.Delete, k.New, k.Refresh, k.Back}
}

// FullHelp returns keybindings for the expanded help view
func (k automationsKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.View},
		{k.Delete, k.New, k.Refresh, k.Back},
	}
}

// AutomationsModel lists automations created through the wizard
type AutomationsModel struct {
	Items      []automation.Automation
	Cursor     int
	Loading    bool
	Confirming bool
	Busy       bool
	Err        string

	Spinner     spinner.Model
	Width       int
	Height      int
	Help        help.Model
	Keys        automationsKeyMap
	ConfirmKeys confirmKeyMap

	svc *Services
}

// NewAutomationsModel prepares the list; Init starts the fetch
func NewAutomationsModel(svc *Services) AutomationsModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	return AutomationsModel{
		Loading:     true,
		Spinner:     s,
		Help:        help.New(),
		ConfirmKeys: newConfirmKeys(),
		svc:         svc,
		Keys: automationsKeyMap{
			Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
			Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
			View:    key.NewBinding(key.WithKeys("enter", "v"), key.WithHelp("enter", "view code")),
			Delete:  key.NewBinding(key.WithKeys("d", "x"), key.WithHelp("d", "delete")),
			New:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
			Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
			Back:    key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("esc", "back")),
		},
	}
}

// Init fetches the list
func (m AutomationsModel) Init() tea.Cmd {
	return tea.Batch(loadAutomationsCmd(m.svc), m.Spinner.Tick)
}

func (m AutomationsModel) selected() (automation.Automation, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Items) {
		return automation.Automation{}, false
	}
	return m.Items[m.Cursor], true
}

// Update handles list input and backend results
func (m AutomationsModel) Update(msg tea.Msg) (AutomationsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.Loading && !m.Busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case automationsLoadedMsg:
		m.Loading = false
		m.Items = msg.items
		if msg.err != nil {
			logging.Warn("Failed to load automations", zap.Error(msg.err))
			m.Items = nil
		}
		if m.Cursor >= len(m.Items) {
			m.Cursor = max(len(m.Items)-1, 0)
		}
		return m, nil

	case automationFetchedMsg:
		m.Busy = false
		if msg.err != nil {
			m.Err = api.Message(msg.err)
			return m, nil
		}
		return m, transition(ScreenCodeViewer, msg.automation)

	case automationDeletedMsg:
		m.Busy = false
		if msg.err != nil {
			m.Err = api.MessageOr(msg.err, "Failed to delete automation")
			logging.Warn("Automation delete failed", zap.String("id", msg.id), zap.Error(msg.err))
		}
		m.Loading = true
		return m, tea.Batch(loadAutomationsCmd(m.svc), m.Spinner.Tick)

	case tea.KeyMsg:
		if m.Confirming {
			switch {
			case key.Matches(msg, m.ConfirmKeys.Yes):
				m.Confirming = false
				if item, ok := m.selected(); ok {
					m.Busy = true
					m.Err = ""
					return m, tea.Batch(deleteAutomationCmd(m.svc, item.ID), m.Spinner.Tick)
				}
			case key.Matches(msg, m.ConfirmKeys.No):
				m.Confirming = false
			}
			return m, nil
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m AutomationsModel) updateKeys(msg tea.KeyMsg) (AutomationsModel, tea.Cmd) {
	if m.Busy {
		if key.Matches(msg, m.Keys.Back) {
			return m, goBack
		}
		return m, nil
	}
	switch {
	case key.Matches(msg, m.Keys.Back):
		return m, goBack
	case key.Matches(msg, m.Keys.Up):
		if m.Cursor > 0 {
			m.Cursor--
		}
	case key.Matches(msg, m.Keys.Down):
		if m.Cursor < len(m.Items)-1 {
			m.Cursor++
		}
	case key.Matches(msg, m.Keys.New):
		return m, transition(ScreenWizard, nil)
	case key.Matches(msg, m.Keys.Refresh):
		m.Loading = true
		m.Err = ""
		return m, tea.Batch(loadAutomationsCmd(m.svc), m.Spinner.Tick)
	case key.Matches(msg, m.Keys.View):
		item, ok := m.selected()
		if !ok {
			return m, nil
		}
		if item.WorkflowCode != "" {
			return m, transition(ScreenCodeViewer, &item)
		}
		m.Busy = true
		return m, tea.Batch(fetchAutomationCmd(m.svc, item.ID), m.Spinner.Tick)
	case key.Matches(msg, m.Keys.Delete):
		if _, ok := m.selected(); ok {
			m.Confirming = true
		}
	}
	return m, nil
}

// View renders the list
func (m AutomationsModel) View() string {
	helpText := m.Help.View(m.Keys)
	if m.Confirming {
		helpText = m.Help.View(m.ConfirmKeys)
	}
	return RenderApplicationContainer(m.buildContent(), helpText, m.Width, m.Height)
}

func (m AutomationsModel) buildContent() string {
	var b strings.Builder
	b.WriteString(RenderTitle("Your automations"))
	b.WriteString("\n")

	if m.Loading && m.Items == nil {
		b.WriteString(SpinnerStyle.Render("  " + m.Spinner.View() + " Loading automations..."))
		b.WriteString("\n")
		return b.String()
	}

	if len(m.Items) == 0 {
		b.WriteString(RenderInfo("No automations yet.\n\nPress n to describe one and download the generated script."))
		b.WriteString("\n")
	}

	subtle := lipgloss.NewStyle().Foreground(SubtleColor)
	width := ContentWidth(m.Width) - 6
	if width < 30 {
		width = 30
	}
	for i, item := range m.Items {
		selected := i == m.Cursor
		name := lipgloss.NewStyle().Bold(true).Render(item.Name)
		if selected {
			name = SelectedListItemStyle.Render("→ " + item.Name)
		}
		var c strings.Builder
		c.WriteString(name + "  " + renderStatus(item.Status))
		c.WriteString("\n")
		c.WriteString(RenderTypeTag(item.Type))
		if !item.CreatedAt.IsZero() {
			c.WriteString(subtle.Render(" · created " + item.CreatedAt.Local().Format("2 Jan 2006 15:04")))
		}
		if item.Description != "" {
			c.WriteString("\n")
			c.WriteString(item.Description)
		}
		b.WriteString(CardStyle(width, selected).Render(c.String()))
		b.WriteString("\n")
	}

	if m.Confirming {
		if item, ok := m.selected(); ok {
			b.WriteString("\n")
			b.WriteString(WarningBoxStyle.Render(fmt.Sprintf("Delete %q? (y/n)", item.Name)))
			b.WriteString("\n")
		}
	}
	if m.Busy {
		b.WriteString(SpinnerStyle.Render("  " + m.Spinner.View() + " Working..."))
		b.WriteString("\n")
	}
	if m.Err != "" {
		b.WriteString(RenderError(m.Err))
		b.WriteString("\n")
	}
	return b.String()
}

// renderStatus colours an automation status
func renderStatus(status automation.Status) string {
	color := SubtleColor
	switch status {
	case automation.StatusActive, automation.StatusCompleted:
		color = SecondaryColor
	case automation.StatusPaused:
		color = WarningColor
	case automation.StatusFailed:
		color = ErrorColor
	}
	if status == "" {
		status = "unknown"
	}
	return lipgloss.NewStyle().Foreground(color).Render(string(status))
}
