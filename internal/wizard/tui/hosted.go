package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

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

// hostedKeyMap defines key bindings for the hosted automations list
type hostedKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	Delete  key.Binding
	New     key.Binding
	Refresh key.Binding
	Back    key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k hostedKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Toggle, k.Delete, k.New, k.Refresh, k.Back}
}

// FullHelp returns keybindings for the expanded help view
func (k hostedKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Toggle, k.Delete, k.New},
		{k.Refresh, k.Back},
	}
}

// confirmKeyMap defines key bindings for delete confirmation prompts
type confirmKeyMap struct {
	Yes key.Binding
	No  key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k confirmKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Yes, k.No}
}

// FullHelp returns keybindings for the expanded help view
func (k confirmKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Yes, k.No}}
}

func newConfirmKeys() confirmKeyMap {
	return confirmKeyMap{
		Yes: key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "delete")),
		No:  key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n/esc", "keep")),
	}
}

// HostedModel is the cloud automations dashboard. The list is fetched on
// open and fetched again after every toggle, delete or feed event; rows
// are never patched locally.
type HostedModel struct {
	Items   []automation.HostedAutomation
	Stats   automation.Stats
	Cursor  int
	Loading bool

	// Confirming is set while the delete prompt is open
	Confirming bool

	// Busy is set while a toggle or delete is in flight
	Busy bool

	// Err is the detail of the last failed toggle or delete
	Err string

	// Watching is set while the event feed is connected
	Watching bool

	Spinner     spinner.Model
	Width       int
	Height      int
	Help        help.Model
	Keys        hostedKeyMap
	ConfirmKeys confirmKeyMap

	svc    *Services
	ctx    context.Context
	cancel context.CancelFunc
}

// NewHostedModel prepares the dashboard; Init starts the first fetch
func NewHostedModel(svc *Services) HostedModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	ctx, cancel := context.WithCancel(svc.context())
	return HostedModel{
		Loading:     true,
		Stats:       automation.ComputeStats(nil),
		Spinner:     s,
		Help:        help.New(),
		ConfirmKeys: newConfirmKeys(),
		svc:         svc,
		ctx:         ctx,
		cancel:      cancel,
		Keys: hostedKeyMap{
			Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
			Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
			Toggle:  key.NewBinding(key.WithKeys("t", " "), key.WithHelp("t", "pause/resume")),
			Delete:  key.NewBinding(key.WithKeys("d", "x"), key.WithHelp("d", "delete")),
			New:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
			Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
			Back:    key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("esc", "back")),
		},
	}
}

// Init fetches the list and subscribes to the event feed when enabled
func (m HostedModel) Init() tea.Cmd {
	cmds := []tea.Cmd{loadHostedCmd(m.svc), m.Spinner.Tick}
	if m.svc != nil && m.svc.Watch {
		cmds = append(cmds, startWatch(m.ctx, m.svc.Client))
	}
	return tea.Batch(cmds...)
}

// Close stops the event feed subscription
func (m HostedModel) Close() {
	if m.cancel != nil {
		m.cancel()
	}
}

// Selected returns the highlighted automation, if any
func (m HostedModel) Selected() (automation.HostedAutomation, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Items) {
		return automation.HostedAutomation{}, false
	}
	return m.Items[m.Cursor], true
}

// Update handles list input and backend results
func (m HostedModel) Update(msg tea.Msg) (HostedModel, tea.Cmd) {
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

	case hostedLoadedMsg:
		m.Loading = false
		if msg.err != nil {
			// the empty state doubles as the failure view
			logging.Warn("Failed to load hosted automations", zap.Error(msg.err))
			m.Items = nil
		} else {
			m.Items = msg.items
		}
		m.Stats = automation.ComputeStats(m.Items)
		if m.Cursor >= len(m.Items) {
			m.Cursor = len(m.Items) - 1
		}
		if m.Cursor < 0 {
			m.Cursor = 0
		}
		return m, nil

	case hostedMutatedMsg:
		m.Busy = false
		if msg.err != nil {
			m.Err = api.MessageOr(msg.err, fmt.Sprintf("Failed to %s automation", msg.action))
			logging.Warn("Hosted automation update failed",
				zap.String("action", msg.action),
				zap.Int("id", msg.id),
				zap.Error(msg.err),
			)
		}
		return m.refresh()

	case watchEventMsg:
		m.Watching = true
		logging.Debug("Hosted automation changed elsewhere",
			zap.String("event", msg.event.Event),
			zap.Int("id", msg.event.ID),
		)
		next, cmd := m.refresh()
		return next, tea.Batch(cmd, waitForEvent(msg.ch))

	case watchStoppedMsg:
		m.Watching = false
		return m, nil

	case tea.KeyMsg:
		if m.Confirming {
			return m.updateConfirm(msg)
		}
		return m.updateKeys(msg)
	}

	return m, nil
}

func (m HostedModel) refresh() (HostedModel, tea.Cmd) {
	m.Loading = true
	return m, tea.Batch(loadHostedCmd(m.svc), m.Spinner.Tick)
}

func (m HostedModel) updateKeys(msg tea.KeyMsg) (HostedModel, tea.Cmd) {
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
	case key.Matches(msg, m.Keys.Refresh):
		m.Err = ""
		return m.refresh()
	case key.Matches(msg, m.Keys.New):
		if !m.Stats.CanCreate() {
			m.Err = fmt.Sprintf("Free tier limit reached (%d/%d). Delete an automation to add another.", m.Stats.Total, m.Stats.Limit)
			return m, nil
		}
		return m, transition(ScreenCloudForm, nil)
	case key.Matches(msg, m.Keys.Toggle):
		item, ok := m.Selected()
		if !ok || m.Busy {
			return m, nil
		}
		m.Busy = true
		m.Err = ""
		return m, tea.Batch(toggleHostedCmd(m.svc, item.ID), m.Spinner.Tick)
	case key.Matches(msg, m.Keys.Delete):
		if _, ok := m.Selected(); ok && !m.Busy {
			m.Confirming = true
		}
	}
	return m, nil
}

func (m HostedModel) updateConfirm(msg tea.KeyMsg) (HostedModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.ConfirmKeys.Yes):
		m.Confirming = false
		item, ok := m.Selected()
		if !ok {
			return m, nil
		}
		m.Busy = true
		m.Err = ""
		return m, tea.Batch(deleteHostedCmd(m.svc, item.ID), m.Spinner.Tick)
	case key.Matches(msg, m.ConfirmKeys.No):
		m.Confirming = false
	}
	return m, nil
}

// View renders the dashboard
func (m HostedModel) View() string {
	helpText := m.Help.View(m.Keys)
	if m.Confirming {
		helpText = m.Help.View(m.ConfirmKeys)
	}
	return RenderApplicationContainer(m.buildContent(), helpText, m.Width, m.Height)
}

func (m HostedModel) buildContent() string {
	var b strings.Builder

	title := "Cloud automations"
	if m.Watching {
		title += "  " + lipgloss.NewStyle().Foreground(SecondaryColor).Render("● live")
	}
	b.WriteString(RenderTitle(title))
	b.WriteString("\n")
	b.WriteString(m.buildStats())
	b.WriteString("\n\n")

	if m.Loading && m.Items == nil {
		b.WriteString(SpinnerStyle.Render("  " + m.Spinner.View() + " Loading automations..."))
		b.WriteString("\n")
		return b.String()
	}

	if len(m.Items) == 0 {
		b.WriteString(RenderInfo("No cloud automations yet.\n\nPress n to create your first one. It will check a page on a schedule\nand notify you on Discord when something changes."))
		b.WriteString("\n")
	} else {
		now := m.svc.now()
		width := ContentWidth(m.Width)
		for i, item := range m.Items {
			b.WriteString(renderHostedCard(item, i == m.Cursor, width, now))
			b.WriteString("\n")
		}
	}

	if m.Confirming {
		if item, ok := m.Selected(); ok {
			b.WriteString("\n")
			b.WriteString(WarningBoxStyle.Render(fmt.Sprintf("Delete %q? This cannot be undone. (y/n)", item.Name)))
			b.WriteString("\n")
		}
	}
	if m.Busy {
		b.WriteString(SpinnerStyle.Render("  " + m.Spinner.View() + " Updating..."))
		b.WriteString("\n")
	}
	if m.Err != "" {
		b.WriteString(RenderError(m.Err))
		b.WriteString("\n")
	}
	return b.String()
}

func (m HostedModel) buildStats() string {
	stat := func(label, value string) string {
		return lipgloss.NewStyle().Foreground(SubtleColor).Render(label+" ") +
			lipgloss.NewStyle().Bold(true).Render(value)
	}
	parts := []string{
		stat("Active", fmt.Sprintf("%d/%d", m.Stats.Active, m.Stats.Limit)),
		stat("Total", fmt.Sprint(m.Stats.Total)),
		stat("Available", fmt.Sprint(m.Stats.Available())),
	}
	line := "  " + strings.Join(parts, "   ")
	if !m.Stats.CanCreate() {
		line += "   " + DisabledStyle.Render("[n] New (limit reached)")
	} else {
		line += "   " + lipgloss.NewStyle().Foreground(HighlightColor).Render("[n] New")
	}
	return line
}

// renderHostedCard renders one list row
func renderHostedCard(item automation.HostedAutomation, selected bool, width int, now time.Time) string {
	subtle := lipgloss.NewStyle().Foreground(SubtleColor)

	name := lipgloss.NewStyle().Bold(true).Render(item.Name)
	if selected {
		name = SelectedListItemStyle.Render("→ " + item.Name)
	}

	var c strings.Builder
	c.WriteString(name + "  " + RenderBadge(item.IsActive))
	c.WriteString("\n")
	c.WriteString(RenderTypeTag(item.AutomationType) + subtle.Render(" · "+automation.FormatInterval(item.IntervalMinutes)))
	c.WriteString("\n")
	if u := item.URL(); u != "" {
		c.WriteString(u)
		c.WriteString("\n")
	}
	c.WriteString(subtle.Render("Last run: ") + automation.FormatLastRun(item.LastRunTime(), now))
	c.WriteString(subtle.Render("   Next check: ") + automation.FormatNextRun(item, now))

	cardWidth := width - 6
	if cardWidth < 30 {
		cardWidth = 30
	}
	return CardStyle(cardWidth, selected).Render(c.String())
}
