package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// homeKeyMap defines key bindings for the home menu
type homeKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k homeKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k homeKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down, k.Select, k.Quit}}
}

// menuEntry is one line of the home menu
type menuEntry struct {
	Title  string
	Detail string
	Screen Screen // empty quits
}

// HomeModel is the landing menu
type HomeModel struct {
	Entries []menuEntry
	Cursor  int

	// Notice is a one-line status such as the backend just connected
	Notice string

	Width  int
	Height int
	Help   help.Model
	Keys   homeKeyMap
}

// NewHomeModel builds the menu; the discovery entry is only offered when
// the app can switch backends
func NewHomeModel(canDiscover bool) HomeModel {
	entries := []menuEntry{
		{"Create an automation", "Describe a task, review the workflow, download a Python script", ScreenWizard},
		{"Create a cloud automation", "Monitor a page on a schedule and get Discord alerts", ScreenCloudForm},
		{"Cloud automations", "Pause, resume or delete what runs in the cloud", ScreenHosted},
		{"My automations", "Scripts generated earlier", ScreenAutomations},
	}
	if canDiscover {
		entries = append(entries, menuEntry{"Find a local backend", "Browse the network for sandbox and self-hosted backends", ScreenDiscovery})
	}
	entries = append(entries, menuEntry{"Quit", "", ""})

	return HomeModel{
		Entries: entries,
		Help:    help.New(),
		Keys: homeKeyMap{
			Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
			Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
			Select: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "select")),
			Quit:   key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "quit")),
		},
	}
}

// Init satisfies tea.Model
func (m HomeModel) Init() tea.Cmd {
	return nil
}

// Update moves the cursor and opens the chosen screen
func (m HomeModel) Update(msg tea.Msg) (HomeModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.Keys.Quit):
		return m, tea.Quit
	case key.Matches(keyMsg, m.Keys.Up):
		if m.Cursor > 0 {
			m.Cursor--
		}
	case key.Matches(keyMsg, m.Keys.Down):
		if m.Cursor < len(m.Entries)-1 {
			m.Cursor++
		}
	case key.Matches(keyMsg, m.Keys.Select):
		entry := m.Entries[m.Cursor]
		if entry.Screen == "" {
			return m, tea.Quit
		}
		m.Notice = ""
		return m, transition(entry.Screen, nil)
	}
	return m, nil
}

// View renders the menu
func (m HomeModel) View() string {
	var b strings.Builder

	b.WriteString(RenderTitle("What would you like to do?"))
	b.WriteString("\n")
	for i, entry := range m.Entries {
		b.WriteString(RenderMenuItem(entry.Title, i == m.Cursor))
		b.WriteString("\n")
		if entry.Detail != "" {
			b.WriteString(MenuItemStyle.Render(RenderSubtitle("  " + entry.Detail)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	if m.Notice != "" {
		b.WriteString(RenderSuccess(m.Notice))
		b.WriteString("\n")
	}

	return RenderApplicationContainer(b.String(), m.Help.View(m.Keys), m.Width, m.Height)
}
