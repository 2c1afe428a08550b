package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/agenticauto/autobuilder/internal/automation"
	"github.com/agenticauto/autobuilder/internal/discovery"
	"github.com/agenticauto/autobuilder/internal/urls"
)

// ScanDuration is how long the discovery screen browses for backends
const ScanDuration = 3 * time.Second

// discoveryKeyMap defines key bindings for the discovery screen
type discoveryKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Enter   key.Binding
	Rescan  key.Binding
	Manual  key.Binding
	Quit    key.Binding
	Confirm key.Binding // For manual mode
	Cancel  key.Binding // For manual mode
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k discoveryKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Rescan, k.Manual, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k discoveryKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter},
		{k.Rescan, k.Manual, k.Quit},
	}
}

// manualModeKeyMap defines key bindings for manual URL entry mode
type manualModeKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (m manualModeKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{m.Confirm, m.Cancel}
}

// FullHelp returns keybindings for the expanded help view
func (m manualModeKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.Confirm, m.Cancel},
	}
}

// scanningKeyMap defines key bindings for scanning mode
type scanningKeyMap struct {
	Manual key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (s scanningKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{s.Manual, s.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (s scanningKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{s.Manual, s.Quit},
	}
}

// emptyScreenKeyMap defines key bindings for empty results screen
type emptyScreenKeyMap struct {
	Rescan key.Binding
	Manual key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (e emptyScreenKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{e.Rescan, e.Manual, e.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (e emptyScreenKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{e.Rescan, e.Manual, e.Quit},
	}
}

// backendItem wraps a Backend for use with bubbles/list
type backendItem struct {
	backend *discovery.Backend
	manual  bool
}

// Implement list.Item interface
func (b backendItem) FilterValue() string {
	return b.backend.Instance + " " + b.backend.Hostname + " " + b.URL()
}

// Title returns the backend name for list display
func (b backendItem) Title() string {
	if b.manual {
		return "Manual: " + b.backend.Instance
	}
	return b.backend.Instance
}

// Description returns backend details for list display
func (b backendItem) Description() string {
	return fmt.Sprintf("%s • Version: %s", b.URL(), b.backend.Version())
}

// URL returns the API base URL of the backend
func (b backendItem) URL() string {
	if b.manual {
		return b.backend.Instance
	}
	return b.backend.BaseURL()
}

// backendDelegate is a custom list delegate for rendering backend cards
type backendDelegate struct {
	width int
}

func (d backendDelegate) Height() int { return 7 } // Card height including borders

func (d backendDelegate) Spacing() int { return 1 } // Spacing between cards

func (d backendDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d backendDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	bi, ok := item.(backendItem)
	if !ok {
		return
	}

	selected := index == m.Index()

	var content strings.Builder

	if selected {
		content.WriteString(SelectedMenuItemStyle.Render("→ " + bi.Title()))
	} else {
		content.WriteString("  " + bi.Title())
	}
	content.WriteString("\n\n")

	content.WriteString(fmt.Sprintf("  URL:     %s\n", bi.URL()))
	if !bi.manual {
		content.WriteString(fmt.Sprintf("  Host:    %s\n", bi.backend.Hostname))
		content.WriteString(fmt.Sprintf("  Version: %s", bi.backend.Version()))
	}

	// Create responsive card style
	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderColor).
		Padding(1, 2).
		MarginLeft(2)

	// Calculate card width (leave room for margins and borders)
	cardWidth := d.width - 6 // 2 for margin-left, 4 for border + padding
	if cardWidth < MinTerminalWidth-6 {
		cardWidth = MinTerminalWidth - 6
	}
	if cardWidth > MaxContentWidth-6 {
		cardWidth = MaxContentWidth - 6
	}

	cardStyle = cardStyle.Width(cardWidth)

	// Highlight selected card
	if selected {
		cardStyle = cardStyle.BorderForeground(HighlightColor)
	}

	fmt.Fprint(w, cardStyle.Render(content.String()))
}

// DiscoveryModel represents the backend discovery screen state
type DiscoveryModel struct {
	// Discovery state
	Scanning    bool
	BackendList list.Model
	Selected    bool
	Err         error

	// Manual URL entry state
	ManualMode bool
	URLInput   textinput.Model
	URLErr     string

	// UI state
	Width         int
	Height        int
	Spinner       spinner.Model
	ProgressBar   progress.Model
	ScanStartTime time.Time
	Help          help.Model
	Keys          discoveryKeyMap
	ManualKeys    manualModeKeyMap
	ScanningKeys  scanningKeyMap
	EmptyKeys     emptyScreenKeyMap

	svc *Services
}

// NewDiscoveryModel creates a new discovery screen model
func NewDiscoveryModel(svc *Services) DiscoveryModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	urlInput := textinput.New()
	urlInput.Placeholder = urls.LocalBackend
	urlInput.CharLimit = 2048
	urlInput.Width = 50

	// Initialize progress bar
	progressBar := progress.New(progress.WithDefaultGradient())
	progressBar.Width = 40

	delegate := backendDelegate{width: MinTerminalWidth}
	backendList := list.New([]list.Item{}, delegate, 0, 0)
	backendList.Title = "Backends on your network"
	backendList.SetShowStatusBar(false)
	backendList.SetFilteringEnabled(true)
	backendList.Styles.Title = TitleStyle

	// Initialize help
	h := help.New()

	// Initialize key bindings for normal mode
	keys := discoveryKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "move down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "connect"),
		),
		Rescan: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rescan"),
		),
		Manual: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "enter URL"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q", "back"),
		),
	}

	// Initialize key bindings for manual entry mode
	manualKeys := manualModeKeyMap{
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}

	// Initialize key bindings for scanning mode
	scanningKeys := scanningKeyMap{
		Manual: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "enter URL"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "back"),
		),
	}

	// Initialize key bindings for empty results
	emptyKeys := emptyScreenKeyMap{
		Rescan: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rescan"),
		),
		Manual: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "enter URL"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "back"),
		),
	}

	return DiscoveryModel{
		Scanning:      true,
		ScanStartTime: time.Now(),
		BackendList:   backendList,
		Selected:      false,
		ManualMode:    false,
		URLInput:      urlInput,
		Spinner:       s,
		ProgressBar:   progressBar,
		Help:          h,
		Keys:          keys,
		ManualKeys:    manualKeys,
		ScanningKeys:  scanningKeys,
		EmptyKeys:     emptyKeys,
		svc:           svc,
	}
}

// Init initializes the discovery model
func (m DiscoveryModel) Init() tea.Cmd {
	// NewDiscoveryModel already marked the scan as started
	return tea.Batch(
		scanBackendsCmd(m.svc),
		m.Spinner.Tick,
	)
}

// Update handles messages and updates the model
func (m DiscoveryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.ManualMode {
			return m.updateManualMode(msg)
		}
		return m.updateNormalMode(msg)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		// Update list size
		m.BackendList.SetWidth(msg.Width - 4)
		m.BackendList.SetHeight(msg.Height - 10) // Leave room for header/footer
		m.BackendList.SetDelegate(backendDelegate{width: msg.Width})

	case backendsFoundMsg:
		m.Scanning = false
		m.Err = msg.err
		items := make([]list.Item, len(msg.backends))
		for i, b := range msg.backends {
			items[i] = backendItem{backend: b}
		}
		m.BackendList.SetItems(items)

	case spinner.TickMsg:
		if !m.Scanning {
			return m, nil
		}
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	// Update list if not in manual mode or scanning
	if !m.ManualMode && !m.Scanning {
		m.BackendList, cmd = m.BackendList.Update(msg)
	}

	return m, cmd
}

// updateNormalMode handles keyboard input in normal backend list mode
func (m DiscoveryModel) updateNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.BackendList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.BackendList, cmd = m.BackendList.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q", "esc":
		return m, goBack

	case "enter", " ":
		if selectedItem := m.BackendList.SelectedItem(); selectedItem != nil {
			m.Selected = true
			return m, nil
		}

	case "r":
		if m.Scanning {
			return m, nil
		}
		m.BackendList.SetItems([]list.Item{})
		m.Err = nil
		m.Scanning = true
		m.ScanStartTime = time.Now()
		return m, tea.Batch(
			scanBackendsCmd(m.svc),
			m.Spinner.Tick,
		)

	case "m":
		m.ManualMode = true
		m.URLErr = ""
		m.URLInput.SetValue("")
		return m, m.URLInput.Focus()
	}

	if m.Scanning {
		return m, nil
	}
	var cmd tea.Cmd
	m.BackendList, cmd = m.BackendList.Update(msg)
	return m, cmd
}

// updateManualMode handles keyboard input in manual URL entry mode
func (m DiscoveryModel) updateManualMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.String() {
	case "esc":
		m.ManualMode = false
		m.URLErr = ""
		m.URLInput.SetValue("")
		m.URLInput.Blur()
		return m, nil

	case "enter":
		value := strings.TrimRight(strings.TrimSpace(m.URLInput.Value()), "/")
		if err := automation.ValidateURL(value); err != nil {
			m.URLErr = err.Error()
			return m, nil
		}
		backend := &discovery.Backend{
			Instance:     value,
			Hostname:     value,
			DiscoveredAt: time.Now(),
		}
		items := append([]list.Item{backendItem{backend: backend, manual: true}}, m.BackendList.Items()...)
		m.BackendList.SetItems(items)
		m.BackendList.Select(0)
		m.ManualMode = false
		m.URLErr = ""
		m.URLInput.SetValue("")
		m.URLInput.Blur()
		return m, nil
	}

	m.URLInput, cmd = m.URLInput.Update(msg)
	m.URLErr = ""
	return m, cmd
}

// View renders the discovery screen
func (m DiscoveryModel) View() string {
	width := m.Width
	if width == 0 {
		width = MinTerminalWidth
	}

	var content string
	if m.ManualMode {
		content = m.renderManualEntry()
	} else if m.Scanning {
		content = m.renderScanning(width)
	} else {
		content = m.renderBackendResults()
	}

	// Determine context-sensitive help text using bubbles/help
	var helpText string
	if m.ManualMode {
		helpText = m.Help.View(m.ManualKeys)
	} else if m.Scanning {
		helpText = m.Help.View(m.ScanningKeys)
	} else if len(m.BackendList.Items()) > 0 {
		helpText = m.Help.View(m.Keys)
	} else {
		helpText = m.Help.View(m.EmptyKeys)
	}

	return RenderApplicationContainer(content, helpText, m.Width, m.Height)
}

// renderScanning renders a centered scanning progress display
func (m DiscoveryModel) renderScanning(width int) string {
	elapsed := time.Since(m.ScanStartTime)
	progressFloat := float64(elapsed) / float64(ScanDuration)
	if progressFloat > 1 {
		progressFloat = 1
	}

	title := fmt.Sprintf("%s SEARCHING FOR BACKENDS", m.Spinner.View())
	subtitle := "Looking for self-hosted and sandbox backends on your network..."

	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		TitleStyle.Render(title),
		"",
		SubtitleStyle.Render(subtitle),
		"",
		m.ProgressBar.ViewAs(progressFloat),
		"",
		SubtitleStyle.Render(fmt.Sprintf("Elapsed: %ds", int(elapsed.Seconds()))),
		"",
	)

	return lipgloss.Place(width, 0, lipgloss.Center, lipgloss.Top, content)
}

// renderBackendResults renders the backend list or "no backends found" message
func (m DiscoveryModel) renderBackendResults() string {
	var b strings.Builder

	b.WriteString("\n")

	hints := func() {
		b.WriteString("  Troubleshooting:\n")
		b.WriteString("    • Start a local backend with 'autobuilder sandbox'\n")
		b.WriteString("    • mDNS does not cross subnets or most VPNs\n")
		b.WriteString("    • Press m to enter a backend URL directly\n")
	}

	if m.Err != nil {
		b.WriteString(RenderError(fmt.Sprintf("Scan failed: %v", m.Err)))
		b.WriteString("\n\n")
		hints()
	} else if len(m.BackendList.Items()) == 0 {
		b.WriteString("  ")
		warningStyle := lipgloss.NewStyle().Foreground(WarningColor).Bold(true)
		b.WriteString(warningStyle.Render("⚠ No backends found on your network"))
		b.WriteString("\n\n")
		hints()
		b.WriteString("\n")
	} else {
		b.WriteString(m.BackendList.View())
	}

	return b.String()
}

// renderManualEntry renders the manual URL entry dialog
func (m DiscoveryModel) renderManualEntry() string {
	var b strings.Builder

	b.WriteString(RenderSubtitle("Enter backend URL"))
	b.WriteString("\n\n")

	b.WriteString("  URL: ")
	b.WriteString(m.URLInput.View())
	b.WriteString("\n")
	if m.URLErr != "" {
		b.WriteString(RenderFieldError(m.URLErr))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	return b.String()
}

// SelectedURL returns the base URL of the chosen backend, or ""
func (m DiscoveryModel) SelectedURL() string {
	if !m.Selected {
		return ""
	}
	if item, ok := m.BackendList.SelectedItem().(backendItem); ok {
		return item.URL()
	}
	return ""
}
