package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/agenticauto/autobuilder/internal/codeview"
	"github.com/agenticauto/autobuilder/internal/logging"
)

// copyRevertMsg restores the copy label for one copy generation
type copyRevertMsg struct {
	gen int
}

// codeViewerKeyMap defines key bindings for the code viewer
type codeViewerKeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Copy      key.Binding
	Download  key.Binding
	Overwrite key.Binding
	Back      key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k codeViewerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Copy, k.Download, k.Back}
}

// FullHelp returns keybindings for the expanded help view
func (k codeViewerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Copy, k.Download, k.Overwrite, k.Back},
	}
}

func newCodeViewerKeys() codeViewerKeyMap {
	return codeViewerKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "copy"),
		),
		Download: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "download "+codeview.FileName),
		),
		Overwrite: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "overwrite"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "q"),
			key.WithHelp("esc", "back"),
		),
	}
}

// CodeViewerModel shows generated code read-only with copy and download
// actions. It is used on its own screen and embedded in the wizard's
// final step.
type CodeViewerModel struct {
	Title     string
	Code      string
	OutputDir string

	Viewport viewport.Model
	Copier   *codeview.Copier

	// Status is the last copy or download outcome
	Status    string
	StatusErr bool

	// SavedPath is set after a successful download
	SavedPath string

	Width  int
	Height int

	Help help.Model
	Keys codeViewerKeyMap
}

// NewCodeViewerModel prepares code for display
func NewCodeViewerModel(title, code, outputDir string, clip codeview.CopyFunc) CodeViewerModel {
	highlighted, err := codeview.Highlight(code, codeview.Options{})
	if err != nil {
		logging.Debug("Highlighting failed, showing plain code", zap.Error(err))
	}

	vp := viewport.New(MinTerminalWidth-8, 16)
	m := CodeViewerModel{
		Title:     title,
		Code:      code,
		OutputDir: outputDir,
		Viewport:  vp,
		Copier:    codeview.NewCopier(clip),
		Help:      help.New(),
		Keys:      newCodeViewerKeys(),
	}
	m.Viewport.SetContent(numberLines(highlighted))
	return m
}

// numberLines prefixes each line with a dim line number
func numberLines(code string) string {
	lines := strings.Split(strings.TrimRight(code, "\n"), "\n")
	gutter := lipgloss.NewStyle().Foreground(SubtleColor)
	width := len(fmt.Sprint(len(lines)))
	for i, line := range lines {
		lines[i] = gutter.Render(fmt.Sprintf("%*d │ ", width, i+1)) + line
	}
	return strings.Join(lines, "\n")
}

// SetSize fits the viewport to the space left below the header rows
func (m *CodeViewerModel) SetSize(width, height, reserved int) {
	m.Width = width
	m.Height = height
	m.Viewport.Width = ContentWidth(width)
	h := height - reserved
	if h < 5 {
		h = 5
	}
	m.Viewport.Height = h
}

// Init satisfies tea.Model
func (m CodeViewerModel) Init() tea.Cmd {
	return nil
}

// Update handles scrolling, copy and download
func (m CodeViewerModel) Update(msg tea.Msg) (CodeViewerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case copyRevertMsg:
		m.Copier.Revert(msg.gen)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.Keys.Copy):
			return m.copy()
		case key.Matches(msg, m.Keys.Download):
			return m.save(false), nil
		case key.Matches(msg, m.Keys.Overwrite):
			return m.save(true), nil
		}
	}

	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	return m, cmd
}

func (m CodeViewerModel) copy() (CodeViewerModel, tea.Cmd) {
	gen, err := m.Copier.Copy(m.Code)
	if err != nil {
		m.Status = fmt.Sprintf("Copy failed: %v", err)
		m.StatusErr = true
		return m, nil
	}
	m.Status = ""
	m.StatusErr = false
	return m, tea.Tick(codeview.CopiedDuration, func(time.Time) tea.Msg {
		return copyRevertMsg{gen: gen}
	})
}

func (m CodeViewerModel) save(force bool) CodeViewerModel {
	path, err := codeview.Save(m.OutputDir, m.Code, force)
	switch {
	case errors.Is(err, codeview.ErrExists):
		m.Status = fmt.Sprintf("%s already exists. Press S to overwrite.", path)
		m.StatusErr = true
	case err != nil:
		m.Status = err.Error()
		m.StatusErr = true
	default:
		m.SavedPath = path
		m.Status = "Saved to " + path
		m.StatusErr = false
		logging.Info("Generated code saved", zap.String("path", path))
	}
	return m
}

// buildActions renders the copy and download buttons
func (m CodeViewerModel) buildActions() string {
	button := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderColor).
		Padding(0, 1)
	copied := button.BorderForeground(SecondaryColor).Foreground(SecondaryColor)

	copyBtn := button.Render("c " + m.Copier.Label())
	if m.Copier.Copied() {
		copyBtn = copied.Render("✓ " + m.Copier.Label())
	}
	saveBtn := button.Render("s Download " + codeview.FileName)
	return lipgloss.JoinHorizontal(lipgloss.Center, copyBtn, " ", saveBtn)
}

// buildContent renders the viewer without the application container
func (m CodeViewerModel) buildContent() string {
	var b strings.Builder

	if m.Title != "" {
		b.WriteString(RenderTitle(m.Title))
		b.WriteString("\n")
	}
	b.WriteString(RenderSubtitle(fmt.Sprintf("%s · %d lines · %d%%",
		codeview.FileName, codeview.LineCount(m.Code), int(m.Viewport.ScrollPercent()*100))))
	b.WriteString("\n")

	frame := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(SubtleColor)
	b.WriteString(frame.Render(m.Viewport.View()))
	b.WriteString("\n")
	b.WriteString(m.buildActions())
	b.WriteString("\n")

	if m.Status != "" {
		if m.StatusErr {
			b.WriteString(FieldErrorStyle.Render("  " + m.Status))
		} else {
			b.WriteString(SuccessBoxStyle.Render("  " + m.Status))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// View renders the code viewer screen
func (m CodeViewerModel) View() string {
	return RenderApplicationContainer(m.buildContent(), m.Help.View(m.Keys), m.Width, m.Height)
}
