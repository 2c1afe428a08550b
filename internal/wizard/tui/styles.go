package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/agenticauto/autobuilder/internal/automation"
	"github.com/agenticauto/autobuilder/internal/version"
)

// Header branding
const (
	AppName    = "AUTOMATION BUILDER"
	ProjectURL = "github.com/agenticauto/autobuilder"
)

// Layout limits
const (
	MinTerminalWidth = 72
	MaxContentWidth  = 120
)

// Palette
var (
	PrimaryColor    = lipgloss.Color("#7D56F4")
	SecondaryColor  = lipgloss.Color("#43BF6D")
	AccentColor     = lipgloss.Color("#FF8B94")
	WarningColor    = lipgloss.Color("#FFA500")
	ErrorColor      = lipgloss.Color("#FF4D4D")
	TextColor       = lipgloss.Color("#FFFFFF")
	SubtleColor     = lipgloss.Color("#626262")
	BorderColor     = PrimaryColor
	HighlightColor  = SecondaryColor
	BackgroundColor = lipgloss.Color("#1A1A1A")
)

// typeColors tints the type tag of each automation kind
var typeColors = map[automation.Type]lipgloss.Color{
	automation.WebsiteMonitor:  lipgloss.Color("#4FC3F7"),
	automation.PriceTracker:    lipgloss.Color("#FFD54F"),
	automation.DiscordNotifier: lipgloss.Color("#7289DA"),
	automation.SlackNotifier:   lipgloss.Color("#E01E5A"),
	automation.EmailDigest:     lipgloss.Color("#81C784"),
}

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true).
			Padding(1, 0).
			MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Italic(true)

	MenuItemStyle = lipgloss.NewStyle().
			PaddingLeft(4).
			Foreground(TextColor)

	SelectedMenuItemStyle = lipgloss.NewStyle().
				PaddingLeft(2).
				Foreground(HighlightColor).
				Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Padding(1, 0)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	SelectedListItemStyle = lipgloss.NewStyle().
				Foreground(HighlightColor).
				Bold(true)

	FocusedInputStyle = lipgloss.NewStyle().
				Foreground(PrimaryColor).
				Bold(true)

	// Inline panels: errors stay until the next action, info marks empty states
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true).
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ErrorColor)

	InfoBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(1, 2).
			MarginTop(1).
			MarginBottom(1)

	SuccessBoxStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor).
			Bold(true)

	WarningBoxStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(WarningColor).
			Padding(1, 2)
)

func RenderTitle(text string) string {
	return TitleStyle.Render(text)
}

func RenderSubtitle(text string) string {
	return SubtitleStyle.Render(text)
}

// RenderMenuItem renders a menu item with selection indicator
func RenderMenuItem(text string, selected bool) string {
	if selected {
		return SelectedMenuItemStyle.Render("→ " + text)
	}
	return MenuItemStyle.Render("  " + text)
}

// RenderSuccess renders a one-line confirmation
func RenderSuccess(text string) string {
	return SuccessBoxStyle.Render("✓ " + text)
}

func RenderError(text string) string {
	return ErrorStyle.Render("✗ " + text)
}

func RenderInfo(text string) string {
	return InfoBoxStyle.Render(text)
}

// RenderTypeTag renders the human label of t in its type colour
func RenderTypeTag(t automation.Type) string {
	style := lipgloss.NewStyle().Foreground(SubtleColor)
	if c, ok := typeColors[t]; ok {
		style = style.Foreground(c)
	}
	return style.Render(t.Label())
}

// headerTarget is shown at the right of the header, the API base URL once
// the app knows it
var headerTarget = ProjectURL

// SetHeaderTarget sets the text shown at the right of the header
func SetHeaderTarget(target string) {
	if target == "" {
		target = ProjectURL
	}
	headerTarget = target
}

// BuildHeaderContent creates header content with app name and the current backend
// Returns a string formatted for use in the application container
func BuildHeaderContent() string {
	left := lipgloss.NewStyle().
		Foreground(TextColor).
		Bold(true).
		Render(AppName + " v" + version.Version)

	right := lipgloss.NewStyle().
		Foreground(SubtleColor).
		Render(headerTarget)

	// Join with space in between
	return lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
}

// BuildFooterContent creates footer content with help text
// Returns a styled string for use in the application container
func BuildFooterContent(helpText string) string {
	return lipgloss.NewStyle().
		Foreground(SubtleColor).
		Render(helpText)
}

// RenderApplicationContainer is the REQUIRED wrapper for all screens in the application.
// It provides:
// - Consistent full-screen panel using terminal width/height
// - Application header (name, version, backend URL)
// - Context-sensitive footer (help text)
// - Bordered outer container
// - Proper viewport support
//
// EVERY screen must use this function. Pattern:
//
//	func (m Model) View() string {
//	    content := m.buildContent()
//	    helpText := "context-specific help..."
//	    return RenderApplicationContainer(content, helpText, m.Width, m.Height)
//	}
//
// Parameters:
//   - content: The screen's main content (rendered separately)
//   - footerText: Context-sensitive help text for this screen
//   - terminalWidth: Current terminal width (from tea.WindowSizeMsg)
//   - terminalHeight: Current terminal height (from tea.WindowSizeMsg)
//
// Uses lipgloss.Place() to fill the entire terminal and pin footer to bottom
func RenderApplicationContainer(content string, footerText string, terminalWidth int, terminalHeight int) string {
	// Build header content
	header := BuildHeaderContent()

	// Build footer content
	footer := BuildFooterContent(footerText)

	// Create header section with bottom border
	headerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Bottom: "─"}).
		BorderForeground(BorderColor).
		Width(terminalWidth-4). // Leave room for outer border
		Padding(0, 1)

	styledHeader := headerStyle.Render(header)

	// Create footer section with top border
	footerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Top: "─"}).
		BorderForeground(BorderColor).
		Width(terminalWidth-4). // Leave room for outer border
		Padding(0, 1)

	styledFooter := footerStyle.Render(footer)

	// Create content area (viewport handles height for scrolling)
	// Note: No padding here - callers control their own content margins
	// This ensures Width(terminalWidth-4) is the actual usable content width
	contentStyle := lipgloss.NewStyle().
		Width(terminalWidth - 4) // Leave room for outer border

	styledContent := contentStyle.Render(content)

	// Combine header + content + footer vertically
	innerContent := lipgloss.JoinVertical(
		lipgloss.Left,
		styledHeader,
		styledContent,
		styledFooter,
	)

	// Create outer border container with full terminal height for proper modal overlay background
	borderStyle := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(BorderColor).
		Width(terminalWidth - 2).   // Account for border width
		Height(terminalHeight - 2). // Full height for proper background
		AlignVertical(lipgloss.Top) // Align content to top, preventing footer expansion

	bordered := borderStyle.Render(innerContent)

	// Use lipgloss.Place to fill the full terminal and ensure proper positioning
	return lipgloss.Place(
		terminalWidth,
		terminalHeight,
		lipgloss.Left,
		lipgloss.Top,
		bordered,
	)
}

// CalculateBoxWidth calculates the appropriate box width based on terminal width
// Uses full terminal width for maximum screen usage
func CalculateBoxWidth(terminalWidth int) int {
	if terminalWidth < MinTerminalWidth {
		return MinTerminalWidth
	}
	// Use full terminal width - no maximum cap for full-screen layout
	return terminalWidth
}

// FieldErrorStyle renders validation messages beside form fields
var FieldErrorStyle = lipgloss.NewStyle().
	Foreground(ErrorColor)

// DisabledStyle renders options and inputs that cannot be used yet
var DisabledStyle = lipgloss.NewStyle().
	Foreground(SubtleColor).
	Faint(true)

// RenderFieldError renders a validation message, or "" when msg is empty
func RenderFieldError(msg string) string {
	if msg == "" {
		return ""
	}
	return FieldErrorStyle.Render("  ✗ " + msg)
}

// RenderBadge renders the Active/Paused status badge of a hosted automation
func RenderBadge(active bool) string {
	style := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	if active {
		return style.Foreground(BackgroundColor).Background(SecondaryColor).Render("Active")
	}
	return style.Foreground(TextColor).Background(SubtleColor).Render("Paused")
}

// RenderStepIndicator renders the wizard progress bar, e.g.
// "● Describe ── ● Design ── ○ Configure ── ○ Download"
func RenderStepIndicator(labels []string, current int) string {
	done := lipgloss.NewStyle().Foreground(SecondaryColor)
	active := lipgloss.NewStyle().Foreground(PrimaryColor).Bold(true)
	todo := lipgloss.NewStyle().Foreground(SubtleColor)

	parts := make([]string, len(labels))
	for i, label := range labels {
		step := i + 1
		text := fmt.Sprintf("%d %s", step, label)
		switch {
		case step < current:
			parts[i] = done.Render("✓ " + text)
		case step == current:
			parts[i] = active.Render("● " + text)
		default:
			parts[i] = todo.Render("○ " + text)
		}
	}
	return strings.Join(parts, todo.Render(" ── "))
}

// CardStyle returns the bordered card used for workflow nodes and list rows
func CardStyle(width int, selected bool) lipgloss.Style {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderColor).
		Padding(0, 2).
		MarginLeft(2)
	if width > 0 {
		style = style.Width(width)
	}
	if selected {
		style = style.BorderForeground(HighlightColor)
	}
	return style
}

// ContentWidth returns the usable width inside the application container
func ContentWidth(terminalWidth int) int {
	w := CalculateBoxWidth(terminalWidth) - 8
	if w > MaxContentWidth-6 {
		w = MaxContentWidth - 6
	}
	return w
}
