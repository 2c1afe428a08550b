package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// CodeBox frames a generated script under its file name. Content is
// printed as given, so callers pass already highlighted text when they
// want colour.
type CodeBox struct {
	Title    string // e.g., "automation.py"
	Content  string
	Width    int
	MaxLines int // 0 = unlimited
}

// NewCodeBox creates a code box for content
func NewCodeBox(title, content string) *CodeBox {
	return &CodeBox{
		Title:   title,
		Content: content,
		Width:   GetTerminalWidth(),
	}
}

// SetWidth sets the terminal width for responsive rendering
func (c *CodeBox) SetWidth(width int) *CodeBox {
	c.Width = width
	return c
}

// SetMaxLines limits the number of lines displayed
func (c *CodeBox) SetMaxLines(n int) *CodeBox {
	c.MaxLines = n
	return c
}

// Render returns the styled box
func (c *CodeBox) Render() string {
	width := c.Width
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	lines := strings.Split(strings.TrimRight(c.Content, "\n"), "\n")
	if c.MaxLines > 0 && len(lines) > c.MaxLines {
		hidden := len(lines) - c.MaxLines
		lines = append(lines[:c.MaxLines:c.MaxLines], StepNoteStyle.Render(fmt.Sprintf("... %d more lines", hidden)))
	}

	inner := lipgloss.JoinVertical(lipgloss.Left, CodeTitleStyle.Render(c.Title), "", strings.Join(lines, "\n"))

	boxWidth := width - 4
	if boxWidth < 40 {
		boxWidth = 40
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(MutedColor).
		Width(boxWidth).
		Padding(0, 1).
		MarginLeft(2).
		Render(inner)
}

// String implements fmt.Stringer
func (c *CodeBox) String() string {
	return c.Render()
}
