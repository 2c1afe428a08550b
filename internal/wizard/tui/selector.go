package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// option is one choice of a selector
type option struct {
	Label    string
	Value    string
	Disabled bool
}

// selector is an inline single-choice picker cycled with left/right.
// Disabled options are shown but never selected.
type selector struct {
	Options []option
	Index   int
}

func newSelector(opts []option, value string) selector {
	s := selector{Options: opts}
	s.Select(value)
	if s.Options[s.Index].Disabled {
		s.Next()
	}
	return s
}

// Select moves to the enabled option with value, if present
func (s *selector) Select(value string) {
	for i, opt := range s.Options {
		if opt.Value == value && !opt.Disabled {
			s.Index = i
			return
		}
	}
}

// Next moves to the next enabled option, wrapping around
func (s *selector) Next() { s.step(1) }

// Prev moves to the previous enabled option, wrapping around
func (s *selector) Prev() { s.step(-1) }

func (s *selector) step(dir int) {
	n := len(s.Options)
	for i := 1; i <= n; i++ {
		idx := ((s.Index+dir*i)%n + n) % n
		if !s.Options[idx].Disabled {
			s.Index = idx
			return
		}
	}
}

// Value returns the selected option value
func (s selector) Value() string {
	if len(s.Options) == 0 {
		return ""
	}
	return s.Options[s.Index].Value
}

// View renders every option on one line with the selection highlighted
func (s selector) View(focused bool) string {
	selected := lipgloss.NewStyle().Foreground(HighlightColor).Bold(true)
	if !focused {
		selected = lipgloss.NewStyle().Foreground(TextColor).Bold(true)
	}
	normal := lipgloss.NewStyle().Foreground(SubtleColor)

	parts := make([]string, len(s.Options))
	for i, opt := range s.Options {
		switch {
		case opt.Disabled:
			parts[i] = DisabledStyle.Render(opt.Label)
		case i == s.Index:
			parts[i] = selected.Render("[" + opt.Label + "]")
		default:
			parts[i] = normal.Render(" " + opt.Label + " ")
		}
	}
	line := strings.Join(parts, " ")
	if focused {
		return "◀ " + line + " ▶"
	}
	return "  " + line
}
