package codeview

import (
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
)

const (
	// Language is the lexer used for generated scripts
	Language = "python"

	defaultStyle     = "monokai"
	defaultFormatter = "terminal256"
)

// Options selects the chroma formatter and style
type Options struct {
	Formatter string // e.g. "terminal256", "terminal16m", "noop"
	Style     string // e.g. "monokai", "github"
}

// Highlight returns code coloured for the terminal. When highlighting
// fails the code is returned unchanged along with the error.
func Highlight(code string, opts Options) (string, error) {
	if opts.Formatter == "" {
		opts.Formatter = defaultFormatter
	}
	if opts.Style == "" {
		opts.Style = defaultStyle
	}

	var sb strings.Builder
	if err := quick.Highlight(&sb, code, Language, opts.Formatter, opts.Style); err != nil {
		return code, err
	}
	return sb.String(), nil
}

// LineCount returns the number of lines in code
func LineCount(code string) int {
	if code == "" {
		return 0
	}
	return strings.Count(strings.TrimRight(code, "\n"), "\n") + 1
}
