package codeview

import (
	"errors"
	"time"

	"github.com/atotto/clipboard"
)

// CopiedDuration is how long the "Copied!" label stays up
const CopiedDuration = 2000 * time.Millisecond

const (
	LabelCopy   = "Copy"
	LabelCopied = "Copied!"
)

// CopyFunc writes text to a clipboard
type CopyFunc func(text string) error

// SystemClipboard writes to the OS clipboard
func SystemClipboard(text string) error {
	if clipboard.Unsupported {
		return errors.New("no clipboard utility available (install xclip, xsel or wl-clipboard)")
	}
	return clipboard.WriteAll(text)
}

// Copier copies code and tracks the copy button label. Each successful
// copy starts a new generation; Revert only resets the label for the
// generation it was scheduled for, so rapid repeated copies keep the
// label up for the full duration after the last one.
type Copier struct {
	copy   CopyFunc
	copied bool
	gen    int
}

// NewCopier returns a copier using fn, or the system clipboard when nil
func NewCopier(fn CopyFunc) *Copier {
	if fn == nil {
		fn = SystemClipboard
	}
	return &Copier{copy: fn}
}

// Copy writes code to the clipboard and switches the label to "Copied!".
// It returns the generation to pass to Revert after CopiedDuration.
func (c *Copier) Copy(code string) (int, error) {
	if err := c.copy(code); err != nil {
		return c.gen, err
	}
	c.gen++
	c.copied = true
	return c.gen, nil
}

// Revert restores the default label if gen is the latest copy
func (c *Copier) Revert(gen int) {
	if gen == c.gen {
		c.copied = false
	}
}

// Copied reports whether the label currently reads "Copied!"
func (c *Copier) Copied() bool {
	return c.copied
}

// Label returns the copy button label
func (c *Copier) Label() string {
	if c.copied {
		return LabelCopied
	}
	return LabelCopy
}
