// Package clipboard provides terminal clipboard access. Text is sent to
// the terminal emulator as an OSC 52 escape sequence, which works over SSH
// and inside tmux without a local clipboard daemon.
package clipboard

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aymanbagabas/go-osc52/v2"
	"github.com/mattn/go-isatty"
)

// ErrNoTerminal is returned when the output is not attached to a terminal
// that could receive the sequence.
var ErrNoTerminal = errors.New("clipboard: output is not a terminal")

// OSC52 implements core.Clipboard by writing OSC 52 sequences to Out.
type OSC52 struct {
	Out io.Writer
	// Tmux wraps the sequence in a tmux passthrough.
	Tmux bool
}

// New returns an OSC52 clipboard writing to stderr. Tmux passthrough is
// enabled when $TMUX is set.
func New() *OSC52 {
	return &OSC52{Out: os.Stderr, Tmux: os.Getenv("TMUX") != ""}
}

// WriteText sends text to the terminal clipboard. When Out is a file it
// must be a terminal.
func (c *OSC52) WriteText(text string) error {
	if f, ok := c.Out.(*os.File); ok && !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return ErrNoTerminal
	}
	seq := osc52.New(text)
	if c.Tmux {
		seq = seq.Tmux()
	}
	if _, err := seq.WriteTo(c.Out); err != nil {
		return fmt.Errorf("writing clipboard sequence: %w", err)
	}
	return nil
}
