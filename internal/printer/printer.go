// Package printer writes lines to a terminal or file, optionally with
// colored line numbers.
package printer

import (
	"fmt"
	"io"
	"os"

	"github.com/logrusorgru/aurora"
	"golang.org/x/term"
)

// Printer writes lines to w. It appends a newline to an unterminated final
// line so the next write starts on a fresh row.
type Printer struct {
	w       io.Writer
	numbers bool
	color   bool
	count   int
}

// New returns a Printer. colorMode is "auto", "always" or "never"; "auto"
// enables color only when w is a terminal.
func New(w io.Writer, numbers bool, colorMode string) *Printer {
	return &Printer{
		w:       w,
		numbers: numbers,
		color:   resolveColor(w, colorMode),
	}
}

func resolveColor(w io.Writer, mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Print writes one line. The line may or may not carry a trailing '\n'.
func (p *Printer) Print(line []byte) error {
	p.count++
	if p.numbers {
		prefix := fmt.Sprintf("%6d  ", p.count)
		if p.color {
			prefix = aurora.BrightBlack(prefix).String()
		}
		if _, err := io.WriteString(p.w, prefix); err != nil {
			return fmt.Errorf("write line number: %w", err)
		}
	}
	if _, err := p.w.Write(line); err != nil {
		return fmt.Errorf("write line: %w", err)
	}
	if len(line) == 0 || line[len(line)-1] != '\n' {
		if _, err := io.WriteString(p.w, "\n"); err != nil {
			return fmt.Errorf("write line: %w", err)
		}
	}
	return nil
}

// Count reports how many lines have been printed.
func (p *Printer) Count() int {
	return p.count
}
