package output

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.trai.ch/knot/internal/ui/style"
)

// Printer writes the result lines of the knot commands.
type Printer struct {
	out *termenv.Output
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{out: New(w)}
}

func (p *Printer) paint(s string, c lipgloss.Color) termenv.Style {
	return p.out.String(s).Foreground(p.out.Color(string(c)))
}

// Header prints a bold section title.
func (p *Printer) Header(title string) {
	_, _ = fmt.Fprintln(p.out, p.paint(title, style.Iris).Bold())
}

// Resolved prints a loaded unit with its fingerprint.
func (p *Printer) Resolved(name, fingerprint string) {
	_, _ = fmt.Fprintf(p.out, "%s %s %s\n",
		p.paint(style.Check, style.Green), name, p.paint(fingerprint, style.Slate))
}

// Constant prints one resolved constant below a unit line.
func (p *Printer) Constant(qualified, value string) {
	_, _ = fmt.Fprintf(p.out, "    %s = %s\n", qualified, value)
}

// Batch prints the index-th batch (1-based). A non-empty cycle marks it cyclic.
func (p *Printer) Batch(index int, members, cycle string) {
	if cycle == "" {
		_, _ = fmt.Fprintf(p.out, "%s %d. %s\n", p.paint(style.Dot, style.Slate), index, members)
		return
	}
	_, _ = fmt.Fprintf(p.out, "%s %d. %s  (%s)\n", p.paint(style.Cycle, style.Yellow), index, members, cycle)
}
