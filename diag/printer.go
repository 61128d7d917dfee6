package diag

import (
	"io"

	"github.com/fatih/color"
)

// Printer renders diagnostics to a writer, optionally in color. It
// follows the same pattern as the pack's own compiler CLIs
// (vovakirdan-surge, kanso-lang-kanso both colorize diagnostics with
// github.com/fatih/color rather than hand-rolling ANSI codes).
type Printer struct {
	w      io.Writer
	color  *color.Color
	prefix string
}

// NewPrinter returns a Printer that writes to w. Coloring follows
// fatih/color's own terminal detection (color.NoColor), so piping
// output to a file or another process degrades to plain text.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, color: color.New(color.FgRed, color.Bold), prefix: "error"}
}

// Print writes a single diagnostic as "<prefix>: <pos>: <code>: <msg>".
func (p *Printer) Print(err *Error) {
	p.color.Fprint(p.w, p.prefix+": ")
	if err.Pos.Line != 0 || err.Pos.Col != 0 {
		io.WriteString(p.w, err.Pos.String()+": ")
	}
	io.WriteString(p.w, string(err.Code)+": "+err.Msg+"\n")
}

// PrintAll writes every diagnostic in errs, in order.
func (p *Printer) PrintAll(errs []*Error) {
	for _, e := range errs {
		p.Print(e)
	}
}
