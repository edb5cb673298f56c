package repl

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/lemonberrylabs/calc/pkg/config"
	"github.com/lemonberrylabs/calc/pkg/linesource"
	"github.com/lemonberrylabs/calc/pkg/types"
)

// Printer writes results to out and diagnostics to errOut.
type Printer struct {
	out    io.Writer
	errOut io.Writer

	result  *color.Color
	failure *color.Color
	fault   *color.Color
}

// NewPrinter creates a printer. mode is one of config.ColorAuto,
// config.ColorAlways or config.ColorNever; auto colors a stream only when it
// is a terminal.
func NewPrinter(out, errOut io.Writer, mode string) *Printer {
	p := &Printer{
		out:     out,
		errOut:  errOut,
		result:  color.New(color.FgGreen, color.Bold),
		failure: color.New(color.FgRed, color.Bold),
		fault:   color.New(color.FgRed, color.Bold, color.Underline),
	}
	setColor(p.result, mode, out)
	setColor(p.failure, mode, errOut)
	setColor(p.fault, mode, errOut)
	return p
}

func setColor(c *color.Color, mode string, w io.Writer) {
	on := false
	switch mode {
	case config.ColorAlways:
		on = true
	case config.ColorAuto:
		on = os.Getenv("NO_COLOR") == "" && linesource.IsTerminal(w)
	}
	if on {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
}

// Banner prints the interactive greeting.
func (p *Printer) Banner(version string) {
	fmt.Fprintf(p.out, "A BODMAS calculator.\nVersion %s.\n", version)
}

// Result prints an evaluation result.
func (p *Printer) Result(v int64) {
	p.result.Fprintf(p.out, "%d", v)
	fmt.Fprintln(p.out)
}

// Error prints a diagnostic. Lex errors get a snippet line with the fault
// highlighted and a marker line beneath it.
func (p *Printer) Error(err error) {
	p.failure.Fprint(p.errOut, err.Error())
	fmt.Fprintln(p.errOut)

	e, ok := types.AsError(err)
	if !ok || e.Context == nil {
		return
	}
	fmt.Fprintf(p.errOut, "\t%s%s%s\n", e.Context.Before, p.fault.Sprint(e.Context.Char), e.Context.After)
	fmt.Fprintf(p.errOut, "\t%s\n", e.Context.Markers())
}
