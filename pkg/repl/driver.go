// Package repl drives the calculator: it reads lines, runs each through the
// expression pipeline and reports results or diagnostics.
package repl

import (
	"context"

	"github.com/lemonberrylabs/calc/pkg/expr"
	"github.com/lemonberrylabs/calc/pkg/linesource"
	"github.com/rs/zerolog"
)

// LineSource provides one logical input line per call.
type LineSource interface {
	Next() (linesource.Line, error)
}

// Summary counts the lines a run processed.
type Summary struct {
	Lines  int // non-empty lines processed
	Failed int // lines that ended in a lex, syntax or runtime error
}

// Driver loops read line → tokenize → parse → evaluate until end of input.
type Driver struct {
	src     LineSource
	printer *Printer
	logger  zerolog.Logger
}

// New creates a driver.
func New(src LineSource, printer *Printer, logger zerolog.Logger) *Driver {
	return &Driver{src: src, printer: printer, logger: logger}
}

// Run processes lines until the source is exhausted or ctx is cancelled.
// Per-line failures are printed and counted; a LineSource failure aborts the
// run and is returned.
func (d *Driver) Run(ctx context.Context) (Summary, error) {
	var sum Summary
	for {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		line, err := d.src.Next()
		if err != nil {
			d.logger.Error().Err(err).Msg("reading input failed")
			return sum, err
		}

		value, ok, err := d.Process(line)
		if err != nil {
			sum.Lines++
			sum.Failed++
			d.printer.Error(err)
		} else if ok {
			sum.Lines++
			d.printer.Result(value)
		}

		if line.EOF {
			d.logger.Debug().Int("lines", sum.Lines).Int("failed", sum.Failed).Msg("end of input")
			return sum, nil
		}
	}
}

// Process runs one line through the pipeline. ok is false when the line holds
// no expression.
func (d *Driver) Process(line linesource.Line) (value int64, ok bool, err error) {
	log := d.logger.With().Int("line", line.Number).Logger()

	tokens, err := expr.Tokenize(line.Text)
	if err != nil {
		log.Debug().Err(err).Msg("tokenize failed")
		return 0, false, err
	}
	if e := log.Debug(); e.Enabled() {
		e.Stringer("tokens", tokenList(tokens)).Msg("tokenized")
	}

	tree, err := expr.Parse(tokens)
	if err != nil {
		log.Debug().Err(err).Msg("parse failed")
		return 0, false, err
	}
	if tree == nil {
		return 0, false, nil
	}
	log.Debug().Str("ast", expr.Format(tree)).Msg("parsed")

	value, err = expr.Evaluate(tree)
	if err != nil {
		log.Debug().Err(err).Msg("evaluation failed")
		return 0, false, err
	}
	return value, true, nil
}

type tokenList []expr.Token

func (l tokenList) String() string {
	s := "["
	for i, tok := range l {
		if i > 0 {
			s += " "
		}
		s += tok.String()
	}
	return s + "]"
}
