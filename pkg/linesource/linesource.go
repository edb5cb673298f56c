// Package linesource reads one logical, non-blank input line at a time for
// the calculator driver.
package linesource

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// DefaultMaxLineLength is the longest line accepted, terminator excluded.
const DefaultMaxLineLength = 1024

// DefaultPrompt is shown before each read on an interactive input.
const DefaultPrompt = "> "

// endOfFile is appended to the text handed over once input is exhausted.
const endOfFile = "\x00"

// ErrLineTooLong is returned when a line exceeds the maximum length.
var ErrLineTooLong = errors.New("line exceeds maximum length")

// Line is one logical input line.
type Line struct {
	Text   string // terminated by '\n', or by "\x00" when EOF is set
	Number int    // 1-based line number in the input
	EOF    bool   // input is exhausted; no further lines follow
}

// Reader is a line source over an io.Reader.
type Reader struct {
	r           *bufio.Reader
	prompt      io.Writer
	promptText  string
	interactive bool
	maxLen      int
	lineNo      int
	done        bool
}

// Option configures a Reader.
type Option func(*Reader)

// WithPrompt sets the prompt text and where it is written.
func WithPrompt(w io.Writer, text string) Option {
	return func(r *Reader) {
		r.prompt = w
		r.promptText = text
	}
}

// WithInteractive forces interactive mode on or off.
func WithInteractive(on bool) Option {
	return func(r *Reader) { r.interactive = on }
}

// WithMaxLineLength sets the maximum accepted line length.
func WithMaxLineLength(n int) Option {
	return func(r *Reader) { r.maxLen = n }
}

// New creates a Reader. Interactive mode is on when in is a terminal.
func New(in io.Reader, opts ...Option) *Reader {
	r := &Reader{
		r:           bufio.NewReader(in),
		prompt:      os.Stdout,
		promptText:  DefaultPrompt,
		interactive: IsTerminal(in),
		maxLen:      DefaultMaxLineLength,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// IsTerminal reports whether v is a file attached to a terminal.
func IsTerminal(v interface{}) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Interactive reports whether prompts are shown.
func (r *Reader) Interactive() bool {
	return r.interactive
}

// LineNumber returns the number of the last line read.
func (r *Reader) LineNumber() int {
	return r.lineNo
}

// Next returns the next non-blank line. Once the input is exhausted it
// returns a Line with EOF set; the Text then carries any unterminated final
// line followed by the end-of-file marker. Read failures and over-long lines
// are returned as errors.
func (r *Reader) Next() (Line, error) {
	if r.done {
		return Line{Text: endOfFile, Number: r.lineNo, EOF: true}, nil
	}

	var buf []byte
	r.showPrompt()
	for {
		b, err := r.r.ReadByte()
		if err == io.EOF {
			r.done = true
			text := endOfFile
			if !isBlank(buf) {
				r.lineNo++
				text = string(buf) + endOfFile
			}
			return Line{Text: text, Number: r.lineNo, EOF: true}, nil
		}
		if err != nil {
			return Line{}, fmt.Errorf("read line %d: %w", r.lineNo+1, err)
		}

		if b == '\n' {
			r.lineNo++
			if isBlank(buf) {
				buf = buf[:0]
				r.showPrompt()
				continue
			}
			return Line{Text: string(buf) + "\n", Number: r.lineNo}, nil
		}

		if len(buf) >= r.maxLen {
			return Line{}, fmt.Errorf("line %d: %w (%d bytes)", r.lineNo+1, ErrLineTooLong, r.maxLen)
		}
		buf = append(buf, b)
	}
}

func (r *Reader) showPrompt() {
	if r.interactive && r.prompt != nil {
		fmt.Fprint(r.prompt, r.promptText)
	}
}

func isBlank(b []byte) bool {
	return strings.TrimSpace(string(b)) == ""
}
