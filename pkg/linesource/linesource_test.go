package linesource

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"testing/iotest"
)

func readAll(t *testing.T, r *Reader) []Line {
	t.Helper()
	var lines []Line
	for i := 0; i < 100; i++ {
		line, err := r.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		lines = append(lines, line)
		if line.EOF {
			return lines
		}
	}
	t.Fatal("no EOF after 100 lines")
	return nil
}

func TestSkipsBlankLines(t *testing.T) {
	r := New(strings.NewReader("1 + 1\n\n   \n\t\n2 * 3\n"))
	lines := readAll(t, r)

	want := []Line{
		{Text: "1 + 1\n", Number: 1},
		{Text: "2 * 3\n", Number: 5},
		{Text: "\x00", Number: 5, EOF: true},
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines %+v, want %d", len(lines), lines, len(want))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: got %+v, want %+v", i, lines[i], want[i])
		}
	}
}

func TestUnterminatedFinalLine(t *testing.T) {
	r := New(strings.NewReader("7\n8 / 2"))
	lines := readAll(t, r)
	if len(lines) != 2 {
		t.Fatalf("got %+v", lines)
	}
	last := lines[1]
	if !last.EOF || last.Text != "8 / 2\x00" || last.Number != 2 {
		t.Errorf("unexpected final line %+v", last)
	}
}

func TestEmptyInput(t *testing.T) {
	r := New(strings.NewReader(""))
	line, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if !line.EOF || line.Text != "\x00" {
		t.Errorf("got %+v, want bare EOF", line)
	}

	again, err := r.Next()
	if err != nil || !again.EOF {
		t.Errorf("expected EOF to be sticky, got %+v, %v", again, err)
	}
}

func TestLineTooLong(t *testing.T) {
	r := New(strings.NewReader("12345678\n"), WithMaxLineLength(4))
	_, err := r.Next()
	if !errors.Is(err, ErrLineTooLong) {
		t.Fatalf("expected ErrLineTooLong, got %v", err)
	}
}

func TestLineAtMaxLength(t *testing.T) {
	r := New(strings.NewReader("1234\n"), WithMaxLineLength(4))
	line, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if line.Text != "1234\n" {
		t.Errorf("got %q", line.Text)
	}
}

func TestReadError(t *testing.T) {
	boom := errors.New("boom")
	r := New(iotest.ErrReader(boom))
	_, err := r.Next()
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped read error, got %v", err)
	}
}

func TestPromptWhenInteractive(t *testing.T) {
	var out bytes.Buffer
	r := New(strings.NewReader("\n1\n"), WithInteractive(true), WithPrompt(&out, "> "))
	readAll(t, r)
	// blank line re-prompts, then one prompt per line, then the EOF read
	if got := out.String(); got != "> > > " {
		t.Errorf("prompts %q", got)
	}
}

func TestNoPromptForPipes(t *testing.T) {
	var out bytes.Buffer
	r := New(strings.NewReader("1\n"), WithPrompt(&out, "> "))
	if r.Interactive() {
		t.Fatal("strings.Reader should not be interactive")
	}
	readAll(t, r)
	if out.Len() != 0 {
		t.Errorf("unexpected prompt output %q", out.String())
	}
}
