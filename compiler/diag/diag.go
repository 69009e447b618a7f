package diag

import (
	"bytes"
	"fmt"

	"tlog.app/go/loc"
)

type (
	// Kind classifies compile errors. Every *Error unwraps to its Kind,
	// so errors.Is(err, ErrReference) works through any number of wraps.
	Kind struct {
		name string
	}

	Error struct {
		Kind *Kind

		Pos int
		End int

		// Text is the raw source text of the span, if known.
		Text string

		Msg string

		From loc.PC
	}

	spanner interface {
		Span() (pos, end int)
	}
)

var (
	ErrSyntax    = &Kind{name: "SyntaxError"}
	ErrArity     = &Kind{name: "ArityError"}
	ErrName      = &Kind{name: "NameError"}
	ErrReference = &Kind{name: "ReferenceError"}
	ErrOverflow  = &Kind{name: "OverflowError"}
	ErrInternal  = &Kind{name: "InternalError"}
)

func (k *Kind) Error() string { return k.name }

func New(k *Kind, pos, end int, src []byte, f string, args ...any) *Error {
	e := &Error{
		Kind: k,
		Pos:  pos,
		End:  end,
		Msg:  fmt.Sprintf(f, args...),
		From: loc.Caller(1),
	}

	e.Text = e.textFrom(src)

	return e
}

// At is New with the span taken from n.
func At(k *Kind, n spanner, src []byte, f string, args ...any) *Error {
	var pos, end int
	if n != nil {
		pos, end = n.Span()
	}

	e := New(k, pos, end, src, f, args...)
	e.From = loc.Caller(1)

	return e
}

// Fill sets Text from src if it was not known when e was created.
func (e *Error) Fill(src []byte) {
	if e.Text == "" {
		e.Text = e.textFrom(src)
	}
}

func (e *Error) Error() string {
	if e.Text == "" {
		return fmt.Sprintf("%v: %v (at %d-%d)", e.Kind, e.Msg, e.Pos, e.End)
	}

	return fmt.Sprintf("%v: %v (at %d-%d: %q)", e.Kind, e.Msg, e.Pos, e.End, e.Text)
}

func (e *Error) Unwrap() error { return e.Kind }

func (e *Error) textFrom(src []byte) string {
	if e.Pos < 0 || e.End > len(src) || e.Pos > e.End {
		return ""
	}

	return string(src[e.Pos:e.End])
}

// LineCol converts a byte offset into 1-based line and column numbers.
func LineCol(src []byte, pos int) (line, col int) {
	if pos > len(src) {
		pos = len(src)
	}

	line = 1 + bytes.Count(src[:pos], []byte{'\n'})
	col = 1 + pos - (bytes.LastIndexByte(src[:pos], '\n') + 1)

	return line, col
}

// Excerpt returns the source line containing pos followed by a caret line pointing at it.
func Excerpt(src []byte, pos int) []byte {
	if pos > len(src) {
		pos = len(src)
	}

	st := bytes.LastIndexByte(src[:pos], '\n') + 1

	end := bytes.IndexByte(src[pos:], '\n')
	if end < 0 {
		end = len(src)
	} else {
		end += pos
	}

	var b []byte

	b = append(b, src[st:end]...)
	b = append(b, '\n')

	for _, c := range src[st:pos] {
		if c == '\t' {
			b = append(b, '\t')
		} else {
			b = append(b, ' ')
		}
	}

	b = append(b, "^\n"...)

	return b
}
