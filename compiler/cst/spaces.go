package cst

import "context"

type (
	Spaces uint64

	Spacer struct {
		Spaces Spaces
		Of     Parser
	}
)

var (
	SpaceTab = NewSpaces(' ', '\t', '\r')
	SpaceAll = NewSpaces(' ', '\t', '\r', '\n')
)

func NewSpaces(skip ...byte) (ss Spaces) {
	for _, q := range skip {
		if q >= 64 {
			panic("too high char code")
		}

		ss |= 1 << q
	}

	return
}

// Skip skips spaces, comments and line continuations.
// Comments end before the newline so it can still terminate a statement.
func (s Spaces) Skip(b []byte, st int) (i int) {
	i = st

	for i < len(b) {
		switch c := b[i]; {
		case c < 64 && s&(1<<c) != 0:
			i++
		case c == '#':
			i = skipLine(b, i)
		case c == '\\' && i+1 < len(b) && b[i+1] == '\n':
			i += 2
		default:
			return i
		}
	}

	return i
}

func Spaced(p Parser, ss Spaces) Spacer {
	return Spacer{
		Spaces: ss,
		Of:     p,
	}
}

func (p Spacer) Parse(ctx context.Context, b []byte, st int) (x *Node, i int, err error) {
	vst := p.Spaces.Skip(b, st)

	x, i, err = p.Of.Parse(ctx, b, vst)
	if err != nil && i == vst {
		i = st
	}

	return
}

func skipLine(b []byte, i int) int {
	for i < len(b) && b[i] != '\n' {
		i++
	}

	return i
}

func (p Spacer) String() string { return name(p.Of) }
