package cst

import (
	"context"

	"tlog.app/go/errors"
)

type Num struct{}

// Parse takes anything that looks like a numeric literal: decimal, prefixed
// (0x, 0o, 0b) and float forms. Deciding which of them are allowed is up to the caller.
func (p Num) Parse(ctx context.Context, b []byte, st int) (x *Node, i int, err error) {
	i = st

	if i+1 < len(b) && b[i] == '0' {
		switch b[i+1] {
		case 'x', 'X', 'o', 'O', 'b', 'B':
			i += 2

			for i < len(b) && isAlnum(b[i]) {
				i++
			}

			return leaf(Number, st, i), i, nil
		}
	}

	dst := i
	dot := false
	exp := false

loop:
	for ; i < len(b); i++ {
		switch c := b[i]; {
		case c >= '0' && c <= '9' || c == '_':
		case !dot && !exp && c == '.':
			dot = true
		case !exp && i != dst && (c == 'e' || c == 'E'):
			exp = true

			if i+1 < len(b) && (b[i+1] == '+' || b[i+1] == '-') {
				i++
			}
		default:
			break loop
		}
	}

	if i == dst || i == dst+1 && b[dst] == '.' || b[dst] == '_' {
		return nil, st, errors.New("number expected")
	}

	return leaf(Number, st, i), i, nil
}

func (Num) String() string { return "number" }

func isAlnum(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}
