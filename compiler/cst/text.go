package cst

import (
	"bytes"
	"context"
	"strings"

	"tlog.app/go/errors"
)

type (
	// Token is a fixed punctuation token. Its text is also its kind.
	Token string

	// Op matches one of Ops as a node of Kind.
	// The longest operator at the position is taken first,
	// so "*" never matches the start of "**".
	Op struct {
		Kind string
		Ops  []string
	}

	// Ident is an ASCII identifier that is not a keyword.
	// Names end up as module identifiers, which are ASCII only.
	Ident struct{}
)

var operators = []string{
	"**", "//", "==", "!=", "<=", ">=", "<<", ">>", "->", ":=",
	"+", "-", "*", "/", "%", "@", "<", ">", "=", "~", "&", "|", "^",
}

var keywords = map[string]struct{}{
	"False": {}, "None": {}, "True": {}, "and": {}, "as": {}, "assert": {},
	"async": {}, "await": {}, "break": {}, "class": {}, "continue": {},
	"def": {}, "del": {}, "elif": {}, "else": {}, "except": {}, "finally": {},
	"for": {}, "from": {}, "global": {}, "if": {}, "import": {}, "in": {},
	"is": {}, "lambda": {}, "nonlocal": {}, "not": {}, "or": {}, "pass": {},
	"raise": {}, "return": {}, "try": {}, "while": {}, "with": {}, "yield": {},
}

func (p Token) Parse(ctx context.Context, b []byte, st int) (x *Node, i int, err error) {
	if bytes.HasPrefix(b[st:], []byte(p)) {
		return leaf(string(p), st, st+len(p)), st + len(p), nil
	}

	return nil, st, errors.New("%q expected", string(p))
}

func (p Token) String() string { return "'" + string(p) + "'" }

func (p Op) Parse(ctx context.Context, b []byte, st int) (x *Node, i int, err error) {
	op := operatorAt(b, st)

	for _, q := range p.Ops {
		if op == q {
			return leaf(p.Kind, st, st+len(op)), st + len(op), nil
		}
	}

	return nil, st, errors.New("%v expected", p)
}

func (p Op) String() string { return strings.Join(p.Ops, " ") }

func operatorAt(b []byte, st int) string {
	for _, op := range operators {
		if bytes.HasPrefix(b[st:], []byte(op)) {
			return op
		}
	}

	return ""
}

func (p Ident) Parse(ctx context.Context, b []byte, st int) (x *Node, i int, err error) {
	i = st

loop:
	for i < len(b) {
		c := b[i]

		switch {
		case c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_':
			i++
		case c >= '0' && c <= '9' && i != st:
			i++
		default:
			break loop
		}
	}

	if i == st {
		return nil, st, errors.New("identifier expected")
	}

	if _, ok := keywords[string(b[st:i])]; ok {
		return nil, st, errors.New("identifier expected, got keyword %q", b[st:i])
	}

	return leaf(VariableName, st, i), i, nil
}

func (Ident) String() string { return "identifier" }
