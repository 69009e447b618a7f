package cst

import (
	"context"
	"fmt"
	"strings"

	"tlog.app/go/errors"
)

type (
	Parser interface {
		Parse(ctx context.Context, b []byte, st int) (x *Node, i int, err error)
	}

	AnyOf []Parser

	// Wrap puts the result of Of under a new node of the given Kind.
	Wrap struct {
		Kind string
		Of   Parser
	}
)

func (p AnyOf) Parse(ctx context.Context, b []byte, st int) (_ *Node, i int, err error) {
	for _, r := range p {
		x, j, e := r.Parse(ctx, b, st)
		if e == nil {
			return x, j, nil
		}
		if j == st {
			continue
		}
		if err == nil {
			i = j
			err = e
		}
	}

	if err != nil {
		return
	}

	return nil, st, errors.New("expected %v", joinHuman(p...))
}

func (p AnyOf) String() string { return joinHuman(p...) }

func (p Wrap) Parse(ctx context.Context, b []byte, st int) (x *Node, i int, err error) {
	x, i, err = p.Of.Parse(ctx, b, st)
	if err != nil {
		return nil, i, err
	}

	return branch(p.Kind, x), i, nil
}

func (p Wrap) String() string { return name(p.Of) }

func name(p Parser) string {
	if s, ok := p.(fmt.Stringer); ok {
		return s.String()
	}

	return fmt.Sprintf("%T", p)
}

func joinHuman(l ...Parser) string {
	switch len(l) {
	case 0:
		return "<none>"
	case 1:
		return name(l[0])
	}

	var b strings.Builder

	for i, r := range l {
		if i+1 == len(l) {
			b.WriteString(" or ")
		} else if i != 0 {
			b.WriteString(", ")
		}

		b.WriteString(name(r))
	}

	return b.String()
}
