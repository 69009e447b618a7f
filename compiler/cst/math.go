package cst

import (
	"context"

	"tlog.app/go/errors"
)

type (
	// Expr is a full expression. Spaces is what may separate its tokens:
	// SpaceTab at statement level, SpaceAll inside brackets.
	Expr struct {
		Spaces Spaces
	}

	LeftToRight struct {
		Op  Parser
		Arg Parser
	}

	term    struct{ ss Spaces }
	factor  struct{ ss Spaces }
	power   struct{ ss Spaces }
	primary struct{ ss Spaces }
	atom    struct{ ss Spaces }
	paren   struct{}
	args    struct{}
)

var (
	addOps   = []string{"+", "-", "|", "^", "&", "<<", ">>"}
	mulOps   = []string{"*", "/", "//", "%", "@"}
	unaryOps = []string{"+", "-", "~"}
)

func (p Expr) Parse(ctx context.Context, b []byte, st int) (x *Node, i int, err error) {
	r := LeftToRight{
		Op:  Spaced(Op{Kind: ArithOp, Ops: addOps}, p.Spaces),
		Arg: term{ss: p.Spaces},
	}

	return r.Parse(ctx, b, st)
}

func (Expr) String() string { return "expression" }

func (p LeftToRight) Parse(ctx context.Context, b []byte, st int) (x *Node, i int, err error) {
	x, i, err = p.Arg.Parse(ctx, b, st)
	if err != nil {
		return nil, i, err
	}

	for i < len(b) {
		var op *Node
		opst := i
		op, i, err = p.Op.Parse(ctx, b, i)
		if i == opst {
			err = nil
			break
		}
		if err != nil {
			return nil, i, errors.Wrap(err, "op")
		}

		var r *Node
		r, i, err = p.Arg.Parse(ctx, b, i)
		if err != nil {
			return nil, i, errors.Wrap(err, "after %q", b[op.Pos:op.End])
		}

		x = branch(BinaryExpression, x, op, r)
	}

	return
}

func (p LeftToRight) String() string { return name(p.Arg) }

func (p term) Parse(ctx context.Context, b []byte, st int) (x *Node, i int, err error) {
	r := LeftToRight{
		Op:  Spaced(Op{Kind: ArithOp, Ops: mulOps}, p.ss),
		Arg: factor(p),
	}

	return r.Parse(ctx, b, st)
}

func (term) String() string { return "expression" }

func (p factor) Parse(ctx context.Context, b []byte, st int) (x *Node, i int, err error) {
	i = p.ss.Skip(b, st)

	op, i, err := Op{Kind: ArithOp, Ops: unaryOps}.Parse(ctx, b, i)
	if err != nil {
		return power(p).Parse(ctx, b, st)
	}

	if b[op.Pos] == '~' {
		op.Kind = BitOp
	}

	arg, i, err := p.Parse(ctx, b, i)
	if err != nil {
		return nil, i, errors.Wrap(err, "unary %q", b[op.Pos:op.End])
	}

	return branch(UnaryExpression, op, arg), i, nil
}

func (factor) String() string { return "expression" }

func (p power) Parse(ctx context.Context, b []byte, st int) (x *Node, i int, err error) {
	x, i, err = primary(p).Parse(ctx, b, st)
	if err != nil {
		return
	}

	op, j, err := Spaced(Op{Kind: ArithOp, Ops: []string{"**"}}, p.ss).Parse(ctx, b, i)
	if err != nil {
		return x, i, nil
	}

	r, j, err := factor(p).Parse(ctx, b, j)
	if err != nil {
		return nil, j, errors.Wrap(err, "after **")
	}

	return branch(BinaryExpression, x, op, r), j, nil
}

func (p primary) Parse(ctx context.Context, b []byte, st int) (x *Node, i int, err error) {
	x, i, err = atom(p).Parse(ctx, b, st)
	if err != nil {
		return
	}

	for {
		l, j, err := Spaced(args{}, p.ss).Parse(ctx, b, i)
		if j == i {
			return x, i, nil
		}
		if err != nil {
			return nil, j, errors.Wrap(err, "call")
		}

		x = branch(CallExpression, x, l)
		i = j
	}
}

func (p atom) Parse(ctx context.Context, b []byte, st int) (x *Node, i int, err error) {
	return Spaced(AnyOf{Num{}, Ident{}, paren{}}, p.ss).Parse(ctx, b, st)
}

func (paren) Parse(ctx context.Context, b []byte, st int) (x *Node, i int, err error) {
	l, i, err := Token("(").Parse(ctx, b, st)
	if err != nil {
		return nil, st, err
	}

	e, i, err := Expr{Spaces: SpaceAll}.Parse(ctx, b, i)
	if err != nil {
		return nil, i, errors.Wrap(err, "parenthesized")
	}

	r, i, err := Spaced(Token(")"), SpaceAll).Parse(ctx, b, i)
	if err != nil {
		return nil, i, err
	}

	return branch(ParenthesizedExpression, l, e, r), i, nil
}

func (paren) String() string { return "'('" }

// Parse reads a call argument list including both parentheses.
// A trailing comma is allowed.
func (args) Parse(ctx context.Context, b []byte, st int) (x *Node, i int, err error) {
	l, i, err := Token("(").Parse(ctx, b, st)
	if err != nil {
		return nil, st, err
	}

	ch := []*Node{l}

	for {
		r, j, err := Spaced(Token(")"), SpaceAll).Parse(ctx, b, i)
		if err == nil {
			ch = append(ch, r)

			return branch(ArgList, ch...), j, nil
		}

		e, j, err := Expr{Spaces: SpaceAll}.Parse(ctx, b, i)
		if err != nil {
			return nil, j, errors.Wrap(err, "argument %d", len(ch)/2)
		}

		ch = append(ch, e)
		i = j

		c, j, err := Spaced(Token(","), SpaceAll).Parse(ctx, b, i)
		if err == nil {
			ch = append(ch, c)
			i = j

			continue
		}

		r, j, err = Spaced(Token(")"), SpaceAll).Parse(ctx, b, i)
		if err != nil {
			return nil, SpaceAll.Skip(b, j), errors.New("',' or ')' expected")
		}

		ch = append(ch, r)

		return branch(ArgList, ch...), j, nil
	}
}
