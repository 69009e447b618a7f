package cst

import (
	"context"
	"os"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/minipy/compiler/diag"
)

type (
	State struct {
		Grammar Parser
	}

	script struct{}

	stmt struct{}

	assign struct{}
)

func ParseFile(ctx context.Context, name string) (*Node, []byte, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, nil, errors.Wrap(err, "read file")
	}

	x, err := Parse(ctx, data)

	return x, data, err
}

func Parse(ctx context.Context, text []byte) (x *Node, err error) {
	return New().Parse(ctx, text)
}

func New() *State {
	return &State{
		Grammar: script{},
	}
}

// Parse parses the whole text. Failures are *diag.Error of kind diag.ErrSyntax.
func (s *State) Parse(ctx context.Context, text []byte) (x *Node, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "cst: parse", "size", len(text))
	defer tr.Finish("err", &err)

	x, i, err := s.Grammar.Parse(ctx, text, 0)
	if err != nil {
		return nil, syntaxError(text, i, err)
	}

	if i != len(text) {
		return nil, syntaxError(text, i, errors.New("unexpected %q", text[i]))
	}

	if tr.If("dump_tree") {
		tr.Printw("concrete tree", "tree", Dump(nil, text, x))
	}

	return x, nil
}

func syntaxError(b []byte, i int, err error) error {
	end := i + 1
	if end > len(b) {
		end = len(b)
	}

	return diag.New(diag.ErrSyntax, i, end, b, "%v", err)
}

func (script) Parse(ctx context.Context, b []byte, st int) (x *Node, i int, err error) {
	x = &Node{Kind: Script, Pos: st, End: len(b)}

	i = skipSeparators(b, st)

	for i < len(b) {
		var s *Node

		s, i, err = stmt{}.Parse(ctx, b, i)
		if err != nil {
			return nil, i, errors.Wrap(err, "statement %d", len(x.Children))
		}

		x.Children = append(x.Children, s)

		i = SpaceTab.Skip(b, i)

		if i < len(b) && b[i] != '\n' && b[i] != ';' {
			return nil, i, errors.New("unexpected %q", b[i])
		}

		i = skipSeparators(b, i)
	}

	return x, i, nil
}

func (stmt) Parse(ctx context.Context, b []byte, st int) (x *Node, i int, err error) {
	return AnyOf{
		assign{},
		Wrap{Kind: ExpressionStatement, Of: Expr{Spaces: SpaceTab}},
	}.Parse(ctx, b, st)
}

func (assign) Parse(ctx context.Context, b []byte, st int) (x *Node, i int, err error) {
	name, i, err := Spaced(Ident{}, SpaceTab).Parse(ctx, b, st)
	if err != nil {
		return nil, st, err
	}

	op, i, err := Spaced(Op{Kind: AssignOp, Ops: []string{"="}}, SpaceTab).Parse(ctx, b, i)
	if err != nil {
		return nil, st, err
	}

	val, i, err := Expr{Spaces: SpaceTab}.Parse(ctx, b, i)
	if err != nil {
		return nil, i, errors.Wrap(err, "assignment value")
	}

	return branch(AssignStatement, name, op, val), i, nil
}

func (assign) String() string { return "assignment" }

func skipSeparators(b []byte, i int) int {
	for {
		i = SpaceAll.Skip(b, i)

		if i == len(b) || b[i] != ';' {
			return i
		}

		i++
	}
}
