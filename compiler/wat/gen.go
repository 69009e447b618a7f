package wat

import (
	"context"
	"math"

	"tlog.app/go/errors"
	"tlog.app/go/loc"
	"tlog.app/go/tlog"

	"github.com/slowlang/minipy/compiler/ast"
	"github.com/slowlang/minipy/compiler/diag"
	"github.com/slowlang/minipy/compiler/symtab"
)

type gen struct {
	tab *symtab.Table
}

var binOps = [...]Op{
	ast.Add: Add,
	ast.Sub: Sub,
	ast.Mul: Mul,
}

// Generate emits the listing for stmts.
// Every Define adds its name to tab, and identifiers must already be in tab when referenced.
// The local declarations for everything in tab are put in front after the body is generated.
// Errors are *diag.Error without source text.
func Generate(ctx context.Context, stmts []ast.Stmt, tab *symtab.Table) (l Listing, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "wat: generate", "stmts", len(stmts), "symbols", tab.Len())
	defer tr.Finish("err", &err)

	g := &gen{tab: tab}

	var body Listing

	for i, s := range stmts {
		body, err = g.stmt(body, s)
		if err != nil {
			return nil, errors.Wrap(err, "stmt %d", i)
		}
	}

	l = make(Listing, 0, 1+tab.Len()+len(body))
	l = append(l, Instr{Op: Local, Name: Scratch})

	for _, name := range tab.Names() {
		l = append(l, Instr{Op: Local, Name: name})
	}

	l = append(l, body...)

	if tr.If("dump_listing") {
		for i, x := range l {
			tr.Printw("instr", "i", i, "instr", x)
		}
	}

	return l, nil
}

func (g *gen) stmt(b Listing, s ast.Stmt) (_ Listing, err error) {
	switch s := s.(type) {
	case ast.Define:
		b, err = g.expr(b, s.Value)
		if err != nil {
			return nil, errors.Wrap(err, "define %v", s.Name)
		}

		g.tab.Define(s.Name)

		return append(b, Instr{Op: Set, Name: s.Name}), nil
	case ast.ExprStmt:
		b, err = g.expr(b, s.Expr)
		if err != nil {
			return nil, err
		}

		return append(b, Instr{Op: Set, Name: Scratch}), nil
	default:
		return nil, g.internal(s, "unsupported statement: %T", s)
	}
}

func (g *gen) expr(b Listing, x ast.Expr) (_ Listing, err error) {
	switch x := x.(type) {
	case ast.Number:
		if x.Value < math.MinInt32 || x.Value > math.MaxInt32 {
			return nil, diag.At(diag.ErrOverflow, x, nil, "%d does not fit in i32", x.Value)
		}

		return append(b, Instr{Op: Const, Value: int32(x.Value)}), nil
	case ast.Ident:
		if !g.tab.Has(x.Name) {
			return nil, diag.At(diag.ErrReference, x, nil, "undefined variable %v", x.Name)
		}

		return append(b, Instr{Op: Get, Name: x.Name}), nil
	case ast.Call1:
		b, err = g.expr(b, x.Arg)
		if err != nil {
			return nil, errors.Wrap(err, "%v arg", x.Func)
		}

		return g.call(b, x, x.Func)
	case ast.Call2:
		for i, a := range x.Args {
			b, err = g.expr(b, a)
			if err != nil {
				return nil, errors.Wrap(err, "%v arg %d", x.Func, i)
			}
		}

		return g.call(b, x, x.Func)
	case ast.BinOp:
		b, err = g.expr(b, x.Left)
		if err != nil {
			return nil, errors.Wrap(err, "left")
		}

		b, err = g.expr(b, x.Right)
		if err != nil {
			return nil, errors.Wrap(err, "right")
		}

		if !x.Op.Valid() || int(x.Op) >= len(binOps) {
			return nil, g.internal(x, "no instruction for operator %v", x.Op)
		}

		return append(b, Instr{Op: binOps[x.Op]}), nil
	default:
		return nil, g.internal(x, "unsupported expression: %T", x)
	}
}

func (g *gen) call(b Listing, x ast.Node, f ast.Intrinsic) (Listing, error) {
	if !f.Valid() {
		return nil, g.internal(x, "unknown intrinsic %v", f)
	}

	return append(b, Instr{Op: Call, Name: f.String()}), nil
}

func (g *gen) internal(n ast.Node, f string, args ...any) error {
	e := diag.At(diag.ErrInternal, n, nil, f, args...)
	e.From = loc.Caller(1)

	tlog.Printw("internal compiler error", "err", e, "from", e.From)

	return e
}
