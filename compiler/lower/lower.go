package lower

import (
	"context"
	"math"
	"strconv"
	"strings"

	"tlog.app/go/errors"
	"tlog.app/go/loc"
	"tlog.app/go/tlog"

	"github.com/slowlang/minipy/compiler/ast"
	"github.com/slowlang/minipy/compiler/cst"
	"github.com/slowlang/minipy/compiler/diag"
)

type lowerer struct {
	src []byte
}

// Lower converts a concrete Script tree into statements.
// src is the text the tree was parsed from.
func Lower(ctx context.Context, tree *cst.Node, src []byte) (stmts []ast.Stmt, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "lower", "nodes", len(tree.Children))
	defer tr.Finish("err", &err)

	if tree.Kind != cst.Script {
		return nil, diag.At(diag.ErrSyntax, tree, src, "could not parse program: %v", tree.Kind)
	}

	l := &lowerer{src: src}

	stmts = make([]ast.Stmt, 0, len(tree.Children))

	for i, n := range tree.Children {
		s, err := l.stmt(n)
		if err != nil {
			return nil, errors.Wrap(err, "stmt %d", i)
		}

		stmts = append(stmts, s)
	}

	if tr.If("dump_ast") {
		for i, s := range stmts {
			tr.Printw("stmt", "i", i, "typ", tlog.NextAsType, s, "stmt", s)
		}
	}

	return stmts, nil
}

// Stmt lowers a single statement node.
func Stmt(n *cst.Node, src []byte) (ast.Stmt, error) {
	return (&lowerer{src: src}).stmt(n)
}

// Expr lowers a single expression node.
func Expr(n *cst.Node, src []byte) (ast.Expr, error) {
	return (&lowerer{src: src}).expr(n)
}

func (l *lowerer) stmt(n *cst.Node) (ast.Stmt, error) {
	base := ast.Base{Pos: n.Pos, End: n.End}

	switch n.Kind {
	case cst.AssignStatement:
		if len(n.Children) != 3 || n.Children[0].Kind != cst.VariableName {
			return nil, l.errorf(diag.ErrSyntax, n, "unsupported assignment target")
		}

		v, err := l.expr(n.Children[2])
		if err != nil {
			return nil, errors.Wrap(err, "assign %v", l.text(n.Children[0]))
		}

		return ast.Define{
			Base:  base,
			Name:  l.text(n.Children[0]),
			Value: v,
		}, nil
	case cst.ExpressionStatement:
		x, err := l.expr(n.Children[0])
		if err != nil {
			return nil, err
		}

		return ast.ExprStmt{
			Base: base,
			Expr: x,
		}, nil
	default:
		return nil, l.errorf(diag.ErrSyntax, n, "could not parse statement: %v", n.Kind)
	}
}

func (l *lowerer) expr(n *cst.Node) (ast.Expr, error) {
	base := ast.Base{Pos: n.Pos, End: n.End}

	switch n.Kind {
	case cst.Number:
		v, err := l.number(n, l.text(n))
		if err != nil {
			return nil, err
		}

		return ast.Number{Base: base, Value: v}, nil
	case cst.VariableName:
		return ast.Ident{Base: base, Name: l.text(n)}, nil
	case cst.ParenthesizedExpression:
		return l.expr(n.Children[1])
	case cst.CallExpression:
		return l.call(n)
	case cst.UnaryExpression:
		return l.unary(n)
	case cst.BinaryExpression:
		left, err := l.expr(n.Children[0])
		if err != nil {
			return nil, errors.Wrap(err, "left")
		}

		opn := n.Children[1]

		op, ok := ast.ParseBinaryOp(l.text(opn))
		if !ok {
			return nil, l.errorf(diag.ErrSyntax, opn, "unsupported binary operator %q", l.text(opn))
		}

		right, err := l.expr(n.Children[2])
		if err != nil {
			return nil, errors.Wrap(err, "right")
		}

		return ast.BinOp{
			Base:  base,
			Op:    op,
			Left:  left,
			Right: right,
		}, nil
	default:
		return nil, l.errorf(diag.ErrSyntax, n, "could not parse expression: %v", n.Kind)
	}
}

func (l *lowerer) call(n *cst.Node) (ast.Expr, error) {
	base := ast.Base{Pos: n.Pos, End: n.End}

	callee := n.Children[0]
	if callee.Kind != cst.VariableName {
		return nil, l.errorf(diag.ErrSyntax, callee, "unsupported callee: %v", callee.Kind)
	}

	name := l.text(callee)

	args, err := l.args(n.Children[1])
	if err != nil {
		return nil, errors.Wrap(err, "call %v", name)
	}

	switch len(args) {
	case 1, 2:
	default:
		return nil, l.errorf(diag.ErrArity, n, "%v called with %d arguments, intrinsics take 1 or 2", name, len(args))
	}

	f, _, ok := ast.LookupIntrinsic(name, len(args))
	if !ok {
		return nil, l.errorf(diag.ErrName, n, "unknown intrinsic %v with %d argument(s), expected one of %v", name, len(args), ast.Intrinsics(len(args)))
	}

	if len(args) == 1 {
		return ast.Call1{Base: base, Func: f, Arg: args[0]}, nil
	}

	return ast.Call2{Base: base, Func: f, Args: [2]ast.Expr{args[0], args[1]}}, nil
}

// args lowers the expressions of an ArgList: '(' expr ',' expr ... ')'.
func (l *lowerer) args(n *cst.Node) (args []ast.Expr, err error) {
	if n.Kind != cst.ArgList {
		return nil, l.errorf(diag.ErrSyntax, n, "argument list expected, got %v", n.Kind)
	}

	for i := 1; i < len(n.Children)-1; i += 2 {
		x, err := l.expr(n.Children[i])
		if err != nil {
			return nil, errors.Wrap(err, "arg %d", len(args))
		}

		args = append(args, x)
	}

	return args, nil
}

// unary folds the sign into the literal operand.
func (l *lowerer) unary(n *cst.Node) (ast.Expr, error) {
	base := ast.Base{Pos: n.Pos, End: n.End}

	opn, arg := n.Children[0], n.Children[1]

	op := l.text(opn)
	if op != "-" && op != "+" {
		return nil, l.errorf(diag.ErrSyntax, opn, "unsupported unary operator %q", op)
	}

	if arg.Kind == cst.Number {
		text := l.text(arg)
		if op == "-" {
			text = "-" + text
		}

		v, err := l.number(n, text)
		if err != nil {
			return nil, err
		}

		return ast.Number{Base: base, Value: v}, nil
	}

	x, err := l.expr(arg)
	if err != nil {
		return nil, errors.Wrap(err, "unary %v", op)
	}

	num, ok := x.(ast.Number)
	if !ok {
		return nil, l.errorf(diag.ErrSyntax, n, "unary %v operand must be a number literal", op)
	}

	if op == "-" {
		if num.Value == math.MinInt64 {
			return nil, l.errorf(diag.ErrOverflow, n, "integer literal out of range")
		}

		num.Value = -num.Value
	}

	num.Base = base

	return num, nil
}

// number parses an integer literal with an optional sign.
// 0x, 0o and 0b prefixes and digit separators are allowed.
// Decimals with leading zeros are not, unless the value is zero.
func (l *lowerer) number(n *cst.Node, text string) (int64, error) {
	if leadingZeros(strings.TrimLeft(text, "+-")) {
		return 0, l.errorf(diag.ErrSyntax, n, "leading zeros in decimal integer literals are not permitted")
	}

	v, err := strconv.ParseInt(text, 0, 64)
	if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
		return 0, l.errorf(diag.ErrOverflow, n, "integer literal out of range")
	}
	if err != nil {
		return 0, l.errorf(diag.ErrSyntax, n, "malformed integer literal")
	}

	return v, nil
}

func leadingZeros(d string) bool {
	if len(d) < 2 || d[0] != '0' {
		return false
	}

	switch d[1] {
	case 'x', 'X', 'o', 'O', 'b', 'B':
		return false
	}

	return strings.Trim(d, "0_") != ""
}

func (l *lowerer) text(n *cst.Node) string {
	return n.Text(l.src)
}

func (l *lowerer) errorf(k *diag.Kind, n *cst.Node, f string, args ...any) error {
	e := diag.At(k, n, l.src, f, args...)
	e.From = loc.Caller(1)

	return e
}
