package lower

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowlang/minipy/compiler/ast"
	"github.com/slowlang/minipy/compiler/cst"
	"github.com/slowlang/minipy/compiler/diag"
)

func lowerText(t *testing.T, src string) ([]ast.Stmt, error) {
	t.Helper()

	ctx := context.Background()

	x, err := cst.Parse(ctx, []byte(src))
	require.NoError(t, err, "parse %q", src)

	return Lower(ctx, x, []byte(src))
}

// strip zeroes spans so trees can be compared structurally.
func strip(n ast.Node) ast.Node {
	switch n := n.(type) {
	case ast.Define:
		n.Base = ast.Base{}
		n.Value = strip(n.Value).(ast.Expr)
		return n
	case ast.ExprStmt:
		n.Base = ast.Base{}
		n.Expr = strip(n.Expr).(ast.Expr)
		return n
	case ast.Number:
		n.Base = ast.Base{}
		return n
	case ast.Ident:
		n.Base = ast.Base{}
		return n
	case ast.Call1:
		n.Base = ast.Base{}
		n.Arg = strip(n.Arg).(ast.Expr)
		return n
	case ast.Call2:
		n.Base = ast.Base{}
		n.Args[0] = strip(n.Args[0]).(ast.Expr)
		n.Args[1] = strip(n.Args[1]).(ast.Expr)
		return n
	case ast.BinOp:
		n.Base = ast.Base{}
		n.Left = strip(n.Left).(ast.Expr)
		n.Right = strip(n.Right).(ast.Expr)
		return n
	default:
		panic(n)
	}
}

func stripAll(l []ast.Stmt) []ast.Stmt {
	for i, s := range l {
		l[i] = strip(s).(ast.Stmt)
	}

	return l
}

func num(v int64) ast.Number   { return ast.Number{Value: v} }
func id(name string) ast.Ident { return ast.Ident{Name: name} }

func TestLower(t *testing.T) {
	for _, tc := range []struct {
		In  string
		Out []ast.Stmt
	}{
		{"987", []ast.Stmt{ast.ExprStmt{Expr: num(987)}}},
		{"x", []ast.Stmt{ast.ExprStmt{Expr: id("x")}}},
		{"print(3)", []ast.Stmt{ast.ExprStmt{Expr: ast.Call1{Func: ast.Print, Arg: num(3)}}}},
		{"abs(x)", []ast.Stmt{ast.ExprStmt{Expr: ast.Call1{Func: ast.Abs, Arg: id("x")}}}},
		{"max(2,3)", []ast.Stmt{ast.ExprStmt{Expr: ast.Call2{Func: ast.Max, Args: [2]ast.Expr{num(2), num(3)}}}}},
		{"pow(2, x)", []ast.Stmt{ast.ExprStmt{Expr: ast.Call2{Func: ast.Pow, Args: [2]ast.Expr{num(2), id("x")}}}}},
		{"2+3", []ast.Stmt{ast.ExprStmt{Expr: ast.BinOp{Op: ast.Add, Left: num(2), Right: num(3)}}}},
		{"x=4", []ast.Stmt{ast.Define{Name: "x", Value: num(4)}}},
		{"x=4\nprint(x)", []ast.Stmt{
			ast.Define{Name: "x", Value: num(4)},
			ast.ExprStmt{Expr: ast.Call1{Func: ast.Print, Arg: id("x")}},
		}},
		{"x=-4\nprint(x)", []ast.Stmt{
			ast.Define{Name: "x", Value: num(-4)},
			ast.ExprStmt{Expr: ast.Call1{Func: ast.Print, Arg: id("x")}},
		}},
		{"+7", []ast.Stmt{ast.ExprStmt{Expr: num(7)}}},
		{"--5", []ast.Stmt{ast.ExprStmt{Expr: num(5)}}},
		{"-(5)", []ast.Stmt{ast.ExprStmt{Expr: num(-5)}}},
		{"(1 + 2) * 3", []ast.Stmt{ast.ExprStmt{Expr: ast.BinOp{
			Op:    ast.Mul,
			Left:  ast.BinOp{Op: ast.Add, Left: num(1), Right: num(2)},
			Right: num(3),
		}}}},
		{"a - b * c", []ast.Stmt{ast.ExprStmt{Expr: ast.BinOp{
			Op:    ast.Sub,
			Left:  id("a"),
			Right: ast.BinOp{Op: ast.Mul, Left: id("b"), Right: id("c")},
		}}}},
		{"y = min(max(1, -2), abs(3 - x))", []ast.Stmt{ast.Define{Name: "y", Value: ast.Call2{
			Func: ast.Min,
			Args: [2]ast.Expr{
				ast.Call2{Func: ast.Max, Args: [2]ast.Expr{num(1), num(-2)}},
				ast.Call1{Func: ast.Abs, Arg: ast.BinOp{Op: ast.Sub, Left: num(3), Right: id("x")}},
			},
		}}}},
		{"", []ast.Stmt{}},
	} {
		stmts, err := lowerText(t, tc.In)
		require.NoError(t, err, "%q", tc.In)

		assert.Equal(t, tc.Out, stripAll(stmts), "%q", tc.In)
	}
}

func TestLowerSpans(t *testing.T) {
	stmts, err := lowerText(t, "x = 4\ny = -x1 + 2")
	require.Error(t, err)

	stmts, err = lowerText(t, "x = 4\nprint(x + -3)")
	require.NoError(t, err)
	require.Len(t, stmts, 2)

	d := stmts[0].(ast.Define)
	assert.Equal(t, ast.Base{Pos: 0, End: 5}, d.Base)
	assert.Equal(t, ast.Base{Pos: 4, End: 5}, d.Value.(ast.Number).Base)

	c := stmts[1].(ast.ExprStmt).Expr.(ast.Call1)
	assert.Equal(t, ast.Base{Pos: 6, End: 19}, c.Base)

	b := c.Arg.(ast.BinOp)
	assert.Equal(t, ast.Base{Pos: 12, End: 18}, b.Base)
	assert.Equal(t, ast.Number{Base: ast.Base{Pos: 16, End: 18}, Value: -3}, b.Right)
}

func TestLowerErrors(t *testing.T) {
	for _, tc := range []struct {
		In   string
		Kind *diag.Kind
		Pos  int
		Text string
	}{
		{"foo(1)", diag.ErrName, 0, "foo(1)"},
		{"y = foo(1)", diag.ErrName, 4, "foo(1)"},
		{"print(1, 2)", diag.ErrName, 0, "print(1, 2)"},
		{"max(1)", diag.ErrName, 0, "max(1)"},
		{"max(1,2,3)", diag.ErrArity, 0, "max(1,2,3)"},
		{"print()", diag.ErrArity, 0, "print()"},
		{"2 / 3", diag.ErrSyntax, 2, "/"},
		{"2 ** 3", diag.ErrSyntax, 2, "**"},
		{"x = 7 % 2", diag.ErrSyntax, 6, "%"},
		{"-x", diag.ErrSyntax, 0, "-x"},
		{"~1", diag.ErrSyntax, 0, "~"},
		{"1.5", diag.ErrSyntax, 0, "1.5"},
		{"017", diag.ErrSyntax, 0, "017"},
		{"x = -01", diag.ErrSyntax, 4, "-01"},
		{"0x", diag.ErrSyntax, 0, "0x"},
		{"0b12", diag.ErrSyntax, 0, "0b12"},
		{"1__0", diag.ErrSyntax, 0, "1__0"},
		{"1_", diag.ErrSyntax, 0, "1_"},
		{"1e3", diag.ErrSyntax, 0, "1e3"},
		{"0x8000000000000000", diag.ErrOverflow, 0, "0x8000000000000000"},
		{"(1)(2)", diag.ErrSyntax, 0, "(1)"},
		{"99999999999999999999", diag.ErrOverflow, 0, "99999999999999999999"},
		{"print(abs(foo(1)))", diag.ErrName, 10, "foo(1)"},
	} {
		_, err := lowerText(t, tc.In)
		require.Error(t, err, "%q", tc.In)
		require.ErrorIs(t, err, tc.Kind, "%q: %v", tc.In, err)

		var de *diag.Error
		require.ErrorAs(t, err, &de)
		assert.Equal(t, tc.Pos, de.Pos, "%q", tc.In)
		assert.Equal(t, tc.Text, de.Text, "%q", tc.In)
	}
}

func TestLowerIntegerForms(t *testing.T) {
	for _, tc := range []struct {
		In  string
		Out int64
	}{
		{"0x10", 16},
		{"0X1f", 31},
		{"0o17", 15},
		{"0b101", 5},
		{"1_000", 1000},
		{"0x_ff", 255},
		{"0", 0},
		{"00", 0},
		{"0_0", 0},
		{"-0x10", -16},
		{"-0b1", -1},
	} {
		stmts, err := lowerText(t, tc.In)
		require.NoError(t, err, "%q", tc.In)

		assert.Equal(t, []ast.Stmt{ast.ExprStmt{Expr: num(tc.Out)}}, stripAll(stmts), "%q", tc.In)
	}
}

func TestLowerNotScript(t *testing.T) {
	src := []byte("1")

	x, err := cst.Parse(context.Background(), src)
	require.NoError(t, err)

	_, err = Lower(context.Background(), x.Children[0], src)
	require.ErrorIs(t, err, diag.ErrSyntax)
}

func TestLowerLiteralRange(t *testing.T) {
	for _, v := range []int64{
		-1 << 31, -1<<31 + 1, -65536, -1, 0, 1, 42, 65535, 1<<31 - 2, 1<<31 - 1,
		1 << 31, -1<<31 - 1, 1 << 40, -1 << 62,
	} {
		src := fmt.Sprintf("x = %d", v)

		stmts, err := lowerText(t, src)
		require.NoError(t, err, "%q", src)

		assert.Equal(t, []ast.Stmt{ast.Define{Name: "x", Value: num(v)}}, stripAll(stmts), "%q", src)
	}
}

func TestLowerSingle(t *testing.T) {
	src := []byte("x = 2 * y")

	x, err := cst.Parse(context.Background(), src)
	require.NoError(t, err)

	s, err := Stmt(x.Children[0], src)
	require.NoError(t, err)
	assert.Equal(t, "x", s.(ast.Define).Name)

	e, err := Expr(x.Children[0].Children[2], src)
	require.NoError(t, err)
	assert.Equal(t, ast.BinOp{Op: ast.Mul, Left: num(2), Right: id("y")}, strip(e))
}
