package ast

type (
	Node interface {
		Span() (pos, end int)
	}

	Stmt interface {
		Node
		stmt()
	}

	Expr interface {
		Node
		expr()
	}

	// Base is a byte range in the source text.
	Base struct {
		Pos int
		End int
	}

	Define struct {
		Base `tlog:",embed"`

		Name  string
		Value Expr
	}

	ExprStmt struct {
		Base `tlog:",embed"`

		Expr Expr
	}

	Number struct {
		Base `tlog:",embed"`

		Value int64
	}

	Ident struct {
		Base `tlog:",embed"`

		Name string
	}

	Call1 struct {
		Base `tlog:",embed"`

		Func Intrinsic
		Arg  Expr
	}

	Call2 struct {
		Base `tlog:",embed"`

		Func Intrinsic
		Args [2]Expr
	}

	BinOp struct {
		Base `tlog:",embed"`

		Op    BinaryOp
		Left  Expr
		Right Expr
	}
)

func (b Base) Span() (pos, end int) { return b.Pos, b.End }

func (Define) stmt()   {}
func (ExprStmt) stmt() {}

func (Number) expr() {}
func (Ident) expr()  {}
func (Call1) expr()  {}
func (Call2) expr()  {}
func (BinOp) expr()  {}
