package compiler

import (
	"context"
	"os"
	"sync"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/minipy/compiler/ast"
	"github.com/slowlang/minipy/compiler/cst"
	"github.com/slowlang/minipy/compiler/diag"
	"github.com/slowlang/minipy/compiler/lower"
	"github.com/slowlang/minipy/compiler/symtab"
	"github.com/slowlang/minipy/compiler/wat"
)

type (
	Result struct {
		Name string

		Stmts   []ast.Stmt
		Listing wat.Listing
		Symbols *symtab.Table
	}

	// Session compiles a sequence of snippets where later ones
	// may refer to variables defined by earlier ones.
	Session struct {
		mu  sync.Mutex
		tab *symtab.Table
	}
)

func CompileFile(ctx context.Context, name string) (*Result, error) {
	text, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	tlog.SpanFromContext(ctx).Printw("read file", "size", len(text), "name", name)

	return Compile(ctx, name, text)
}

// Compile compiles text with a symbol table of its own.
// Nothing is returned but the first error if any stage fails.
func Compile(ctx context.Context, name string, text []byte) (*Result, error) {
	return compile(ctx, name, text, symtab.New())
}

func compile(ctx context.Context, name string, text []byte, tab *symtab.Table) (res *Result, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "compile", "name", name, "size", len(text))
	defer tr.Finish("err", &err)

	tree, err := cst.Parse(ctx, text)
	if err != nil {
		return nil, errors.Wrap(err, "parse text")
	}

	stmts, err := lower.Lower(ctx, tree, text)
	if err != nil {
		return nil, errors.Wrap(err, "lower")
	}

	l, err := wat.Generate(ctx, stmts, tab)
	if err != nil {
		var de *diag.Error
		if errors.As(err, &de) {
			de.Fill(text)
		}

		return nil, errors.Wrap(err, "generate")
	}

	return &Result{
		Name:    name,
		Stmts:   stmts,
		Listing: l,
		Symbols: tab,
	}, nil
}

func NewSession() *Session {
	return &Session{
		tab: symtab.New(),
	}
}

// Compile compiles text against the variables defined so far.
// The session is left unchanged if compilation fails.
func (s *Session) Compile(ctx context.Context, name string, text []byte) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tab := s.tab.Clone()

	res, err := compile(ctx, name, text, tab)
	if err != nil {
		return nil, err
	}

	s.tab = tab
	res.Symbols = tab.Clone()

	return res, nil
}

// Symbols returns a copy of the variables defined so far.
func (s *Session) Symbols() *symtab.Table {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tab.Clone()
}
