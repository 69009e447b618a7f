package main

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/kr/pretty"
	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/minipy/compiler"
	"github.com/slowlang/minipy/compiler/ast"
	"github.com/slowlang/minipy/compiler/cst"
	"github.com/slowlang/minipy/compiler/diag"
	"github.com/slowlang/minipy/compiler/lower"
	"github.com/slowlang/minipy/compiler/vm"
	"github.com/slowlang/minipy/compiler/wat"
	"github.com/slowlang/minipy/config"
)

func main() {
	cfg := config.FromEnv()

	flags := func() []*cli.Flag {
		return []*cli.Flag{
			cli.NewFlag("log", cfg.Log, "tlog verbosity filter (topics: dump_tree, dump_ast, dump_listing, symbols, vm_trace)"),
			cli.NewFlag("trace", cfg.Trace, "log every executed instruction"),
			cli.NewFlag("entry", cfg.Module.Entry, "exported function name for module output"),
			cli.NewFlag("import-module", cfg.Module.ImportModule, "module name intrinsics are imported from"),
		}
	}

	cmd := func(name, desc string, act func(*cli.Command) error) *cli.Command {
		return &cli.Command{
			Name:        name,
			Description: desc,
			Action:      act,
			Args:        cli.Args{},
			Flags:       flags(),
		}
	}

	app := &cli.Command{
		Name:        "minipy",
		Description: "minipy compiles a small python subset to a stack machine listing",
		Commands: []*cli.Command{
			cmd("tree", "print concrete syntax tree", treeAct),
			cmd("ast", "print abstract syntax tree", astAct),
			cmd("compile", "print instruction listing", compileAct),
			cmd("module", "print listing wrapped into a module", moduleAct),
			cmd("run", "compile and execute", runAct),
			cmd("exec", "execute a listing file", execAct),
			cmd("repl", "read, compile and execute statements line by line", replAct),
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func setup(c *cli.Command) (context.Context, config.Config) {
	cfg := config.Config{
		Log:   c.String("log"),
		Trace: c.Bool("trace"),
		Module: wat.ModuleConfig{
			Entry:        c.String("entry"),
			ImportModule: c.String("import-module"),
		},
	}

	tlog.SetVerbosity(cfg.Filter())

	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	return ctx, cfg
}

func treeAct(c *cli.Command) (err error) {
	ctx, _ := setup(c)

	for _, a := range c.Args {
		x, text, err := cst.ParseFile(ctx, a)
		if err != nil {
			return report(err, text, a)
		}

		os.Stdout.Write(cst.Dump(nil, text, x))
	}

	return nil
}

func astAct(c *cli.Command) (err error) {
	ctx, _ := setup(c)

	for _, a := range c.Args {
		x, text, err := cst.ParseFile(ctx, a)
		if err != nil {
			return report(err, text, a)
		}

		stmts, err := lower.Lower(ctx, x, text)
		if err != nil {
			return report(err, text, a)
		}

		for _, s := range stmts {
			fmt.Printf("%# v\n", pretty.Formatter(s))
		}
	}

	return nil
}

func compileAct(c *cli.Command) (err error) {
	ctx, _ := setup(c)

	for _, a := range c.Args {
		res, err := compileFile(ctx, a)
		if err != nil {
			return err
		}

		fmt.Printf("%s", res.Listing.AppendText(nil))
	}

	return nil
}

func moduleAct(c *cli.Command) (err error) {
	ctx, cfg := setup(c)

	for _, a := range c.Args {
		res, err := compileFile(ctx, a)
		if err != nil {
			return err
		}

		fmt.Printf("%s", wat.Module(nil, res.Listing, cfg.Module))
	}

	return nil
}

func runAct(c *cli.Command) (err error) {
	ctx, _ := setup(c)

	for _, a := range c.Args {
		res, err := compileFile(ctx, a)
		if err != nil {
			return err
		}

		_, err = vm.New(os.Stdout).Run(ctx, res.Listing)
		if err != nil {
			return errors.Wrap(err, "run %v", a)
		}
	}

	return nil
}

func execAct(c *cli.Command) (err error) {
	ctx, _ := setup(c)

	for _, a := range c.Args {
		text, err := os.ReadFile(a)
		if err != nil {
			return errors.Wrap(err, "read %v", a)
		}

		l, err := wat.ParseListing(text)
		if err != nil {
			return errors.Wrap(err, "parse listing %v", a)
		}

		_, err = vm.New(os.Stdout).Run(ctx, l)
		if err != nil {
			return errors.Wrap(err, "exec %v", a)
		}
	}

	return nil
}

func replAct(c *cli.Command) (err error) {
	ctx, _ := setup(c)

	s := compiler.NewSession()
	m := vm.New(os.Stdout)

	sc := bufio.NewScanner(os.Stdin)

	for n := 1; ; n++ {
		fmt.Fprintf(os.Stderr, ">>> ")

		if !sc.Scan() {
			break
		}

		line := sc.Bytes()
		name := fmt.Sprintf("<stdin:%d>", n)

		res, err := s.Compile(ctx, name, line)
		if err != nil {
			_ = report(err, line, name)
			continue
		}

		v, err := m.Continue(ctx, res.Listing)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			continue
		}

		if echo(res.Stmts) {
			fmt.Printf("%d\n", v)
		}
	}

	fmt.Fprintf(os.Stderr, "\n")

	if err = sc.Err(); err != nil {
		return errors.Wrap(err, "read stdin")
	}

	return nil
}

// echo reports whether the value of the last statement should be shown,
// which is when it is an expression that does not print it already.
func echo(stmts []ast.Stmt) bool {
	if len(stmts) == 0 {
		return false
	}

	s, ok := stmts[len(stmts)-1].(ast.ExprStmt)
	if !ok {
		return false
	}

	call, ok := s.Expr.(ast.Call1)

	return !ok || call.Func != ast.Print
}

func compileFile(ctx context.Context, name string) (*compiler.Result, error) {
	text, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read %v", name)
	}

	res, err := compiler.Compile(ctx, name, text)
	if err != nil {
		return nil, report(err, text, name)
	}

	return res, nil
}

// report prints the source line the error points at and returns err wrapped with the position.
func report(err error, text []byte, name string) error {
	var de *diag.Error
	if !errors.As(err, &de) || text == nil {
		return errors.Wrap(err, "%v", name)
	}

	line, col := diag.LineCol(text, de.Pos)

	fmt.Fprintf(os.Stderr, "%s:%d:%d: %v\n", name, line, col, de)
	os.Stderr.Write(diag.Excerpt(text, de.Pos))

	return errors.Wrap(err, "%v:%d:%d", name, line, col)
}
