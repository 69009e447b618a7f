package wat

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"

	"github.com/slowlang/minipy/compiler/ast"
)

type ModuleConfig struct {
	// ImportModule is the module name intrinsics are imported from.
	ImportModule string

	// Entry is the export name of the function holding the listing.
	Entry string
}

var DefaultModuleConfig = ModuleConfig{
	ImportModule: "imports",
	Entry:        "exported_func",
}

// Module wraps a listing into a module text that imports every intrinsic
// and exports one function running the listing and returning the scratch slot.
func Module(b []byte, l Listing, cfg ModuleConfig) []byte {
	if cfg.ImportModule == "" {
		cfg.ImportModule = DefaultModuleConfig.ImportModule
	}
	if cfg.Entry == "" {
		cfg.Entry = DefaultModuleConfig.Entry
	}

	b = app(b, 0, "(module\n")

	for _, f := range ast.AllIntrinsics() {
		b = app(b, 1, "(func $%v (import %q %q) (param%s) (result i32))\n", f, cfg.ImportModule, f.String(), strings.Repeat(" i32", f.Arity()))
	}

	b = append(b, '\n')
	b = app(b, 1, "(func (export %q) (result i32)\n", cfg.Entry)

	for _, i := range l {
		b = app(b, 2, "")
		b = i.AppendText(b)
		b = append(b, '\n')
	}

	b = app(b, 2, "%v\n", Instr{Op: Get, Name: Scratch})
	b = app(b, 1, ")\n")
	b = app(b, 0, ")\n")

	return b
}

// ParseListing reads a listing in the form Listing.AppendText writes.
// Blank lines and ;; comments are skipped.
func ParseListing(text []byte) (l Listing, err error) {
	s := bufio.NewScanner(bytes.NewReader(text))

	lnum := 0
	for s.Scan() {
		lnum++

		line := bytes.TrimSpace(s.Bytes())
		if i := bytes.Index(line, []byte(";;")); i >= 0 {
			line = bytes.TrimSpace(line[:i])
		}

		if len(line) == 0 {
			continue
		}

		i, err := parseInstr(string(line))
		if err != nil {
			return nil, errors.Wrap(err, "line %d", lnum)
		}

		l = append(l, i)
	}

	if err := s.Err(); err != nil {
		return nil, errors.Wrap(err, "scanner")
	}

	return l, nil
}

func parseInstr(line string) (i Instr, err error) {
	if !strings.HasPrefix(line, "(") || !strings.HasSuffix(line, ")") {
		return i, errors.New("instruction expected: %q", line)
	}

	f := strings.Fields(line[1 : len(line)-1])
	if len(f) == 0 {
		return i, errors.New("empty instruction")
	}

	var op Op = -1

	for j, name := range opNames {
		if name == f[0] {
			op = Op(j)
		}
	}

	i.Op = op

	switch op {
	case Local:
		if len(f) != 3 || f[2] != "i32" {
			return i, errors.New("bad local declaration: %q", line)
		}

		i.Name, err = slotName(f[1])
	case Const:
		if len(f) != 2 {
			return i, errors.New("bad const: %q", line)
		}

		var v int64
		v, err = strconv.ParseInt(f[1], 10, 32)
		i.Value = int32(v)
	case Get, Set, Call:
		if len(f) != 2 {
			return i, errors.New("bad %v: %q", op, line)
		}

		i.Name, err = slotName(f[1])
	case Add, Sub, Mul:
		if len(f) != 1 {
			return i, errors.New("unexpected operands: %q", line)
		}
	default:
		return i, errors.New("unknown instruction: %v", f[0])
	}

	return i, err
}

func slotName(s string) (string, error) {
	if len(s) < 2 || s[0] != '$' {
		return "", errors.New("bad name: %q", s)
	}

	return s[1:], nil
}

func app(b []byte, d int, f string, args ...any) []byte {
	const tabs = "\t\t\t\t\t\t\t\t\t\t\t\t\t\t\t"
	b = append(b, tabs[:d]...)
	b = hfmt.Appendf(b, f, args...)
	return b
}
