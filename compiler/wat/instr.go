package wat

import (
	"fmt"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/tlog/tlwire"
)

type (
	Op int

	// Instr is a single stack machine instruction.
	// Name is the slot for Local, Get and Set and the intrinsic for Call.
	Instr struct {
		Op    Op
		Name  string
		Value int32
	}

	Listing []Instr
)

const (
	Local Op = iota
	Const
	Get
	Set
	Call
	Add
	Sub
	Mul

	numOps
)

// Scratch is the slot expression statements store their discarded values to.
const Scratch = "$last"

var opNames = [...]string{
	Local: "local",
	Const: "i32.const",
	Get:   "local.get",
	Set:   "local.set",
	Call:  "call",
	Add:   "i32.add",
	Sub:   "i32.sub",
	Mul:   "i32.mul",
}

var _ = [1]struct{}{}[len(opNames)-int(numOps)]

func (op Op) String() string {
	if op < 0 || op >= numOps {
		return fmt.Sprintf("Op(%d)", int(op))
	}

	return opNames[op]
}

func (i Instr) AppendText(b []byte) []byte {
	switch i.Op {
	case Local:
		return hfmt.Appendf(b, "(local $%s i32)", i.Name)
	case Const:
		return hfmt.Appendf(b, "(i32.const %d)", i.Value)
	case Get, Set, Call:
		return hfmt.Appendf(b, "(%v $%s)", i.Op, i.Name)
	default:
		return hfmt.Appendf(b, "(%v)", i.Op)
	}
}

func (i Instr) String() string {
	return string(i.AppendText(nil))
}

func (i Instr) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	return e.AppendString(b, i.String())
}

// AppendText renders the listing one instruction per line.
func (l Listing) AppendText(b []byte) []byte {
	for _, i := range l {
		b = i.AppendText(b)
		b = append(b, '\n')
	}

	return b
}

func (l Listing) String() string {
	return string(l.AppendText(nil))
}

// Locals returns the slot names the listing declares.
func (l Listing) Locals() (names []string) {
	for _, i := range l {
		if i.Op == Local {
			names = append(names, i.Name)
		}
	}

	return names
}
