package ast

import "fmt"

type (
	BinaryOp int

	Intrinsic int

	intrinsicDesc struct {
		Name  string
		Arity int
	}
)

const (
	Add BinaryOp = iota
	Sub
	Mul

	numBinaryOps
)

const (
	Print Intrinsic = iota
	Abs
	Max
	Min
	Pow

	numIntrinsics
)

var binaryOps = [...]string{
	Add: "+",
	Sub: "-",
	Mul: "*",
}

var intrinsics = [...]intrinsicDesc{
	Print: {Name: "print", Arity: 1},
	Abs:   {Name: "abs", Arity: 1},
	Max:   {Name: "max", Arity: 2},
	Min:   {Name: "min", Arity: 2},
	Pow:   {Name: "pow", Arity: 2},
}

// Both tables must cover their enums exactly.
var (
	_ = [1]struct{}{}[len(binaryOps)-int(numBinaryOps)]
	_ = [1]struct{}{}[len(intrinsics)-int(numIntrinsics)]
)

func ParseBinaryOp(s string) (BinaryOp, bool) {
	for op, t := range binaryOps {
		if t == s {
			return BinaryOp(op), true
		}
	}

	return 0, false
}

func (op BinaryOp) Valid() bool { return op >= 0 && op < numBinaryOps }

func (op BinaryOp) String() string {
	if !op.Valid() {
		return fmt.Sprintf("BinaryOp(%d)", int(op))
	}

	return binaryOps[op]
}

// LookupIntrinsic finds an intrinsic by its name and the number of arguments it is called with.
// found reports whether the name is known for any arity.
func LookupIntrinsic(name string, arity int) (f Intrinsic, found, ok bool) {
	for i, d := range intrinsics {
		if d.Name != name {
			continue
		}

		return Intrinsic(i), true, d.Arity == arity
	}

	return 0, false, false
}

// Intrinsics returns every intrinsic with the given arity.
func Intrinsics(arity int) (l []Intrinsic) {
	for i, d := range intrinsics {
		if d.Arity == arity {
			l = append(l, Intrinsic(i))
		}
	}

	return l
}

func AllIntrinsics() []Intrinsic {
	l := make([]Intrinsic, numIntrinsics)

	for i := range l {
		l[i] = Intrinsic(i)
	}

	return l
}

func (f Intrinsic) Valid() bool { return f >= 0 && f < numIntrinsics }

func (f Intrinsic) Arity() int {
	if !f.Valid() {
		return -1
	}

	return intrinsics[f].Arity
}

func (f Intrinsic) String() string {
	if !f.Valid() {
		return fmt.Sprintf("Intrinsic(%d)", int(f))
	}

	return intrinsics[f].Name
}
