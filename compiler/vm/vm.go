package vm

import (
	"context"
	"fmt"
	"io"
	"os"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/minipy/compiler/wat"
)

type (
	// Machine executes listings on an i32 operand stack.
	// Arithmetic wraps around like the i32 instructions it implements.
	Machine struct {
		Out io.Writer

		Intrinsics map[string]Intrinsic

		stack  []int32
		locals map[string]int32
	}

	Intrinsic struct {
		Arity int
		Func  func(m *Machine, args []int32) (int32, error)
	}
)

var (
	ErrUnderflow    = errors.New("stack underflow")
	ErrUndeclared   = errors.New("undeclared local")
	ErrRedeclared   = errors.New("local declared twice")
	ErrNoIntrinsic  = errors.New("unknown intrinsic")
	ErrUnbalanced   = errors.New("values left on the stack")
	ErrInstruction  = errors.New("unsupported instruction")
	ErrLocalsClosed = errors.New("local declaration after code")
)

func New(out io.Writer) *Machine {
	if out == nil {
		out = os.Stdout
	}

	return &Machine{
		Out:        out,
		Intrinsics: Builtins(),
		locals:     make(map[string]int32),
	}
}

// Run executes l from a clean state and returns the final value of the scratch slot.
func (m *Machine) Run(ctx context.Context, l wat.Listing) (res int32, err error) {
	m.locals = nil

	return m.run(ctx, "vm: run", l, false)
}

// Continue executes l keeping the locals left by previous runs.
// Declarations of locals that already exist keep their values.
// The stack is still cleared first.
func (m *Machine) Continue(ctx context.Context, l wat.Listing) (res int32, err error) {
	return m.run(ctx, "vm: continue", l, true)
}

func (m *Machine) run(ctx context.Context, name string, l wat.Listing, keep bool) (res int32, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, name, "instrs", len(l), "locals", len(m.locals))
	defer tr.Finish("res", &res, "err", &err)

	m.stack = m.stack[:0]

	if m.locals == nil {
		m.locals = make(map[string]int32)
	}

	code := false

	for pc, i := range l {
		if err = ctx.Err(); err != nil {
			return 0, err
		}

		if i.Op == wat.Local && code {
			return 0, errors.Wrap(ErrLocalsClosed, "pc %d: %v", pc, i)
		}

		code = code || i.Op != wat.Local

		if _, ok := m.locals[i.Name]; keep && ok && i.Op == wat.Local {
			continue
		}

		err = m.Step(i)
		if err != nil {
			return 0, errors.Wrap(err, "pc %d: %v", pc, i)
		}

		if tr.If("vm_trace") {
			tr.Printw("step", "pc", pc, "instr", i, "stack", m.stack)
		}
	}

	if len(m.stack) != 0 {
		return 0, errors.Wrap(ErrUnbalanced, "%d values", len(m.stack))
	}

	return m.locals[wat.Scratch], nil
}

// Step executes a single instruction.
func (m *Machine) Step(i wat.Instr) (err error) {
	switch i.Op {
	case wat.Local:
		if _, ok := m.locals[i.Name]; ok {
			return errors.Wrap(ErrRedeclared, "%v", i.Name)
		}

		m.locals[i.Name] = 0
	case wat.Const:
		m.push(i.Value)
	case wat.Get:
		v, ok := m.locals[i.Name]
		if !ok {
			return errors.Wrap(ErrUndeclared, "%v", i.Name)
		}

		m.push(v)
	case wat.Set:
		if _, ok := m.locals[i.Name]; !ok {
			return errors.Wrap(ErrUndeclared, "%v", i.Name)
		}

		v, err := m.pop(1)
		if err != nil {
			return err
		}

		m.locals[i.Name] = v[0]
	case wat.Call:
		f, ok := m.Intrinsics[i.Name]
		if !ok {
			return errors.Wrap(ErrNoIntrinsic, "%v", i.Name)
		}

		args, err := m.pop(f.Arity)
		if err != nil {
			return err
		}

		r, err := f.Func(m, args)
		if err != nil {
			return errors.Wrap(err, "%v", i.Name)
		}

		m.push(r)
	case wat.Add, wat.Sub, wat.Mul:
		v, err := m.pop(2)
		if err != nil {
			return err
		}

		var r int32

		switch i.Op {
		case wat.Add:
			r = v[0] + v[1]
		case wat.Sub:
			r = v[0] - v[1]
		case wat.Mul:
			r = v[0] * v[1]
		}

		m.push(r)
	default:
		return errors.Wrap(ErrInstruction, "%v", i.Op)
	}

	return nil
}

// Local returns the value of a declared slot after Run.
func (m *Machine) Local(name string) (v int32, ok bool) {
	v, ok = m.locals[name]
	return
}

func (m *Machine) push(v int32) {
	m.stack = append(m.stack, v)
}

// pop removes n values and returns them in the order they were pushed.
func (m *Machine) pop(n int) ([]int32, error) {
	if len(m.stack) < n {
		return nil, errors.Wrap(ErrUnderflow, "need %d, have %d", n, len(m.stack))
	}

	st := len(m.stack) - n
	v := append([]int32(nil), m.stack[st:]...)
	m.stack = m.stack[:st]

	return v, nil
}

func Builtins() map[string]Intrinsic {
	return map[string]Intrinsic{
		"print": {Arity: 1, Func: func(m *Machine, a []int32) (int32, error) {
			_, err := fmt.Fprintf(m.Out, "%d\n", a[0])
			return a[0], err
		}},
		"abs": {Arity: 1, Func: func(m *Machine, a []int32) (int32, error) {
			if a[0] < 0 {
				return -a[0], nil
			}

			return a[0], nil
		}},
		"max": {Arity: 2, Func: func(m *Machine, a []int32) (int32, error) {
			if a[0] >= a[1] {
				return a[0], nil
			}

			return a[1], nil
		}},
		"min": {Arity: 2, Func: func(m *Machine, a []int32) (int32, error) {
			if a[0] <= a[1] {
				return a[0], nil
			}

			return a[1], nil
		}},
		"pow": {Arity: 2, Func: func(m *Machine, a []int32) (int32, error) {
			return Pow(a[0], a[1]), nil
		}},
	}
}

// Pow is integer exponentiation with i32 wrap-around.
// Negative exponents give 0 except for bases 1 and -1.
func Pow(x, n int32) int32 {
	if n < 0 {
		switch {
		case x == 1:
			return 1
		case x == -1 && n%2 == 0:
			return 1
		case x == -1:
			return -1
		default:
			return 0
		}
	}

	r := int32(1)

	for n > 0 {
		if n&1 != 0 {
			r *= x
		}

		x *= x
		n >>= 1
	}

	return r
}
