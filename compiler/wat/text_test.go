package wat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sample = Listing{
	{Op: Local, Name: Scratch},
	{Op: Local, Name: "x"},
	{Op: Const, Value: -2147483648},
	{Op: Set, Name: "x"},
	{Op: Get, Name: "x"},
	{Op: Const, Value: 7},
	{Op: Call, Name: "max"},
	{Op: Call, Name: "print"},
	{Op: Set, Name: Scratch},
}

func TestInstrText(t *testing.T) {
	for _, tc := range []struct {
		I   Instr
		Out string
	}{
		{Instr{Op: Local, Name: Scratch}, "(local $$last i32)"},
		{Instr{Op: Local, Name: "abc"}, "(local $abc i32)"},
		{Instr{Op: Const, Value: -5}, "(i32.const -5)"},
		{Instr{Op: Get, Name: "x"}, "(local.get $x)"},
		{Instr{Op: Set, Name: "x"}, "(local.set $x)"},
		{Instr{Op: Call, Name: "pow"}, "(call $pow)"},
		{Instr{Op: Add}, "(i32.add)"},
		{Instr{Op: Sub}, "(i32.sub)"},
		{Instr{Op: Mul}, "(i32.mul)"},
	} {
		assert.Equal(t, tc.Out, tc.I.String())
	}

	assert.Equal(t, "Op(99)", Op(99).String())
}

func TestParseListing(t *testing.T) {
	text := sample.AppendText(nil)

	l, err := ParseListing(text)
	require.NoError(t, err)
	assert.Equal(t, sample, l)

	l, err = ParseListing([]byte("\n  ;; comment\n(i32.const 1)  ;; one\n\n(local.set $$last)\n"))
	require.NoError(t, err)
	assert.Equal(t, Listing{{Op: Const, Value: 1}, {Op: Set, Name: Scratch}}, l)
}

func TestParseListingErrors(t *testing.T) {
	for _, text := range []string{
		"i32.const 1",
		"()",
		"(i32.div)",
		"(i32.const)",
		"(i32.const 2147483648)",
		"(local $x i64)",
		"(local.get x)",
		"(call $)",
		"(i32.add 1)",
	} {
		_, err := ParseListing([]byte(text))
		assert.Error(t, err, "%q", text)
	}
}

func TestModule(t *testing.T) {
	l := Listing{
		{Op: Local, Name: Scratch},
		{Op: Const, Value: 1},
		{Op: Set, Name: Scratch},
	}

	exp := `(module
	(func $print (import "imports" "print") (param i32) (result i32))
	(func $abs (import "imports" "abs") (param i32) (result i32))
	(func $max (import "imports" "max") (param i32 i32) (result i32))
	(func $min (import "imports" "min") (param i32 i32) (result i32))
	(func $pow (import "imports" "pow") (param i32 i32) (result i32))

	(func (export "exported_func") (result i32)
		(local $$last i32)
		(i32.const 1)
		(local.set $$last)
		(local.get $$last)
	)
)
`

	assert.Equal(t, exp, string(Module(nil, l, ModuleConfig{})))

	b := Module(nil, l, ModuleConfig{ImportModule: "env", Entry: "main"})
	assert.Contains(t, string(b), `(import "env" "print")`)
	assert.Contains(t, string(b), `(func (export "main") (result i32)`)
}
