package cst

import (
	"github.com/nikandfor/hacked/hfmt"
)

type (
	// Node is an immutable concrete syntax tree node.
	// Pos and End are byte offsets into the parsed text.
	Node struct {
		Kind string
		Pos  int
		End  int

		Children []*Node
	}

	// Cursor navigates a tree by descending, stepping to siblings and ascending.
	Cursor struct {
		path []*Node
		idx  []int
	}
)

const (
	Script                  = "Script"
	AssignStatement         = "AssignStatement"
	ExpressionStatement     = "ExpressionStatement"
	Number                  = "Number"
	VariableName            = "VariableName"
	CallExpression          = "CallExpression"
	ArgList                 = "ArgList"
	UnaryExpression         = "UnaryExpression"
	BinaryExpression        = "BinaryExpression"
	ParenthesizedExpression = "ParenthesizedExpression"
	ArithOp                 = "ArithOp"
	BitOp                   = "BitOp"
	AssignOp                = "AssignOp"
)

func leaf(kind string, pos, end int) *Node {
	return &Node{Kind: kind, Pos: pos, End: end}
}

func branch(kind string, ch ...*Node) *Node {
	return &Node{
		Kind:     kind,
		Pos:      ch[0].Pos,
		End:      ch[len(ch)-1].End,
		Children: ch,
	}
}

func (n *Node) Span() (pos, end int) { return n.Pos, n.End }

func (n *Node) Text(src []byte) string {
	return string(src[n.Pos:n.End])
}

func (n *Node) Cursor() *Cursor {
	return &Cursor{
		path: []*Node{n},
		idx:  []int{0},
	}
}

func (c *Cursor) Node() *Node { return c.path[len(c.path)-1] }

func (c *Cursor) Kind() string { return c.Node().Kind }

func (c *Cursor) Pos() int { return c.Node().Pos }

func (c *Cursor) End() int { return c.Node().End }

// Depth is the number of FirstChild calls not yet matched by Parent.
func (c *Cursor) Depth() int { return len(c.path) - 1 }

func (c *Cursor) FirstChild() bool {
	n := c.Node()
	if len(n.Children) == 0 {
		return false
	}

	c.path = append(c.path, n.Children[0])
	c.idx = append(c.idx, 0)

	return true
}

func (c *Cursor) NextSibling() bool {
	d := len(c.path) - 1
	if d == 0 {
		return false
	}

	par := c.path[d-1]
	j := c.idx[d] + 1

	if j >= len(par.Children) {
		return false
	}

	c.path[d] = par.Children[j]
	c.idx[d] = j

	return true
}

func (c *Cursor) Parent() bool {
	d := len(c.path) - 1
	if d == 0 {
		return false
	}

	c.path = c.path[:d]
	c.idx = c.idx[:d]

	return true
}

// Dump appends an indented listing of the tree to b, one node per line.
func Dump(b, src []byte, n *Node) []byte {
	const tabs = "\t\t\t\t\t\t\t\t\t\t\t\t\t\t\t\t"

	c := n.Cursor()

	for {
		d := c.Depth()
		if d > len(tabs) {
			d = len(tabs)
		}

		b = append(b, tabs[:d]...)

		if n := c.Node(); len(n.Children) == 0 {
			b = hfmt.Appendf(b, "%s %d-%d %q\n", n.Kind, n.Pos, n.End, n.Text(src))
		} else {
			b = hfmt.Appendf(b, "%s %d-%d\n", n.Kind, n.Pos, n.End)
		}

		if c.FirstChild() {
			continue
		}

		for !c.NextSibling() {
			if !c.Parent() {
				return b
			}
		}
	}
}
