package symtab

import (
	"strings"

	"tlog.app/go/loc"
	"tlog.app/go/tlog"
)

// Table is an ordered set of declared variable names.
// Names are kept in the order they were first defined.
type Table struct {
	names []string
	index map[string]int
}

func New() *Table {
	return &Table{
		index: make(map[string]int),
	}
}

// Define adds name to the table. It reports whether the name was not there before.
func (t *Table) Define(name string) bool {
	if _, ok := t.index[name]; ok {
		return false
	}

	t.index[name] = len(t.names)
	t.names = append(t.names, name)

	tlog.V("symbols").Printw("define symbol", "name", name, "slot", len(t.names)-1, "from", loc.Callers(1, 3))

	return true
}

func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

func (t *Table) Len() int { return len(t.names) }

func (t *Table) Names() []string {
	return append([]string(nil), t.names...)
}

func (t *Table) Clone() *Table {
	c := &Table{
		names: t.Names(),
		index: make(map[string]int, len(t.index)),
	}

	for k, v := range t.index {
		c.index[k] = v
	}

	return c
}

func (t *Table) String() string {
	return "{" + strings.Join(t.names, " ") + "}"
}
