package metadata

import (
	"github.com/joshuapare/pekit/pkg/types"
)

// CellData is the input for one cell of a new row.
type CellData struct {
	Value Value
	Raw   uint32
}

// Builder assembles a Tables root. Once Build is called the root is frozen
// and the Builder rejects further changes with a State error.
//
// Row pointers may be created against Root before the tables they target
// exist; they are only resolved on demand.
type Builder struct {
	root  *Tables
	built bool
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{root: newTables()}
}

// Root returns the collection being built. Pointers created against it stay
// valid after Build.
func (b *Builder) Root() *Tables { return b.root }

// Pointer returns a RowPointer into the collection being built.
func (b *Builder) Pointer(target TableType, index int) RowPointer {
	return NewRowPointer(b.root, target, index)
}

// AddTable appends a table of type typ with the given column names. Types
// and column names must be unique and non-empty.
func (b *Builder) AddTable(typ TableType, columns ...string) (*TableBuilder, error) {
	if b.built {
		return nil, types.Errorf(types.ErrKindState, "metadata: builder already built")
	}
	if typ == "" {
		return nil, types.InvalidArgument("metadata: empty table type")
	}
	if b.root.Has(typ) {
		return nil, types.InvalidArgument("metadata: duplicate table type %q", typ)
	}
	t := &Table{
		typ:     typ,
		columns: make([]*Column, len(columns)),
		byName:  make(map[string]*Column, len(columns)),
	}
	for i, name := range columns {
		if name == "" {
			return nil, types.InvalidArgument("metadata: table %q column %d has no name", typ, i)
		}
		if _, dup := t.byName[name]; dup {
			return nil, types.InvalidArgument("metadata: table %q has duplicate column %q", typ, name)
		}
		c := &Column{name: name, index: i}
		t.columns[i] = c
		t.byName[name] = c
	}
	b.root.index.Set(typ, t)
	return &TableBuilder{b: b, t: t}, nil
}

// Build freezes and returns the collection.
func (b *Builder) Build() *Tables {
	b.built = true
	return b.root
}

// TableBuilder appends rows to one table.
type TableBuilder struct {
	b *Builder
	t *Table
}

// Table returns the table being filled.
func (tb *TableBuilder) Table() *Table { return tb.t }

// AddRow appends a row. There must be exactly one CellData per column.
func (tb *TableBuilder) AddRow(cells ...CellData) (*Row, error) {
	if tb.b.built {
		return nil, types.Errorf(types.ErrKindState, "metadata: builder already built")
	}
	if len(cells) != len(tb.t.columns) {
		return nil, types.InvalidArgument("metadata: table %q row has %d cells, want %d",
			tb.t.typ, len(cells), len(tb.t.columns))
	}
	r := &Row{table: tb.t, index: len(tb.t.rows), cells: make([]Cell, len(cells))}
	for i, cd := range cells {
		r.cells[i] = Cell{column: tb.t.columns[i], value: cd.Value, raw: cd.Raw}
	}
	tb.t.rows = append(tb.t.rows, r)
	return r, nil
}
