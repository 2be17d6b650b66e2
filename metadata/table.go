package metadata

import (
	"github.com/joshuapare/pekit/pkg/types"
)

// Column is the name and position of one field, shared by every row of its
// table.
type Column struct {
	name  string
	index int
}

// Name returns the column name.
func (c *Column) Name() string { return c.name }

// Index returns the zero-based column position.
func (c *Column) Index() int { return c.index }

// Table is an ordered sequence of rows sharing one column layout.
type Table struct {
	typ     TableType
	columns []*Column
	byName  map[string]*Column
	rows    []*Row
}

// Type returns the table type.
func (t *Table) Type() TableType { return t.typ }

// Columns returns the column layout.
func (t *Table) Columns() []*Column {
	out := make([]*Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// Column returns the column named name.
func (t *Table) Column(name string) (*Column, error) {
	c, ok := t.byName[name]
	if !ok {
		return nil, types.NotFound("metadata: table %q has no column %q", t.typ, name)
	}
	return c, nil
}

// Rows returns the rows in decode order.
func (t *Table) Rows() []*Row {
	out := make([]*Row, len(t.rows))
	copy(out, t.rows)
	return out
}

// RowsCount returns the number of rows.
func (t *Table) RowsCount() int { return len(t.rows) }

// Row returns the row at position i.
func (t *Table) Row(i int) (*Row, error) {
	if i < 0 || i >= len(t.rows) {
		return nil, types.OutOfRange("metadata: row %d of table %q (%d rows)", i, t.typ, len(t.rows))
	}
	return t.rows[i], nil
}

// Row is one record of a table. Its cells are parallel to the table columns.
type Row struct {
	table *Table
	index int
	cells []Cell
}

// Index returns the position of r inside its table.
func (r *Row) Index() int { return r.index }

// Table returns the table r belongs to.
func (r *Row) Table() *Table { return r.table }

// Cells returns the cells in column order.
func (r *Row) Cells() []*Cell {
	out := make([]*Cell, len(r.cells))
	for i := range r.cells {
		out[i] = &r.cells[i]
	}
	return out
}

// CellAt returns the cell of the column at index i.
func (r *Row) CellAt(i int) (*Cell, error) {
	if i < 0 || i >= len(r.cells) {
		return nil, types.OutOfRange("metadata: column %d of table %q (%d columns)", i, r.table.typ, len(r.cells))
	}
	return &r.cells[i], nil
}

// CellByName returns the cell of the column named name.
func (r *Row) CellByName(name string) (*Cell, error) {
	c, err := r.table.Column(name)
	if err != nil {
		return nil, err
	}
	return &r.cells[c.index], nil
}

// CellFor returns the cell of column c, which must be a column of r's table.
func (r *Row) CellFor(c *Column) (*Cell, error) {
	if c == nil || c.index < 0 || c.index >= len(r.table.columns) || r.table.columns[c.index] != c {
		return nil, types.InvalidArgument("metadata: column does not belong to table %q", r.table.typ)
	}
	return &r.cells[c.index], nil
}

// Cell is one field of a row: the decoded Value and the raw 32-bit quantity
// it was decoded from (a literal, a length, or a row index).
type Cell struct {
	column *Column
	value  Value
	raw    uint32
}

// Value returns the decoded value.
func (c *Cell) Value() Value { return c.value }

// RawValue returns the undecoded quantity as stored.
func (c *Cell) RawValue() uint32 { return c.raw }

// Column returns the column c belongs to.
func (c *Cell) Column() *Column { return c.column }
