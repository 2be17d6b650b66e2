package metadata

import (
	"slices"

	"github.com/elliotchance/orderedmap"

	"github.com/joshuapare/pekit/pkg/types"
)

// TableType identifies a table. Values are chosen by the format being
// decoded; the model only compares them.
type TableType string

// Tables is the root collection. Iteration order is the order tables were
// added, which is also the order of the global row index space.
type Tables struct {
	index *orderedmap.OrderedMap // TableType -> *Table
}

func newTables() *Tables {
	return &Tables{index: orderedmap.NewOrderedMap()}
}

// Len returns the number of tables.
func (ts *Tables) Len() int {
	if ts == nil {
		return 0
	}
	return ts.index.Len()
}

// Table returns the table of type typ, or a NotFound error.
func (ts *Tables) Table(typ TableType) (*Table, error) {
	if ts != nil {
		if v, ok := ts.index.Get(typ); ok {
			return v.(*Table), nil
		}
	}
	return nil, types.NotFound("metadata: no table of type %q", typ)
}

// Has reports whether a table of type typ exists.
func (ts *Tables) Has(typ TableType) bool {
	_, err := ts.Table(typ)
	return err == nil
}

// All returns the tables in iteration order.
func (ts *Tables) All() []*Table {
	if ts == nil {
		return nil
	}
	out := make([]*Table, 0, ts.index.Len())
	for el := ts.index.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(*Table))
	}
	return out
}

// At returns the i-th table in iteration order.
func (ts *Tables) At(i int) (*Table, error) {
	all := ts.All()
	if i < 0 || i >= len(all) {
		return nil, types.OutOfRange("metadata: table %d of %d", i, len(all))
	}
	return all[i], nil
}

// Types returns the table types in iteration order.
func (ts *Tables) Types() []TableType {
	all := ts.All()
	out := make([]TableType, len(all))
	for i, t := range all {
		out[i] = t.typ
	}
	return out
}

// Sorted returns the tables ordered by cmp. Ties keep iteration order. It
// does not change iteration order or global row indices.
func (ts *Tables) Sorted(cmp func(a, b *Table) int) []*Table {
	out := ts.All()
	slices.SortStableFunc(out, cmp)
	return out
}

// TotalRows returns the number of rows across all tables.
func (ts *Tables) TotalRows() int {
	total := 0
	for _, t := range ts.All() {
		total += len(t.rows)
	}
	return total
}

// RowByIndex returns the row at a global index. Tables are visited in
// iteration order accumulating their row counts; the first table whose
// running total exceeds global owns the row, at global minus the rows of
// the tables before it. It fails with OutOfRange when global is negative or
// not below TotalRows.
func (ts *Tables) RowByIndex(global int) (*Row, error) {
	if global < 0 {
		return nil, types.OutOfRange("metadata: negative global row index %d", global)
	}
	before := 0
	for _, t := range ts.All() {
		after := before + len(t.rows)
		if after > global {
			return t.rows[global-before], nil
		}
		before = after
	}
	return nil, types.OutOfRange("metadata: global row index %d beyond %d rows", global, before)
}

// GlobalIndex returns the global index of r. It fails with NotFound when r
// does not belong to ts.
func (ts *Tables) GlobalIndex(r *Row) (int, error) {
	if r == nil {
		return 0, types.InvalidArgument("metadata: nil row")
	}
	before := 0
	for _, t := range ts.All() {
		if t == r.table {
			return before + r.index, nil
		}
		before += len(t.rows)
	}
	return 0, types.NotFound("metadata: row %s[%d] is not in this collection", r.table.typ, r.index)
}

// Walk calls fn for every row in global index order, stopping at the first
// error.
func (ts *Tables) Walk(fn func(global int, r *Row) error) error {
	global := 0
	for _, t := range ts.All() {
		for _, r := range t.rows {
			if err := fn(global, r); err != nil {
				return err
			}
			global++
		}
	}
	return nil
}
