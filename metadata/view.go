package metadata

import (
	"math"

	"github.com/joshuapare/pekit/pkg/types"
)

// RowView is a read-only typed facade over a Row. Format packages embed it
// in their own row types and add named accessors:
//
//	type SymbolRow struct{ metadata.RowView }
//
//	func (s SymbolRow) Name() (string, error) { return s.Text("Name") }
//
// Any number of views may wrap the same Row; none copies it.
type RowView struct {
	row *Row
}

// View wraps r.
func View(r *Row) RowView { return RowView{row: r} }

// Row returns the wrapped row.
func (v RowView) Row() *Row { return v.row }

func (v RowView) cell(name string) (*Cell, error) {
	if v.row == nil {
		return nil, types.InvalidArgument("metadata: empty row view")
	}
	return v.row.CellByName(name)
}

// Raw returns the raw value of column name.
func (v RowView) Raw(name string) (uint32, error) {
	c, err := v.cell(name)
	if err != nil {
		return 0, err
	}
	return c.raw, nil
}

// Uint returns the literal value of column name.
func (v RowView) Uint(name string) (uint64, error) {
	c, err := v.cell(name)
	if err != nil {
		return 0, err
	}
	lit, ok := c.value.Literal()
	if !ok {
		return 0, mismatch(name, KindLiteral, c.value.kind)
	}
	return lit, nil
}

// Uint32 returns the literal value of column name, which must fit 32 bits.
func (v RowView) Uint32(name string) (uint32, error) {
	lit, err := v.Uint(name)
	if err != nil {
		return 0, err
	}
	if lit > math.MaxUint32 {
		return 0, types.OutOfRange("metadata: column %q literal %d exceeds 32 bits", name, lit)
	}
	return uint32(lit), nil
}

// Text returns the string value of column name.
func (v RowView) Text(name string) (string, error) {
	c, err := v.cell(name)
	if err != nil {
		return "", err
	}
	s, ok := c.value.Text()
	if !ok {
		return "", mismatch(name, KindString, c.value.kind)
	}
	return s, nil
}

// Bytes returns the nested structure bytes of column name.
func (v RowView) Bytes(name string) ([]byte, error) {
	c, err := v.cell(name)
	if err != nil {
		return nil, err
	}
	b, ok := c.value.StructBytes()
	if !ok {
		return nil, mismatch(name, KindStruct, c.value.kind)
	}
	return b, nil
}

// Ref resolves the reference in column name. A null reference (KindNone)
// yields a nil row and no error.
func (v RowView) Ref(name string) (*Row, error) {
	c, err := v.cell(name)
	if err != nil {
		return nil, err
	}
	if c.value.IsNone() {
		return nil, nil
	}
	p, ok := c.value.Ref()
	if !ok {
		return nil, mismatch(name, KindRef, c.value.kind)
	}
	return p.Resolve()
}

// ViewStruct overlays the nested structure in column name as a T.
func ViewStruct[T any](v RowView, name string) (T, error) {
	var zero T
	c, err := v.cell(name)
	if err != nil {
		return zero, err
	}
	return StructOf[T](c.value)
}

func mismatch(column string, want, got ValueKind) error {
	return types.InvalidArgument("metadata: column %q holds a %s value, not %s", column, got, want)
}
