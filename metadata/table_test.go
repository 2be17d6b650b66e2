package metadata

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/pekit/pkg/types"
)

func TestCellLookupsAgree(t *testing.T) {
	ts := buildSample(t)
	tbl, err := ts.Table(typeMethod)
	require.NoError(t, err)
	r, err := tbl.Row(1)
	require.NoError(t, err)

	col, err := tbl.Column("Flags")
	require.NoError(t, err)
	require.Equal(t, 1, col.Index())

	byIndex, err := r.CellAt(1)
	require.NoError(t, err)
	byName, err := r.CellByName("Flags")
	require.NoError(t, err)
	byColumn, err := r.CellFor(col)
	require.NoError(t, err)

	if byIndex != byName || byName != byColumn {
		t.Fatalf("cell lookups returned different cells: %p %p %p", byIndex, byName, byColumn)
	}
	require.Same(t, r.Cells()[1], byIndex)
	require.Same(t, col, byIndex.Column())

	lit, ok := byIndex.Value().Literal()
	require.True(t, ok)
	require.Equal(t, uint64(0x11), lit)
	require.Equal(t, uint32(0x11), byIndex.RawValue())
}

func TestCellLookupErrors(t *testing.T) {
	ts := buildSample(t)
	meth, err := ts.Table(typeMethod)
	require.NoError(t, err)
	mod, err := ts.Table(typeModule)
	require.NoError(t, err)
	r, err := meth.Row(0)
	require.NoError(t, err)

	_, err = r.CellAt(2)
	require.ErrorIs(t, err, types.ErrOutOfRange)
	_, err = r.CellAt(-1)
	require.ErrorIs(t, err, types.ErrOutOfRange)
	_, err = r.CellByName("Missing")
	require.ErrorIs(t, err, types.ErrNotFound)

	foreign, err := mod.Column("Name")
	require.NoError(t, err)
	_, err = r.CellFor(foreign)
	require.ErrorIs(t, err, types.ErrInvalidArgument)
	_, err = r.CellFor(nil)
	require.ErrorIs(t, err, types.ErrInvalidArgument)

	_, err = meth.Row(3)
	require.ErrorIs(t, err, types.ErrOutOfRange)
}

func TestRowsAreCopies(t *testing.T) {
	ts := buildSample(t)
	tbl, err := ts.Table(typeModule)
	require.NoError(t, err)

	rows := tbl.Rows()
	rows[0] = nil
	require.NotNil(t, tbl.Rows()[0])

	cols := tbl.Columns()
	cols[0] = nil
	require.NotNil(t, tbl.Columns()[0])
}

func TestBuilderValidation(t *testing.T) {
	b := NewBuilder()
	_, err := b.AddTable("")
	require.ErrorIs(t, err, types.ErrInvalidArgument)

	tb, err := b.AddTable("A", "X", "Y")
	require.NoError(t, err)
	_, err = b.AddTable("A")
	require.ErrorIs(t, err, types.ErrInvalidArgument)
	_, err = b.AddTable("B", "X", "X")
	require.ErrorIs(t, err, types.ErrInvalidArgument)
	_, err = b.AddTable("C", "")
	require.ErrorIs(t, err, types.ErrInvalidArgument)

	_, err = tb.AddRow(CellData{Value: Literal(1)})
	require.ErrorIs(t, err, types.ErrInvalidArgument)

	root := b.Build()
	require.Same(t, root, b.Root())
	require.Same(t, root, b.Build())

	_, err = tb.AddRow(CellData{}, CellData{})
	require.ErrorIs(t, err, types.ErrState)
	_, err = b.AddTable("D")
	require.ErrorIs(t, err, types.ErrState)
}
