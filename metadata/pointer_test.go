package metadata

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/pekit/pkg/types"
)

func TestForwardReferenceResolves(t *testing.T) {
	ts := buildSample(t)
	mod, err := ts.Table(typeModule)
	require.NoError(t, err)
	r, err := mod.Row(1)
	require.NoError(t, err)

	c, err := r.CellByName("FirstMethod")
	require.NoError(t, err)
	p, ok := c.Value().Ref()
	require.True(t, ok)
	require.Equal(t, typeMethod, p.Target())
	require.Equal(t, 2, p.Index())
	require.Equal(t, "Method[2]", p.String())

	target, err := p.Resolve()
	require.NoError(t, err)
	name, err := target.CellByName("Name")
	require.NoError(t, err)
	s, _ := name.Value().Text()
	require.Equal(t, "stop", s)

	again, err := p.Resolve()
	require.NoError(t, err)
	require.Same(t, target, again)
}

func TestRowPointerFailures(t *testing.T) {
	ts := buildSample(t)

	_, err := NewRowPointer(ts, "Field", 0).Resolve()
	require.ErrorIs(t, err, types.ErrNotFound)

	_, err = NewRowPointer(ts, typeMethod, 3).Resolve()
	require.ErrorIs(t, err, types.ErrOutOfRange)

	_, err = NewRowPointer(ts, typeEmpty, 0).Resolve()
	require.ErrorIs(t, err, types.ErrOutOfRange)

	_, err = RowPointer{}.Resolve()
	require.ErrorIs(t, err, types.ErrInvalidArgument)
}
