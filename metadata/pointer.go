package metadata

import (
	"fmt"

	"github.com/joshuapare/pekit/pkg/types"
)

// RowPointer is a deferred reference to row Index of the table of type
// Target, resolved through the Tables root it was created against. It holds
// no row and keeps nothing alive beyond the root.
type RowPointer struct {
	root   *Tables
	target TableType
	index  int
}

// NewRowPointer returns a pointer into root. Nothing is looked up until
// Resolve is called.
func NewRowPointer(root *Tables, target TableType, index int) RowPointer {
	return RowPointer{root: root, target: target, index: index}
}

// Target returns the type of the referenced table.
func (p RowPointer) Target() TableType { return p.target }

// Index returns the row index inside the referenced table.
func (p RowPointer) Index() int { return p.index }

// Resolve looks up the referenced row. It fails with NotFound when the root
// has no table of the target type and with OutOfRange when the index is not
// a row of that table. Resolve has no side effects and may be repeated.
func (p RowPointer) Resolve() (*Row, error) {
	if p.root == nil {
		return nil, types.InvalidArgument("metadata: row pointer has no root")
	}
	t, err := p.root.Table(p.target)
	if err != nil {
		return nil, err
	}
	return t.Row(p.index)
}

// String formats p as Target[Index].
func (p RowPointer) String() string {
	return fmt.Sprintf("%s[%d]", p.target, p.index)
}
