// Package metadata exposes decoded binary metadata as a generic relational
// model: a Tables root holding Tables, each a sequence of Rows of Cells laid
// out by a fixed array of Columns.
//
// Cross-table references are never materialized as object links. A cell that
// points at another row holds a RowPointer, a (root, table type, row index)
// triple resolved on demand through the root. Tables may therefore reference
// tables that are decoded later, and cyclic references cost nothing.
//
// Rows across all tables also share one global index space, assigned in table
// order with no gaps; see Tables.RowByIndex.
//
// A model is assembled once with a Builder and is read-only afterwards, so it
// may be shared by concurrent readers.
package metadata
