// Package schema describes metadata tables stored in a binary image and
// decodes them into a metadata.Tables collection in one pass.
//
// A schema is a YAML document:
//
//	stringHeap: 0x400
//	tables:
//	  - type: Module
//	    offset: 0x100
//	    rows: 2
//	    columns:
//	      - {name: Name, kind: string}
//	      - {name: FirstMethod, kind: ref, target: Method, width: 2}
//	  - type: Method
//	    offset: 0x110
//	    rows: 3
//	    rowSize: 8
//	    columns:
//	      - {name: Name, kind: ustring}
//	      - {name: Flags, kind: u16, offset: 4}
//
// Columns without an offset follow the previous column. A table without a
// rowSize is as wide as its last column.
package schema

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/joshuapare/pekit/pkg/types"
)

// Kind is the storage kind of a column.
type Kind string

const (
	KindU8      Kind = "u8"      // unsigned literal, 1 byte
	KindU16     Kind = "u16"     // unsigned literal, 2 bytes
	KindU32     Kind = "u32"     // unsigned literal, 4 bytes
	KindString  Kind = "string"  // offset of an ANSI string in the string heap
	KindUString Kind = "ustring" // offset of a UTF-16 string in the string heap
	KindRef     Kind = "ref"     // row index into the target table
	KindStruct  Kind = "struct"  // width raw bytes, kept as stored
)

// defaultWidth returns the width used when a column does not set one, or 0
// when the kind needs an explicit width.
func (k Kind) defaultWidth() int {
	switch k {
	case KindU8:
		return 1
	case KindU16:
		return 2
	case KindU32, KindString, KindUString, KindRef:
		return 4
	default:
		return 0
	}
}

func (k Kind) validWidth(w int) bool {
	switch k {
	case KindU8, KindU16, KindU32:
		return w == k.defaultWidth()
	case KindString, KindUString, KindRef:
		return w == 2 || w == 4
	case KindStruct:
		return w > 0
	default:
		return false
	}
}

// Schema is the set of tables to decode.
type Schema struct {
	Name string `yaml:"name,omitempty"`
	// StringHeap is the image offset string columns are relative to.
	StringHeap int64   `yaml:"stringHeap,omitempty"`
	Tables     []Table `yaml:"tables"`
}

// Table is the shape and location of one table.
type Table struct {
	Type    string   `yaml:"type"`
	Offset  int64    `yaml:"offset"`
	Rows    int      `yaml:"rows"`
	RowSize int      `yaml:"rowSize,omitempty"`
	Columns []Column `yaml:"columns"`
}

// Column is one field of a table row.
type Column struct {
	Name string `yaml:"name"`
	Kind Kind   `yaml:"kind"`
	// Offset is the position inside the row. Nil places the column right
	// after the previous one.
	Offset *int `yaml:"offset,omitempty"`
	Width  int  `yaml:"width,omitempty"`
	// Target is the table type a ref column points into.
	Target string `yaml:"target,omitempty"`
	// OneBased marks ref indices that count from 1, with 0 meaning no row.
	OneBased bool `yaml:"oneBased,omitempty"`
}

// Parse reads and validates a YAML schema. Unknown keys are rejected.
func Parse(data []byte) (*Schema, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var s Schema
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, types.InvalidArgument("schema: empty document")
		}
		return nil, types.Wrap(types.ErrKindFormat, err, "schema: parse")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads and validates the YAML schema at path.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, types.Wrap(types.ErrKindNotFound, err, "schema: %s", path)
		}
		return nil, err
	}
	return Parse(data)
}

// Validate checks the schema and fills in defaulted widths, column offsets
// and row sizes. Table types and column names must be unique, and every
// column must fit inside its row.
func (s *Schema) Validate() error {
	if len(s.Tables) == 0 {
		return types.Errorf(types.ErrKindFormat, "schema: no tables")
	}
	if s.StringHeap < 0 {
		return types.Errorf(types.ErrKindFormat, "schema: negative string heap %d", s.StringHeap)
	}
	seen := make(map[string]bool, len(s.Tables))
	for i := range s.Tables {
		t := &s.Tables[i]
		if t.Type == "" {
			return types.Errorf(types.ErrKindFormat, "schema: table %d has no type", i)
		}
		if seen[t.Type] {
			return types.Errorf(types.ErrKindFormat, "schema: duplicate table %q", t.Type)
		}
		seen[t.Type] = true
		if err := t.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (t *Table) validate() error {
	if t.Offset < 0 || t.Rows < 0 || t.RowSize < 0 {
		return types.Errorf(types.ErrKindFormat, "schema: table %q has negative offset, rows or rowSize", t.Type)
	}
	if len(t.Columns) == 0 {
		return types.Errorf(types.ErrKindFormat, "schema: table %q has no columns", t.Type)
	}
	names := make(map[string]bool, len(t.Columns))
	next, end := 0, 0
	for i := range t.Columns {
		c := &t.Columns[i]
		if c.Name == "" {
			return types.Errorf(types.ErrKindFormat, "schema: table %q column %d has no name", t.Type, i)
		}
		if names[c.Name] {
			return types.Errorf(types.ErrKindFormat, "schema: table %q has duplicate column %q", t.Type, c.Name)
		}
		names[c.Name] = true

		if c.Width == 0 {
			c.Width = c.Kind.defaultWidth()
		}
		if !c.Kind.validWidth(c.Width) {
			return types.Errorf(types.ErrKindFormat, "schema: %s.%s: kind %q with width %d", t.Type, c.Name, c.Kind, c.Width)
		}
		if c.Kind == KindRef && c.Target == "" {
			return types.Errorf(types.ErrKindFormat, "schema: %s.%s: ref column has no target", t.Type, c.Name)
		}
		if c.Offset == nil {
			off := next
			c.Offset = &off
		}
		if *c.Offset < 0 {
			return types.Errorf(types.ErrKindFormat, "schema: %s.%s: negative offset %d", t.Type, c.Name, *c.Offset)
		}
		next = *c.Offset + c.Width
		end = max(end, next)
	}
	if t.RowSize == 0 {
		t.RowSize = end
	}
	if end > t.RowSize {
		return types.Errorf(types.ErrKindFormat, "schema: table %q columns need %d bytes, row is %d", t.Type, end, t.RowSize)
	}
	return nil
}
