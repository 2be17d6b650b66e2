package schema

import (
	"context"
	"encoding/binary"

	"go.uber.org/zap"

	"github.com/joshuapare/pekit/image"
	"github.com/joshuapare/pekit/internal/buf"
	"github.com/joshuapare/pekit/metadata"
	"github.com/joshuapare/pekit/pkg/types"
)

// Options adjusts a decode pass.
type Options struct {
	// StringHeap overrides Schema.StringHeap when non-zero.
	StringHeap int64
}

// Decode reads every table of s from img, in schema order, and returns the
// frozen collection. Multi-byte fields use img.Endianness(). Ref columns
// become row pointers into the result and are not checked here; they fail
// when resolved if the target row does not exist. Struct columns keep the
// bytes as stored in the image.
//
// s is validated first, which fills in its defaulted widths, offsets and
// row sizes.
func Decode(ctx context.Context, img image.Accessor, s *Schema, opts Options) (*metadata.Tables, error) {
	if img == nil {
		return nil, types.InvalidArgument("schema: nil image")
	}
	if s == nil {
		return nil, types.InvalidArgument("schema: nil schema")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	d := decoder{
		img:   img,
		order: img.Endianness().ByteOrder(),
		heap:  s.StringHeap,
		b:     metadata.NewBuilder(),
	}
	if opts.StringHeap != 0 {
		d.heap = opts.StringHeap
	}
	for i := range s.Tables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := d.table(&s.Tables[i]); err != nil {
			return nil, err
		}
	}
	ts := d.b.Build()
	Logger().Debug("schema decoded",
		zap.String("schema", s.Name),
		zap.Int("tables", ts.Len()),
		zap.Int("rows", ts.TotalRows()))
	return ts, nil
}

type decoder struct {
	img   image.Accessor
	order binary.ByteOrder
	heap  int64
	b     *metadata.Builder
}

func (d *decoder) table(t *Table) error {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	tb, err := d.b.AddTable(metadata.TableType(t.Type), names...)
	if err != nil {
		return err
	}

	size, ok := buf.MulOverflowSafe(t.Rows, t.RowSize)
	if !ok {
		return types.OutOfRange("schema: table %q: %d rows of %d bytes overflow", t.Type, t.Rows, t.RowSize)
	}
	if n := d.img.Length(); n >= 0 {
		if _, err := buf.CheckListBounds(int(n), int(t.Offset), t.Rows, t.RowSize); err != nil {
			return types.Wrap(types.ErrKindOutOfRange, err, "schema: table %q", t.Type)
		}
	}
	var block []byte
	if size > 0 {
		if block, err = d.img.BytesAt(t.Offset, size); err != nil {
			return err
		}
	}

	cells := make([]metadata.CellData, len(t.Columns))
	for r := range t.Rows {
		row := block[r*t.RowSize : (r+1)*t.RowSize]
		for i := range t.Columns {
			c := &t.Columns[i]
			if cells[i], err = d.cell(c, row[*c.Offset:*c.Offset+c.Width]); err != nil {
				return types.Wrap(types.ErrKindCorrupt, err, "schema: %s[%d].%s", t.Type, r, c.Name)
			}
		}
		if _, err := tb.AddRow(cells...); err != nil {
			return err
		}
	}
	Logger().Debug("table decoded",
		zap.String("type", t.Type),
		zap.Int64("offset", t.Offset),
		zap.Int("rows", t.Rows),
		zap.Int("bytes", size))
	return nil
}

func (d *decoder) cell(c *Column, field []byte) (metadata.CellData, error) {
	if c.Kind == KindStruct {
		return metadata.CellData{Value: metadata.Struct(field), Raw: uint32(len(field))}, nil
	}

	raw := d.uint(field)
	switch c.Kind {
	case KindU8, KindU16, KindU32:
		return metadata.CellData{Value: metadata.Literal(uint64(raw)), Raw: raw}, nil
	case KindString:
		s, err := d.img.AnsiStringAt(d.heap + int64(raw))
		if err != nil {
			return metadata.CellData{}, err
		}
		return metadata.CellData{Value: metadata.Text(s), Raw: raw}, nil
	case KindUString:
		s, err := d.img.UnicodeStringAt(d.heap + int64(raw))
		if err != nil {
			return metadata.CellData{}, err
		}
		return metadata.CellData{Value: metadata.Text(s), Raw: raw}, nil
	case KindRef:
		index := int(raw)
		if c.OneBased {
			if raw == 0 {
				return metadata.CellData{Raw: raw}, nil
			}
			index--
		}
		p := metadata.NewRowPointer(d.b.Root(), metadata.TableType(c.Target), index)
		return metadata.CellData{Value: metadata.Ref(p), Raw: raw}, nil
	default:
		return metadata.CellData{}, types.Errorf(types.ErrKindUnsupported, "column kind %q", c.Kind)
	}
}

func (d *decoder) uint(b []byte) uint32 {
	switch len(b) {
	case 1:
		return uint32(b[0])
	case 2:
		return uint32(d.order.Uint16(b))
	default:
		return d.order.Uint32(b)
	}
}
