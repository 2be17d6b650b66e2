// Package overlay reinterprets a fixed byte buffer as typed structures and
// strings.
//
// An Overlay owns one contiguous buffer and hands out copies: every value
// returned by ReadStruct, Bytes or the string readers is materialized from
// the buffer and never aliases it afterwards. Structures use the host byte
// order and the field order and widths encoding/binary reports for the type;
// there is no implicit padding. Types whose Go memory layout already matches
// that encoding are copied with a single memmove, everything else goes
// through encoding/binary.
//
// Every offset/length pair is validated before any byte is read, and every
// failure is a *types.Error:
//
//	o := overlay.New(raw)
//	defer o.Close()
//
//	hdr, err := overlay.ReadStruct[FileHeader](o, 0)
//	if errors.Is(err, types.ErrOutOfRange) {
//	    // raw is shorter than a FileHeader
//	}
//
// The package-level *From helpers scope a temporary Overlay around a single
// call.
package overlay
