// Package endian normalizes multi-byte values between an image's declared
// byte order and the host's.
//
// It provides three pieces:
//   - Endianness and Host, the byte order detected once at process start.
//   - SwapFields, the per-field swap helper applied to raw structure bytes.
//   - Reader, a sequential primitive reader built by NewReader, which picks a
//     pass-through or swapping implementation depending on the host.
package endian

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/sys/cpu"

	"github.com/joshuapare/pekit/pkg/types"
)

// Endianness is the byte order used to encode multi-byte values.
type Endianness uint8

const (
	// Little stores the least-significant byte first.
	Little Endianness = iota
	// Big stores the most-significant byte first.
	Big
)

var host = detectHost()

func detectHost() Endianness {
	if cpu.IsBigEndian {
		return Big
	}
	return Little
}

// Host returns the byte order of the running process.
func Host() Endianness { return host }

// String returns "little" or "big".
func (e Endianness) String() string {
	switch e {
	case Little:
		return "little"
	case Big:
		return "big"
	default:
		return fmt.Sprintf("endianness(%d)", uint8(e))
	}
}

// ByteOrder returns the encoding/binary order matching e.
func (e Endianness) ByteOrder() binary.ByteOrder {
	if e == Big {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// IsHost reports whether e matches the host byte order.
func (e Endianness) IsHost() bool { return e == host }

// Parse converts "little"/"le" or "big"/"be" into an Endianness.
func Parse(s string) (Endianness, error) {
	switch s {
	case "little", "le", "Little", "LE":
		return Little, nil
	case "big", "be", "Big", "BE":
		return Big, nil
	default:
		return Little, types.InvalidArgument("endian: unknown byte order %q", s)
	}
}
