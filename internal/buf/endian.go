// Package buf contains bounds arithmetic and byte-order helpers shared by the
// decoding packages.
package buf

// Reverse reverses b in place.
func Reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}

// ReverseEach reverses every width-sized word of b in place. A trailing
// partial word is left untouched.
func ReverseEach(b []byte, width int) {
	if width < 2 {
		return
	}
	for off := 0; off+width <= len(b); off += width {
		Reverse(b[off : off+width])
	}
}
