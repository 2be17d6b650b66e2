// Package types defines the error taxonomy shared by every pekit package.
//
// Errors carry a stable Kind so callers can branch on intent rather than
// message text:
//
//	_, err := img.BytesAt(off, n)
//	if errors.Is(err, types.ErrOutOfRange) {
//	    // offset/length exceeded the image
//	}
//
// This package has no dependencies beyond the standard library.
package types
