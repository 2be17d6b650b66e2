// Package mmfile provides platform-specific helpers for mapping image files
// read-only into memory.
package mmfile
