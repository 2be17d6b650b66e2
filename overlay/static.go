package overlay

// With scopes a temporary Overlay over b for the duration of fn. The
// Overlay is released on every exit path, including when fn fails.
func With(b []byte, fn func(*Overlay) error) error {
	o := New(b)
	defer o.Close()
	return fn(o)
}

// ReadStructFrom reads a T at off in b.
func ReadStructFrom[T any](b []byte, off int) (T, error) {
	var v T
	err := With(b, func(o *Overlay) error {
		var err error
		v, err = ReadStruct[T](o, off)
		return err
	})
	return v, err
}

// ReadWindowedFrom is the buffer form of ReadWindowed.
func ReadWindowedFrom[T any](b []byte, off, window int) (T, []byte, error) {
	var (
		v     T
		extra []byte
	)
	err := With(b, func(o *Overlay) error {
		var err error
		v, extra, err = ReadWindowed[T](o, off, window)
		return err
	})
	return v, extra, err
}

// BytesFrom returns a copy of b[off:off+n] after validating the range.
func BytesFrom(b []byte, off, n int) ([]byte, error) {
	var out []byte
	err := With(b, func(o *Overlay) error {
		var err error
		out, err = o.Bytes(off, n)
		return err
	})
	return out, err
}

// StringAnsiFrom decodes a single-byte string at off in b.
func StringAnsiFrom(b []byte, off int) (string, int, error) {
	var (
		s string
		n int
	)
	err := With(b, func(o *Overlay) error {
		var err error
		s, n, err = o.StringAnsi(off)
		return err
	})
	return s, n, err
}

// StringUnicodeFrom decodes a UTF-16 string at off in b.
func StringUnicodeFrom(b []byte, off int) (string, int, error) {
	var (
		s string
		n int
	)
	err := With(b, func(o *Overlay) error {
		var err error
		s, n, err = o.StringUnicode(off)
		return err
	})
	return s, n, err
}
