package transfer

import "slices"

// Binary is a Codec over a fixed-size representation written and read by
// explicit functions. Unlike Fixed it does not use reflection, so encoding
// into a large enough buffer does not allocate.
type Binary[T any] struct {
	size int
	put  func(dst []byte, v T)
	get  func(src []byte) T
}

// NewBinary returns a Binary codec. put must fill exactly size bytes of dst
// and get must read a value from exactly size bytes.
func NewBinary[T any](size int, put func(dst []byte, v T), get func(src []byte) T) *Binary[T] {
	return &Binary[T]{size: size, put: put, get: get}
}

// Size returns the representation size of T.
func (b *Binary[T]) Size() int {
	return b.size
}

func (b *Binary[T]) Append(dst []byte, v T) ([]byte, error) {
	n := len(dst)
	dst = slices.Grow(dst, b.size)[:n+b.size]
	b.put(dst[n:], v)
	return dst, nil
}

func (b *Binary[T]) Expected(View) (int, bool) {
	return b.size, true
}

func (b *Binary[T]) Decode(src View) (T, error) {
	return b.get(src), nil
}
