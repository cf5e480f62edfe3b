package transfer

import (
	"encoding/binary"
	"fmt"
	"reflect"
)

// Fixed is a Codec for plain values: fixed-size types without pointers,
// slices, strings, maps or platform-sized integers. The view length is the
// encoding/binary representation size of T.
type Fixed[T any] struct {
	size int
}

// NewFixed returns a Fixed codec for T, or ErrNotPlain if T has no fixed
// binary representation.
func NewFixed[T any]() (*Fixed[T], error) {
	typ := reflect.TypeFor[T]()
	switch typ.Kind() {
	case reflect.Slice, reflect.Pointer, reflect.Interface:
		return nil, fmt.Errorf("%s: %w", typ, ErrNotPlain)
	}
	var zero T
	n := binary.Size(&zero)
	if n < 0 {
		return nil, fmt.Errorf("%s: %w", typ, ErrNotPlain)
	}
	return &Fixed[T]{size: n}, nil
}

// MustFixed is like NewFixed but panics on error. Use it for package-level codecs.
func MustFixed[T any]() *Fixed[T] {
	c, err := NewFixed[T]()
	if err != nil {
		panic(err)
	}
	return c
}

// Size returns the representation size of T.
func (f *Fixed[T]) Size() int {
	return f.size
}

func (f *Fixed[T]) Append(dst []byte, v T) ([]byte, error) {
	return binary.Append(dst, binary.NativeEndian, &v)
}

func (f *Fixed[T]) Expected(View) (int, bool) {
	return f.size, true
}

func (f *Fixed[T]) Decode(src View) (T, error) {
	var v T
	if _, err := binary.Decode(src, binary.NativeEndian, &v); err != nil {
		return v, err
	}
	return v, nil
}
