package transfer

import (
	"errors"
	"fmt"
)

var (
	// ErrSizeMismatch is returned when a view's length differs from the size
	// the codec expects. No decoding is attempted in that case.
	ErrSizeMismatch = errors.New("view size mismatch")

	// ErrNotPlain is returned when a type cannot be carried as a plain value.
	ErrNotPlain = errors.New("type is not a plain value")
)

// View is a byte window over an encoded value. A view passed into a call is
// valid only for the duration of that call.
type View = []byte

// Codec converts values of type T to and from views.
type Codec[T any] interface {
	// Append encodes v onto dst and returns the extended slice.
	Append(dst []byte, v T) ([]byte, error)

	// Expected reports the exact length a view must have to be decodable.
	// ok is false when the view is too malformed to tell.
	Expected(view View) (n int, ok bool)

	// Decode rebuilds a value from a view whose length has been validated.
	Decode(src View) (T, error)
}

// IntoView encodes v into scratch, reusing its capacity, and returns the
// populated view. The result aliases scratch when scratch is large enough.
func IntoView[T any](c Codec[T], scratch []byte, v T) (View, error) {
	view, err := c.Append(scratch[:0], v)
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	return view, nil
}

// FromView validates the length of view against the codec and decodes it.
// On mismatch it returns ErrSizeMismatch without calling Decode.
func FromView[T any](c Codec[T], view View) (T, error) {
	var zero T
	want, ok := c.Expected(view)
	if !ok || want != len(view) {
		return zero, ErrSizeMismatch
	}
	v, err := c.Decode(view)
	if err != nil {
		return zero, fmt.Errorf("decode value: %w", err)
	}
	return v, nil
}
