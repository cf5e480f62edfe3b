package transfer

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	cbor "github.com/fxamacker/cbor/v2"
)

// MaxFrameSize is the maximum payload carried by a Framed view (16 MiB).
const MaxFrameSize = 16 << 20

// frameHeaderSize is the 4-byte big-endian length prefix.
const frameHeaderSize = 4

// Marshaler serializes payloads carried inside a Framed view.
type Marshaler interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// Framed is a Codec for values of variable size. The view is a 4-byte
// big-endian length prefix followed by the marshalled payload, so the
// expected length is known before anything is unmarshalled.
type Framed[T any] struct {
	m Marshaler
}

// NewFramed returns a Framed codec using m. A nil m selects CBOR.
func NewFramed[T any](m Marshaler) (*Framed[T], error) {
	if m == nil {
		var err error
		if m, err = CBOR(); err != nil {
			return nil, err
		}
	}
	return &Framed[T]{m: m}, nil
}

func (f *Framed[T]) Append(dst []byte, v T) ([]byte, error) {
	data, err := f.m.Marshal(v)
	if err != nil {
		return dst, fmt.Errorf("marshal payload: %w", err)
	}
	if len(data) > MaxFrameSize {
		return dst, fmt.Errorf("payload size %d exceeds maximum %d", len(data), MaxFrameSize)
	}
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(data)))
	return append(dst, data...), nil
}

func (f *Framed[T]) Expected(view View) (int, bool) {
	if len(view) < frameHeaderSize {
		return 0, false
	}
	length := binary.BigEndian.Uint32(view)
	if length > MaxFrameSize {
		return 0, false
	}
	return frameHeaderSize + int(length), true
}

func (f *Framed[T]) Decode(src View) (T, error) {
	var v T
	if err := f.m.Unmarshal(src[frameHeaderSize:], &v); err != nil {
		return v, fmt.Errorf("unmarshal payload: %w", err)
	}
	return v, nil
}

type cborMarshaler struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

// CBOR returns a deterministic CBOR marshaler (core deterministic encoding).
func CBOR() (Marshaler, error) {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("cbor enc mode: %w", err)
	}
	dm, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		return nil, fmt.Errorf("cbor dec mode: %w", err)
	}
	return cborMarshaler{enc: em, dec: dm}, nil
}

func (c cborMarshaler) Marshal(v any) ([]byte, error)      { return c.enc.Marshal(v) }
func (c cborMarshaler) Unmarshal(data []byte, v any) error { return c.dec.Unmarshal(data, v) }

type jsonMarshaler struct{}

// JSON returns a marshaler backed by encoding/json.
func JSON() Marshaler { return jsonMarshaler{} }

func (jsonMarshaler) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonMarshaler) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
