package transfer_test

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/seantiz/rtwork/internal/transfer"
)

type note struct {
	Cycle uint64   `json:"cycle" cbor:"cycle"`
	Text  string   `json:"text" cbor:"text"`
	Tags  []string `json:"tags" cbor:"tags"`
}

func TestFramedRoundTrip(t *testing.T) {
	marshalers := map[string]transfer.Marshaler{
		"cbor": nil,
		"json": transfer.JSON(),
	}

	for name, m := range marshalers {
		c, err := transfer.NewFramed[note](m)
		if err != nil {
			t.Fatalf("%s: NewFramed: %v", name, err)
		}

		original := note{Cycle: 9, Text: "response to cycle 9, task 5", Tags: []string{"a", "b"}}
		view, err := transfer.IntoView[note](c, nil, original)
		if err != nil {
			t.Fatalf("%s: IntoView: %v", name, err)
		}

		if got := binary.BigEndian.Uint32(view); int(got) != len(view)-4 {
			t.Errorf("%s: length prefix = %d, want %d", name, got, len(view)-4)
		}

		got, err := transfer.FromView[note](c, view)
		if err != nil {
			t.Fatalf("%s: FromView: %v", name, err)
		}
		if got.Cycle != original.Cycle || got.Text != original.Text {
			t.Errorf("%s: FromView = %+v, want %+v", name, got, original)
		}
		if len(got.Tags) != 2 || got.Tags[0] != "a" || got.Tags[1] != "b" {
			t.Errorf("%s: Tags = %v, want [a b]", name, got.Tags)
		}
	}
}

func TestFramedTruncatedViewRejected(t *testing.T) {
	c, err := transfer.NewFramed[note](nil)
	if err != nil {
		t.Fatalf("NewFramed: %v", err)
	}
	view, err := transfer.IntoView[note](c, nil, note{Text: "hello"})
	if err != nil {
		t.Fatalf("IntoView: %v", err)
	}

	for _, n := range []int{0, 3, 4, len(view) - 1} {
		if _, err := transfer.FromView[note](c, view[:n]); !errors.Is(err, transfer.ErrSizeMismatch) {
			t.Errorf("FromView(len %d) err = %v, want ErrSizeMismatch", n, err)
		}
	}
}

func TestFramedOversizedHeaderRejected(t *testing.T) {
	c, err := transfer.NewFramed[note](transfer.JSON())
	if err != nil {
		t.Fatalf("NewFramed: %v", err)
	}

	view := binary.BigEndian.AppendUint32(nil, transfer.MaxFrameSize+1)
	if _, ok := c.Expected(view); ok {
		t.Error("Expected reported ok for a header above MaxFrameSize")
	}
	if _, err := transfer.FromView[note](c, view); !errors.Is(err, transfer.ErrSizeMismatch) {
		t.Errorf("FromView err = %v, want ErrSizeMismatch", err)
	}
}

func TestFramedCorruptPayload(t *testing.T) {
	c, err := transfer.NewFramed[note](transfer.JSON())
	if err != nil {
		t.Fatalf("NewFramed: %v", err)
	}

	payload := []byte("{not json")
	view := binary.BigEndian.AppendUint32(nil, uint32(len(payload)))
	view = append(view, payload...)

	_, err = transfer.FromView[note](c, view)
	if err == nil {
		t.Fatal("expected decode error for corrupt payload")
	}
	if errors.Is(err, transfer.ErrSizeMismatch) {
		t.Errorf("corrupt payload reported as size mismatch: %v", err)
	}
}
