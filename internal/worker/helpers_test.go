package worker_test

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/seantiz/rtwork/internal/host"
	"github.com/seantiz/rtwork/internal/transfer"
)

// msg is the payload used across worker tests.
type msg struct {
	Cycle uint64
	Task  uint32
}

const msgSize = 12

// countingCodec wraps a Binary codec and counts how many values it built.
type countingCodec struct {
	inner   *transfer.Binary[msg]
	decoded atomic.Int64
}

func newCountingCodec() *countingCodec {
	return &countingCodec{inner: transfer.NewBinary(msgSize,
		func(dst []byte, v msg) {
			binary.LittleEndian.PutUint64(dst[0:8], v.Cycle)
			binary.LittleEndian.PutUint32(dst[8:12], v.Task)
		},
		func(src []byte) msg {
			return msg{Cycle: binary.LittleEndian.Uint64(src[0:8]), Task: binary.LittleEndian.Uint32(src[8:12])}
		},
	)}
}

func (c *countingCodec) Append(dst []byte, v msg) ([]byte, error) { return c.inner.Append(dst, v) }
func (c *countingCodec) Expected(v transfer.View) (int, bool)     { return c.inner.Expected(v) }
func (c *countingCodec) Decode(src transfer.View) (msg, error) {
	c.decoded.Add(1)
	return c.inner.Decode(src)
}

// encode returns the view for v.
func (c *countingCodec) encode(v msg) []byte {
	view, err := c.inner.Append(nil, v)
	if err != nil {
		panic(err)
	}
	return view
}

// mockHost records submitted views and answers with a fixed status.
type mockHost struct {
	status host.Status
	calls  int
	views  [][]byte
}

func (m *mockHost) submit(_ any, view []byte) host.Status {
	m.calls++
	m.views = append(m.views, append([]byte(nil), view...))
	return m.status
}

func (m *mockHost) features() *host.FeatureSet {
	return host.NewFeatureSet(map[string]any{
		host.URISchedule: host.ScheduleFeature{Handle: m, ScheduleWork: m.submit},
	})
}
