package demo

import (
	"encoding/binary"

	"github.com/seantiz/rtwork/internal/transfer"
)

// WorkMessage identifies one task of one cycle.
type WorkMessage struct {
	Cycle uint64
	Task  uint32
}

const workMessageSize = 12

// WorkCodec encodes WorkMessage without reflection or allocation.
var WorkCodec = transfer.NewBinary(workMessageSize,
	func(dst []byte, m WorkMessage) {
		binary.LittleEndian.PutUint64(dst[0:8], m.Cycle)
		binary.LittleEndian.PutUint32(dst[8:12], m.Task)
	},
	func(src []byte) WorkMessage {
		return WorkMessage{
			Cycle: binary.LittleEndian.Uint64(src[0:8]),
			Task:  binary.LittleEndian.Uint32(src[8:12]),
		}
	},
)

// Response is sent back for answered tasks.
type Response struct {
	Cycle uint64 `cbor:"1,keyasint" json:"cycle"`
	Task  uint32 `cbor:"2,keyasint" json:"task"`
	Note  string `cbor:"3,keyasint,omitempty" json:"note,omitempty"`
}

// NewResponseCodec returns the CBOR-framed codec for Response.
func NewResponseCodec() (*transfer.Framed[Response], error) {
	return transfer.NewFramed[Response](nil)
}
