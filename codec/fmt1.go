package codec

import (
	"fmt"

	"github.com/zhoulab/yame/errs"
	"github.com/zhoulab/yame/format"
)

// maxByteRLERun is the run-length ceiling for format 1: a run terminates at
// value change or upon reaching this many repeats, whichever comes first
// (spec §4.3).
const maxByteRLERun = 1 << 15

// Fmt1 implements the ASCII run-length format (spec §4.3). Inflated: one
// byte per row. Compressed: a stream of 3-byte records [value(1) |
// run(2, little-endian)]. The header's N field for this format is the byte
// length of the compressed stream, not the row count (see record.PayloadSize).
type Fmt1 struct{}

var _ Codec = Fmt1{}

// NBytes returns headerN unchanged: it already is the byte length.
func (Fmt1) NBytes(headerN int) int {
	return headerN
}

// Compress runs inflated (one ASCII byte per row) through run-length
// encoding, splitting runs at maxByteRLERun.
func (Fmt1) Compress(inflated []byte, n int, _ format.Unit) ([]byte, error) {
	if len(inflated) != n {
		return nil, fmt.Errorf("%w: fmt1 got %d bytes, want %d rows", errs.ErrInvalidPayloadLength, len(inflated), n)
	}

	out := make([]byte, 0, n/2+3)
	i := 0
	for i < n {
		v := inflated[i]
		run := 1
		for i+run < n && inflated[i+run] == v && run < maxByteRLERun {
			run++
		}
		out = append(out, v, byte(run), byte(run>>8))
		i += run
	}
	return out, nil
}

// Decompress expands a run-length stream back into one byte per row.
func (Fmt1) Decompress(payload []byte, _ format.Unit) ([]byte, int, error) {
	if len(payload)%3 != 0 {
		return nil, 0, fmt.Errorf("%w: fmt1 payload length %d not a multiple of 3", errs.ErrInvalidPayloadLength, len(payload))
	}

	out := make([]byte, 0, len(payload))
	for i := 0; i < len(payload); i += 3 {
		v := payload[i]
		run := int(payload[i+1]) | int(payload[i+2])<<8
		for range run {
			out = append(out, v)
		}
	}
	return out, len(out), nil
}
