package codec

import (
	"fmt"

	"github.com/zhoulab/yame/errs"
	"github.com/zhoulab/yame/format"
)

// Fmt0 implements the dense bit-vector format (spec §4.2): one bit per row,
// 8 rows per byte, bit i at byte i>>3, position i&7. The inflated and
// compressed layouts are identical; Compressed is a marker only.
type Fmt0 struct{}

var _ Codec = Fmt0{}

// NBytes returns ceil(headerN/8), the packed byte length for headerN rows.
func (Fmt0) NBytes(headerN int) int {
	return (headerN + 7) >> 3
}

// Compress validates that inflated already has the packed length for n rows
// and returns it unchanged: there is no transformation to perform.
func (Fmt0) Compress(inflated []byte, n int, _ format.Unit) ([]byte, error) {
	want := (n + 7) >> 3
	if len(inflated) != want {
		return nil, fmt.Errorf("%w: fmt0 got %d bytes for n=%d, want %d", errs.ErrInvalidPayloadLength, len(inflated), n, want)
	}
	return inflated, nil
}

// Decompress is the inverse of Compress: a memcpy. unit is unused (format 0
// has no variable-width negotiation).
func (Fmt0) Decompress(payload []byte, _ format.Unit) ([]byte, int, error) {
	rows := len(payload) * 8
	return payload, rows, nil
}

// GetBit reports whether row i is set in a packed bit-vector payload.
func (Fmt0) GetBit(payload []byte, i int) bool {
	return payload[i>>3]&(1<<uint(i&7)) != 0
}

// SetBit sets or clears row i in a packed bit-vector payload.
func (Fmt0) SetBit(payload []byte, i int, v bool) {
	mask := byte(1 << uint(i&7))
	if v {
		payload[i>>3] |= mask
	} else {
		payload[i>>3] &^= mask
	}
}

// FromByteRLE builds a format-0 payload from decoded format-1 values: bit i
// is set iff values[i] > '0' (spec §4.2).
func FromByteRLE(values []byte) []byte {
	out := make([]byte, (len(values)+7)>>3)
	for i, v := range values {
		if v > '0' {
			out[i>>3] |= 1 << uint(i&7)
		}
	}
	return out
}

// FromMU builds a format-0 payload from decoded format-3 (M,U) pairs: bit i
// is set iff M+U > 0 for row i (spec §4.2).
func FromMU(mu []MU) []byte {
	out := make([]byte, (len(mu)+7)>>3)
	for i, row := range mu {
		if row.M+row.U > 0 {
			out[i>>3] |= 1 << uint(i&7)
		}
	}
	return out
}
