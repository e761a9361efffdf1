package codec

import (
	"fmt"

	"github.com/zhoulab/yame/errs"
	"github.com/zhoulab/yame/format"
)

// naTernary is the inflated NA sentinel for format 5 (spec §4.7).
const naTernary = 2

// naRunMax5 is the largest run length format 5's 7-bit NA-run field carries.
const naRunMax5 = 1<<7 - 1

// Fmt5 implements the legacy ternary format (spec §4.7): one byte per row
// holding {0,1,2}, retained only for reading files written by the legacy
// encoder. Compressed: one byte per record, either a run of NA values (high
// bit 0, lower 7 bits the run length) or up to four packed {0,1} values
// (high bit 1, four 2-bit [flag,value] slots from bit offset 6 down to 0,
// a flag of 0 terminating the group early).
type Fmt5 struct{}

var _ Codec = Fmt5{}

// NBytes returns headerN unchanged: the header stores the compressed
// stream's byte length for this format.
func (Fmt5) NBytes(headerN int) int {
	return headerN
}

// Compress scans n inflated ternary rows, collapsing runs of NA (value 2)
// into run-length bytes and packing runs of {0,1} values four to a byte.
// Per spec §9 open question 2, a zero-length NA run is never emitted.
func (Fmt5) Compress(inflated []byte, n int, _ format.Unit) ([]byte, error) {
	if len(inflated) != n {
		return nil, fmt.Errorf("%w: fmt5 got %d bytes, want %d", errs.ErrInvalidPayloadLength, len(inflated), n)
	}
	for _, v := range inflated {
		if v > naTernary {
			return nil, fmt.Errorf("%w: fmt5 value %d outside {0,1,2}", errs.ErrInvalidPayloadLength, v)
		}
	}

	out := make([]byte, 0, n/2+1)
	i := 0
	for i < n {
		if inflated[i] == naTernary {
			run := 1
			for i+run < n && inflated[i+run] == naTernary && run < naRunMax5 {
				run++
			}
			out = append(out, byte(run))
			i += run
			continue
		}

		var b byte = 1 << 7
		k := 0
		for k < 4 && i+k < n && inflated[i+k] != naTernary {
			offset := uint(6 - 2*k)
			b |= 1 << (offset + 1)
			b |= (inflated[i+k] & 1) << offset
			k++
		}
		out = append(out, b)
		i += k
	}

	return out, nil
}

// Decompress reverses Compress one byte at a time.
func (Fmt5) Decompress(payload []byte, _ format.Unit) ([]byte, int, error) {
	var out []byte
	for _, b := range payload {
		if b&(1<<7) == 0 {
			run := int(b & naRunMax5)
			for range run {
				out = append(out, naTernary)
			}
			continue
		}

		for k := 0; k < 4; k++ {
			offset := uint(6 - 2*k)
			flag := (b >> (offset + 1)) & 1
			if flag == 0 {
				break
			}
			out = append(out, (b>>offset)&1)
		}
	}

	return out, len(out), nil
}
