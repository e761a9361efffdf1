package codec

import (
	"fmt"
	"math"

	"github.com/zhoulab/yame/errs"
	"github.com/zhoulab/yame/format"
)

// naValue is the inflated sentinel for a missing beta value (spec §4.6).
const naValue float32 = -1.0

// naRunMax is the largest run length a single NA-run word can carry in its
// 31 low bits.
const naRunMax = 1<<31 - 1

// Fmt4 implements the float-beta format (spec §4.6): one float32 per row,
// with runs of NA (-1.0) collapsed into a single run-length word.
type Fmt4 struct{}

var _ Codec = Fmt4{}

// NBytes returns headerN unchanged: the header stores the compressed
// stream's byte length for this format.
func (Fmt4) NBytes(headerN int) int {
	return headerN
}

// InflateFloats packs a slice of float32 betas as little-endian 32-bit
// words, n = len(values).
func InflateFloats(values []float32) []byte {
	out := make([]byte, len(values)*4)
	for i, v := range values {
		putUintLE(out[i*4:], uint64(math.Float32bits(v)), 4)
	}
	return out
}

// DeflateFloats unpacks a little-endian float32 inflated payload.
func DeflateFloats(payload []byte) []float32 {
	n := len(payload) / 4
	out := make([]float32, n)
	for i := range n {
		out[i] = math.Float32frombits(uint32(getUintLE(payload[i*4:], 4)))
	}
	return out
}

// Compress scans n inflated float32 rows and emits runs of NA as a single
// high-bit-set word carrying the run length in its low 31 bits; every
// non-NA row is emitted as its raw bit pattern (high bit always 0, since
// beta values are non-negative).
func (Fmt4) Compress(inflated []byte, n int, _ format.Unit) ([]byte, error) {
	want := n * 4
	if len(inflated) != want {
		return nil, fmt.Errorf("%w: fmt4 got %d bytes, want %d", errs.ErrInvalidPayloadLength, len(inflated), want)
	}

	values := DeflateFloats(inflated)
	out := make([]byte, 0, want)

	i := 0
	for i < n {
		if values[i] == naValue {
			run := 1
			for i+run < n && values[i+run] == naValue && run < naRunMax {
				run++
			}
			word := uint32(run) | 1<<31
			out = append(out, byte(word), byte(word>>8), byte(word>>16), byte(word>>24))
			i += run
			continue
		}

		bits := math.Float32bits(values[i])
		if bits&(1<<31) != 0 {
			return nil, fmt.Errorf("%w: fmt4 negative non-NA float at row %d", errs.ErrInvalidPayloadLength, i)
		}
		out = append(out, byte(bits), byte(bits>>8), byte(bits>>16), byte(bits>>24))
		i++
	}

	return out, nil
}

// Decompress reverses Compress: a high bit of 1 expands to run zero-or-more
// NA rows of the word's low 31 bits; a high bit of 0 is a single non-NA
// float row.
func (Fmt4) Decompress(payload []byte, _ format.Unit) ([]byte, int, error) {
	if len(payload)%4 != 0 {
		return nil, 0, fmt.Errorf("%w: fmt4 payload length %d not a multiple of 4", errs.ErrInvalidPayloadLength, len(payload))
	}

	var values []float32
	for off := 0; off < len(payload); off += 4 {
		word := uint32(getUintLE(payload[off:], 4))
		if word&(1<<31) != 0 {
			run := int(word &^ (1 << 31))
			for range run {
				values = append(values, naValue)
			}
			continue
		}
		values = append(values, math.Float32frombits(word))
	}

	return InflateFloats(values), len(values), nil
}
