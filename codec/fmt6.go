package codec

import (
	"fmt"

	"github.com/zhoulab/yame/errs"
	"github.com/zhoulab/yame/format"
)

// Two-bit codes for format 6 (spec §4.8): (universe, set).
const (
	code6NA    = 0b00 // out of universe
	code6Set0  = 0b10 // in universe, value 0
	code6Set1  = 0b11 // in universe, value 1
	code6Resrv = 0b01 // reserved; must never appear on disk
)

// Fmt6 implements the set+universe format (spec §4.8): 2 bits per row, 4
// rows per byte, low bits first. The inflated and compressed layouts are
// identical; Compressed is a marker only.
type Fmt6 struct{}

var _ Codec = Fmt6{}

// NBytes returns ceil(headerN/4), the packed byte length for headerN rows.
func (Fmt6) NBytes(headerN int) int {
	return (headerN + 3) >> 2
}

func fmt6Code(payload []byte, i int) byte {
	b := payload[i>>2]
	shift := uint(i&3) * 2
	return (b >> shift) & 0b11
}

func fmt6SetCode(payload []byte, i int, code byte) {
	shift := uint(i&3) * 2
	mask := byte(0b11) << shift
	payload[i>>2] = payload[i>>2]&^mask | (code << shift)
}

// Compress validates that inflated already has the packed length for n rows
// and that no row carries the reserved 01 code, returning the payload
// unchanged.
func (Fmt6) Compress(inflated []byte, n int, _ format.Unit) ([]byte, error) {
	want := (n + 3) >> 2
	if len(inflated) != want {
		return nil, fmt.Errorf("%w: fmt6 got %d bytes for n=%d, want %d", errs.ErrInvalidPayloadLength, len(inflated), n, want)
	}
	for i := range n {
		if fmt6Code(inflated, i) == code6Resrv {
			return nil, fmt.Errorf("%w: row %d", errs.ErrReservedCode, i)
		}
	}
	return inflated, nil
}

// Decompress is the inverse of Compress: a memcpy. unit is unused (format 6
// has no variable-width negotiation).
func (Fmt6) Decompress(payload []byte, _ format.Unit) ([]byte, int, error) {
	rows := len(payload) * 4
	for i := range rows {
		if fmt6Code(payload, i) == code6Resrv {
			return nil, 0, fmt.Errorf("%w: row %d", errs.ErrReservedCode, i)
		}
	}
	return payload, rows, nil
}

// InUniverse reports whether row i is measured (any code other than NA).
func (Fmt6) InUniverse(payload []byte, i int) bool {
	return fmt6Code(payload, i) != code6NA
}

// InSet reports whether row i is both in-universe and has value 1.
func (Fmt6) InSet(payload []byte, i int) bool {
	return fmt6Code(payload, i) == code6Set1
}

// SetNA marks row i as out-of-universe.
func (Fmt6) SetNA(payload []byte, i int) {
	fmt6SetCode(payload, i, code6NA)
}

// Set0 marks row i as in-universe with value 0.
func (Fmt6) Set0(payload []byte, i int) {
	fmt6SetCode(payload, i, code6Set0)
}

// Set1 marks row i as in-universe with value 1.
func (Fmt6) Set1(payload []byte, i int) {
	fmt6SetCode(payload, i, code6Set1)
}
