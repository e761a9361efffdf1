package codec

import (
	"fmt"
	"math"

	"github.com/zhoulab/yame/errs"
	"github.com/zhoulab/yame/format"
)

// MU is a packed (methylated, unmethylated) sequencing count pair for one
// row (spec §3).
type MU struct {
	M uint64
	U uint64
}

// Cov returns M+U.
func (mu MU) Cov() uint64 { return mu.M + mu.U }

// Beta returns M/(M+U), or NaN when coverage is zero.
func (mu MU) Beta() float64 {
	cov := mu.Cov()
	if cov == 0 {
		return math.NaN()
	}
	return float64(mu.M) / float64(cov)
}

// Fmt3 implements the sequencing M/U counts format (spec §4.5), the hardest
// codec: a tagged variable-width compressed stream over a fixed-width
// packed-word inflated layout.
type Fmt3 struct{}

var _ Codec = Fmt3{}

// NBytes returns headerN unchanged: the header stores the compressed
// stream's byte length for this format.
func (Fmt3) NBytes(headerN int) int {
	return headerN
}

// maxZeroRun is the largest run length a tag-00 record can carry in its
// 14-bit field.
const maxZeroRun = 1<<14 - 1

// tag10Limit is the boundary spec §9 open question 3 resolves: tag-10
// restricts M and U to values strictly less than 127 (not 128); exactly 127
// escalates to tag-11.
const tag10Limit = 127

// tag01Limit bounds tag-01's 3-bit fields.
const tag01Limit = 7

// tag11Bits is the width fitMU narrows tag-11's M and U fields to.
const tag11Bits = 31

// InflateMU packs a slice of MU pairs into the fixed-width inflated layout
// at the given unit (spec §4.5: high half M, low half U, each 4*unit bits).
func InflateMU(rows []MU, unit format.Unit) []byte {
	bits := halfBitsForUnit(unit)
	out := make([]byte, len(rows)*int(unit))
	for i, row := range rows {
		m, u := fitMU(row.M, row.U, bits)
		word := (m << bits) | u
		putUintLE(out[i*int(unit):], word, int(unit))
	}
	return out
}

// DeflateMU unpacks a fixed-width inflated layout back into MU pairs.
func DeflateMU(payload []byte, unit format.Unit) []MU {
	bits := halfBitsForUnit(unit)
	n := len(payload) / int(unit)
	out := make([]MU, n)
	mask := uint64(1)<<bits - 1
	for i := range n {
		word := getUintLE(payload[i*int(unit):], int(unit))
		out[i] = MU{M: word >> bits, U: word & mask}
	}
	return out
}

// GetMU reads row i of an inflated payload packed at unit.
func (Fmt3) GetMU(payload []byte, i int, unit format.Unit) MU {
	bits := halfBitsForUnit(unit)
	word := getUintLE(payload[i*int(unit):], int(unit))
	return MU{M: word >> bits, U: word & (uint64(1)<<bits - 1)}
}

// SetMU writes (m, u) into row i of an inflated payload packed at unit,
// fitted to the unit's half width the same way InflateMU fits them.
func (Fmt3) SetMU(payload []byte, i int, unit format.Unit, m, u uint64) {
	bits := halfBitsForUnit(unit)
	m, u = fitMU(m, u, bits)
	putUintLE(payload[i*int(unit):], (m<<bits)|u, int(unit))
}

// Compress scans n packed MU words (at the given inflated unit) and emits
// the tagged compressed stream: runs of (0,0) become tag-00 records; every
// other row emits the smallest tag that fits it.
func (Fmt3) Compress(inflated []byte, n int, unit format.Unit) ([]byte, error) {
	want := n * int(unit)
	if len(inflated) != want {
		return nil, fmt.Errorf("%w: fmt3 got %d bytes, want %d", errs.ErrInvalidPayloadLength, len(inflated), want)
	}

	rows := DeflateMU(inflated, unit)
	out := make([]byte, 0, n)

	i := 0
	for i < n {
		if rows[i].M == 0 && rows[i].U == 0 {
			run := 1
			for i+run < n && rows[i+run].M == 0 && rows[i+run].U == 0 && run < maxZeroRun {
				run++
			}
			out = append(out, byte(run<<2), byte(run>>6))
			i += run
			continue
		}

		m, u := rows[i].M, rows[i].U
		switch {
		case m < tag01Limit && u < tag01Limit:
			out = append(out, byte(m<<5)|byte(u<<2)|0b01)
		case m < tag10Limit && u < tag10Limit:
			out = append(out, encodeTag10(m, u)...)
		default:
			m, u = fitMU(m, u, tag11Bits)
			out = append(out, encodeTag11(m, u)...)
		}
		i++
	}

	return out, nil
}

// encodeTag10 packs M (bits 9-15) and U (bits 2-8) of a 2-byte record whose
// low 2 bits are the 10 tag.
func encodeTag10(m, u uint64) []byte {
	word := uint16(m<<9) | uint16(u<<2) | 0b10
	return []byte{byte(word), byte(word >> 8)}
}

func decodeTag10(b0, b1 byte) (m, u uint64) {
	word := uint16(b0) | uint16(b1)<<8
	return uint64(word >> 9), uint64(word>>2) & 0x7F
}

// encodeTag11 packs M (bits 33-63) and U (bits 2-32) of an 8-byte record
// whose low 2 bits are the 11 tag.
func encodeTag11(m, u uint64) []byte {
	word := (m << 33) | (u << 2) | 0b11
	out := make([]byte, 8)
	putUintLE(out, word, 8)
	return out
}

func decodeTag11(b []byte) (m, u uint64) {
	word := getUintLE(b, 8)
	return word >> 33, (word >> 2) & (1<<31 - 1)
}

// Decompress reads one tagged record at a time, expanding tag-00 into runs
// of zero-MU rows and every other tag into a single fitted MU row. The
// inflated output is packed at the given unit; if unit is UnitNone (no
// preset), the minimal unit that losslessly represents the widest (M,U)
// pair in the stream is inferred instead (spec §4.5). Row count is
// discovered as a result of decoding, not taken from headerN.
func (Fmt3) Decompress(payload []byte, unit format.Unit) ([]byte, int, error) {
	var rows []MU

	i := 0
	for i < len(payload) {
		tag := payload[i] & 0b11
		switch tag {
		case 0b00:
			if i+2 > len(payload) {
				return nil, 0, fmt.Errorf("%w: fmt3 truncated tag-00 record", errs.ErrInvalidPayloadLength)
			}
			run := int(payload[i]>>2) | int(payload[i+1])<<6
			for range run {
				rows = append(rows, MU{})
			}
			i += 2
		case 0b01:
			m := uint64(payload[i]>>5) & 0x7
			u := uint64(payload[i]>>2) & 0x7
			rows = append(rows, MU{M: m, U: u})
			i++
		case 0b10:
			if i+2 > len(payload) {
				return nil, 0, fmt.Errorf("%w: fmt3 truncated tag-10 record", errs.ErrInvalidPayloadLength)
			}
			m, u := decodeTag10(payload[i], payload[i+1])
			rows = append(rows, MU{M: m, U: u})
			i += 2
		case 0b11:
			if i+8 > len(payload) {
				return nil, 0, fmt.Errorf("%w: fmt3 truncated tag-11 record", errs.ErrInvalidPayloadLength)
			}
			m, u := decodeTag11(payload[i : i+8])
			rows = append(rows, MU{M: m, U: u})
			i += 8
		}
	}

	if unit == format.UnitNone {
		var maxVal uint64
		for _, row := range rows {
			if row.M > maxVal {
				maxVal = row.M
			}
			if row.U > maxVal {
				maxVal = row.U
			}
		}
		unit = minUnitForHalfBits(maxVal)
	}

	return InflateMU(rows, unit), len(rows), nil
}
