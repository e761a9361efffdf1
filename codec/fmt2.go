package codec

import (
	"bytes"
	"fmt"

	"github.com/zhoulab/yame/errs"
	"github.com/zhoulab/yame/format"
)

// Fmt2Aux is the lazily built side structure for a format-2 column: the
// decoded key table and a borrowed view of the data section. It must not
// outlive the Column whose Payload it borrows from (spec §4.4, §5).
type Fmt2Aux struct {
	Keys []string
	Data []byte
	Unit format.Unit
}

// Fmt2 implements the categorical-state format (spec §4.4): a key
// dictionary followed by a data section of packed integer indices into it.
type Fmt2 struct{}

var _ Codec = Fmt2{}

// NBytes returns headerN unchanged: the header stores the compressed
// stream's byte length for this format.
func (Fmt2) NBytes(headerN int) int {
	return headerN
}

// InflateKeys builds the inflated layout's keys section:
// key0 '\0' key1 '\0' ... keyK '\0' '\0'.
func InflateKeys(keys []string) []byte {
	var buf bytes.Buffer
	for _, k := range keys {
		buf.WriteString(k)
		buf.WriteByte(0)
	}
	buf.WriteByte(0)
	return buf.Bytes()
}

// InflateData packs indices at the given unit width, little-endian.
func InflateData(indices []uint64, unit format.Unit) []byte {
	out := make([]byte, len(indices)*int(unit))
	for i, v := range indices {
		putUintLE(out[i*int(unit):], v, int(unit))
	}
	return out
}

// parseKeys reads a NUL-terminated key list starting at payload[0],
// returning the decoded keys and the offset immediately following the
// terminating double-NUL.
func parseKeys(payload []byte) (keys []string, dataOffset int, err error) {
	offset := 0
	for {
		if offset >= len(payload) {
			return nil, 0, fmt.Errorf("%w: fmt2 key section not terminated", errs.ErrCorruptAux)
		}
		if payload[offset] == 0 {
			return keys, offset + 1, nil
		}
		end := bytes.IndexByte(payload[offset:], 0)
		if end < 0 {
			return nil, 0, fmt.Errorf("%w: fmt2 unterminated key", errs.ErrCorruptAux)
		}
		keys = append(keys, string(payload[offset:offset+end]))
		offset += end + 1
	}
}

// Compress parses the inflated keys+data layout and emits the compressed
// form: keys section unchanged, a single unit byte, then RLE records
// [value(unit bytes) | run(2 bytes LE)], choosing the minimal unit for the
// observed indices.
func (Fmt2) Compress(inflated []byte, n int, unit format.Unit) ([]byte, error) {
	keys, dataOffset, err := parseKeys(inflated)
	if err != nil {
		return nil, err
	}

	want := dataOffset + n*int(unit)
	if len(inflated) != want {
		return nil, fmt.Errorf("%w: fmt2 got %d bytes, want %d", errs.ErrInvalidPayloadLength, len(inflated), want)
	}

	data := inflated[dataOffset:]
	values := make([]uint64, n)
	var max uint64
	for i := range n {
		v := getUintLE(data[i*int(unit):], int(unit))
		values[i] = v
		if v > max {
			max = v
		}
	}
	outUnit := format.MinUnitForMax(max)

	for _, k := range keys {
		if len(k) > 0 && bytes.IndexByte([]byte(k), 0) >= 0 {
			return nil, fmt.Errorf("%w: fmt2 key contains NUL byte", errs.ErrCorruptAux)
		}
	}

	out := make([]byte, 0, dataOffset+1+n)
	out = append(out, inflated[:dataOffset]...)
	out = append(out, byte(outUnit))

	i := 0
	for i < n {
		v := values[i]
		run := 1
		for i+run < n && values[i+run] == v && run < maxByteRLERun {
			run++
		}
		rec := make([]byte, int(outUnit)+2)
		putUintLE(rec, v, int(outUnit))
		rec[outUnit] = byte(run)
		rec[int(outUnit)+1] = byte(run >> 8)
		out = append(out, rec...)
		i += run
	}

	return out, nil
}

// Decompress reverses Compress: keys section, a unit byte, then RLE
// records. The returned inflated layout packs indices at the unit the
// compressor chose. Row count is the sum of the RLE run lengths, not
// headerN (which is a byte count for this format).
func (Fmt2) Decompress(payload []byte, _ format.Unit) ([]byte, int, error) {
	keys, dataOffset, err := parseKeys(payload)
	if err != nil {
		return nil, 0, err
	}
	if dataOffset >= len(payload) {
		return nil, 0, fmt.Errorf("%w: fmt2 missing unit byte", errs.ErrCorruptAux)
	}

	unit := format.Unit(payload[dataOffset])
	if !unit.Valid() {
		return nil, 0, fmt.Errorf("%w: fmt2 unit byte %d", errs.ErrInvalidUnit, unit)
	}
	recSize := int(unit) + 2

	var values []uint64
	for off := dataOffset + 1; off < len(payload); off += recSize {
		if off+recSize > len(payload) {
			return nil, 0, fmt.Errorf("%w: fmt2 truncated RLE record", errs.ErrInvalidPayloadLength)
		}
		v := getUintLE(payload[off:], int(unit))
		run := int(payload[off+int(unit)]) | int(payload[off+int(unit)+1])<<8
		for range run {
			values = append(values, v)
		}
	}

	out := InflateKeys(keys)
	out = append(out, InflateData(values, unit)...)
	return out, len(values), nil
}

// PeekUnit reads only the compressed payload's unit byte, without
// decompressing the rest of the stream: useful for a caller that wants to
// learn the negotiated data-section width up front (DecompressColumn uses
// this to populate column.Column.Unit before Decompress replaces the
// payload, since the Codec interface's Decompress does not return it
// separately).
func (Fmt2) PeekUnit(payload []byte) (format.Unit, error) {
	_, dataOffset, err := parseKeys(payload)
	if err != nil {
		return format.UnitNone, err
	}
	if dataOffset >= len(payload) {
		return format.UnitNone, fmt.Errorf("%w: fmt2 missing unit byte", errs.ErrCorruptAux)
	}
	unit := format.Unit(payload[dataOffset])
	if !unit.Valid() {
		return format.UnitNone, fmt.Errorf("%w: fmt2 unit byte %d", errs.ErrInvalidUnit, unit)
	}
	return unit, nil
}

// GetUint64 reads the packed index at row i from a format-2 data section
// that was packed at the given unit width.
func (Fmt2) GetUint64(data []byte, i int, unit format.Unit) uint64 {
	return getUintLE(data[i*int(unit):], int(unit))
}

// GetString resolves row i's index against the key table.
func (Fmt2) GetString(aux *Fmt2Aux, i int) (string, error) {
	idx := getUintLE(aux.Data[i*int(aux.Unit):], int(aux.Unit))
	if idx >= uint64(len(aux.Keys)) {
		return "", fmt.Errorf("%w: index %d, %d keys", errs.ErrKeyIndexOutOfRange, idx, len(aux.Keys))
	}
	return aux.Keys[idx], nil
}

// SplitKeysData parses an inflated format-2 payload into its key table and
// a borrowed view of the data section that follows it, for callers (e.g.
// sliceops) that need to slice the data section while preserving the keys
// unchanged.
func SplitKeysData(payload []byte) (keys []string, data []byte, err error) {
	keys, dataOffset, err := parseKeys(payload)
	if err != nil {
		return nil, nil, err
	}
	return keys, payload[dataOffset:], nil
}

// BuildAux parses a column's inflated (decompressed) payload into a Fmt2Aux.
func BuildAux(inflated []byte, unit format.Unit) (*Fmt2Aux, error) {
	keys, dataOffset, err := parseKeys(inflated)
	if err != nil {
		return nil, err
	}
	return &Fmt2Aux{Keys: keys, Data: inflated[dataOffset:], Unit: unit}, nil
}

func putUintLE(b []byte, v uint64, width int) {
	for i := range width {
		b[i] = byte(v >> (8 * i))
	}
}

func getUintLE(b []byte, width int) uint64 {
	var v uint64
	for i := range width {
		v |= uint64(b[i]) << (8 * i)
	}
	return v
}
