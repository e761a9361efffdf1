// Package sliceops implements the slicing primitives spec §4.12 defines
// over decompressed columns: contiguous range, index list, and bitmask.
// Every function here requires col.Compressed == false; slicing a
// compressed column is the CodecViolation spec §4.12 and §7 both call out,
// except format 7, whose on-disk form is always the "compressed" delta
// stream (§4.9) and is sliced directly via its own specialized functions.
package sliceops

import (
	"fmt"

	"github.com/zhoulab/yame/codec"
	"github.com/zhoulab/yame/column"
	"github.com/zhoulab/yame/errs"
	"github.com/zhoulab/yame/format"
)

// RangeSlice returns a new Column containing rows [b, e] (inclusive,
// 0-based) of an inflated col.
func RangeSlice(col *column.Column, b, e int) (*column.Column, error) {
	if col.Fmt == format.TagCoordinate {
		out, err := codec.SliceRange(col.Payload, b, e)
		if err != nil {
			return nil, err
		}
		return &column.Column{Fmt: col.Fmt, N: e - b + 1, Compressed: true, Payload: out}, nil
	}
	if col.Compressed {
		return nil, errs.ErrSliceOnCompressed
	}
	if b < 0 || e < b || e >= col.N {
		return nil, errs.ErrRowOutOfRange
	}

	n := e - b + 1
	switch col.Fmt {
	case format.TagBitVector:
		return bitOut(col, n, fieldSliceRange(col.Payload, b, e, 1)), nil
	case format.TagSetUniverse:
		return bitOut(col, n, fieldSliceRange(col.Payload, b, e, 2)), nil
	case format.TagCategorical:
		return fmt2RangeSlice(col, b, e)
	default:
		unit, err := byteUnit(col)
		if err != nil {
			return nil, err
		}
		payload := append([]byte(nil), col.Payload[b*unit:(e+1)*unit]...)
		return fixedOut(col, n, payload), nil
	}
}

// IndexSlice returns a new Column containing the rows named by indices
// (0-based), in list order.
func IndexSlice(col *column.Column, indices []int) (*column.Column, error) {
	if col.Fmt == format.TagCoordinate {
		out, err := codec.SliceByIndices(col.Payload, indices)
		if err != nil {
			return nil, err
		}
		return &column.Column{Fmt: col.Fmt, N: len(indices), Compressed: true, Payload: out}, nil
	}
	if col.Compressed {
		return nil, errs.ErrSliceOnCompressed
	}
	for _, idx := range indices {
		if idx < 0 || idx >= col.N {
			return nil, errs.ErrRowOutOfRange
		}
	}

	switch col.Fmt {
	case format.TagBitVector:
		return bitOut(col, len(indices), fieldSliceIndices(col.Payload, indices, 1)), nil
	case format.TagSetUniverse:
		return bitOut(col, len(indices), fieldSliceIndices(col.Payload, indices, 2)), nil
	case format.TagCategorical:
		return fmt2IndexSlice(col, indices)
	default:
		unit, err := byteUnit(col)
		if err != nil {
			return nil, err
		}
		out := make([]byte, len(indices)*unit)
		for i, idx := range indices {
			copy(out[i*unit:], col.Payload[idx*unit:(idx+1)*unit])
		}
		return fixedOut(col, len(indices), out), nil
	}
}

// MaskSlice returns a new Column containing only the rows whose bit is set
// in mask, a format-0 column of the same row count as col.
func MaskSlice(col *column.Column, mask *column.Column) (*column.Column, error) {
	if mask.Fmt != format.TagBitVector {
		return nil, fmt.Errorf("%w: mask must be format 0", errs.ErrUnsupportedFormat)
	}

	if col.Fmt == format.TagCoordinate {
		out, err := codec.SliceByMask(col.Payload, mask.Payload, mask.N)
		if err != nil {
			return nil, err
		}
		n := countSet(mask.Payload, mask.N)
		return &column.Column{Fmt: col.Fmt, N: n, Compressed: true, Payload: out}, nil
	}
	if col.Compressed {
		return nil, errs.ErrSliceOnCompressed
	}
	if col.N != mask.N {
		return nil, errs.ErrMaskLengthMismatch
	}

	switch col.Fmt {
	case format.TagBitVector:
		return bitOut(col, countSet(mask.Payload, mask.N), fieldSliceMask(col.Payload, mask.Payload, mask.N, 1)), nil
	case format.TagSetUniverse:
		return bitOut(col, countSet(mask.Payload, mask.N), fieldSliceMask(col.Payload, mask.Payload, mask.N, 2)), nil
	case format.TagCategorical:
		return fmt2MaskSlice(col, mask)
	default:
		unit, err := byteUnit(col)
		if err != nil {
			return nil, err
		}
		var out []byte
		n := 0
		for i := range col.N {
			if codec.Fmt0{}.GetBit(mask.Payload, i) {
				out = append(out, col.Payload[i*unit:(i+1)*unit]...)
				n++
			}
		}
		return fixedOut(col, n, out), nil
	}
}

func countSet(mask []byte, n int) int {
	c := 0
	for i := range n {
		if codec.Fmt0{}.GetBit(mask, i) {
			c++
		}
	}
	return c
}

// byteUnit returns the per-row byte width for the fixed-width formats that
// slice by plain memcpy: 1 for formats 1 and 5 (one ASCII/ternary byte per
// row), 4 for format 4 (one float32 per row), and col.Unit for format 3.
func byteUnit(col *column.Column) (int, error) {
	switch col.Fmt {
	case format.TagByteRLE, format.TagTernary:
		return 1, nil
	case format.TagFloatNA:
		return 4, nil
	case format.TagMU:
		if !col.Unit.Valid() {
			return 0, errs.ErrInvalidUnit
		}
		return int(col.Unit), nil
	default:
		return 0, fmt.Errorf("%w: format %s has no fixed byte width", errs.ErrUnsupportedFormat, col.Fmt)
	}
}

func fixedOut(col *column.Column, n int, payload []byte) *column.Column {
	return &column.Column{Fmt: col.Fmt, N: n, Compressed: false, Unit: col.Unit, Payload: payload}
}

func bitOut(col *column.Column, n int, payload []byte) *column.Column {
	return &column.Column{Fmt: col.Fmt, N: n, Compressed: false, Payload: payload}
}
