// Package codec implements the seven on-disk column formats named in spec
// §4.2-§4.9: their compressed/inflated layouts, compressors, decompressors,
// byte-count functions, and per-row accessors. One file per format tag
// (fmt0.go ... fmt7.go), plus shared helpers here and format-conversion
// routines in convert.go.
package codec

import (
	"fmt"

	"github.com/zhoulab/yame/errs"
	"github.com/zhoulab/yame/format"
)

// Codec is the shared contract every format implements.
//
// NBytes mirrors record.PayloadSize for this format: given the header's N
// field (a row count for formats 0 and 6, a byte count for every other
// format - see record.PayloadSize), it returns the number of payload bytes
// that follow the header.
//
// Compress encodes n logical rows of inflated data into the format's
// on-disk representation. unit is the width the inflated payload is packed
// at for formats that support variable-width packing (2 and 3); formats
// without that concept ignore it.
//
// Decompress decodes a payload (read using NBytes(headerN) bytes) back into
// inflated form. For formats 0 and 6 the returned row count always equals
// the header's N field; for every other format the row count is discovered
// while decoding and is the authoritative logical N going forward.
type Codec interface {
	NBytes(headerN int) int
	Compress(inflated []byte, n int, unit format.Unit) ([]byte, error)
	Decompress(payload []byte, unit format.Unit) (inflated []byte, rows int, err error)
}

// fitMU right-shifts m and u in lockstep until both fit within bits bits
// (each value ends up strictly less than 1<<bits). This is the single
// controlled precision-loss point spec §9 names "fitMU": it is used both to
// narrow a tag-11 wire value to 31 bits and to narrow a decoded (M,U) pair
// down to a column's negotiated inflated Unit.
func fitMU(m, u uint64, bits uint) (uint64, uint64) {
	max := uint64(1) << bits
	for m >= max || u >= max {
		m >>= 1
		u >>= 1
	}
	return m, u
}

// halfBitsForUnit returns the number of bits available to each of M and U
// inside a packed word of the given byte Unit (4*unit bits per half, per
// spec §4.5).
func halfBitsForUnit(u format.Unit) uint {
	return 4 * uint(u)
}

// minUnitForHalfBits is halfBitsForUnit's inverse: the smallest Unit whose
// 4*unit-bit half can losslessly hold max. Unlike format.MinUnitForMax
// (which sizes a full unit*8-bit field, correct for fmt2's whole-byte
// indices), fmt3 packs M and U into half-width fields, so the unit it
// infers from a stream with no preset width must be sized against
// halfBitsForUnit, not a full byte (mirrors the original's
// get_data_length: unit = (nbits+3)>>2 over the per-half bit width).
func minUnitForHalfBits(max uint64) format.Unit {
	nbits := 0
	for v := max; v > 0; v >>= 1 {
		nbits++
	}
	switch {
	case nbits <= 4:
		return format.Unit1
	case nbits <= 8:
		return format.Unit2
	case nbits <= 12:
		return format.Unit3
	default:
		return format.Unit8
	}
}

// ForTag returns the Codec implementation for a format tag. Format 5 is
// included for reading legacy files only (spec §2 says new files never
// write it, but record framing and this dispatch still recognize it).
func ForTag(tag format.Tag) (Codec, error) {
	switch tag {
	case format.TagBitVector:
		return Fmt0{}, nil
	case format.TagByteRLE:
		return Fmt1{}, nil
	case format.TagCategorical:
		return Fmt2{}, nil
	case format.TagMU:
		return Fmt3{}, nil
	case format.TagFloatNA:
		return Fmt4{}, nil
	case format.TagTernary:
		return Fmt5{}, nil
	case format.TagSetUniverse:
		return Fmt6{}, nil
	case format.TagCoordinate:
		return Fmt7{}, nil
	default:
		return nil, fmt.Errorf("%w: tag %q", errs.ErrUnsupportedFormat, rune(tag))
	}
}
