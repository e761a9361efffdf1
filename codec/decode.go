package codec

import (
	"fmt"

	"github.com/zhoulab/yame/column"
	"github.com/zhoulab/yame/errs"
	"github.com/zhoulab/yame/format"
)

// DecompressColumn decodes col's compressed payload in place and clears
// its Compressed flag. Row count is discovered as part of decoding for
// every format except 0 and 6 (spec §4.1); for format 2, col.Unit is also
// populated with the data-section width the compressor negotiated, since
// the Codec interface's Decompress does not surface it on its own (the
// unit lives only in the compressed bytes, read here via Fmt2.PeekUnit
// before they are overwritten). Aux is cleared and is not rebuilt here:
// BuildAux and BuildIndex return their structures to the caller instead of
// storing them on the column.
func DecompressColumn(col *column.Column) error {
	c, err := ForTag(col.Fmt)
	if err != nil {
		return err
	}
	if !col.Compressed {
		return fmt.Errorf("%w: column already inflated", errs.ErrCodecViolation)
	}

	var fmt2Unit format.Unit
	if col.Fmt == format.TagCategorical {
		fmt2Unit, err = Fmt2{}.PeekUnit(col.Payload)
		if err != nil {
			return err
		}
	}

	inflated, n, err := c.Decompress(col.Payload, col.Unit)
	if err != nil {
		return err
	}

	// Formats 0 and 6 pack rows into a byte boundary (8 and 4 rows/byte), so
	// a Decompress call can only recover a row count rounded up to that
	// boundary, not the exact value when N isn't a multiple of it. Both
	// formats carry the exact row count in the record header already (spec
	// §4.1), so col.N going in is authoritative and must not be overwritten
	// with the padded count Decompress infers from payload length alone.
	switch col.Fmt {
	case format.TagBitVector, format.TagSetUniverse:
	default:
		col.N = n
	}
	col.Payload = inflated
	col.Compressed = false
	col.Aux = nil
	if col.Fmt == format.TagCategorical {
		col.Unit = fmt2Unit
	}
	return nil
}

// CompressColumn encodes col's inflated payload in place and sets its
// Compressed flag. Re-compressing an already-compressed column is a
// CodecViolation (spec §7): the core never silently double-compresses.
func CompressColumn(col *column.Column) error {
	c, err := ForTag(col.Fmt)
	if err != nil {
		return err
	}
	if col.Compressed {
		return fmt.Errorf("%w: column %s", errs.ErrAlreadyCompressed, col.Fmt)
	}

	payload, err := c.Compress(col.Payload, col.N, col.Unit)
	if err != nil {
		return err
	}
	col.Payload = payload
	col.Compressed = true
	col.Aux = nil
	return nil
}
