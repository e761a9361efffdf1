package codec

import (
	"fmt"

	"github.com/zhoulab/yame/errs"
	"github.com/zhoulab/yame/format"
)

// ConvertToBitVector builds a format-0 payload from an already-inflated
// column of a different format (spec §4.2 "Conversions into fmt 0"). The
// inflated input must be the decoded (not compressed) payload of srcFmt:
// one ASCII byte per row for format 1, a packed-word-per-row MU layout at
// the given unit for format 3.
func ConvertToBitVector(srcFmt format.Tag, inflated []byte, unit format.Unit) ([]byte, error) {
	switch srcFmt {
	case format.TagByteRLE:
		return FromByteRLE(inflated), nil
	case format.TagMU:
		return FromMU(DeflateMU(inflated, unit)), nil
	default:
		return nil, fmt.Errorf("%w: cannot convert format %q to bit vector", errs.ErrUnsupportedFormat, rune(srcFmt))
	}
}
