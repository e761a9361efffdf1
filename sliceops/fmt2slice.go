package sliceops

import (
	"github.com/zhoulab/yame/codec"
	"github.com/zhoulab/yame/column"
	"github.com/zhoulab/yame/errs"
	"github.com/zhoulab/yame/format"
)

// The functions in this file implement format-2 slicing (spec §4.12,
// "for format 2, preserve keys section and copy data entries"): the key
// table never changes under slicing, only the packed index entries that
// follow it do, so every case here splits col.Payload via
// codec.SplitKeysData, selects index values by row, and rebuilds the same
// keys-then-data layout with codec.InflateKeys/InflateData.

func fmt2RangeSlice(col *column.Column, b, e int) (*column.Column, error) {
	keys, data, err := codec.SplitKeysData(col.Payload)
	if err != nil {
		return nil, err
	}
	n := e - b + 1
	values := make([]uint64, n)
	for i := range n {
		values[i] = codec.Fmt2{}.GetUint64(data, b+i, col.Unit)
	}
	return fmt2Out(col, n, keys, values), nil
}

func fmt2IndexSlice(col *column.Column, indices []int) (*column.Column, error) {
	keys, data, err := codec.SplitKeysData(col.Payload)
	if err != nil {
		return nil, err
	}
	values := make([]uint64, len(indices))
	for i, idx := range indices {
		values[i] = codec.Fmt2{}.GetUint64(data, idx, col.Unit)
	}
	return fmt2Out(col, len(indices), keys, values), nil
}

func fmt2MaskSlice(col *column.Column, mask *column.Column) (*column.Column, error) {
	if col.N != mask.N {
		return nil, errs.ErrMaskLengthMismatch
	}
	keys, data, err := codec.SplitKeysData(col.Payload)
	if err != nil {
		return nil, err
	}
	var values []uint64
	for i := range col.N {
		if (codec.Fmt0{}).GetBit(mask.Payload, i) {
			values = append(values, codec.Fmt2{}.GetUint64(data, i, col.Unit))
		}
	}
	return fmt2Out(col, len(values), keys, values), nil
}

func fmt2Out(col *column.Column, n int, keys []string, values []uint64) *column.Column {
	payload := codec.InflateKeys(keys)
	payload = append(payload, codec.InflateData(values, col.Unit)...)
	return &column.Column{Fmt: format.TagCategorical, N: n, Compressed: false, Unit: col.Unit, Payload: payload}
}
