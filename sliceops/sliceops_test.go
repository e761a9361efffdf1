package sliceops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhoulab/yame/codec"
	"github.com/zhoulab/yame/column"
	"github.com/zhoulab/yame/errs"
	"github.com/zhoulab/yame/format"
)

func bitVectorColumn(bits ...bool) *column.Column {
	payload := make([]byte, (len(bits)+7)>>3)
	for i, b := range bits {
		codec.Fmt0{}.SetBit(payload, i, b)
	}
	return &column.Column{Fmt: format.TagBitVector, N: len(bits), Payload: payload}
}

func readBits(c *column.Column) []bool {
	out := make([]bool, c.N)
	for i := range out {
		out[i] = codec.Fmt0{}.GetBit(c.Payload, i)
	}
	return out
}

func TestRangeSlice_BitVector(t *testing.T) {
	col := bitVectorColumn(true, false, true, true, false)
	out, err := RangeSlice(col, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, out.N)
	assert.Equal(t, []bool{false, true, true}, readBits(out))
}

func TestIndexSlice_BitVector(t *testing.T) {
	col := bitVectorColumn(true, false, true, true, false)
	out, err := IndexSlice(col, []int{4, 0, 2})
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true, true}, readBits(out))
}

func TestMaskSlice_BitVector(t *testing.T) {
	col := bitVectorColumn(true, false, true, true, false)
	mask := bitVectorColumn(true, false, false, true, true)

	out, err := MaskSlice(col, mask)
	require.NoError(t, err)
	assert.Equal(t, 3, out.N)
	assert.Equal(t, []bool{true, true, false}, readBits(out))
}

func TestRangeSlice_FixedWidth_Fmt4(t *testing.T) {
	values := []float32{0.1, 0.2, 0.3, 0.4}
	col := &column.Column{Fmt: format.TagFloatNA, N: len(values), Payload: codec.InflateFloats(values)}

	out, err := RangeSlice(col, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, out.N)
	assert.Equal(t, values[1:3], codec.DeflateFloats(out.Payload))
}

func TestRangeSlice_RejectsCompressed(t *testing.T) {
	col := &column.Column{Fmt: format.TagFloatNA, N: 2, Compressed: true, Payload: codec.InflateFloats([]float32{1, 2})}
	_, err := RangeSlice(col, 0, 1)
	assert.ErrorIs(t, err, errs.ErrSliceOnCompressed)
}

func TestRangeSlice_OutOfRange(t *testing.T) {
	col := bitVectorColumn(true, false)
	_, err := RangeSlice(col, 0, 5)
	assert.ErrorIs(t, err, errs.ErrRowOutOfRange)
}

func TestFmt2Slicing(t *testing.T) {
	keys := []string{"A", "B", "C"}
	indices := []uint64{0, 0, 1, 0, 2, 2, 2}
	payload := append(codec.InflateKeys(keys), codec.InflateData(indices, format.Unit1)...)
	col := &column.Column{Fmt: format.TagCategorical, N: len(indices), Unit: format.Unit1, Payload: payload}

	t.Run("range", func(t *testing.T) {
		out, err := RangeSlice(col, 2, 4)
		require.NoError(t, err)
		assert.Equal(t, 3, out.N)
		gotKeys, data, err := codec.SplitKeysData(out.Payload)
		require.NoError(t, err)
		assert.Equal(t, keys, gotKeys)
		var got []uint64
		for i := range out.N {
			got = append(got, codec.Fmt2{}.GetUint64(data, i, out.Unit))
		}
		assert.Equal(t, []uint64{1, 0, 2}, got)
	})

	t.Run("indices", func(t *testing.T) {
		out, err := IndexSlice(col, []int{6, 0})
		require.NoError(t, err)
		_, data, err := codec.SplitKeysData(out.Payload)
		require.NoError(t, err)
		assert.Equal(t, uint64(2), codec.Fmt2{}.GetUint64(data, 0, out.Unit))
		assert.Equal(t, uint64(0), codec.Fmt2{}.GetUint64(data, 1, out.Unit))
	})

	t.Run("mask", func(t *testing.T) {
		mask := bitVectorColumn(true, false, true, false, true, false, true)
		out, err := MaskSlice(col, mask)
		require.NoError(t, err)
		assert.Equal(t, 4, out.N)
	})
}

func TestMaskSlice_RejectsNonBitVectorMask(t *testing.T) {
	col := bitVectorColumn(true, false)
	notAMask := &column.Column{Fmt: format.TagFloatNA, N: 2}
	_, err := MaskSlice(col, notAMask)
	assert.ErrorIs(t, err, errs.ErrUnsupportedFormat)
}

func TestMaskSlice_LengthMismatch(t *testing.T) {
	col := bitVectorColumn(true, false, true)
	mask := bitVectorColumn(true, false)
	_, err := MaskSlice(col, mask)
	assert.ErrorIs(t, err, errs.ErrMaskLengthMismatch)
}

func TestFmt7Slicing_DelegatesToCodec(t *testing.T) {
	rows := []codec.RawCoord{{Chrom: "chr1", Pos: 0}, {Chrom: "chr1", Pos: 10}, {Chrom: "chr2", Pos: 5}}
	compressed := codec.EncodeCoords(rows)
	col := &column.Column{Fmt: format.TagCoordinate, N: len(rows), Compressed: true, Payload: compressed}

	out, err := RangeSlice(col, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, out.N)
	assert.True(t, out.Compressed)
}
