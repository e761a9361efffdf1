package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhoulab/yame/column"
	"github.com/zhoulab/yame/errs"
	"github.com/zhoulab/yame/format"
)

func TestCompressDecompressColumn_RoundTrip_Fmt4(t *testing.T) {
	values := []float32{0.1, 0.2, 0.3}
	col := &column.Column{Fmt: format.TagFloatNA, N: len(values), Payload: InflateFloats(values)}

	require.NoError(t, CompressColumn(col))
	assert.True(t, col.Compressed)

	require.NoError(t, DecompressColumn(col))
	assert.False(t, col.Compressed)
	assert.Equal(t, len(values), col.N)
	assert.Equal(t, values, DeflateFloats(col.Payload))
}

func TestCompressColumn_AlreadyCompressed(t *testing.T) {
	col := &column.Column{Fmt: format.TagFloatNA, Compressed: true}
	err := CompressColumn(col)
	assert.ErrorIs(t, err, errs.ErrAlreadyCompressed)
}

func TestDecompressColumn_AlreadyInflated(t *testing.T) {
	col := &column.Column{Fmt: format.TagFloatNA, Compressed: false}
	err := DecompressColumn(col)
	assert.ErrorIs(t, err, errs.ErrCodecViolation)
}

func TestDecompressColumn_BitVectorKeepsHeaderRowCount(t *testing.T) {
	col := &column.Column{Fmt: format.TagBitVector, N: 5, Compressed: true, Payload: []byte{0b10101}}
	require.NoError(t, DecompressColumn(col))
	assert.Equal(t, 5, col.N, "fmt0 row count must come from the header, not the padded byte length")
}

func TestDecompressColumn_Fmt2PopulatesUnit(t *testing.T) {
	keys := []string{"A", "B"}
	indices := []uint64{0, 1, 0, 1, 0}
	inflated := append(InflateKeys(keys), InflateData(indices, format.Unit1)...)
	col := &column.Column{Fmt: format.TagCategorical, N: len(indices), Unit: format.Unit1, Payload: inflated}

	require.NoError(t, CompressColumn(col))
	require.NoError(t, DecompressColumn(col))
	assert.Equal(t, format.Unit1, col.Unit)
	assert.Equal(t, len(indices), col.N)
}

func TestForTag_UnsupportedFormatInDecompressColumn(t *testing.T) {
	col := &column.Column{Fmt: format.Tag('9'), Compressed: true}
	err := DecompressColumn(col)
	assert.ErrorIs(t, err, errs.ErrUnsupportedFormat)
}
