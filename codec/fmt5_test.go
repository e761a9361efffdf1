package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhoulab/yame/errs"
	"github.com/zhoulab/yame/format"
)

func TestFmt5_RoundTrip(t *testing.T) {
	inflated := []byte{2, 2, 2, 0, 1, 0, 0, 2, 2, 2, 2, 2}

	compressed, err := Fmt5{}.Compress(inflated, len(inflated), format.UnitNone)
	require.NoError(t, err)

	out, n, err := Fmt5{}.Decompress(compressed, format.UnitNone)
	require.NoError(t, err)
	assert.Equal(t, len(inflated), n)
	assert.Equal(t, inflated, out)
}

func TestFmt5_NARunPacksOneByte(t *testing.T) {
	inflated := make([]byte, 20)
	for i := range inflated {
		inflated[i] = naTernary
	}

	compressed, err := Fmt5{}.Compress(inflated, len(inflated), format.UnitNone)
	require.NoError(t, err)
	assert.Len(t, compressed, 1)
	assert.Equal(t, byte(20), compressed[0])
}

func TestFmt5_FourValuesPackOneByte(t *testing.T) {
	inflated := []byte{0, 1, 0, 1}
	compressed, err := Fmt5{}.Compress(inflated, len(inflated), format.UnitNone)
	require.NoError(t, err)
	assert.Len(t, compressed, 1)
	assert.NotZero(t, compressed[0]&(1<<7))
}

func TestFmt5_NeverEmitsZeroLengthRun(t *testing.T) {
	// Per spec §9 open question 2, a run byte of raw value 0 must never
	// be produced by the compressor even though the decompressor would
	// accept it as a benign zero-length NA run.
	inflated := []byte{0, 1, 2, 2, 2}
	compressed, err := Fmt5{}.Compress(inflated, len(inflated), format.UnitNone)
	require.NoError(t, err)
	for _, b := range compressed {
		if b&(1<<7) == 0 {
			assert.NotZero(t, b)
		}
	}
}

func TestFmt5_Compress_RejectsOutOfRangeValue(t *testing.T) {
	_, err := Fmt5{}.Compress([]byte{3}, 1, format.UnitNone)
	assert.ErrorIs(t, err, errs.ErrInvalidPayloadLength)
}

func TestFmt5_Compress_WrongLength(t *testing.T) {
	_, err := Fmt5{}.Compress(make([]byte, 3), 1, format.UnitNone)
	assert.ErrorIs(t, err, errs.ErrInvalidPayloadLength)
}
