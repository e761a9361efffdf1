package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zhoulab/yame/errs"
	"github.com/zhoulab/yame/format"
)

func TestForTag_AllSevenFormats(t *testing.T) {
	cases := []struct {
		tag  format.Tag
		want Codec
	}{
		{format.TagBitVector, Fmt0{}},
		{format.TagByteRLE, Fmt1{}},
		{format.TagCategorical, Fmt2{}},
		{format.TagMU, Fmt3{}},
		{format.TagFloatNA, Fmt4{}},
		{format.TagTernary, Fmt5{}},
		{format.TagSetUniverse, Fmt6{}},
		{format.TagCoordinate, Fmt7{}},
	}
	for _, c := range cases {
		got, err := ForTag(c.tag)
		assert.NoError(t, err)
		assert.Equal(t, c.want, got)
	}
}

func TestForTag_Unsupported(t *testing.T) {
	_, err := ForTag(format.Tag('9'))
	assert.ErrorIs(t, err, errs.ErrUnsupportedFormat)
}

func TestHalfBitsForUnit(t *testing.T) {
	assert.Equal(t, uint(4), halfBitsForUnit(format.Unit1))
	assert.Equal(t, uint(32), halfBitsForUnit(format.Unit8))
}

func TestFitMU_NoShiftNeeded(t *testing.T) {
	m, u := fitMU(5, 3, 8)
	assert.Equal(t, uint64(5), m)
	assert.Equal(t, uint64(3), u)
}
