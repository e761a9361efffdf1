package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTag_Valid(t *testing.T) {
	for _, tag := range []Tag{TagBitVector, TagByteRLE, TagCategorical, TagMU, TagFloatNA, TagTernary, TagSetUniverse, TagCoordinate} {
		assert.True(t, tag.Valid())
	}
	assert.False(t, Tag('8').Valid())
	assert.False(t, Tag('x').Valid())
}

func TestTag_String(t *testing.T) {
	assert.Equal(t, "BitVector", TagBitVector.String())
	assert.Equal(t, "Coordinate", TagCoordinate.String())
	assert.Equal(t, "Unknown", Tag('9').String())
}

func TestUnit_Valid(t *testing.T) {
	for _, u := range []Unit{Unit1, Unit2, Unit3, Unit8} {
		assert.True(t, u.Valid())
	}
	assert.False(t, UnitNone.Valid())
	assert.False(t, Unit(4).Valid())
}

func TestMinUnitForMax(t *testing.T) {
	assert.Equal(t, Unit1, MinUnitForMax(0))
	assert.Equal(t, Unit1, MinUnitForMax(1<<8-1))
	assert.Equal(t, Unit2, MinUnitForMax(1<<8))
	assert.Equal(t, Unit2, MinUnitForMax(1<<16-1))
	assert.Equal(t, Unit3, MinUnitForMax(1<<16))
	assert.Equal(t, Unit3, MinUnitForMax(1<<24-1))
	assert.Equal(t, Unit8, MinUnitForMax(1<<24))
}

func TestCompressionType_String(t *testing.T) {
	assert.Equal(t, "None", CompressionNone.String())
	assert.Equal(t, "Zstd", CompressionZstd.String())
	assert.Equal(t, "S2", CompressionS2.String())
	assert.Equal(t, "LZ4", CompressionLZ4.String())
	assert.Equal(t, "Unknown", CompressionType(0xFF).String())
}
