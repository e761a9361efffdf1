package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhoulab/yame/errs"
	"github.com/zhoulab/yame/format"
)

// TestFmt6_ConcreteScenario exercises spec §8 scenario 2: rows (NA, set=1,
// set=0, NA, set=1), expecting byte 0 = 0x2C (row 1's 11 at bits 2-3, row
// 2's 10 at bits 4-5) and byte 1's low two bits = 11.
func TestFmt6_ConcreteScenario(t *testing.T) {
	payload := make([]byte, 2)
	fmt6SetCode(payload, 0, code6NA)
	fmt6SetCode(payload, 1, code6Set1)
	fmt6SetCode(payload, 2, code6Set0)
	fmt6SetCode(payload, 3, code6NA)
	fmt6SetCode(payload, 4, code6Set1)

	assert.Equal(t, byte(0x2C), payload[0])
	assert.Equal(t, byte(0b11), payload[1]&0b11)
}

func TestFmt6_RoundTrip(t *testing.T) {
	n := 10
	payload := make([]byte, Fmt6{}.NBytes(n))
	for i := range n {
		switch i % 3 {
		case 0:
			Fmt6{}.SetNA(payload, i)
		case 1:
			Fmt6{}.Set0(payload, i)
		case 2:
			Fmt6{}.Set1(payload, i)
		}
	}

	compressed, err := Fmt6{}.Compress(payload, n, format.UnitNone)
	require.NoError(t, err)
	assert.Equal(t, payload, compressed)

	out, rows, err := Fmt6{}.Decompress(compressed, format.UnitNone)
	require.NoError(t, err)
	assert.Equal(t, payload, out)
	assert.GreaterOrEqual(t, rows, n)
}

func TestFmt6_AccessorsReflectCodes(t *testing.T) {
	payload := make([]byte, 1)
	Fmt6{}.SetNA(payload, 0)
	assert.False(t, Fmt6{}.InUniverse(payload, 0))
	assert.False(t, Fmt6{}.InSet(payload, 0))

	Fmt6{}.Set0(payload, 0)
	assert.True(t, Fmt6{}.InUniverse(payload, 0))
	assert.False(t, Fmt6{}.InSet(payload, 0))

	Fmt6{}.Set1(payload, 0)
	assert.True(t, Fmt6{}.InUniverse(payload, 0))
	assert.True(t, Fmt6{}.InSet(payload, 0))
}

func TestFmt6_NotDivisibleByFour_LastByteProduced(t *testing.T) {
	n := 5
	payload := make([]byte, Fmt6{}.NBytes(n))
	for i := range n {
		Fmt6{}.Set1(payload, i)
	}
	assert.Len(t, payload, 2)
	// Bits beyond n (rows 5,6,7 in the second byte) must be zero (spec §8).
	assert.Equal(t, byte(0b11), payload[1]&0b11)
	assert.Equal(t, byte(0), payload[1]&0b11111100)
}

func TestFmt6_RejectsReservedCode(t *testing.T) {
	payload := []byte{0b01}
	_, err := Fmt6{}.Compress(payload, 1, format.UnitNone)
	assert.ErrorIs(t, err, errs.ErrReservedCode)

	_, _, err = Fmt6{}.Decompress(payload, format.UnitNone)
	assert.ErrorIs(t, err, errs.ErrReservedCode)
}

func TestFmt6_NBytes(t *testing.T) {
	assert.Equal(t, 0, Fmt6{}.NBytes(0))
	assert.Equal(t, 1, Fmt6{}.NBytes(1))
	assert.Equal(t, 1, Fmt6{}.NBytes(4))
	assert.Equal(t, 2, Fmt6{}.NBytes(5))
}
