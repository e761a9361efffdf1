package column

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zhoulab/yame/format"
)

func TestNew(t *testing.T) {
	c := New(format.TagMU)
	assert.Equal(t, format.TagMU, c.Fmt)
	assert.Zero(t, c.N)
	assert.False(t, c.Compressed)
	assert.Equal(t, format.UnitNone, c.Unit)
	assert.Nil(t, c.Payload)
	assert.Nil(t, c.Aux)
}

func TestColumn_Reset(t *testing.T) {
	c := &Column{
		Fmt:        format.TagCategorical,
		N:          10,
		Compressed: true,
		Unit:       format.Unit2,
		Payload:    []byte{1, 2, 3},
		Aux:        struct{}{},
	}

	c.Reset()

	assert.Equal(t, format.TagCategorical, c.Fmt, "Reset must not change the format tag")
	assert.Zero(t, c.N)
	assert.False(t, c.Compressed)
	assert.Equal(t, format.UnitNone, c.Unit)
	assert.Nil(t, c.Payload)
	assert.Nil(t, c.Aux)
}
