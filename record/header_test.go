package record

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhoulab/yame/endian"
	"github.com/zhoulab/yame/errs"
	"github.com/zhoulab/yame/format"
)

func TestHeader_BytesParse_RoundTrip(t *testing.T) {
	engine := endian.GetLittleEndianEngine()
	h := Header{Signature: Signature, Fmt: format.TagMU, N: 8}

	b := h.Bytes(engine)
	require.Len(t, b, Size)

	got, err := ParseHeader(b, engine)
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

func TestParseHeader_SignatureMismatch(t *testing.T) {
	engine := endian.GetLittleEndianEngine()
	h := Header{Signature: 1, Fmt: format.TagMU, N: 8}
	b := h.Bytes(engine)

	_, err := ParseHeader(b, engine)
	assert.ErrorIs(t, err, errs.ErrSignatureMismatch)
}

func TestParseHeader_UnsupportedFormat(t *testing.T) {
	engine := endian.GetLittleEndianEngine()
	b := make([]byte, Size)
	engine.PutUint64(b[0:8], Signature)
	b[8] = 'Z'
	engine.PutUint64(b[9:17], 1)

	_, err := ParseHeader(b, engine)
	assert.ErrorIs(t, err, errs.ErrUnsupportedFormat)
}

func TestParseHeader_TooShort(t *testing.T) {
	engine := endian.GetLittleEndianEngine()
	_, err := ParseHeader(make([]byte, 10), engine)
	assert.ErrorIs(t, err, errs.ErrInvalidHeaderSize)
}

func TestPayloadSize(t *testing.T) {
	tests := []struct {
		name string
		tag  format.Tag
		n    uint64
		want uint64
	}{
		{"fmt0 exact byte", format.TagBitVector, 8, 1},
		{"fmt0 ceiling", format.TagBitVector, 9, 2},
		{"fmt0 zero", format.TagBitVector, 0, 0},
		{"fmt6 exact byte", format.TagSetUniverse, 4, 1},
		{"fmt6 ceiling", format.TagSetUniverse, 5, 2},
		{"fmt3 byte count passthrough", format.TagMU, 17, 17},
		{"fmt1 byte count passthrough", format.TagByteRLE, 42, 42},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PayloadSize(tt.tag, tt.n))
		})
	}
}

func TestReadHeader_CleanEOF(t *testing.T) {
	engine := endian.GetLittleEndianEngine()
	_, err := ReadHeader(bytes.NewReader(nil), engine)
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadHeader_ShortMidHeader(t *testing.T) {
	engine := endian.GetLittleEndianEngine()
	_, err := ReadHeader(bytes.NewReader(make([]byte, 5)), engine)
	assert.ErrorIs(t, err, errs.ErrShortRead)
}

func TestWriteHeader_ReadHeader_RoundTrip(t *testing.T) {
	engine := endian.GetLittleEndianEngine()
	h := Header{Signature: Signature, Fmt: format.TagCoordinate, N: 123}

	var buf bytes.Buffer
	require.NoError(t, WriteHeader(&buf, h, engine))

	got, err := ReadHeader(&buf, engine)
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

func TestReadPayload(t *testing.T) {
	engine := endian.GetLittleEndianEngine()
	h := Header{Signature: Signature, Fmt: format.TagBitVector, N: 10}
	payload := []byte{0xAB, 0xCD}

	var buf bytes.Buffer
	buf.Write(payload)

	got, err := ReadPayload(&buf, h)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}
