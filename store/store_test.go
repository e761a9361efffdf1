package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhoulab/yame/codec"
	"github.com/zhoulab/yame/column"
	"github.com/zhoulab/yame/format"
	"github.com/zhoulab/yame/sindex"
)

func floatColumn(values []float32) *column.Column {
	return &column.Column{Fmt: format.TagFloatNA, N: len(values), Payload: codec.InflateFloats(values)}
}

func writeSamples(t *testing.T, path string, samples map[string][]float32, order []string) *sindex.Index {
	t.Helper()
	w, err := OpenWriter(path, format.CompressionNone)
	require.NoError(t, err)

	idx := sindex.New()
	for _, name := range order {
		col := floatColumn(samples[name])
		offset, err := w.WriteOne(col)
		require.NoError(t, err)
		require.NoError(t, idx.Insert(name, offset))
	}
	require.NoError(t, w.Close())
	return idx
}

func TestWriter_ReaderSequentialRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.yame")
	order := []string{"s1", "s2", "s3"}
	samples := map[string][]float32{
		"s1": {0.1, 0.2},
		"s2": {0.3, 0.4, 0.5},
		"s3": {0.6},
	}
	writeSamples(t, path, samples, order)

	r, err := OpenReader(path, format.CompressionNone)
	require.NoError(t, err)
	defer r.Close()

	for _, name := range order {
		col, err := r.ReadOne()
		require.NoError(t, err)
		require.NotNil(t, col)
		require.NoError(t, codec.DecompressColumn(col))
		assert.Equal(t, samples[name], codec.DeflateFloats(col.Payload))
	}

	col, err := r.ReadOne()
	require.NoError(t, err)
	assert.Nil(t, col)
}

func TestWriter_ReadByNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.yame")
	order := []string{"s1", "s2", "s3"}
	samples := map[string][]float32{
		"s1": {1, 2},
		"s2": {3, 4},
		"s3": {5, 6},
	}
	idx := writeSamples(t, path, samples, order)

	r, err := OpenReader(path, format.CompressionNone)
	require.NoError(t, err)
	defer r.Close()

	cols, err := r.ReadByNames(idx, []string{"s3", "s1"})
	require.NoError(t, err)
	require.Len(t, cols, 2)

	require.NoError(t, codec.DecompressColumn(cols[0]))
	require.NoError(t, codec.DecompressColumn(cols[1]))
	assert.Equal(t, samples["s3"], codec.DeflateFloats(cols[0].Payload))
	assert.Equal(t, samples["s1"], codec.DeflateFloats(cols[1].Payload))
}

func TestWriter_ReadHeadAndTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.yame")
	order := []string{"s1", "s2", "s3", "s4"}
	samples := map[string][]float32{
		"s1": {1}, "s2": {2}, "s3": {3}, "s4": {4},
	}
	idx := writeSamples(t, path, samples, order)

	r, err := OpenReader(path, format.CompressionNone)
	require.NoError(t, err)
	defer r.Close()

	head, err := r.ReadHead(2)
	require.NoError(t, err)
	require.Len(t, head, 2)
	require.NoError(t, codec.DecompressColumn(head[0]))
	assert.Equal(t, samples["s1"], codec.DeflateFloats(head[0].Payload))

	r2, err := OpenReader(path, format.CompressionNone)
	require.NoError(t, err)
	defer r2.Close()
	tail, err := r2.ReadTail(2, idx)
	require.NoError(t, err)
	require.Len(t, tail, 2)
	require.NoError(t, codec.DecompressColumn(tail[0]))
	require.NoError(t, codec.DecompressColumn(tail[1]))
	assert.Equal(t, samples["s3"], codec.DeflateFloats(tail[0].Payload))
	assert.Equal(t, samples["s4"], codec.DeflateFloats(tail[1].Payload))
}

func TestRewriteWithIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.yame")
	order := []string{"s1", "s2"}
	samples := map[string][]float32{"s1": {1, 2}, "s2": {3, 4}}
	writeSamples(t, path, samples, order)

	idx, err := RewriteWithIndex(path, format.CompressionNone, order)
	require.NoError(t, err)
	assert.Equal(t, order, idx.Names())

	reloaded, err := sindex.Load(path + ".idx")
	require.NoError(t, err)
	assert.Equal(t, order, reloaded.Names())
}

func TestBitVectorColumn_HeaderCarriesRowCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bits.yame")
	w, err := OpenWriter(path, format.CompressionNone)
	require.NoError(t, err)

	payload := []byte{0b10110}
	col := &column.Column{Fmt: format.TagBitVector, N: 5, Compressed: true, Payload: payload}
	_, err = w.WriteOne(col)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := OpenReader(path, format.CompressionNone)
	require.NoError(t, err)
	defer r.Close()

	got, err := r.ReadOne()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 5, got.N)
	assert.Equal(t, payload, got.Payload)
}
