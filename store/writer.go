package store

import (
	"fmt"
	"io"
	"os"

	"github.com/zhoulab/yame/blockio"
	"github.com/zhoulab/yame/codec"
	"github.com/zhoulab/yame/column"
	"github.com/zhoulab/yame/endian"
	"github.com/zhoulab/yame/errs"
	"github.com/zhoulab/yame/format"
	"github.com/zhoulab/yame/record"
)

// Writer is an append-only block stream (spec §4.11): every WriteOne call
// appends a new record after whatever has already been written.
type Writer struct {
	stream *blockio.BlockStream
	engine endian.EndianEngine
}

// OpenWriter opens path (or "-" for stdout) for append-only writing.
func OpenWriter(path string, compressionType format.CompressionType, opts ...blockio.Option) (*Writer, error) {
	var w io.Writer
	if path == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrResourceOpen, err)
		}
		w = f
	}

	stream, err := blockio.NewWriter(w, compressionType, opts...)
	if err != nil {
		return nil, err
	}
	return &Writer{stream: stream, engine: endian.GetLittleEndianEngine()}, nil
}

// Tell returns the virtual offset the next WriteOne call will write at.
func (w *Writer) Tell() uint64 {
	return w.stream.Tell()
}

// Close flushes and releases the underlying stream.
func (w *Writer) Close() error {
	return w.stream.Close()
}

// WriteOne writes col's header and payload, compressing the payload first
// if col is still inflated (spec §4.11). It returns the virtual offset the
// record was written at, the value a sample-name index entry should store.
func (w *Writer) WriteOne(col *column.Column) (uint64, error) {
	if !col.Compressed {
		if err := codec.CompressColumn(col); err != nil {
			return 0, err
		}
	}

	headerN := uint64(len(col.Payload))
	switch col.Fmt {
	case format.TagBitVector, format.TagSetUniverse:
		headerN = uint64(col.N)
	}

	offset := w.Tell()
	h := record.Header{Signature: record.Signature, Fmt: col.Fmt, N: headerN}
	if err := record.WriteHeader(w.stream, h, w.engine); err != nil {
		return 0, err
	}
	if _, err := w.stream.Write(col.Payload); err != nil {
		return 0, err
	}
	return offset, nil
}
