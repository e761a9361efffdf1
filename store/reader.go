// Package store implements the reader/writer facade spec §4.11 names: the
// uniform open/read-next/seek-and-read/append/rewrite-with-index contract
// layered over a blockio.Stream and the record/codec packages below it.
package store

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/zhoulab/yame/blockio"
	"github.com/zhoulab/yame/column"
	"github.com/zhoulab/yame/endian"
	"github.com/zhoulab/yame/errs"
	"github.com/zhoulab/yame/format"
	"github.com/zhoulab/yame/record"
	"github.com/zhoulab/yame/sindex"
)

// Reader wraps a block stream open for reading plus a running sample
// counter (spec §4.11). Records returned by ReadNext and friends carry
// their compressed payload as read from disk; decoding is the caller's
// job via the codec package.
type Reader struct {
	stream *blockio.BlockStream
	engine endian.EndianEngine
	count  int
}

// OpenReader opens path (or "-" for stdin) for reading. Reading from stdin
// buffers the whole input in memory first, since random access (Seek,
// ReadByOffsets, ReadByNames) requires io.ReaderAt, which a pipe cannot
// provide directly.
func OpenReader(path string, compressionType format.CompressionType, opts ...blockio.Option) (*Reader, error) {
	var ra io.ReaderAt
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrResourceOpen, err)
		}
		ra = bytes.NewReader(data)
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrResourceOpen, err)
		}
		ra = f
	}

	stream, err := blockio.NewReader(ra, compressionType, opts...)
	if err != nil {
		return nil, err
	}
	return &Reader{stream: stream, engine: endian.GetLittleEndianEngine()}, nil
}

// Tell returns the virtual offset of the next record to be read.
func (r *Reader) Tell() uint64 {
	return r.stream.Tell()
}

// Seek jumps to a previously obtained virtual offset.
func (r *Reader) Seek(offset uint64) error {
	return r.stream.Seek(offset)
}

// Close releases the underlying stream.
func (r *Reader) Close() error {
	return r.stream.Close()
}

// ReadNext reads the next record into col, returning false at end of
// stream. col.N is populated from the header for formats 0 and 6 (a row
// count); for every other format the header carries a byte count instead,
// so col.N is left at 0 until the caller decodes the payload (see
// record.PayloadSize and the codec package's Decompress methods, which
// discover the row count as part of decoding).
func (r *Reader) ReadNext(col *column.Column) (bool, error) {
	h, err := record.ReadHeader(r.stream, r.engine)
	if err != nil {
		if err == io.EOF {
			return false, nil
		}
		return false, err
	}

	payload, err := record.ReadPayload(r.stream, h)
	if err != nil {
		return false, err
	}

	col.Fmt = h.Fmt
	col.Compressed = true
	col.Unit = format.UnitNone
	col.Payload = payload
	col.Aux = nil
	switch h.Fmt {
	case format.TagBitVector, format.TagSetUniverse:
		col.N = int(h.N)
	default:
		col.N = 0
	}

	r.count++
	return true, nil
}

// ReadOne reads exactly one record at the current position and returns it
// as a fresh Column, or nil at end of stream.
func (r *Reader) ReadOne() (*column.Column, error) {
	col := &column.Column{}
	ok, err := r.ReadNext(col)
	if err != nil || !ok {
		return nil, err
	}
	return col, nil
}

// ReadRange sequentially reads records [beg, end) from the current
// position, discarding beg leading records first.
func (r *Reader) ReadRange(beg, end int) ([]*column.Column, error) {
	if beg < 0 || end < beg {
		return nil, errs.ErrRowOutOfRange
	}

	scratch := &column.Column{}
	for range beg {
		ok, err := r.ReadNext(scratch)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: fewer records than beg=%d", errs.ErrShortRead, beg)
		}
	}

	out := make([]*column.Column, 0, end-beg)
	for range end - beg {
		col, err := r.ReadOne()
		if err != nil {
			return nil, err
		}
		if col == nil {
			break
		}
		out = append(out, col)
	}
	return out, nil
}

// ReadHead reads the first n records from the current position.
func (r *Reader) ReadHead(n int) ([]*column.Column, error) {
	return r.ReadRange(0, n)
}

// ReadTail reads the last n records named by idx's iteration order, using
// their recorded offsets for direct access.
func (r *Reader) ReadTail(n int, idx *sindex.Index) ([]*column.Column, error) {
	pairs := idx.Pairs()
	if n > len(pairs) {
		n = len(pairs)
	}
	offsets := make([]uint64, n)
	for i, p := range pairs[len(pairs)-n:] {
		offsets[i] = p.Offset
	}
	return r.ReadByOffsets(offsets)
}

// ReadByOffsets seeks to and reads one record per offset, in the given
// order.
func (r *Reader) ReadByOffsets(offsets []uint64) ([]*column.Column, error) {
	out := make([]*column.Column, 0, len(offsets))
	for _, off := range offsets {
		if err := r.Seek(off); err != nil {
			return nil, err
		}
		col, err := r.ReadOne()
		if err != nil {
			return nil, err
		}
		if col == nil {
			return nil, fmt.Errorf("%w: offset %d", errs.ErrShortRead, off)
		}
		out = append(out, col)
	}
	return out, nil
}

// ReadByNames resolves each name against idx and reads the corresponding
// records, in the given order.
func (r *Reader) ReadByNames(idx *sindex.Index, names []string) ([]*column.Column, error) {
	offsets := make([]uint64, len(names))
	for i, name := range names {
		off, err := idx.Get(name)
		if err != nil {
			return nil, err
		}
		offsets[i] = off
	}
	return r.ReadByOffsets(offsets)
}
