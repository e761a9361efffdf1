// Package blockio implements the block-compressed I/O layer spec.md treats
// as an external collaborator (§2.1, §6): a seekable byte stream whose
// positions are opaque "virtual offset" cookies, backed by independently
// compressed fixed-size blocks, mirroring BGZF. The rest of the substrate
// (record, codec, store) consumes it only through the Stream interface;
// a caller may substitute their own implementation of that interface.
package blockio

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/zhoulab/yame/compress"
	"github.com/zhoulab/yame/errs"
	"github.com/zhoulab/yame/format"
	"github.com/zhoulab/yame/internal/options"
)

// DefaultBlockSize is the pre-compression size of one block, matching
// BGZF's conventional 64 KiB block granularity.
const DefaultBlockSize = 64 * 1024

// blockHeaderSize is the fixed 8-byte header preceding every block's
// compressed bytes: compressed length (4, LE) then inflated length (4, LE).
const blockHeaderSize = 8

// Stream is the block-compressed I/O contract spec §6 names: open_read /
// open_write are constructors (NewReader / NewWriter), the rest are these
// five methods.
type Stream interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Tell() uint64
	Seek(offset uint64) error
	Close() error
}

type mode int

const (
	modeRead mode = iota
	modeWrite
)

// BlockStream is the concrete Stream implementation this module ships.
// Opened in read mode (NewReader) it decompresses blocks on demand and
// supports Seek via virtual offsets; opened in write mode (NewWriter) it
// buffers raw bytes and compresses+flushes one block at a time, the way
// the teacher's compress.Codec implementations are driven elsewhere in
// this module (see codec/ and store/).
//
// A virtual offset packs (block start byte in the underlying stream) in
// its high 48 bits and (byte position within that block's decompressed
// content) in its low 16 bits: (blockStart<<16)|withinBlockPos. Callers
// never decode it; they only round-trip it through Tell/Seek, exactly as
// spec §6 requires.
type BlockStream struct {
	mode      mode
	codec     compress.Codec
	blockSize int

	// write side
	w                io.Writer
	buf              []byte
	writtenBytes     uint64
	blockStartOffset uint64

	// read side
	r               io.ReaderAt
	curBlockStart   uint64
	rbuf            []byte
	rpos            int
	nextBlockOffset uint64

	closer io.Closer
}

// Option configures a BlockStream at construction.
type Option = options.Option[*BlockStream]

// WithBlockSize overrides DefaultBlockSize for a writer's pre-compression
// block granularity. It has no effect on a reader, which sizes its read
// buffer from each block's own stored inflated length.
func WithBlockSize(n int) Option {
	return options.NoError(func(s *BlockStream) {
		s.blockSize = n
	})
}

// NewReader opens a BlockStream for sequential or random-access reading.
// r must support ReadAt so Seek can jump directly to any block.
func NewReader(r io.ReaderAt, compressionType format.CompressionType, opts ...Option) (*BlockStream, error) {
	codec, err := compress.CreateCodec(compressionType, "blockio reader")
	if err != nil {
		return nil, err
	}
	s := &BlockStream{mode: modeRead, codec: codec, blockSize: DefaultBlockSize, r: r}
	if closer, ok := r.(io.Closer); ok {
		s.closer = closer
	}
	if err := options.Apply(s, opts...); err != nil {
		return nil, err
	}
	return s, nil
}

// NewWriter opens a BlockStream for append-only writing.
func NewWriter(w io.Writer, compressionType format.CompressionType, opts ...Option) (*BlockStream, error) {
	codec, err := compress.CreateCodec(compressionType, "blockio writer")
	if err != nil {
		return nil, err
	}
	s := &BlockStream{mode: modeWrite, codec: codec, blockSize: DefaultBlockSize, w: w}
	if closer, ok := w.(io.Closer); ok {
		s.closer = closer
	}
	if err := options.Apply(s, opts...); err != nil {
		return nil, err
	}
	return s, nil
}

// Write buffers p and flushes full blocks to the underlying writer.
func (s *BlockStream) Write(p []byte) (int, error) {
	if s.mode != modeWrite {
		return 0, fmt.Errorf("%w: blockio stream not opened for writing", errs.ErrCodecViolation)
	}

	total := 0
	for len(p) > 0 {
		room := s.blockSize - len(s.buf)
		if room <= 0 {
			if err := s.flush(); err != nil {
				return total, err
			}
			room = s.blockSize
		}
		n := min(room, len(p))
		s.buf = append(s.buf, p[:n]...)
		p = p[n:]
		total += n
	}
	return total, nil
}

// flush compresses the current write buffer into one block and writes it,
// advancing blockStartOffset to where the next block will begin.
func (s *BlockStream) flush() error {
	if len(s.buf) == 0 {
		return nil
	}

	compressed, err := s.codec.Compress(s.buf)
	if err != nil {
		return err
	}

	header := make([]byte, blockHeaderSize)
	binary.LittleEndian.PutUint32(header[0:4], uint32(len(compressed)))
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(s.buf)))

	if _, err := s.w.Write(header); err != nil {
		return err
	}
	if _, err := s.w.Write(compressed); err != nil {
		return err
	}

	s.writtenBytes += uint64(blockHeaderSize + len(compressed))
	s.blockStartOffset = s.writtenBytes
	s.buf = s.buf[:0]
	return nil
}

// Read decompresses blocks as needed to satisfy p, crossing block
// boundaries transparently (a single Read call, or a single record, may
// span more than one physical block).
func (s *BlockStream) Read(p []byte) (int, error) {
	if s.mode != modeRead {
		return 0, fmt.Errorf("%w: blockio stream not opened for reading", errs.ErrCodecViolation)
	}

	total := 0
	for total < len(p) {
		if s.rbuf == nil || s.rpos >= len(s.rbuf) {
			if err := s.loadBlock(s.nextBlockOffset); err != nil {
				if err == io.EOF {
					if total > 0 {
						return total, nil
					}
					return 0, io.EOF
				}
				return total, err
			}
		}
		n := copy(p[total:], s.rbuf[s.rpos:])
		s.rpos += n
		total += n
	}
	return total, nil
}

// loadBlock decompresses the block starting at the given underlying-stream
// offset into rbuf, and records where the following block begins.
func (s *BlockStream) loadBlock(offset uint64) error {
	header := make([]byte, blockHeaderSize)
	n, err := s.r.ReadAt(header, int64(offset))
	if n == 0 && err != nil {
		return io.EOF
	}
	if n < blockHeaderSize {
		return fmt.Errorf("%w: blockio truncated block header", errs.ErrShortRead)
	}

	compLen := binary.LittleEndian.Uint32(header[0:4])
	compressed := make([]byte, compLen)
	if _, err := s.r.ReadAt(compressed, int64(offset)+blockHeaderSize); err != nil {
		return fmt.Errorf("%w: blockio truncated block body: %v", errs.ErrShortRead, err)
	}

	inflated, err := s.codec.Decompress(compressed)
	if err != nil {
		return err
	}

	s.rbuf = inflated
	s.rpos = 0
	s.curBlockStart = offset
	s.nextBlockOffset = offset + blockHeaderSize + uint64(compLen)
	return nil
}

// Tell returns the current virtual offset.
func (s *BlockStream) Tell() uint64 {
	if s.mode == modeWrite {
		return (s.blockStartOffset << 16) | uint64(len(s.buf))
	}
	return (s.curBlockStart << 16) | uint64(s.rpos)
}

// Seek jumps to a previously obtained virtual offset. Only valid on a
// reader; the writer is append-only (spec §5).
func (s *BlockStream) Seek(offset uint64) error {
	if s.mode != modeRead {
		return fmt.Errorf("%w: blockio writer is append-only", errs.ErrCodecViolation)
	}

	blockStart := offset >> 16
	within := int(offset & 0xFFFF)

	if s.rbuf == nil || s.curBlockStart != blockStart {
		if err := s.loadBlock(blockStart); err != nil {
			return err
		}
	}
	if within > len(s.rbuf) {
		return fmt.Errorf("%w: blockio virtual offset within-block position out of range", errs.ErrShortRead)
	}
	s.rpos = within
	return nil
}

// Close flushes any buffered write data and closes the underlying stream
// if it implements io.Closer.
func (s *BlockStream) Close() error {
	if s.mode == modeWrite {
		if err := s.flush(); err != nil {
			return err
		}
	}
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
