// Package record implements the 17-byte framing that wraps every column in
// the block stream (spec §4.1): an 8-byte magic signature, a 1-byte format
// tag, and an 8-byte row/byte count, followed by a payload whose length is a
// pure function of the tag and that count.
package record

import (
	"errors"
	"fmt"
	"io"

	"github.com/zhoulab/yame/endian"
	"github.com/zhoulab/yame/errs"
	"github.com/zhoulab/yame/format"
)

// Signature is the magic constant every record header carries. The legacy
// and current on-disk formats share this same value; this module does not
// distinguish them (spec §9 open question 5).
const Signature uint64 = 266563789635

// Size is the fixed on-disk size of a Header in bytes.
const Size = 17

// Header is the fixed framing that precedes every column's payload.
type Header struct {
	Signature uint64
	Fmt       format.Tag
	N         uint64
}

// Bytes encodes h into a new Size-byte little-endian buffer.
func (h Header) Bytes(engine endian.EndianEngine) []byte {
	buf := make([]byte, Size)
	engine.PutUint64(buf[0:8], h.Signature)
	buf[8] = byte(h.Fmt)
	engine.PutUint64(buf[9:17], h.N)
	return buf
}

// ParseHeader decodes a Size-byte buffer into a Header, validating the
// signature and format tag.
func ParseHeader(b []byte, engine endian.EndianEngine) (Header, error) {
	if len(b) < Size {
		return Header{}, fmt.Errorf("%w: got %d bytes, want %d", errs.ErrInvalidHeaderSize, len(b), Size)
	}

	h := Header{
		Signature: engine.Uint64(b[0:8]),
		Fmt:       format.Tag(b[8]),
		N:         engine.Uint64(b[9:17]),
	}

	if h.Signature != Signature {
		return Header{}, fmt.Errorf("%w: got %d, want %d", errs.ErrSignatureMismatch, h.Signature, Signature)
	}
	if !h.Fmt.Valid() {
		return Header{}, fmt.Errorf("%w: tag %q", errs.ErrUnsupportedFormat, rune(h.Fmt))
	}

	return h, nil
}

// PayloadSize returns the number of payload bytes following a header whose
// format tag is fmt and whose N field is headerN, per spec §4.1:
//
//   - format 0 (dense bit vector): ceil(headerN/8), headerN is the row count.
//   - format 6 (set+universe):     ceil(headerN/4), headerN is the row count.
//   - every other format:          headerN itself, already a byte count.
//
// Formats 1-5 and 7 store their compressed payload's byte length directly in
// the header's N field rather than a row count (spec §4.1's "all others: n
// bytes"; spec §4.3 calls this out explicitly for format 1, but the same
// convention applies uniformly to every variable-width format here so that
// record framing never needs to partially decode a payload to know how much
// of the stream to read). Their logical row count is recovered separately,
// as a result of decoding, by the corresponding codec's Decompress method.
func PayloadSize(tag format.Tag, headerN uint64) uint64 {
	switch tag {
	case format.TagBitVector:
		return (headerN + 7) >> 3
	case format.TagSetUniverse:
		return (headerN + 3) >> 2
	default:
		return headerN
	}
}

// ReadHeader reads and validates one Header from r. It returns io.EOF
// unchanged (not wrapped) when the stream ends cleanly before any bytes of
// the signature are read, so callers can distinguish "no more records" from
// a genuinely corrupt stream; any other short read is fatal.
func ReadHeader(r io.Reader, engine endian.EndianEngine) (Header, error) {
	buf := make([]byte, Size)
	n, err := io.ReadFull(r, buf)
	if err != nil {
		if n == 0 && errors.Is(err, io.EOF) {
			return Header{}, io.EOF
		}
		return Header{}, fmt.Errorf("%w: %v", errs.ErrShortRead, err)
	}

	return ParseHeader(buf, engine)
}

// WriteHeader writes h's encoded bytes to w.
func WriteHeader(w io.Writer, h Header, engine endian.EndianEngine) error {
	_, err := w.Write(h.Bytes(engine))
	return err
}

// ReadPayload reads exactly PayloadSize(h.Fmt, h.N) bytes from r.
func ReadPayload(r io.Reader, h Header) ([]byte, error) {
	size := PayloadSize(h.Fmt, h.N)
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrShortRead, err)
	}
	return buf, nil
}
