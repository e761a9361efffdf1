// Package column defines the in-memory Column: the unit of storage that the
// codec, record, and store packages all operate on (spec §3).
package column

import "github.com/zhoulab/yame/format"

// Column is one sample's values over all rows, in one on-disk format.
//
// N always counts logical rows, the same way across every format tag; it is
// the API-visible row count, distinct from the on-disk record header's N
// field, which for most formats stores a byte length instead (see
// record.PayloadSize). Fmt never changes after a Column is created.
// Compressed is a pure storage-state flag: decoding never loses rows, only
// (for formats 3 and 6) numeric precision. Aux holds a format-specific side
// structure only when a caller stores one there; the codec package's
// builders (BuildAux, BuildIndex) return theirs rather than setting it. It
// borrows into Payload — it must not be read after Payload is replaced.
type Column struct {
	Fmt        format.Tag
	N          int
	Compressed bool
	Unit       format.Unit
	Payload    []byte
	Aux        any
}

// New returns an empty, uncompressed Column for the given format tag.
func New(tag format.Tag) *Column {
	return &Column{Fmt: tag}
}

// Reset clears a Column's payload and aux so it can be reused, without
// changing its format tag.
func (c *Column) Reset() {
	c.N = 0
	c.Compressed = false
	c.Unit = format.UnitNone
	c.Payload = nil
	c.Aux = nil
}
