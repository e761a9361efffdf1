// Package errs defines the sentinel errors returned across the storage
// substrate. Every error a caller can usefully branch on with errors.Is
// is declared here; wrapping happens at the call site with fmt.Errorf's
// %w so context (e.g. the offending sample name or row count) travels
// with the sentinel.
package errs

import "errors"

// Record framing (spec §4.1, §7 kind: SignatureMismatch / ShortRead / UnsupportedFormat)
var (
	ErrSignatureMismatch   = errors.New("yame: record signature mismatch")
	ErrShortRead           = errors.New("yame: short read, stream ended mid-field")
	ErrUnsupportedFormat   = errors.New("yame: unsupported column format")
	ErrInvalidHeaderSize   = errors.New("yame: invalid header size")
	ErrInvalidPayloadLength = errors.New("yame: payload length does not match declared row/byte count")
)

// Shape / cross-column invariants (kind: ShapeMismatch)
var (
	ErrShapeMismatch    = errors.New("yame: columns disagree on row count")
	ErrMaskLengthMismatch = errors.New("yame: mask length does not match data length")
)

// Format-2 categorical aux (kind: CorruptAux)
var (
	ErrCorruptAux      = errors.New("yame: corrupt auxiliary structure")
	ErrKeyIndexOutOfRange = errors.New("yame: key index exceeds key table")
)

// Codec invariants (kind: CodecViolation)
var (
	ErrAlreadyCompressed   = errors.New("yame: column already compressed")
	ErrSliceOnCompressed   = errors.New("yame: cannot slice a compressed column")
	ErrInvalidRunLength    = errors.New("yame: invalid run length")
	ErrInvalidUnit         = errors.New("yame: invalid unit width")
	ErrReservedCode        = errors.New("yame: reserved two-bit code 01 encountered")
	ErrCodecViolation      = errors.New("yame: codec invariant violated")
)

// Coordinate (format 7) specific
var (
	ErrNoChromosome  = errors.New("yame: no chromosome in scope")
	ErrRowOutOfRange = errors.New("yame: row index out of range")
)

// Sample-name index (kind: ResourceOpen and friends)
var (
	ErrDuplicateSampleName = errors.New("yame: duplicate sample name in index")
	ErrSampleNotFound      = errors.New("yame: sample name not found in index")
	ErrInvalidIndexLine    = errors.New("yame: malformed index line")
)

// Resource open failures (kind: ResourceOpen)
var (
	ErrResourceOpen = errors.New("yame: cannot open resource")
)
