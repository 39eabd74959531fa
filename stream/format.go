// Package stream implements the tab stream format: a self-describing,
// forward-only binary encoding of a schema followed by a sequence of
// record batches.
//
// Wire layout, all integers little-endian:
//
//	header       magic "TABS" | version uint16 | flags uint16
//	schema frame uint32 length | JSON schema message
//	batch frame  marker 0x01 | uint32 payload length | payload
//	end marker   0x00
//
// A batch payload holds the row count (uint32) followed by, for each
// column in schema order, the validity bitmap and the value buffer:
// Int64 and TimestampMillis as 8-byte two's complement, Float64 as
// IEEE-754 bits, Boolean as bits packed LSB-first, Utf8 as per-value
// uint32 length prefix plus bytes (zero length for null slots), and no
// value bytes at all for the Null type. When the zstd flag is set each
// batch payload is independently zstd-compressed; the length prefix is
// the compressed length.
//
// Encoding is purely forward-streaming and decoding is single-pass:
// a stream is consumed exactly once, restartable only from its start.
package stream

import (
	"errors"
	"fmt"
)

// Magic identifies a tab stream. It is the first four bytes of every
// stream and is checked before any schema or body parsing.
var Magic = [4]byte{'T', 'A', 'B', 'S'}

// Version is the current format version.
const Version uint16 = 1

// Header flag bits.
const (
	// flagZstd marks batch payloads as zstd-compressed.
	flagZstd uint16 = 1 << 0

	knownFlags = flagZstd
)

// Frame markers.
const (
	markerEnd   byte = 0x00
	markerBatch byte = 0x01
)

// maxFrameLen bounds a single frame so a corrupt length prefix cannot
// drive an unbounded allocation.
const maxFrameLen = 1 << 30

// Compression selects the batch payload compression codec.
type Compression int

const (
	// NoCompression writes batch payloads verbatim.
	NoCompression Compression = iota
	// Zstd compresses each batch payload independently with zstandard.
	Zstd
)

// ErrTruncatedStream reports a stream that ended inside a frame, or after
// the last whole frame but before the end marker. Frames decoded before
// the truncation point have already been yielded.
var ErrTruncatedStream = errors.New("truncated stream")

// ErrNotTabStream reports input whose leading bytes are not the tab
// stream magic.
var ErrNotTabStream = errors.New("input is not a tab stream")

// UnsupportedVersionError reports a stream whose version or header flags
// this implementation does not recognize.
type UnsupportedVersionError struct {
	Version uint16
	Flags   uint16
}

func (e *UnsupportedVersionError) Error() string {
	if e.Version != Version {
		return fmt.Sprintf("unsupported tab stream version %d", e.Version)
	}
	return fmt.Sprintf("unsupported tab stream flags %#04x", e.Flags)
}
