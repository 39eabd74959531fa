package stream

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/klauspost/compress/zstd"
	"github.com/tabkit/tabkit/batch"
	"github.com/tabkit/tabkit/schema"
)

// Reader decodes a tab stream: the header and schema frame are read
// eagerly by NewReader, record batches lazily by Next. Decoding is
// single-pass; a reader cannot be rewound or restarted from an arbitrary
// offset.
type Reader struct {
	r          io.Reader
	schema     *schema.Schema
	dec        *zstd.Decoder
	compressed bool
	done       bool
	failed     error
}

// NewReader reads and validates the stream header and schema message from
// r. It returns ErrNotTabStream for input that does not start with the
// magic, and an *UnsupportedVersionError for a version or flags word this
// implementation does not recognize.
func NewReader(r io.Reader) (*Reader, error) {
	sr := &Reader{r: r}
	if err := sr.readHeader(); err != nil {
		return nil, err
	}
	if sr.compressed {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
		}
		sr.dec = dec
	}
	return sr, nil
}

// Schema returns the schema carried by the stream's schema message.
func (r *Reader) Schema() *schema.Schema { return r.schema }

func (r *Reader) readHeader() error {
	var header [8]byte
	if err := r.readFull(header[:], "stream header"); err != nil {
		return err
	}
	if [4]byte(header[:4]) != Magic {
		return ErrNotTabStream
	}
	version := binary.LittleEndian.Uint16(header[4:6])
	flags := binary.LittleEndian.Uint16(header[6:8])
	if version != Version {
		return &UnsupportedVersionError{Version: version, Flags: flags}
	}
	if flags&^knownFlags != 0 {
		return &UnsupportedVersionError{Version: version, Flags: flags}
	}
	r.compressed = flags&flagZstd != 0

	var lenBuf [4]byte
	if err := r.readFull(lenBuf[:], "schema frame"); err != nil {
		return err
	}
	msgLen := binary.LittleEndian.Uint32(lenBuf[:])
	if msgLen > maxFrameLen {
		return fmt.Errorf("schema frame length %d exceeds limit", msgLen)
	}
	msg := make([]byte, msgLen)
	if err := r.readFull(msg, "schema frame"); err != nil {
		return err
	}
	var s schema.Schema
	if err := json.Unmarshal(msg, &s); err != nil {
		return fmt.Errorf("failed to decode schema message: %w", err)
	}
	if err := s.Validate(); err != nil {
		return err
	}
	r.schema = &s
	return nil
}

// Next decodes and returns the next record batch. It returns io.EOF after
// the end-of-stream marker. A stream that ends before the end marker, or
// inside a frame, fails with an error wrapping ErrTruncatedStream; batches
// decoded before that point have already been yielded.
func (r *Reader) Next() (*batch.Batch, error) {
	if r.failed != nil {
		return nil, r.failed
	}
	if r.done {
		return nil, io.EOF
	}

	b, err := r.next()
	if err != nil && err != io.EOF {
		r.failed = err
	}
	return b, err
}

func (r *Reader) next() (*batch.Batch, error) {
	var marker [1]byte
	if err := r.readFull(marker[:], "frame marker"); err != nil {
		return nil, err
	}
	switch marker[0] {
	case markerEnd:
		r.done = true
		if r.dec != nil {
			r.dec.Close()
		}
		return nil, io.EOF
	case markerBatch:
	default:
		return nil, fmt.Errorf("unknown frame marker %#02x", marker[0])
	}

	var lenBuf [4]byte
	if err := r.readFull(lenBuf[:], "batch frame"); err != nil {
		return nil, err
	}
	payloadLen := binary.LittleEndian.Uint32(lenBuf[:])
	if payloadLen > maxFrameLen {
		return nil, fmt.Errorf("batch frame length %d exceeds limit", payloadLen)
	}
	payload := make([]byte, payloadLen)
	if err := r.readFull(payload, "batch frame"); err != nil {
		return nil, err
	}
	if r.dec != nil {
		var err error
		payload, err = r.dec.DecodeAll(payload, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress batch frame: %w", err)
		}
	}
	return r.decodePayload(payload)
}

// readFull fills buf, mapping any short read to ErrTruncatedStream: a
// partial frame at the end of input is a truncation, not a clean EOF.
func (r *Reader) readFull(buf []byte, what string) error {
	if _, err := io.ReadFull(r.r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%s: %w", what, ErrTruncatedStream)
		}
		return fmt.Errorf("failed to read %s: %w", what, err)
	}
	return nil
}

// decodePayload parses an uncompressed batch payload into a record batch,
// checking that the payload is exactly consumed.
func (r *Reader) decodePayload(payload []byte) (*batch.Batch, error) {
	cur := &cursor{buf: payload}
	rowsU32, err := cur.uint32()
	if err != nil {
		return nil, err
	}
	rows := int(rowsU32)

	cols := make([]*batch.Column, r.schema.NumColumns())
	for i, desc := range r.schema.Columns {
		validity, err := cur.bytes(batch.BitmapLen(rows))
		if err != nil {
			return nil, err
		}
		switch desc.Type {
		case schema.Int64, schema.TimestampMillis:
			values := make([]int64, rows)
			for row := range values {
				u, err := cur.uint64()
				if err != nil {
					return nil, err
				}
				values[row] = int64(u)
			}
			cols[i], err = batch.NewInt64Column(desc.Type, validity, values)
		case schema.Float64:
			values := make([]float64, rows)
			for row := range values {
				u, err := cur.uint64()
				if err != nil {
					return nil, err
				}
				values[row] = math.Float64frombits(u)
			}
			cols[i], err = batch.NewFloat64Column(validity, values)
		case schema.Boolean:
			packed, berr := cur.bytes(batch.BitmapLen(rows))
			if berr != nil {
				return nil, berr
			}
			cols[i], err = batch.NewBoolColumn(validity, packed, rows)
		case schema.Utf8:
			values := make([]string, rows)
			for row := range values {
				n, serr := cur.uint32()
				if serr != nil {
					return nil, serr
				}
				raw, serr := cur.bytes(int(n))
				if serr != nil {
					return nil, serr
				}
				values[row] = string(raw)
			}
			cols[i], err = batch.NewStringColumn(validity, values)
		case schema.Null:
			cols[i] = batch.NewNullColumn(rows)
		}
		if err != nil {
			return nil, err
		}
	}
	if cur.pos != len(payload) {
		return nil, fmt.Errorf("batch frame has %d trailing bytes", len(payload)-cur.pos)
	}
	return batch.New(r.schema, rows, cols)
}

// cursor is a bounds-checked reader over a decoded frame payload.
type cursor struct {
	buf []byte
	pos int
}

func (c *cursor) bytes(n int) ([]byte, error) {
	if n < 0 || c.pos+n > len(c.buf) {
		return nil, fmt.Errorf("batch frame payload is short: %w", ErrTruncatedStream)
	}
	out := c.buf[c.pos : c.pos+n]
	c.pos += n
	return out, nil
}

func (c *cursor) uint32() (uint32, error) {
	b, err := c.bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c *cursor) uint64() (uint64, error) {
	b, err := c.bytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}
