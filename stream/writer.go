package stream

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/klauspost/compress/zstd"
	"github.com/tabkit/tabkit/batch"
	"github.com/tabkit/tabkit/schema"
)

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithCompression selects the batch payload compression codec.
func WithCompression(c Compression) WriterOption {
	return func(w *Writer) { w.compression = c }
}

// Writer encodes a schema and a sequence of record batches onto an output
// stream. The header and schema frame are written eagerly by NewWriter;
// each WriteBatch appends one frame; Close writes the end marker. Once a
// batch is written it is never revisited.
type Writer struct {
	w           io.Writer
	schema      *schema.Schema
	compression Compression
	enc         *zstd.Encoder
	payload     bytes.Buffer
	closed      bool
}

// NewWriter validates the schema and writes the stream header and schema
// frame to w. The caller must call Close to terminate the stream.
func NewWriter(w io.Writer, s *schema.Schema, opts ...WriterOption) (*Writer, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	sw := &Writer{w: w, schema: s}
	for _, opt := range opts {
		opt(sw)
	}
	if sw.compression == Zstd {
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		sw.enc = enc
	}
	if err := sw.writeHeader(); err != nil {
		return nil, err
	}
	return sw, nil
}

// Schema returns the stream's schema.
func (w *Writer) Schema() *schema.Schema { return w.schema }

func (w *Writer) writeHeader() error {
	var flags uint16
	if w.compression == Zstd {
		flags |= flagZstd
	}
	header := make([]byte, 0, 8)
	header = append(header, Magic[:]...)
	header = binary.LittleEndian.AppendUint16(header, Version)
	header = binary.LittleEndian.AppendUint16(header, flags)
	if _, err := w.w.Write(header); err != nil {
		return fmt.Errorf("failed to write stream header: %w", err)
	}

	msg, err := json.Marshal(w.schema)
	if err != nil {
		return fmt.Errorf("failed to encode schema message: %w", err)
	}
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(msg)))
	if _, err := w.w.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("failed to write schema frame: %w", err)
	}
	if _, err := w.w.Write(msg); err != nil {
		return fmt.Errorf("failed to write schema frame: %w", err)
	}
	return nil
}

// WriteBatch appends one record batch frame. The batch's schema must be
// structurally identical to the stream's schema.
func (w *Writer) WriteBatch(b *batch.Batch) error {
	if w.closed {
		return fmt.Errorf("write on closed stream")
	}
	if _, err := schema.Merge(w.schema, b.Schema()); err != nil {
		return err
	}

	w.payload.Reset()
	encodePayload(&w.payload, b)
	payload := w.payload.Bytes()
	if w.enc != nil {
		payload = w.enc.EncodeAll(payload, nil)
	}

	frame := make([]byte, 5)
	frame[0] = markerBatch
	binary.LittleEndian.PutUint32(frame[1:], uint32(len(payload)))
	if _, err := w.w.Write(frame); err != nil {
		return fmt.Errorf("failed to write batch frame: %w", err)
	}
	if _, err := w.w.Write(payload); err != nil {
		return fmt.Errorf("failed to write batch frame: %w", err)
	}
	return nil
}

// encodePayload serializes a batch into its uncompressed payload form:
// row count, then per column the validity bitmap and value buffer.
func encodePayload(buf *bytes.Buffer, b *batch.Batch) {
	var u32 [4]byte
	binary.LittleEndian.PutUint32(u32[:], uint32(b.NumRows()))
	buf.Write(u32[:])

	for i := 0; i < b.NumCols(); i++ {
		col := b.Column(i)
		buf.Write(col.Validity())
		switch col.Type() {
		case schema.Int64, schema.TimestampMillis:
			for _, v := range col.Ints() {
				var v64 [8]byte
				binary.LittleEndian.PutUint64(v64[:], uint64(v))
				buf.Write(v64[:])
			}
		case schema.Float64:
			for _, v := range col.Floats() {
				var v64 [8]byte
				binary.LittleEndian.PutUint64(v64[:], math.Float64bits(v))
				buf.Write(v64[:])
			}
		case schema.Boolean:
			buf.Write(col.Bools())
		case schema.Utf8:
			for row := 0; row < col.Len(); row++ {
				s := col.String(row)
				binary.LittleEndian.PutUint32(u32[:], uint32(len(s)))
				buf.Write(u32[:])
				buf.WriteString(s)
			}
		case schema.Null:
			// validity only
		}
	}
}

// Close writes the end-of-stream marker and releases the compressor. It
// does not close the underlying writer.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if w.enc != nil {
		defer w.enc.Close()
	}
	if _, err := w.w.Write([]byte{markerEnd}); err != nil {
		return fmt.Errorf("failed to write end marker: %w", err)
	}
	return nil
}
