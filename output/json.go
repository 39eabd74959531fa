package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// JSONLFormatter outputs records as JSON Lines: one JSON object per line,
// no enclosing array, no trailing separators. Field order follows the
// record's field order, not map iteration or alphabetical order, so output
// columns appear exactly as the schema declares them.
type JSONLFormatter struct {
	writer io.Writer
	buf    bytes.Buffer
}

// NewJSONLFormatter creates a new JSON Lines formatter.
func NewJSONLFormatter(w io.Writer) *JSONLFormatter {
	return &JSONLFormatter{writer: w}
}

// WriteRecord writes one record as a single JSON object line. Nil values
// are emitted as JSON null.
func (j *JSONLFormatter) WriteRecord(rec Record) error {
	if len(rec.Fields) != len(rec.Values) {
		return fmt.Errorf("record has %d fields but %d values", len(rec.Fields), len(rec.Values))
	}

	j.buf.Reset()
	j.buf.WriteByte('{')
	for i, field := range rec.Fields {
		if i > 0 {
			j.buf.WriteByte(',')
		}
		name, err := json.Marshal(field)
		if err != nil {
			return fmt.Errorf("failed to encode field name %q: %w", field, err)
		}
		j.buf.Write(name)
		j.buf.WriteByte(':')
		value, err := json.Marshal(rec.Values[i])
		if err != nil {
			return fmt.Errorf("failed to encode field %q: %w", field, err)
		}
		j.buf.Write(value)
	}
	j.buf.WriteByte('}')
	j.buf.WriteByte('\n')

	if _, err := j.writer.Write(j.buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}

// Flush is a no-op; JSON Lines output is unbuffered.
func (j *JSONLFormatter) Flush() error {
	return nil
}
