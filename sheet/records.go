package sheet

import (
	"fmt"
	"io"

	"github.com/tabkit/tabkit/output"
)

// RecordReader turns extracted sheet rows into ordered records, one per
// data row, applying the cell-to-JSON coercion per cell: Number becomes a
// JSON number, Text a string, Bool a boolean, Empty a null.
//
// With a header row, the first row supplies the field names for every
// subsequent row. Without one, fields are named positionally ("col0",
// "col1", ...) up to the widest row in the sheet. A data row shorter than
// the field list is padded with nulls; one longer than the field list
// fails with a *RowShapeError.
type RecordReader struct {
	fields []string
	rows   []Row
	// pos is the 0-based index of the next data row within rows; base is
	// the sheet row number offset for error reporting.
	pos  int
	base int
}

// NewRecordReader prepares a record reader over extracted rows. With
// hasHeader set, it fails with a *DuplicateFieldError if the header row
// repeats a field name.
func NewRecordReader(rows []Row, hasHeader bool) (*RecordReader, error) {
	if hasHeader {
		if len(rows) == 0 {
			return nil, fmt.Errorf("sheet has no header row")
		}
		header := rows[0]
		fields := make([]string, len(header))
		seen := make(map[string]bool, len(header))
		for i, cell := range header {
			name := cell.label()
			if seen[name] {
				return nil, &DuplicateFieldError{Name: name}
			}
			seen[name] = true
			fields[i] = name
		}
		return &RecordReader{fields: fields, rows: rows[1:], base: 2}, nil
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	fields := make([]string, width)
	for i := range fields {
		fields[i] = fmt.Sprintf("col%d", i)
	}
	return &RecordReader{fields: fields, rows: rows, base: 1}, nil
}

// Fields returns the field names applied to every record.
func (r *RecordReader) Fields() []string { return r.fields }

// Next returns the next record, or io.EOF after the last row. Records are
// emitted in sheet order and coerced independently per row.
func (r *RecordReader) Next() (output.Record, error) {
	if r.pos >= len(r.rows) {
		return output.Record{}, io.EOF
	}
	row := r.rows[r.pos]
	sheetRow := r.base + r.pos
	if len(row) > len(r.fields) {
		return output.Record{}, &RowShapeError{Row: sheetRow, Got: len(row), Want: len(r.fields)}
	}
	values := make([]any, len(r.fields))
	for i := range r.fields {
		if i < len(row) {
			values[i] = row[i].Value()
		}
		// missing trailing cells stay nil
	}
	r.pos++
	return output.Record{Fields: r.fields, Values: values}, nil
}
