// Package batch implements the in-memory columnar record batch: one typed
// column buffer per schema column plus a per-column validity bitmap, all of
// equal row count. The record batch is the unit of transfer in the stream
// codec.
package batch

import (
	"fmt"

	"github.com/tabkit/tabkit/schema"
)

// Batch is a finite columnar chunk of rows sharing one schema. All batches
// belonging to one stream reference the same schema value.
type Batch struct {
	schema *schema.Schema
	rows   int
	cols   []*Column
}

// New creates a record batch and checks its shape invariants: one column
// per schema column, matching logical types, and every column buffer of
// length rows.
func New(s *schema.Schema, rows int, cols []*Column) (*Batch, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if len(cols) != s.NumColumns() {
		return nil, fmt.Errorf("batch has %d columns, schema has %d", len(cols), s.NumColumns())
	}
	for i, col := range cols {
		want := s.Columns[i]
		if col.Type() != want.Type {
			return nil, fmt.Errorf("column %q: buffer type %s does not match schema type %s", want.Name, col.Type(), want.Type)
		}
		if col.Len() != rows {
			return nil, fmt.Errorf("column %q: buffer length %d does not match row count %d", want.Name, col.Len(), rows)
		}
	}
	return &Batch{schema: s, rows: rows, cols: cols}, nil
}

// Schema returns the schema shared by every batch of the stream.
func (b *Batch) Schema() *schema.Schema { return b.schema }

// NumRows returns the number of rows in the batch.
func (b *Batch) NumRows() int { return b.rows }

// NumCols returns the number of columns in the batch.
func (b *Batch) NumCols() int { return len(b.cols) }

// Column returns the column buffer at index i.
func (b *Batch) Column(i int) *Column { return b.cols[i] }

// Value returns the value at (row, col) as a Go value, or nil when null.
func (b *Batch) Value(row, col int) any {
	return b.cols[col].Value(row)
}
