package batch

import (
	"fmt"
	"time"

	"github.com/tabkit/tabkit/schema"
)

// Builder accumulates rows into column buffers and produces a Batch.
//
// Values are appended a full row at a time; the builder enforces the
// schema's types and nullability on every append. A builder can be reused
// after Finish by continuing to append rows.
type Builder struct {
	schema *schema.Schema
	rows   int

	ints   [][]int64
	floats [][]float64
	bools  [][]bool
	strs   [][]string
	valid  [][]bool
}

// NewBuilder creates a builder for the given schema.
func NewBuilder(s *schema.Schema) (*Builder, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	n := s.NumColumns()
	return &Builder{
		schema: s,
		ints:   make([][]int64, n),
		floats: make([][]float64, n),
		bools:  make([][]bool, n),
		strs:   make([][]string, n),
		valid:  make([][]bool, n),
	}, nil
}

// AppendRow appends one row, one value per schema column in order. A nil
// value appends a null; accepted non-nil values are int64 (also int),
// float64, bool, string, and time.Time or int64 for TimestampMillis
// columns.
func (b *Builder) AppendRow(values ...any) error {
	if len(values) != b.schema.NumColumns() {
		return fmt.Errorf("row has %d values, schema has %d columns", len(values), b.schema.NumColumns())
	}
	// Validate the whole row before touching any buffer so a failed append
	// leaves the builder unchanged.
	converted := make([]any, len(values))
	for i, v := range values {
		cv, err := b.convert(i, v)
		if err != nil {
			return err
		}
		converted[i] = cv
	}
	for i, v := range converted {
		b.appendValue(i, v)
	}
	b.rows++
	return nil
}

// NumRows returns the number of rows appended since the last Finish.
func (b *Builder) NumRows() int { return b.rows }

// convert checks value v against column i and normalizes it to the
// column's canonical Go type, or nil for a null.
func (b *Builder) convert(i int, v any) (any, error) {
	col := b.schema.Columns[i]
	if v == nil {
		if !col.Nullable && col.Type != schema.Null {
			return nil, fmt.Errorf("column %q is not nullable", col.Name)
		}
		return nil, nil
	}
	switch col.Type {
	case schema.Int64:
		switch n := v.(type) {
		case int64:
			return n, nil
		case int:
			return int64(n), nil
		}
	case schema.Float64:
		if f, ok := v.(float64); ok {
			return f, nil
		}
	case schema.Boolean:
		if t, ok := v.(bool); ok {
			return t, nil
		}
	case schema.Utf8:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case schema.TimestampMillis:
		switch t := v.(type) {
		case time.Time:
			return t.UnixMilli(), nil
		case int64:
			return t, nil
		}
	case schema.Null:
		return nil, fmt.Errorf("column %q has type null and accepts no values", col.Name)
	}
	return nil, fmt.Errorf("column %q: cannot store %T as %s", col.Name, v, col.Type)
}

func (b *Builder) appendValue(i int, v any) {
	if v == nil {
		b.valid[i] = append(b.valid[i], false)
		switch b.schema.Columns[i].Type {
		case schema.Int64, schema.TimestampMillis:
			b.ints[i] = append(b.ints[i], 0)
		case schema.Float64:
			b.floats[i] = append(b.floats[i], 0)
		case schema.Boolean:
			b.bools[i] = append(b.bools[i], false)
		case schema.Utf8:
			b.strs[i] = append(b.strs[i], "")
		}
		return
	}
	b.valid[i] = append(b.valid[i], true)
	switch b.schema.Columns[i].Type {
	case schema.Int64, schema.TimestampMillis:
		b.ints[i] = append(b.ints[i], v.(int64))
	case schema.Float64:
		b.floats[i] = append(b.floats[i], v.(float64))
	case schema.Boolean:
		b.bools[i] = append(b.bools[i], v.(bool))
	case schema.Utf8:
		b.strs[i] = append(b.strs[i], v.(string))
	}
}

// Finish assembles the appended rows into a Batch and resets the builder
// for the next batch. A batch with zero rows is valid and carries
// correctly shaped zero-length buffers.
func (b *Builder) Finish() (*Batch, error) {
	n := b.schema.NumColumns()
	cols := make([]*Column, n)
	for i := 0; i < n; i++ {
		validity := make([]byte, BitmapLen(b.rows))
		for row, ok := range b.valid[i] {
			if ok {
				SetBit(validity, row)
			}
		}
		var (
			col *Column
			err error
		)
		switch typ := b.schema.Columns[i].Type; typ {
		case schema.Int64, schema.TimestampMillis:
			col, err = NewInt64Column(typ, validity, b.ints[i])
		case schema.Float64:
			col, err = NewFloat64Column(validity, b.floats[i])
		case schema.Boolean:
			packed := make([]byte, BitmapLen(b.rows))
			for row, t := range b.bools[i] {
				if t {
					SetBit(packed, row)
				}
			}
			col, err = NewBoolColumn(validity, packed, b.rows)
		case schema.Utf8:
			col, err = NewStringColumn(validity, b.strs[i])
		case schema.Null:
			col = NewNullColumn(b.rows)
		}
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}
	out, err := New(b.schema, b.rows, cols)
	if err != nil {
		return nil, err
	}
	b.reset()
	return out, nil
}

func (b *Builder) reset() {
	b.rows = 0
	for i := range b.schema.Columns {
		b.ints[i] = nil
		b.floats[i] = nil
		b.bools[i] = nil
		b.strs[i] = nil
		b.valid[i] = nil
	}
}
