package batch

import (
	"fmt"

	"github.com/tabkit/tabkit/schema"
)

// Column is one typed column buffer of a record batch: a validity bitmap
// plus exactly one live value buffer matching the column's logical type.
// Null slots hold the type's zero placeholder; callers must check IsNull
// before reading a value.
type Column struct {
	typ      schema.LogicalType
	length   int
	validity []byte

	ints   []int64   // Int64, TimestampMillis
	floats []float64 // Float64
	bools  []byte    // Boolean, bit-packed
	strs   []string  // Utf8
}

// NewInt64Column builds a column of type Int64 or TimestampMillis from a
// validity bitmap and a value buffer.
func NewInt64Column(typ schema.LogicalType, validity []byte, values []int64) (*Column, error) {
	if typ != schema.Int64 && typ != schema.TimestampMillis {
		return nil, fmt.Errorf("type %s is not backed by int64 values", typ)
	}
	if err := checkShape(len(values), validity); err != nil {
		return nil, err
	}
	return &Column{typ: typ, length: len(values), validity: validity, ints: values}, nil
}

// NewFloat64Column builds a Float64 column.
func NewFloat64Column(validity []byte, values []float64) (*Column, error) {
	if err := checkShape(len(values), validity); err != nil {
		return nil, err
	}
	return &Column{typ: schema.Float64, length: len(values), validity: validity, floats: values}, nil
}

// NewBoolColumn builds a Boolean column from bit-packed values of the
// given row count.
func NewBoolColumn(validity, values []byte, rows int) (*Column, error) {
	if err := checkShape(rows, validity); err != nil {
		return nil, err
	}
	if len(values) != BitmapLen(rows) {
		return nil, fmt.Errorf("boolean buffer holds %d bytes, want %d for %d rows", len(values), BitmapLen(rows), rows)
	}
	return &Column{typ: schema.Boolean, length: rows, validity: validity, bools: values}, nil
}

// NewStringColumn builds a Utf8 column.
func NewStringColumn(validity []byte, values []string) (*Column, error) {
	if err := checkShape(len(values), validity); err != nil {
		return nil, err
	}
	return &Column{typ: schema.Utf8, length: len(values), validity: validity, strs: values}, nil
}

// NewNullColumn builds a column of the Null logical type: rows slots, all
// of them null, with no value buffer at all.
func NewNullColumn(rows int) *Column {
	return &Column{typ: schema.Null, length: rows, validity: make([]byte, BitmapLen(rows))}
}

func checkShape(rows int, validity []byte) error {
	if len(validity) != BitmapLen(rows) {
		return fmt.Errorf("validity bitmap holds %d bytes, want %d for %d rows", len(validity), BitmapLen(rows), rows)
	}
	return nil
}

// Type returns the column's logical type.
func (c *Column) Type() schema.LogicalType { return c.typ }

// Len returns the number of rows in the column.
func (c *Column) Len() int { return c.length }

// Validity returns the column's validity bitmap. The returned slice is
// shared with the column and must not be modified.
func (c *Column) Validity() []byte { return c.validity }

// IsNull reports whether row i is null.
func (c *Column) IsNull(i int) bool {
	return !Bit(c.validity, i)
}

// Int64 returns the value at row i of an Int64 or TimestampMillis column.
func (c *Column) Int64(i int) int64 { return c.ints[i] }

// Float64 returns the value at row i of a Float64 column.
func (c *Column) Float64(i int) float64 { return c.floats[i] }

// Bool returns the value at row i of a Boolean column.
func (c *Column) Bool(i int) bool { return Bit(c.bools, i) }

// String returns the value at row i of a Utf8 column.
func (c *Column) String(i int) string { return c.strs[i] }

// Ints returns the int64 value buffer of an Int64 or TimestampMillis
// column. Shared, not to be modified.
func (c *Column) Ints() []int64 { return c.ints }

// Floats returns the float64 value buffer of a Float64 column.
func (c *Column) Floats() []float64 { return c.floats }

// Bools returns the bit-packed value buffer of a Boolean column.
func (c *Column) Bools() []byte { return c.bools }

// Strings returns the string value buffer of a Utf8 column.
func (c *Column) Strings() []string { return c.strs }

// Value returns the value at row i as a Go value: int64, float64, bool,
// string, or nil when the slot is null. TimestampMillis values are
// returned as the raw int64 millisecond count.
func (c *Column) Value(i int) any {
	if c.IsNull(i) {
		return nil
	}
	switch c.typ {
	case schema.Int64, schema.TimestampMillis:
		return c.ints[i]
	case schema.Float64:
		return c.floats[i]
	case schema.Boolean:
		return c.Bool(i)
	case schema.Utf8:
		return c.strs[i]
	default:
		return nil
	}
}
