// Package schema defines the logical table schema shared by every stage of
// the tabkit pipeline.
//
// A Schema is an ordered list of column descriptors (name, logical type,
// nullable). It is fixed for the lifetime of a stream: every record batch
// carried over one stream references the same schema, and a batch whose
// schema diverges is rejected by Merge.
package schema

import (
	"encoding/json"
	"fmt"
)

// LogicalType is the abstract data type of a column, independent of its
// physical encoding on the wire or in a spreadsheet cell.
type LogicalType int

const (
	// Int64 is a fixed-width signed 64-bit integer.
	Int64 LogicalType = iota
	// Float64 is an IEEE-754 64-bit floating point number.
	Float64
	// Boolean is a single-bit true/false value.
	Boolean
	// Utf8 is a variable-width UTF-8 string.
	Utf8
	// TimestampMillis is a signed 64-bit count of milliseconds since the
	// Unix epoch.
	TimestampMillis
	// Null is a column that holds no values at all; every slot is null.
	Null
)

// typeNames are the wire names used in the serialized schema message.
var typeNames = map[LogicalType]string{
	Int64:           "int64",
	Float64:         "float64",
	Boolean:         "boolean",
	Utf8:            "utf8",
	TimestampMillis: "timestamp_ms",
	Null:            "null",
}

// String returns the wire name of the logical type.
func (t LogicalType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(t))
}

// MarshalJSON encodes the logical type as its wire name.
func (t LogicalType) MarshalJSON() ([]byte, error) {
	name, ok := typeNames[t]
	if !ok {
		return nil, fmt.Errorf("cannot encode unknown logical type %d", int(t))
	}
	return json.Marshal(name)
}

// UnmarshalJSON decodes a logical type from its wire name.
func (t *LogicalType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for typ, n := range typeNames {
		if n == name {
			*t = typ
			return nil
		}
	}
	return fmt.Errorf("unknown logical type %q", name)
}

// Column describes a single column: its name, logical type, and whether
// null values are permitted.
type Column struct {
	Name     string      `json:"name"`
	Type     LogicalType `json:"type"`
	Nullable bool        `json:"nullable"`
}

// Schema is an ordered, immutable description of a table. Column order is
// significant and fixed for the lifetime of a stream.
type Schema struct {
	Columns []Column `json:"columns"`
}

// New creates a schema from the given columns and validates it.
func New(cols ...Column) (*Schema, error) {
	s := &Schema{Columns: cols}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the structural invariants of the schema: at least one
// column, no empty names, no duplicate names. It returns a *Error
// describing the first violation found.
func (s *Schema) Validate() error {
	if len(s.Columns) == 0 {
		return &Error{Reason: "schema has no columns"}
	}
	seen := make(map[string]bool, len(s.Columns))
	for i, col := range s.Columns {
		if col.Name == "" {
			return &Error{Reason: fmt.Sprintf("column %d has an empty name", i)}
		}
		if seen[col.Name] {
			return &Error{Reason: fmt.Sprintf("duplicate column name %q", col.Name)}
		}
		seen[col.Name] = true
		if _, ok := typeNames[col.Type]; !ok {
			return &Error{Reason: fmt.Sprintf("column %q has unknown type %d", col.Name, int(col.Type))}
		}
	}
	return nil
}

// NumColumns returns the number of columns in the schema.
func (s *Schema) NumColumns() int {
	return len(s.Columns)
}

// FieldNames returns the column names in schema order.
func (s *Schema) FieldNames() []string {
	names := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		names[i] = col.Name
	}
	return names
}

// Equal reports whether two schemas are structurally identical: same
// names, types, nullability, and order.
func (s *Schema) Equal(o *Schema) bool {
	if s == nil || o == nil {
		return s == o
	}
	if len(s.Columns) != len(o.Columns) {
		return false
	}
	for i := range s.Columns {
		if s.Columns[i] != o.Columns[i] {
			return false
		}
	}
	return true
}

// Merge reconciles two schemas that are required to describe the same
// stream. The schema is fixed per stream, not per batch, so the only
// acceptable outcome is structural identity; anything else is a
// *MismatchError.
func Merge(a, b *Schema) (*Schema, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if !a.Equal(b) {
		return nil, &MismatchError{Detail: describeMismatch(a, b)}
	}
	return a, nil
}

func describeMismatch(a, b *Schema) string {
	if len(a.Columns) != len(b.Columns) {
		return fmt.Sprintf("column count %d != %d", len(a.Columns), len(b.Columns))
	}
	for i := range a.Columns {
		if a.Columns[i] != b.Columns[i] {
			return fmt.Sprintf("column %d: %+v != %+v", i, a.Columns[i], b.Columns[i])
		}
	}
	return "schemas differ"
}
