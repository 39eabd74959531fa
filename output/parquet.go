package output

import (
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"
	"github.com/tabkit/tabkit/schema"
)

// ParquetFormatter outputs records as a parquet file. The parquet schema
// is derived from the logical schema, so the formatter is constructed from
// a *schema.Schema rather than inferring types from the records.
type ParquetFormatter struct {
	pw *parquet.GenericWriter[map[string]any]
}

// NewParquetFormatter creates a parquet formatter writing to w.
func NewParquetFormatter(w io.Writer, s *schema.Schema) (*ParquetFormatter, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	group := parquet.Group{}
	for _, col := range s.Columns {
		node, err := parquetNode(col.Type)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col.Name, err)
		}
		if col.Nullable || col.Type == schema.Null {
			node = parquet.Optional(node)
		}
		group[col.Name] = node
	}
	pqSchema := parquet.NewSchema("record", group)
	return &ParquetFormatter{
		pw: parquet.NewGenericWriter[map[string]any](w, pqSchema),
	}, nil
}

// parquetNode maps a logical type onto a parquet leaf node. The Null
// logical type carries no values, so any optional leaf will do; it is
// mapped to an optional string.
func parquetNode(t schema.LogicalType) (parquet.Node, error) {
	switch t {
	case schema.Int64:
		return parquet.Int(64), nil
	case schema.Float64:
		return parquet.Leaf(parquet.DoubleType), nil
	case schema.Boolean:
		return parquet.Leaf(parquet.BooleanType), nil
	case schema.Utf8:
		return parquet.String(), nil
	case schema.TimestampMillis:
		return parquet.Timestamp(parquet.Millisecond), nil
	case schema.Null:
		return parquet.String(), nil
	default:
		return nil, fmt.Errorf("no parquet mapping for logical type %s", t)
	}
}

// WriteRecord writes one record as a parquet row. Nil values are written
// as parquet nulls by omitting the field.
func (p *ParquetFormatter) WriteRecord(rec Record) error {
	row := make(map[string]any, len(rec.Fields))
	for i, field := range rec.Fields {
		if rec.Values[i] == nil {
			continue
		}
		row[field] = rec.Values[i]
	}
	if _, err := p.pw.Write([]map[string]any{row}); err != nil {
		return fmt.Errorf("failed to write parquet row: %w", err)
	}
	return nil
}

// Flush finishes the parquet file, writing its footer.
func (p *ParquetFormatter) Flush() error {
	if err := p.pw.Close(); err != nil {
		return fmt.Errorf("failed to finish parquet file: %w", err)
	}
	return nil
}
