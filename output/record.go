package output

import (
	"github.com/tabkit/tabkit/batch"
)

// Record is one row with its field names in column order. Keeping the
// order explicit (instead of a map) lets formatters emit fields exactly as
// the schema declares them.
type Record struct {
	Fields []string
	Values []any
}

// BatchRecords converts a record batch into ordered records. Null slots
// become nil values; TimestampMillis values stay raw int64 millisecond
// counts.
func BatchRecords(b *batch.Batch) []Record {
	fields := b.Schema().FieldNames()
	records := make([]Record, b.NumRows())
	for row := 0; row < b.NumRows(); row++ {
		values := make([]any, b.NumCols())
		for col := 0; col < b.NumCols(); col++ {
			values[col] = b.Value(row, col)
		}
		records[row] = Record{Fields: fields, Values: values}
	}
	return records
}
