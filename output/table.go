package output

import (
	"io"

	"github.com/olekukonko/tablewriter"
)

// TableFormatter outputs records as a human-readable aligned table.
// Rendering an aligned table needs every row up front, so records are
// buffered until Flush.
type TableFormatter struct {
	writer io.Writer
	fields []string
	rows   [][]string
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{writer: w}
}

// WriteRecord buffers one record for rendering.
func (t *TableFormatter) WriteRecord(rec Record) error {
	if t.fields == nil {
		t.fields = rec.Fields
	}
	row := make([]string, len(rec.Values))
	for i, v := range rec.Values {
		row[i] = formatValue(v)
	}
	t.rows = append(t.rows, row)
	return nil
}

// Flush renders the buffered records. An empty record set renders nothing.
func (t *TableFormatter) Flush() error {
	if t.fields == nil {
		return nil
	}
	table := tablewriter.NewWriter(t.writer)
	table.SetHeader(t.fields)
	table.SetAutoFormatHeaders(false)
	for _, row := range t.rows {
		table.Append(row)
	}
	table.Render()
	return nil
}
