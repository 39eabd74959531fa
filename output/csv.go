package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// CSVFormatter outputs records as CSV with a header row taken from the
// first record's field names.
type CSVFormatter struct {
	csvWriter   *csv.Writer
	wroteHeader bool
}

// NewCSVFormatter creates a new CSV formatter.
func NewCSVFormatter(w io.Writer) *CSVFormatter {
	return &CSVFormatter{csvWriter: csv.NewWriter(w)}
}

// WriteRecord writes one record as a CSV row, preceded by the header row
// on the first call.
func (c *CSVFormatter) WriteRecord(rec Record) error {
	if !c.wroteHeader {
		if err := c.csvWriter.Write(rec.Fields); err != nil {
			return err
		}
		c.wroteHeader = true
	}
	row := make([]string, len(rec.Values))
	for i, v := range rec.Values {
		row[i] = formatValue(v)
	}
	return c.csvWriter.Write(row)
}

// Flush flushes buffered CSV output and reports any deferred write error.
func (c *CSVFormatter) Flush() error {
	c.csvWriter.Flush()
	if err := c.csvWriter.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV writer: %w", err)
	}
	return nil
}

// formatValue converts a value to its string form for CSV and table
// output. Nulls become empty fields.
func formatValue(v any) string {
	if v == nil {
		return ""
	}

	switch val := v.(type) {
	case string:
		// Sanitize against CSV injection by prefixing dangerous characters
		// that could trigger formula execution in spreadsheet applications
		if len(val) > 0 {
			firstChar := val[0]
			if firstChar == '=' || firstChar == '+' || firstChar == '-' || firstChar == '@' || firstChar == '\t' || firstChar == '\r' || firstChar == '\n' || firstChar == '|' {
				return "'" + strings.ReplaceAll(val, "'", "''")
			}
		}
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
