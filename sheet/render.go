package sheet

import (
	"fmt"
	"io"
	"time"

	"github.com/tabkit/tabkit/batch"
	"github.com/tabkit/tabkit/schema"
	"github.com/xuri/excelize/v2"
)

// maxExactInt is the largest magnitude an int64 can reach and still be
// represented exactly by a float64 cell.
const maxExactInt = int64(1) << 53

// timeTextLayout is the ISO-8601 layout used when timestamps are rendered
// as text, with millisecond precision.
const timeTextLayout = "2006-01-02T15:04:05.000Z07:00"

// RenderOptions configures logical-to-cell coercion.
type RenderOptions struct {
	// TimeAsText renders TimestampMillis values as ISO-8601 text instead
	// of the default raw millisecond number.
	TimeAsText bool
	// NoHeader suppresses the header row of column names.
	NoHeader bool
	// Lossy permits Int64 values outside the exactly-representable double
	// range instead of failing with a *PrecisionLossError.
	Lossy bool
}

// BatchSource produces record batches one at a time, returning io.EOF
// after the last one. stream.Reader and dirlist.Lister both satisfy it.
type BatchSource interface {
	Next() (*batch.Batch, error)
}

// Render materializes a schema and batch sequence as the cell grid of one
// named sheet. Row order follows the batch sequence exactly and batch
// boundaries are invisible in the output. If the sheet already exists its
// contents are replaced; all other sheets in the workbook are left
// untouched. The workbook is modified in memory; saving it is the
// caller's concern.
func Render(f *excelize.File, sheetName string, s *schema.Schema, src BatchSource, opts RenderOptions) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if err := replaceSheet(f, sheetName); err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return fmt.Errorf("failed to open stream writer for sheet %q: %w", sheetName, err)
	}

	rowNum := 1
	if !opts.NoHeader {
		header := make([]interface{}, s.NumColumns())
		for i, name := range s.FieldNames() {
			header[i] = name
		}
		if err := writeRow(sw, rowNum, header); err != nil {
			return err
		}
		rowNum++
	}

	for {
		b, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if _, err := schema.Merge(s, b.Schema()); err != nil {
			return err
		}
		for row := 0; row < b.NumRows(); row++ {
			values := make([]interface{}, b.NumCols())
			for col := 0; col < b.NumCols(); col++ {
				v, err := cellValue(s.Columns[col], b.Column(col), row, opts)
				if err != nil {
					return err
				}
				values[col] = v
			}
			if err := writeRow(sw, rowNum, values); err != nil {
				return err
			}
			rowNum++
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet %q: %w", sheetName, err)
	}
	return nil
}

// cellValue coerces one logical value into its cell form, or nil for an
// empty cell. One rule per logical type, per the coercion table.
func cellValue(desc schema.Column, col *batch.Column, row int, opts RenderOptions) (interface{}, error) {
	if col.IsNull(row) {
		return nil, nil
	}
	switch desc.Type {
	case schema.Int64:
		v := col.Int64(row)
		if !opts.Lossy && (v > maxExactInt || v < -maxExactInt) {
			return nil, &PrecisionLossError{Column: desc.Name, Value: v}
		}
		return float64(v), nil
	case schema.Float64:
		return col.Float64(row), nil
	case schema.Boolean:
		return col.Bool(row), nil
	case schema.Utf8:
		return col.String(row), nil
	case schema.TimestampMillis:
		ms := col.Int64(row)
		if opts.TimeAsText {
			return time.UnixMilli(ms).UTC().Format(timeTextLayout), nil
		}
		return float64(ms), nil
	default:
		// Null-typed columns have no valid slots; IsNull caught them.
		return nil, nil
	}
}

func writeRow(sw *excelize.StreamWriter, rowNum int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	if err := sw.SetRow(cell, values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", rowNum, err)
	}
	return nil
}

// replaceSheet ensures sheetName exists and is empty, recreating it if
// present so stale cells from a previous generation cannot leak through.
// Other sheets are never touched.
func replaceSheet(f *excelize.File, sheetName string) error {
	idx, err := f.GetSheetIndex(sheetName)
	if err != nil {
		return err
	}
	if idx == -1 {
		_, err := f.NewSheet(sheetName)
		return err
	}

	// A workbook must keep at least one sheet, so park a scratch sheet
	// while the target is recreated.
	scratch := "~tabkit"
	for i := 0; ; i++ {
		name := fmt.Sprintf("%s%d", scratch, i)
		if existing, err := f.GetSheetIndex(name); err != nil {
			return err
		} else if existing == -1 {
			scratch = name
			break
		}
	}
	if _, err := f.NewSheet(scratch); err != nil {
		return err
	}
	if err := f.DeleteSheet(sheetName); err != nil {
		return err
	}
	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}
	return f.DeleteSheet(scratch)
}
