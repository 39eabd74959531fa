package sheet

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// Extract reads one named sheet's cell grid into rows of tagged cell
// values. Rows keep sheet order; trailing empty cells may be absent (rows
// are ragged, as stored in the workbook).
//
// The projection is lossy by design: a sheet carries no schema, so cells
// are classified from the stored cell type plus the raw value. Integers
// and floats collapse into Number, timestamps into Number or Text —
// callers needing full fidelity must carry the schema out-of-band.
func Extract(f *excelize.File, sheetName string) ([]Row, error) {
	idx, err := f.GetSheetIndex(sheetName)
	if err != nil {
		return nil, err
	}
	if idx == -1 {
		return nil, &SheetNotFoundError{Name: sheetName}
	}

	grid, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheetName, err)
	}

	rows := make([]Row, len(grid))
	for r, rawRow := range grid {
		row := make(Row, len(rawRow))
		for c, raw := range rawRow {
			cell, err := classifyCell(f, sheetName, r, c, raw)
			if err != nil {
				return nil, err
			}
			row[c] = cell
		}
		rows[r] = row
	}
	return rows, nil
}

// classifyCell maps one stored cell onto the Cell union using the cell's
// stored type where the workbook has one, and numeric parsing otherwise.
func classifyCell(f *excelize.File, sheetName string, row, col int, raw string) (Cell, error) {
	if raw == "" {
		return EmptyCell(), nil
	}
	axis, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return Cell{}, err
	}
	ct, err := f.GetCellType(sheetName, axis)
	if err != nil {
		return Cell{}, fmt.Errorf("failed to inspect cell %s: %w", axis, err)
	}

	switch ct {
	case excelize.CellTypeBool:
		// Raw boolean cells are stored as 0/1.
		return BoolCell(raw == "1" || raw == "TRUE"), nil
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString:
		return TextCell(raw), nil
	default:
		// Number cells usually carry no explicit type attribute, so both
		// CellTypeNumber and CellTypeUnset land here.
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return NumberCell(n), nil
		}
		return TextCell(raw), nil
	}
}
