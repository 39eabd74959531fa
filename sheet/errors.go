package sheet

import "fmt"

// PrecisionLossError reports an Int64 value outside the range a float64
// cell can represent exactly. Rendering fails with it unless lossy mode is
// explicitly requested.
type PrecisionLossError struct {
	Column string
	Value  int64
}

func (e *PrecisionLossError) Error() string {
	return fmt.Sprintf("column %q: value %d cannot be stored in a number cell without precision loss", e.Column, e.Value)
}

// DuplicateFieldError reports a header row that names the same field
// twice.
type DuplicateFieldError struct {
	Name string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("duplicate field name %q in header row", e.Name)
}

// RowShapeError reports a data row with more cells than the header row
// has fields. Row is the 1-based sheet row number.
type RowShapeError struct {
	Row  int
	Got  int
	Want int
}

func (e *RowShapeError) Error() string {
	return fmt.Sprintf("row %d has %d cells, header has %d fields", e.Row, e.Got, e.Want)
}

// SheetNotFoundError reports a workbook that has no sheet with the
// requested name.
type SheetNotFoundError struct {
	Name string
}

func (e *SheetNotFoundError) Error() string {
	return fmt.Sprintf("sheet %q not found in workbook", e.Name)
}
