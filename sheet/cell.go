// Package sheet renders record batches into a named worksheet of an xlsx
// workbook and extracts worksheet grids back into rows.
//
// The spreadsheet cell model is narrower than the logical type system:
// cells are Number, Text, Bool, or Empty, with no integer/float or
// timestamp distinction. Rendering performs the documented logical-to-cell
// coercion; extraction is an explicitly lossy projection (a sheet carries
// no schema, so the original logical types are not recovered).
package sheet

import "strconv"

// CellKind tags the cell value union.
type CellKind int

const (
	// Empty is a cell with no value.
	Empty CellKind = iota
	// Number is a numeric cell (spreadsheets have a single numeric
	// domain; integers and floats are indistinguishable).
	Number
	// Text is a string cell.
	Text
	// Bool is a boolean cell.
	Bool
)

// Cell is one spreadsheet cell value. Only the field matching Kind is
// meaningful.
type Cell struct {
	Kind   CellKind
	Number float64
	Text   string
	Bool   bool
}

// Row is one ordered row of cells.
type Row []Cell

// EmptyCell returns an empty cell.
func EmptyCell() Cell { return Cell{Kind: Empty} }

// NumberCell returns a numeric cell.
func NumberCell(v float64) Cell { return Cell{Kind: Number, Number: v} }

// TextCell returns a text cell.
func TextCell(s string) Cell { return Cell{Kind: Text, Text: s} }

// BoolCell returns a boolean cell.
func BoolCell(b bool) Cell { return Cell{Kind: Bool, Bool: b} }

// Value returns the cell's value coerced to its JSON domain: float64,
// string, bool, or nil for an empty cell. The coercion is per-cell with no
// row-to-row dependency.
func (c Cell) Value() any {
	switch c.Kind {
	case Number:
		return c.Number
	case Text:
		return c.Text
	case Bool:
		return c.Bool
	default:
		return nil
	}
}

// label returns the cell's text form, used for header field names.
func (c Cell) label() string {
	switch c.Kind {
	case Number:
		return strconv.FormatFloat(c.Number, 'g', -1, 64)
	case Text:
		return c.Text
	case Bool:
		return strconv.FormatBool(c.Bool)
	default:
		return ""
	}
}
