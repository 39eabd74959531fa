package sheet

import (
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/tabkit/tabkit/batch"
	"github.com/tabkit/tabkit/schema"
	"github.com/xuri/excelize/v2"
)

// sliceSource serves pre-built batches, the in-memory counterpart of
// stream.Reader.
type sliceSource struct {
	batches []*batch.Batch
	next    int
}

func (s *sliceSource) Next() (*batch.Batch, error) {
	if s.next >= len(s.batches) {
		return nil, io.EOF
	}
	b := s.batches[s.next]
	s.next++
	return b, nil
}

func testSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.New(
		schema.Column{Name: "name", Type: schema.Utf8},
		schema.Column{Name: "size", Type: schema.Int64},
		schema.Column{Name: "hidden", Type: schema.Boolean},
		schema.Column{Name: "modified", Type: schema.TimestampMillis, Nullable: true},
	)
	if err != nil {
		t.Fatalf("schema.New() error = %v", err)
	}
	return s
}

func buildBatch(t *testing.T, s *schema.Schema, rows ...[]any) *batch.Batch {
	t.Helper()
	b, err := batch.NewBuilder(s)
	if err != nil {
		t.Fatalf("batch.NewBuilder() error = %v", err)
	}
	for _, row := range rows {
		if err := b.AppendRow(row...); err != nil {
			t.Fatalf("AppendRow(%v) error = %v", row, err)
		}
	}
	out, err := b.Finish()
	if err != nil {
		t.Fatalf("Finish() error = %v", err)
	}
	return out
}

// renderToFile renders and round-trips the workbook through disk so the
// checks read what a downstream consumer would read.
func renderToFile(t *testing.T, f *excelize.File, sheetName string, s *schema.Schema, src BatchSource, opts RenderOptions) *excelize.File {
	t.Helper()
	if err := Render(f, sheetName, s, src, opts); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	path := filepath.Join(t.TempDir(), "out.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs() error = %v", err)
	}
	saved, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	t.Cleanup(func() { saved.Close() })
	return saved
}

func TestRender(t *testing.T) {
	s := testSchema(t)
	src := &sliceSource{batches: []*batch.Batch{
		buildBatch(t, s,
			[]any{"a.txt", int64(120), false, int64(1700000000000)},
			[]any{"b.txt", int64(0), true, nil},
		),
		buildBatch(t, s,
			[]any{"c.txt", int64(7), false, int64(0)},
		),
	}}

	f := excelize.NewFile()
	defer f.Close()
	saved := renderToFile(t, f, "Listing", s, src, RenderOptions{})

	rows, err := saved.GetRows("Listing")
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	// Header plus three data rows; batch boundaries must be invisible.
	if len(rows) != 4 {
		t.Fatalf("sheet has %d rows, want 4: %v", len(rows), rows)
	}
	wantHeader := []string{"name", "size", "hidden", "modified"}
	for i, want := range wantHeader {
		if rows[0][i] != want {
			t.Errorf("header[%d] = %q, want %q", i, rows[0][i], want)
		}
	}
	if rows[1][0] != "a.txt" || rows[1][1] != "120" {
		t.Errorf("row 2 = %v, want a.txt / 120", rows[1])
	}
	if rows[1][2] != "FALSE" || rows[2][2] != "TRUE" {
		t.Errorf("boolean cells = %q, %q, want FALSE, TRUE", rows[1][2], rows[2][2])
	}
	if rows[1][3] != "1700000000000" {
		t.Errorf("timestamp cell = %q, want 1700000000000", rows[1][3])
	}
	// Null modified time leaves the cell empty.
	if len(rows[2]) > 3 && rows[2][3] != "" {
		t.Errorf("null cell = %q, want empty", rows[2][3])
	}
	if rows[3][0] != "c.txt" {
		t.Errorf("row 4 = %v, want c.txt first", rows[3])
	}
}

func TestRenderNoHeader(t *testing.T) {
	s := testSchema(t)
	src := &sliceSource{batches: []*batch.Batch{
		buildBatch(t, s, []any{"a.txt", int64(1), false, nil}),
	}}

	f := excelize.NewFile()
	defer f.Close()
	saved := renderToFile(t, f, "Listing", s, src, RenderOptions{NoHeader: true})

	rows, err := saved.GetRows("Listing")
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("sheet has %d rows, want 1", len(rows))
	}
	if rows[0][0] != "a.txt" {
		t.Errorf("first cell = %q, want a.txt", rows[0][0])
	}
}

func TestRenderTimeAsText(t *testing.T) {
	s := testSchema(t)
	src := &sliceSource{batches: []*batch.Batch{
		buildBatch(t, s, []any{"a.txt", int64(1), false, int64(1700000000000)}),
	}}

	f := excelize.NewFile()
	defer f.Close()
	saved := renderToFile(t, f, "Listing", s, src, RenderOptions{TimeAsText: true})

	got, err := saved.GetCellValue("Listing", "D2")
	if err != nil {
		t.Fatalf("GetCellValue() error = %v", err)
	}
	if got != "2023-11-14T22:13:20.000Z" {
		t.Errorf("timestamp cell = %q, want 2023-11-14T22:13:20.000Z", got)
	}
}

func TestRenderPrecisionLoss(t *testing.T) {
	s := testSchema(t)
	big := int64(1)<<53 + 1
	src := &sliceSource{batches: []*batch.Batch{
		buildBatch(t, s, []any{"huge.bin", big, false, nil}),
	}}

	f := excelize.NewFile()
	defer f.Close()
	err := Render(f, "Listing", s, src, RenderOptions{})
	var perr *PrecisionLossError
	if !errors.As(err, &perr) {
		t.Fatalf("Render() error = %v, want *PrecisionLossError", err)
	}
	if perr.Column != "size" || perr.Value != big {
		t.Errorf("PrecisionLossError = %+v, want column size, value %d", perr, big)
	}

	// The same batch renders in lossy mode.
	src = &sliceSource{batches: []*batch.Batch{
		buildBatch(t, s, []any{"huge.bin", big, false, nil}),
	}}
	f2 := excelize.NewFile()
	defer f2.Close()
	if err := Render(f2, "Listing", s, src, RenderOptions{Lossy: true}); err != nil {
		t.Errorf("Render() in lossy mode error = %v", err)
	}
}

// Rendering into a workbook must replace only the target sheet and leave
// every other sheet untouched.
func TestRenderPreservesOtherSheets(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "book.xlsx")

	seed := excelize.NewFile()
	if _, err := seed.NewSheet("Other"); err != nil {
		t.Fatalf("NewSheet() error = %v", err)
	}
	if err := seed.SetCellValue("Other", "A1", "keep me"); err != nil {
		t.Fatalf("SetCellValue() error = %v", err)
	}
	if err := seed.SetCellValue("Sheet1", "A1", "stale"); err != nil {
		t.Fatalf("SetCellValue() error = %v", err)
	}
	if err := seed.SaveAs(path); err != nil {
		t.Fatalf("SaveAs() error = %v", err)
	}
	seed.Close()

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	defer f.Close()

	s := testSchema(t)
	src := &sliceSource{batches: []*batch.Batch{
		buildBatch(t, s, []any{"fresh.txt", int64(1), false, nil}),
	}}
	saved := renderToFile(t, f, "Sheet1", s, src, RenderOptions{})

	other, err := saved.GetCellValue("Other", "A1")
	if err != nil {
		t.Fatalf("GetCellValue(Other) error = %v", err)
	}
	if other != "keep me" {
		t.Errorf("Other!A1 = %q, want \"keep me\"", other)
	}

	rows, err := saved.GetRows("Sheet1")
	if err != nil {
		t.Fatalf("GetRows(Sheet1) error = %v", err)
	}
	if len(rows) != 2 || rows[0][0] != "name" || rows[1][0] != "fresh.txt" {
		t.Errorf("Sheet1 = %v, want header and fresh.txt row only", rows)
	}
	for _, row := range rows {
		for _, cell := range row {
			if cell == "stale" {
				t.Error("stale cell survived sheet replacement")
			}
		}
	}

	// No scratch sheet may leak into the saved workbook.
	for _, name := range saved.GetSheetList() {
		if name != "Sheet1" && name != "Other" {
			t.Errorf("unexpected sheet %q in workbook", name)
		}
	}
}

func TestRenderSchemaMismatch(t *testing.T) {
	s := testSchema(t)
	other, err := schema.New(schema.Column{Name: "n", Type: schema.Int64})
	if err != nil {
		t.Fatalf("schema.New() error = %v", err)
	}
	src := &sliceSource{batches: []*batch.Batch{
		buildBatch(t, other, []any{int64(1)}),
	}}

	f := excelize.NewFile()
	defer f.Close()
	err = Render(f, "Listing", s, src, RenderOptions{})
	var merr *schema.MismatchError
	if !errors.As(err, &merr) {
		t.Errorf("Render() error = %v, want *schema.MismatchError", err)
	}
}
