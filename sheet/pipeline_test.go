package sheet

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/tabkit/tabkit/batch"
	"github.com/tabkit/tabkit/dirlist"
	"github.com/tabkit/tabkit/output"
	"github.com/tabkit/tabkit/stream"
	"github.com/xuri/excelize/v2"
)

// Render then extract must give back records whose field names equal the
// schema column names and whose values equal the originals under the
// documented coercions: numbers for numeric and timestamp columns,
// booleans staying boolean, nulls staying null.
func TestSheetRoundTrip(t *testing.T) {
	s := testSchema(t)
	src := &sliceSource{batches: []*batch.Batch{
		buildBatch(t, s,
			[]any{"a.txt", int64(120), false, int64(1700000000000)},
			[]any{"b.txt", int64(0), true, nil},
		),
	}}

	f := excelize.NewFile()
	defer f.Close()
	saved := renderToFile(t, f, "Listing", s, src, RenderOptions{})

	rows, err := Extract(saved, "Listing")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	rr, err := NewRecordReader(rows, true)
	if err != nil {
		t.Fatalf("NewRecordReader() error = %v", err)
	}

	if !reflect.DeepEqual(rr.Fields(), s.FieldNames()) {
		t.Fatalf("Fields() = %v, want %v", rr.Fields(), s.FieldNames())
	}

	want := [][]any{
		{"a.txt", float64(120), false, float64(1700000000000)},
		{"b.txt", float64(0), true, nil},
	}
	for i, wantRow := range want {
		rec, err := rr.Next()
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		if !reflect.DeepEqual(rec.Values, wantRow) {
			t.Errorf("record %d = %v, want %v", i, rec.Values, wantRow)
		}
	}
	if _, err := rr.Next(); err != io.EOF {
		t.Fatalf("Next() past end = %v, want io.EOF", err)
	}
}

// End-to-end pipeline: enumerate a directory, encode it onto a stream,
// decode the stream into a workbook sheet, extract the sheet as JSON
// Lines. The moral equivalent of lstab | tab2xlsx && xlsx2jsonl.
func TestDirectoryToJSONLines(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatalf("Mkdir() error = %v", err)
	}

	// Stage 1: enumerate and encode.
	lister, err := dirlist.New(dir, 1)
	if err != nil {
		t.Fatalf("dirlist.New() error = %v", err)
	}
	var pipe bytes.Buffer
	w, err := stream.NewWriter(&pipe, lister.Schema(), stream.WithCompression(stream.Zstd))
	if err != nil {
		t.Fatalf("stream.NewWriter() error = %v", err)
	}
	for {
		b, err := lister.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("lister.Next() error = %v", err)
		}
		if err := w.WriteBatch(b); err != nil {
			t.Fatalf("WriteBatch() error = %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("stream writer Close() error = %v", err)
	}

	// Stage 2: decode and render.
	r, err := stream.NewReader(&pipe)
	if err != nil {
		t.Fatalf("stream.NewReader() error = %v", err)
	}
	f := excelize.NewFile()
	defer f.Close()
	saved := renderToFile(t, f, "Listing", r.Schema(), r, RenderOptions{})

	// Stage 3: extract as JSON Lines.
	rows, err := Extract(saved, "Listing")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	rr, err := NewRecordReader(rows, true)
	if err != nil {
		t.Fatalf("NewRecordReader() error = %v", err)
	}
	var out bytes.Buffer
	formatter := output.NewJSONLFormatter(&out)
	count := 0
	for {
		rec, err := rr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("rr.Next() error = %v", err)
		}
		if err := formatter.WriteRecord(rec); err != nil {
			t.Fatalf("WriteRecord() error = %v", err)
		}
		count++
	}
	if count != 2 {
		t.Fatalf("pipeline emitted %d lines, want 2:\n%s", count, out.String())
	}

	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	if !bytes.Contains(lines[0], []byte(`"size":5`)) {
		t.Errorf("first line = %s, want size 5 for a.txt", lines[0])
	}
	if !bytes.Contains(lines[0], []byte(`"kind":"file"`)) {
		t.Errorf("first line = %s, want kind file", lines[0])
	}
	if !bytes.Contains(lines[1], []byte(`"kind":"dir"`)) {
		t.Errorf("second line = %s, want kind dir", lines[1])
	}
}
