package dirlist

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/tabkit/tabkit/batch"
	"github.com/tabkit/tabkit/schema"
)

func populate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.log"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatalf("Mkdir() error = %v", err)
	}
	return dir
}

func drain(t *testing.T, l *Lister) []*batch.Batch {
	t.Helper()
	var batches []*batch.Batch
	for {
		b, err := l.Next()
		if err == io.EOF {
			return batches
		}
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		batches = append(batches, b)
	}
}

func TestListerSchema(t *testing.T) {
	l, err := New(populate(t), 0)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	s := l.Schema()
	wantNames := []string{"path", "size", "modified", "kind"}
	names := s.FieldNames()
	if len(names) != len(wantNames) {
		t.Fatalf("FieldNames() = %v, want %v", names, wantNames)
	}
	for i, want := range wantNames {
		if names[i] != want {
			t.Errorf("column %d = %q, want %q", i, names[i], want)
		}
	}
	if s.Columns[1].Type != schema.Int64 || s.Columns[1].Nullable {
		t.Errorf("size column = %+v, want non-nullable int64", s.Columns[1])
	}
	if s.Columns[2].Type != schema.TimestampMillis || !s.Columns[2].Nullable {
		t.Errorf("modified column = %+v, want nullable timestamp_ms", s.Columns[2])
	}
}

func TestListerEntries(t *testing.T) {
	dir := populate(t)
	l, err := New(dir, 0)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	batches := drain(t, l)
	if len(batches) != 1 {
		t.Fatalf("got %d batches, want 1", len(batches))
	}
	b := batches[0]
	if b.NumRows() != 3 {
		t.Fatalf("NumRows() = %d, want 3", b.NumRows())
	}

	// os.ReadDir returns entries in lexical order.
	wantPaths := []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "b.log"),
		filepath.Join(dir, "sub"),
	}
	wantKinds := []string{KindFile, KindFile, KindDir}
	for row := 0; row < b.NumRows(); row++ {
		if got := b.Value(row, 0); got != wantPaths[row] {
			t.Errorf("path[%d] = %v, want %v", row, got, wantPaths[row])
		}
		if got := b.Value(row, 3); got != wantKinds[row] {
			t.Errorf("kind[%d] = %v, want %v", row, got, wantKinds[row])
		}
		if b.Column(2).IsNull(row) {
			t.Errorf("modified[%d] is null, want a timestamp", row)
		}
	}
	if got := b.Value(0, 1); got != int64(5) {
		t.Errorf("size of a.txt = %v, want 5", got)
	}
}

func TestListerBatchSize(t *testing.T) {
	l, err := New(populate(t), 2)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	batches := drain(t, l)
	if len(batches) != 2 {
		t.Fatalf("got %d batches, want 2", len(batches))
	}
	if batches[0].NumRows() != 2 || batches[1].NumRows() != 1 {
		t.Errorf("batch rows = %d, %d, want 2, 1", batches[0].NumRows(), batches[1].NumRows())
	}
}

func TestListerEmptyDirectory(t *testing.T) {
	l, err := New(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if batches := drain(t, l); len(batches) != 0 {
		t.Errorf("got %d batches from empty directory, want 0", len(batches))
	}
}

func TestListerMissingDirectory(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "nope"), 0); err == nil {
		t.Error("New() on missing directory should fail")
	}
}
