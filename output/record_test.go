package output

import (
	"reflect"
	"testing"

	"github.com/tabkit/tabkit/batch"
	"github.com/tabkit/tabkit/schema"
)

func TestBatchRecords(t *testing.T) {
	s, err := schema.New(
		schema.Column{Name: "path", Type: schema.Utf8},
		schema.Column{Name: "size", Type: schema.Int64},
		schema.Column{Name: "modified", Type: schema.TimestampMillis, Nullable: true},
	)
	if err != nil {
		t.Fatalf("schema.New() error = %v", err)
	}
	b, err := batch.NewBuilder(s)
	if err != nil {
		t.Fatalf("batch.NewBuilder() error = %v", err)
	}
	if err := b.AppendRow("a.txt", int64(120), int64(1700000000000)); err != nil {
		t.Fatalf("AppendRow() error = %v", err)
	}
	if err := b.AppendRow("b.txt", int64(0), nil); err != nil {
		t.Fatalf("AppendRow() error = %v", err)
	}
	out, err := b.Finish()
	if err != nil {
		t.Fatalf("Finish() error = %v", err)
	}

	records := BatchRecords(out)
	if len(records) != 2 {
		t.Fatalf("BatchRecords() returned %d records, want 2", len(records))
	}
	wantFields := []string{"path", "size", "modified"}
	if !reflect.DeepEqual(records[0].Fields, wantFields) {
		t.Errorf("Fields = %v, want %v", records[0].Fields, wantFields)
	}
	if !reflect.DeepEqual(records[0].Values, []any{"a.txt", int64(120), int64(1700000000000)}) {
		t.Errorf("record 0 = %v", records[0].Values)
	}
	if records[1].Values[2] != nil {
		t.Errorf("null slot = %v, want nil", records[1].Values[2])
	}
}
