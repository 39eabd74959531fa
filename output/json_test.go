package output

import (
	"bytes"
	"testing"
)

func TestJSONLFormatter(t *testing.T) {
	tests := []struct {
		name    string
		records []Record
		want    string
		wantErr bool
	}{
		{
			name:    "no records",
			records: nil,
			want:    "",
		},
		{
			name: "single record keeps field order",
			records: []Record{
				{Fields: []string{"name", "size"}, Values: []any{"a.txt", float64(120)}},
			},
			want: `{"name":"a.txt","size":120}` + "\n",
		},
		{
			name: "fields are not sorted alphabetically",
			records: []Record{
				{Fields: []string{"zeta", "alpha"}, Values: []any{int64(1), int64(2)}},
			},
			want: `{"zeta":1,"alpha":2}` + "\n",
		},
		{
			name: "null and boolean values",
			records: []Record{
				{Fields: []string{"modified", "hidden"}, Values: []any{nil, true}},
			},
			want: `{"modified":null,"hidden":true}` + "\n",
		},
		{
			name: "multiple lines",
			records: []Record{
				{Fields: []string{"n"}, Values: []any{int64(1)}},
				{Fields: []string{"n"}, Values: []any{int64(2)}},
			},
			want: "{\"n\":1}\n{\"n\":2}\n",
		},
		{
			name: "mismatched field and value counts",
			records: []Record{
				{Fields: []string{"a", "b"}, Values: []any{int64(1)}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			formatter := NewJSONLFormatter(&buf)

			var err error
			for _, rec := range tt.records {
				if err = formatter.WriteRecord(rec); err != nil {
					break
				}
			}
			if (err != nil) != tt.wantErr {
				t.Fatalf("WriteRecord() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if err := formatter.Flush(); err != nil {
				t.Fatalf("Flush() error = %v", err)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}
