// Package dirlist adapts filesystem directory enumeration into record
// batches. It is the producing end of the pipeline; traversal policy
// (recursion, symlink following, exclusion globs) is deliberately not
// handled here.
package dirlist

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tabkit/tabkit/batch"
	"github.com/tabkit/tabkit/schema"
)

// DefaultBatchSize bounds memory to one batch of entries at a time.
const DefaultBatchSize = 1024

// Entry kind values of the "kind" column.
const (
	KindFile    = "file"
	KindDir     = "dir"
	KindSymlink = "symlink"
	KindOther   = "other"
)

// Columns returns the fixed directory-listing schema. The column types are
// set by configuration here rather than inferred: path and kind are
// non-null Utf8, size is non-null Int64, and modified is a nullable
// TimestampMillis (null when the entry's metadata cannot be read).
func Columns() []schema.Column {
	return []schema.Column{
		{Name: "path", Type: schema.Utf8},
		{Name: "size", Type: schema.Int64},
		{Name: "modified", Type: schema.TimestampMillis, Nullable: true},
		{Name: "kind", Type: schema.Utf8},
	}
}

// Lister enumerates one directory's entries as record batches in lexical
// order. It satisfies the same batch-source contract as stream.Reader:
// Next returns io.EOF after the final batch.
type Lister struct {
	dir       string
	entries   []os.DirEntry
	next      int
	batchSize int
	schema    *schema.Schema
	builder   *batch.Builder
}

// New reads the directory's entry list and prepares a lister that yields
// batches of at most batchSize entries (DefaultBatchSize if batchSize is
// not positive).
func New(dir string, batchSize int) (*Lister, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	s, err := schema.New(Columns()...)
	if err != nil {
		return nil, err
	}
	builder, err := batch.NewBuilder(s)
	if err != nil {
		return nil, err
	}
	return &Lister{
		dir:       dir,
		entries:   entries,
		batchSize: batchSize,
		schema:    s,
		builder:   builder,
	}, nil
}

// Schema returns the directory-listing schema.
func (l *Lister) Schema() *schema.Schema { return l.schema }

// Next returns the next batch of directory entries, or io.EOF when the
// listing is exhausted. An entry whose metadata cannot be read yields a
// row with size 0 and a null modified time rather than failing the batch.
func (l *Lister) Next() (*batch.Batch, error) {
	if l.next >= len(l.entries) {
		return nil, io.EOF
	}
	end := l.next + l.batchSize
	if end > len(l.entries) {
		end = len(l.entries)
	}
	for _, entry := range l.entries[l.next:end] {
		path := filepath.Join(l.dir, entry.Name())

		var (
			size     int64
			modified any
		)
		if info, err := entry.Info(); err == nil {
			size = info.Size()
			modified = info.ModTime()
		}

		if err := l.builder.AppendRow(path, size, modified, kind(entry.Type())); err != nil {
			return nil, err
		}
	}
	l.next = end
	return l.builder.Finish()
}

func kind(mode fs.FileMode) string {
	switch {
	case mode.IsDir():
		return KindDir
	case mode&fs.ModeSymlink != 0:
		return KindSymlink
	case mode.IsRegular():
		return KindFile
	default:
		return KindOther
	}
}
