// Package output provides formatters for emitting decoded tabular records
// in various output formats.
//
// All formatters consume ordered Record values one at a time, so callers
// can interleave decoding and emission batch-by-batch without holding the
// whole table in memory (the table and parquet formatters buffer
// internally because their output formats require it).
//
// Supported formats:
//   - JSON Lines: one JSON object per line, fields in record order
//   - CSV: comma-separated values with a header row
//   - Table: human-readable aligned table
//   - Parquet: columnar file output
//
// Example usage:
//
//	formatter := output.NewJSONLFormatter(os.Stdout)
//	for _, rec := range records {
//	    if err := formatter.WriteRecord(rec); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//	if err := formatter.Flush(); err != nil {
//	    log.Fatal(err)
//	}
package output
