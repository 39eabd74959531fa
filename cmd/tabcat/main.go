// Command tabcat inspects a tab stream: it decodes the stream from
// standard input (or a file) and prints its rows as JSON Lines, CSV, an
// aligned table, or a parquet file, or just its schema.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/tabkit/tabkit/output"
	"github.com/tabkit/tabkit/schema"
	"github.com/tabkit/tabkit/stream"
)

var (
	inputPath  string
	outputPath string
	formatFlag string
	schemaFlag bool
	limitFlag  int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tabcat",
		Short: "Print a tab stream in a chosen output format",
		Long: `tabcat reads a tab stream and prints its rows. With --schema it prints
the stream's schema message instead of any data.`,
		Args:          cobra.NoArgs,
		RunE:          run,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.Flags().StringVarP(&inputPath, "input", "i", "", "Input tab stream file (default: stdin)")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	rootCmd.Flags().StringVarP(&formatFlag, "format", "f", "jsonl", "Output format: jsonl, csv, table, parquet")
	rootCmd.Flags().BoolVar(&schemaFlag, "schema", false, "Show schema information instead of data")
	rootCmd.Flags().IntVar(&limitFlag, "limit", 0, "Limit number of rows (0 = unlimited)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if limitFlag < 0 {
		return fmt.Errorf("--limit must be non-negative, got %d", limitFlag)
	}

	in := io.Reader(os.Stdin)
	if inputPath != "" {
		f, err := os.Open(inputPath)
		if err != nil {
			return fmt.Errorf("failed to open input file: %w", err)
		}
		defer f.Close()
		in = f
	}

	r, err := stream.NewReader(bufio.NewReader(in))
	if err != nil {
		return err
	}

	out := io.Writer(os.Stdout)
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if schemaFlag {
		return printSchema(out, r.Schema())
	}

	buffered := bufio.NewWriter(out)
	formatter, err := newFormatter(formatFlag, buffered, r.Schema())
	if err != nil {
		return err
	}

	written := 0
	for {
		b, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		for _, rec := range output.BatchRecords(b) {
			if limitFlag > 0 && written >= limitFlag {
				break
			}
			if err := formatter.WriteRecord(rec); err != nil {
				return err
			}
			written++
		}
	}
	if err := formatter.Flush(); err != nil {
		return err
	}
	return buffered.Flush()
}

func newFormatter(format string, w io.Writer, s *schema.Schema) (output.Formatter, error) {
	switch format {
	case "jsonl":
		return output.NewJSONLFormatter(w), nil
	case "csv":
		return output.NewCSVFormatter(w), nil
	case "table":
		return output.NewTableFormatter(w), nil
	case "parquet":
		return output.NewParquetFormatter(w, s)
	default:
		return nil, fmt.Errorf("unknown output format %q (must be jsonl, csv, table, or parquet)", format)
	}
}

func printSchema(w io.Writer, s *schema.Schema) error {
	msg, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(msg))
	return err
}
