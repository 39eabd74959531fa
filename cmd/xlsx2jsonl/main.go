// Command xlsx2jsonl reads one named sheet of an xlsx workbook and emits
// its rows as line-delimited JSON on standard output.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/tabkit/tabkit/output"
	"github.com/tabkit/tabkit/sheet"
	"github.com/xuri/excelize/v2"
)

var (
	inputPath  string
	outputPath string
	sheetName  string
	noHeader   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "xlsx2jsonl",
		Short: "Emit a workbook sheet as JSON Lines",
		Long: `xlsx2jsonl extracts one named sheet of an xlsx workbook and writes one
JSON object per row to standard output. By default the sheet's first row
supplies the field names; with --no-header fields are named positionally
(col0, col1, ...).`,
		Args:          cobra.NoArgs,
		RunE:          run,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.Flags().StringVarP(&inputPath, "input", "i", "", "Input workbook path")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	rootCmd.Flags().StringVarP(&sheetName, "sheet", "s", "", "Sheet to extract")
	rootCmd.Flags().BoolVar(&noHeader, "no-header", false, "Treat the first row as data, naming fields positionally")
	_ = rootCmd.MarkFlagRequired("input")
	_ = rootCmd.MarkFlagRequired("sheet")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	f, err := excelize.OpenFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := sheet.Extract(f, sheetName)
	if err != nil {
		return err
	}
	rr, err := sheet.NewRecordReader(rows, !noHeader)
	if err != nil {
		return err
	}

	out := io.Writer(os.Stdout)
	if outputPath != "" {
		file, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer file.Close()
		out = file
	}
	buffered := bufio.NewWriter(out)
	formatter := output.NewJSONLFormatter(buffered)

	for {
		rec, err := rr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if err := formatter.WriteRecord(rec); err != nil {
			return err
		}
	}
	if err := formatter.Flush(); err != nil {
		return err
	}
	return buffered.Flush()
}
