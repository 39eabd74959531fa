// Command tab2xlsx reads a tab stream and renders it into one named sheet
// of an xlsx workbook, preserving any other sheets already present in the
// target file.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/tabkit/tabkit/sheet"
	"github.com/tabkit/tabkit/stream"
	"github.com/xuri/excelize/v2"
)

var (
	inputPath  string
	outputPath string
	sheetName  string
	timeAsText bool
	noHeader   bool
	lossy      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tab2xlsx",
		Short: "Render a tab stream into a workbook sheet",
		Long: `tab2xlsx decodes a tab stream from standard input (or a file) and
materializes it as the cell grid of one named sheet in an xlsx workbook.
If the workbook already exists, only the target sheet is replaced.`,
		Args:          cobra.NoArgs,
		RunE:          run,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.Flags().StringVarP(&inputPath, "input", "i", "", "Input tab stream file (default: stdin)")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output workbook path")
	rootCmd.Flags().StringVarP(&sheetName, "sheet", "s", "", "Target sheet name")
	rootCmd.Flags().BoolVar(&timeAsText, "time-text", false, "Render timestamps as ISO-8601 text instead of millisecond numbers")
	rootCmd.Flags().BoolVar(&noHeader, "no-header", false, "Suppress the column header row")
	rootCmd.Flags().BoolVar(&lossy, "lossy", false, "Permit integer values that lose precision as number cells")
	_ = rootCmd.MarkFlagRequired("output")
	_ = rootCmd.MarkFlagRequired("sheet")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
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

	f, created, err := openWorkbook(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	opts := sheet.RenderOptions{
		TimeAsText: timeAsText,
		NoHeader:   noHeader,
		Lossy:      lossy,
	}
	if err := sheet.Render(f, sheetName, r.Schema(), r, opts); err != nil {
		return err
	}

	// A fresh workbook starts with a default sheet; drop it unless it is
	// the render target.
	if created && sheetName != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return err
		}
	}

	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// openWorkbook opens an existing workbook so its other sheets survive, or
// creates a new one. It reports whether the workbook is newly created.
func openWorkbook(path string) (*excelize.File, bool, error) {
	if _, err := os.Stat(path); err == nil {
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, false, fmt.Errorf("failed to open workbook: %w", err)
		}
		return f, false, nil
	} else if !os.IsNotExist(err) {
		return nil, false, fmt.Errorf("failed to stat workbook: %w", err)
	}
	return excelize.NewFile(), true, nil
}
