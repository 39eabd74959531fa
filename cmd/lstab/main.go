// Command lstab enumerates a directory's entries and writes them to
// standard output as a tab stream.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/tabkit/tabkit/dirlist"
	"github.com/tabkit/tabkit/stream"
)

var (
	outputPath string
	batchSize  int
	compress   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lstab [dir]",
		Short: "List directory entries as a tab stream",
		Long: `lstab enumerates the entries of a directory (path, size, modified
time, kind) and encodes them as a tab stream on standard output, ready to
be piped into tab2xlsx or tabcat.`,
		Args:          cobra.MaximumNArgs(1),
		RunE:          run,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	rootCmd.Flags().IntVar(&batchSize, "batch-size", dirlist.DefaultBatchSize, "Maximum entries per record batch")
	rootCmd.Flags().BoolVar(&compress, "compress", false, "Compress batch payloads with zstd")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	lister, err := dirlist.New(dir, batchSize)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", dir, err)
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

	var opts []stream.WriterOption
	if compress {
		opts = append(opts, stream.WithCompression(stream.Zstd))
	}
	w, err := stream.NewWriter(out, lister.Schema(), opts...)
	if err != nil {
		return err
	}

	for {
		b, err := lister.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if err := w.WriteBatch(b); err != nil {
			return err
		}
	}
	return w.Close()
}
