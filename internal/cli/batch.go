package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"fromage/internal/config"
	"fromage/internal/convert"
	"fromage/internal/filewalker"
	"fromage/internal/worker"
)

func batchCmd(cfg *config.Config, defaults *conversionFlags) *cobra.Command {
	flags := *defaults
	workers := cfg.WorkerCount

	cmd := &cobra.Command{
		Use:   "batch <input-dir> <output-dir>",
		Short: "Convert every file of the input format under a directory",
		Long: `Walks <input-dir> for files of the input format (ATools: .txt, CSV: .csv)
and converts each into <output-dir>, keeping relative paths and switching
the extension. Files are converted in parallel; a failing file does not stop
the others.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options("")
			if err != nil {
				return err
			}
			if err := opts.Validate(); err != nil {
				return err
			}

			ctx, cancel := setupContext()
			defer cancel()

			return runBatch(ctx, args[0], args[1], opts, workers)
		},
	}

	flags.registerCSV(cmd)
	flags.registerInput(cmd)
	flags.registerOutput(cmd)
	cmd.Flags().IntVarP(&workers, "workers", "w", workers, "Number of files converted in parallel")

	return cmd
}

// runBatch handles the `batch` command.
func runBatch(ctx context.Context, inputDir, outputDir string, opts convert.Options, workers int) error {
	entries, err := filewalker.NewWalker(opts.Input).Walk(inputDir)
	if err != nil {
		return fmt.Errorf("walk input directory: %w", err)
	}

	outputAbs, err := filepath.Abs(outputDir)
	if err != nil {
		return fmt.Errorf("resolve output directory: %w", err)
	}

	pool := worker.NewPool[filewalker.FileEntry, convert.Result](workers,
		func(ctx context.Context, entry filewalker.FileEntry) (convert.Result, error) {
			outPath := filewalker.OutputPath(entry, outputAbs, opts.Output)
			if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
				return convert.Result{}, fmt.Errorf("create output directory: %w", err)
			}

			fileOpts := opts
			fileOpts.OnSkip = warnSkipped(entry.Path)
			return convert.File(entry.Path, outPath, fileOpts)
		},
	)

	tasks := pool.Execute(ctx, entries)

	var converted, failed, skippedLines int
	for _, task := range tasks {
		switch {
		case !task.Done:
		case task.Err != nil:
			failed++
		default:
			converted++
			skippedLines += task.Result.Skipped
		}
	}

	log.Info().
		Int("files", len(entries)).
		Int("converted", converted).
		Int("failed", failed).
		Int("skipped_lines", skippedLines).
		Str("output", outputAbs).
		Msg("Batch conversion complete")

	if err := ctx.Err(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(entries))
	}
	return nil
}
