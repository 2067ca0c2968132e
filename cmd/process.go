// =============================================================================
// EDI Splitter - Process Command
// =============================================================================
//
// This file defines the 'process' command, which splits every EDI file found
// in the input directory.
//
// COMMAND USAGE:
//   edisplit process [flags]
//
// FLAGS:
//   --dry-run     : Validate the files without writing anything
//
// PROCESSING PIPELINE:
//   1. Load configuration
//   2. Discover files matching file_pattern in the input directory
//   3. For each file (at most max_concurrency at once):
//      a. Split the detail records
//      b. Write <base>_p1 and <base>_p2 to the output directory
//      c. Archive the input when archive_on_success is set
//   4. Write the summary log
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/edi-splitter/internal/processor"
	"github.com/ginjaninja78/edi-splitter/internal/validation"
)

// dryRun validates files without writing output files.
var dryRun bool

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Split every EDI file in the input directory",
	Long: `The process command scans the input directory for files matching
file_pattern and splits each one into two parts.

Files are processed concurrently. Each file is processed independently, and
errors in one file do not affect the processing of others. Files that look
like earlier outputs (_p1, _p2, _cleaned) are skipped.

On successful processing:
  - The two parts are placed in the output directory
  - The original file is moved to the input archive (archive_on_success)
  - A summary log is written to the output directory

On error:
  - The original file remains in the input directory
  - The error is listed in the summary log`,

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		return runProcess(ctx, cmd)
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Validate files without writing output files",
	)
}

// runProcess discovers and splits the input files.
func runProcess(ctx context.Context, cmd *cobra.Command) error {
	startTime := time.Now()
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "=== EDI Splitter ===")

	p := processor.New(appConfig, logger)
	if err := p.EnsureDirectories(); err != nil {
		return err
	}

	files, err := p.Discover()
	if err != nil {
		return fmt.Errorf("failed to discover input files: %w", err)
	}

	if len(files) == 0 {
		fmt.Fprintf(out, "No files matching %q found in %s.\n", appConfig.FilePattern, appConfig.InputDir)
		return nil
	}

	fmt.Fprintf(out, "Found %d file(s) to process\n", len(files))

	results, runErr := p.RunBatch(ctx, files, processor.BatchOptions{DryRun: dryRun})

	var successCount, errorCount int
	for _, result := range results {
		name := filepath.Base(result.FilePath)
		switch {
		case result.Success:
			successCount++
			if dryRun {
				printOK(out, "%s: valid (%d records)", name, result.Stats.DetailCount)
			} else {
				printOK(out, "%s -> %s", name, strings.Join(baseNames(result.OutputFiles), ", "))
			}
		default:
			errorCount++
			printFail(out, "%s: %v", name, result.Error)
		}

		if result.Validation != nil && len(result.Validation.Findings) > 0 {
			fmt.Fprint(out, indent(validation.FormatFindings(result.Validation.Findings), "      "))
		}
		for _, warning := range result.Warnings {
			printWarn(out, "%s: %s", name, warning)
		}
	}

	elapsed := time.Since(startTime)
	fmt.Fprintln(out, "\n=== Processing Complete ===")
	fmt.Fprintf(out, "Total files:     %d\n", len(files))
	fmt.Fprintf(out, "Successful:      %d\n", successCount)
	fmt.Fprintf(out, "Errors:          %d\n", errorCount)
	fmt.Fprintf(out, "Time elapsed:    %s\n", elapsed)

	if !dryRun {
		summaryPath, err := p.WriteSummary(p.Summarize(startTime, time.Now(), results))
		if err != nil {
			logger.Error("summary not written", zap.Error(err))
		} else {
			fmt.Fprintf(out, "Summary:         %s\n", summaryPath)
		}
	}

	if runErr != nil {
		return runErr
	}
	if dryRun && errorCount > 0 {
		return fmt.Errorf("%d file(s) failed validation", errorCount)
	}

	return nil
}

func baseNames(paths []string) []string {
	names := make([]string, len(paths))
	for i, path := range paths {
		names[i] = filepath.Base(path)
	}
	return names
}

// indent prefixes every non-empty line of text.
func indent(text, prefix string) string {
	var b strings.Builder
	for _, line := range strings.SplitAfter(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		b.WriteString(prefix)
		b.WriteString(line)
	}
	s := b.String()
	if s != "" && !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	return s
}
