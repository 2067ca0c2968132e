// =============================================================================
// EDI Splitter - Batch Runner
// =============================================================================
//
// Splits every file discovered in the input directory. Each file is handled
// independently, and an error in one file does not affect the others.
//
// CONCURRENCY:
//   At most max_concurrency files are processed at once. Results are stored
//   by index, so they come back in discovery order whatever the completion
//   order was.
//
// =============================================================================

package processor

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ginjaninja78/edi-splitter/pkg/utils"
)

// BatchOptions controls a batch run.
type BatchOptions struct {
	// DryRun validates the files instead of splitting them.
	DryRun bool
}

// Discover lists the input files matching the configured pattern.
func (p *Processor) Discover() ([]string, error) {
	return p.files.DiscoverInputFiles(p.cfg.FilePattern)
}

// RunBatch processes files concurrently.
//
// RETURNS:
//   - One Result per input, in the order of files.
//   - ctx.Err() if the run was cancelled. Files not started by then carry
//     the same error in their Result.
func (p *Processor) RunBatch(ctx context.Context, files []string, opts BatchOptions) ([]Result, error) {
	results := make([]Result, len(files))

	limit := p.cfg.MaxConcurrency
	if limit < 1 {
		limit = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	p.logger.Info("batch started",
		zap.Int("files", len(files)),
		zap.Int("max_concurrency", limit),
		zap.Bool("dry_run", opts.DryRun),
	)

	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = Result{FilePath: file, Error: err}
				return nil
			}

			if opts.DryRun {
				results[i] = p.CheckFile(file)
				return nil
			}

			results[i] = p.archive(p.SplitFile(file))
			return nil
		})
	}

	// Workers never return errors; failures live in the results.
	_ = g.Wait()

	return results, ctx.Err()
}

// archive moves the input and copies the outputs after a successful split.
func (p *Processor) archive(result Result) Result {
	if !result.Success || !p.files.ArchiveOnSuccess {
		return result
	}

	log := p.logger.With(zap.String("file", result.FilePath))

	for _, out := range result.OutputFiles {
		if _, err := p.files.ArchiveOutputFile(out); err != nil {
			result.Warnings = append(result.Warnings, err.Error())
			log.Warn("failed to archive output", zap.String("output", out), zap.Error(err))
		}
	}

	archived, err := p.files.ArchiveInputFile(result.FilePath)
	if err != nil {
		result.Warnings = append(result.Warnings, err.Error())
		log.Warn("failed to archive input", zap.Error(err))
		return result
	}
	result.ArchivePath = archived

	return result
}

// =============================================================================
// SUMMARY
// =============================================================================

// Summarize turns batch results into a summary record.
func (p *Processor) Summarize(startTime, endTime time.Time, results []Result) utils.ProcessingSummary {
	summary := utils.ProcessingSummary{
		RunID:      p.runID,
		StartTime:  startTime,
		EndTime:    endTime,
		TotalFiles: len(results),
	}

	for _, result := range results {
		if result.Success {
			summary.SuccessfulFiles++
			summary.TotalDetails += result.Stats.DetailCount
			summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
				InputFile:   filepath.Base(result.FilePath),
				OutputFiles: baseNames(result.OutputFiles),
				ArchivePath: result.ArchivePath,
				Details:     result.Stats.DetailCount,
				ProcessTime: result.Stats.ProcessingTime,
			})
			continue
		}

		summary.FailedFiles++
		message := "unknown error"
		if result.Error != nil {
			message = result.Error.Error()
		}
		summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
			InputFile:    filepath.Base(result.FilePath),
			ErrorMessage: message,
		})
	}

	return summary
}

// WriteSummary writes the summary log into the output directory.
func (p *Processor) WriteSummary(summary utils.ProcessingSummary) (string, error) {
	path, err := utils.WriteSummaryLog(summary, p.files.OutputDir)
	if err != nil {
		return "", fmt.Errorf("failed to write summary log: %w", err)
	}
	return path, nil
}

func baseNames(paths []string) []string {
	names := make([]string, len(paths))
	for i, path := range paths {
		names[i] = filepath.Base(path)
	}
	return names
}
