// =============================================================================
// EDI Splitter - Processor Module
// =============================================================================
//
// This module orchestrates the work done on a single EDI file, from reading
// the input to writing the derived outputs. The edi package does the actual
// line manipulation; the processor owns the filesystem and the logging.
//
// SPLIT PIPELINE:
//   1. Read the input file
//   2. Split the detail records into two halves
//   3. Write <base>_p1<ext> and <base>_p2<ext>
//
// REMOVE PIPELINE:
//   1. Read the input file
//   2. Drop the detail lines of the selected orders
//   3. Write <base>_cleaned<ext>
//   4. Optionally write the rejection report (CSV, XLSX or both)
//
// CONCURRENCY:
//   A Processor holds no per-file state, so one instance can serve many
//   goroutines. See batch.go for the bounded batch runner.
//
// =============================================================================

package processor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ginjaninja78/edi-splitter/internal/config"
	"github.com/ginjaninja78/edi-splitter/internal/edi"
	"github.com/ginjaninja78/edi-splitter/internal/rejection"
	"github.com/ginjaninja78/edi-splitter/internal/reportwriter"
	"github.com/ginjaninja78/edi-splitter/internal/validation"
	"github.com/ginjaninja78/edi-splitter/pkg/utils"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the path to the input file that was processed.
	FilePath string

	// OutputFiles lists every file written for the input, in write order.
	// This is empty if processing failed.
	OutputFiles []string

	// ArchivePath is where the input was moved to, when archiving is on.
	ArchivePath string

	// Success indicates whether the processing was successful.
	Success bool

	// Error contains the error if processing failed.
	Error error

	// Warnings holds non-fatal problems, such as an empty order selection.
	Warnings []string

	// Validation is set for dry runs only.
	Validation *validation.Result

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// DetailCount is the number of D1 lines in the input.
	DetailCount int

	// Part1Count and Part2Count are the footer counts of the split parts.
	Part1Count int
	Part2Count int

	// RemovedCount is the number of detail lines dropped by a removal.
	RemovedCount int

	// RejectionRows is the number of rows written to the rejection report.
	RejectionRows int

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// RemoveRequest describes which orders to drop and how to report them.
type RemoveRequest struct {
	// OrderIDs are the orders to remove.
	OrderIDs []string

	// StatusCode is written on every rejection row. Empty uses the
	// configured default.
	StatusCode string

	// Reject enables the rejection report.
	Reject bool
}

// =============================================================================
// PROCESSOR STRUCTURE
// =============================================================================

// Processor runs the split and remove pipelines against files on disk.
type Processor struct {
	cfg    *config.MainConfig
	files  *utils.FileManager
	logger *zap.Logger
	runID  string
	now    func() time.Time
}

// Option configures a Processor.
type Option func(*Processor)

// WithOutputDir writes outputs to dir instead of the configured output_dir.
func WithOutputDir(dir string) Option {
	return func(p *Processor) {
		p.files.OutputDir = dir
	}
}

// WithClock replaces time.Now, which names rejection files and dates archive
// subdirectories.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) {
		p.now = now
	}
}

// New creates a Processor.
//
// PARAMETERS:
//   - cfg: The loaded configuration. Directories and policies come from here.
//   - logger: The base logger. Every entry carries the run ID.
//
// RETURNS:
//   - A new Processor instance with a fresh run ID.
func New(cfg *config.MainConfig, logger *zap.Logger, opts ...Option) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}

	fm := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir, cfg.OutputArchiveDir)
	fm.ArchiveOnSuccess = cfg.ArchiveOnSuccess
	fm.UseTimestampSubdirs = cfg.ArchiveTimestampSubdirs

	runID := uuid.NewString()
	p := &Processor{
		cfg:    cfg,
		files:  fm,
		logger: logger.With(zap.String("run_id", runID)),
		runID:  runID,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}
	p.files.Clock = p.now

	return p
}

// RunID returns the identifier attached to this processor's log entries.
func (p *Processor) RunID() string {
	return p.runID
}

// OutputDir returns the directory outputs are written to.
func (p *Processor) OutputDir() string {
	return p.files.OutputDir
}

// EnsureDirectories creates the input, output and archive directories.
func (p *Processor) EnsureDirectories() error {
	return p.files.EnsureDirectories()
}

// =============================================================================
// SPLIT
// =============================================================================

// SplitFile splits the file at path into two parts.
func (p *Processor) SplitFile(path string) Result {
	startTime := time.Now()
	result := Result{FilePath: path}
	log := p.logger.With(zap.String("file", path))

	content, err := readInput(path)
	if err != nil {
		return p.fail(log, result, err)
	}

	split, err := edi.Split(content, edi.WithSplitPolicy(p.cfg.SplitPolicy()))
	if err != nil {
		return p.fail(log, result, fmt.Errorf("failed to split %s: %w", filepath.Base(path), err))
	}

	parts := []struct {
		suffix string
		data   string
	}{
		{utils.SuffixPart1, split.Part1},
		{utils.SuffixPart2, split.Part2},
	}
	for _, part := range parts {
		out, err := p.files.WriteOutput(utils.DerivedName(path, part.suffix), []byte(part.data))
		if err != nil {
			p.discard(log, result.OutputFiles)
			return p.fail(log, result, err)
		}
		result.OutputFiles = append(result.OutputFiles, out)
	}

	result.Success = true
	result.Stats = ProcessingStats{
		DetailCount:    split.DetailCount,
		Part1Count:     split.Part1Count,
		Part2Count:     split.Part2Count,
		ProcessingTime: time.Since(startTime),
	}

	log.Info("split complete",
		zap.Int("details", split.DetailCount),
		zap.Int("part1_count", split.Part1Count),
		zap.Int("part2_count", split.Part2Count),
		zap.Duration("duration", result.Stats.ProcessingTime),
	)

	return result
}

// =============================================================================
// REMOVE
// =============================================================================

// RemoveFromFile drops the requested orders from the file at path.
//
// An empty selection is reported as a warning and nothing is written.
func (p *Processor) RemoveFromFile(path string, req RemoveRequest) Result {
	startTime := time.Now()
	result := Result{FilePath: path}
	log := p.logger.With(zap.String("file", path))

	content, err := readInput(path)
	if err != nil {
		return p.fail(log, result, err)
	}

	removal, err := edi.RemoveOrders(content, req.OrderIDs, edi.WithRemovePolicy(p.cfg.RemovePolicy()))
	if errors.Is(err, edi.ErrNoOrdersSelected) {
		result.Success = true
		result.Warnings = append(result.Warnings, err.Error())
		log.Warn("nothing removed", zap.Error(err))
		return result
	}
	if err != nil {
		return p.fail(log, result, fmt.Errorf("failed to remove orders from %s: %w", filepath.Base(path), err))
	}

	for _, missing := range missingOrders(req.OrderIDs, removal.RemovedOrders) {
		result.Warnings = append(result.Warnings, fmt.Sprintf("order %s not found in file", missing))
	}

	var rows []rejection.Row
	var rejectionNames []string
	if req.Reject {
		status := req.StatusCode
		if status == "" {
			status = p.cfg.DefaultStatusCode
		}
		if !rejection.IsKnown(status) {
			result.Warnings = append(result.Warnings, fmt.Sprintf("status code %q is not a predefined code", status))
		}

		rows = rejection.Generate(removal.RemovedOrders, status)
		if len(rows) > 0 {
			rejectionNames = p.rejectionNames()
		}

		// Report names must be free before anything is written.
		for _, name := range rejectionNames {
			if target := filepath.Join(p.files.OutputDir, name); utils.FileExists(target) {
				return p.fail(log, result, fmt.Errorf("%w: %s", utils.ErrOutputExists, target))
			}
		}
	}

	out, err := p.files.WriteOutput(utils.DerivedName(path, utils.SuffixCleaned), []byte(removal.Content))
	if err != nil {
		return p.fail(log, result, err)
	}
	result.OutputFiles = append(result.OutputFiles, out)

	if len(rejectionNames) > 0 {
		written, err := p.writeRejection(rows, rejectionNames)
		result.OutputFiles = append(result.OutputFiles, written...)
		if err != nil {
			p.discard(log, result.OutputFiles)
			return p.fail(log, result, err)
		}
		result.Stats.RejectionRows = len(rows)
	}

	result.Success = true
	result.Stats.DetailCount = removal.RemovedCount + removal.RetainedDetails
	result.Stats.RemovedCount = removal.RemovedCount
	result.Stats.ProcessingTime = time.Since(startTime)

	for _, warning := range result.Warnings {
		log.Warn(warning)
	}
	log.Info("removal complete",
		zap.Strings("orders", req.OrderIDs),
		zap.Int("removed", removal.RemovedCount),
		zap.Int("retained", removal.RetainedDetails),
		zap.Int("rejection_rows", result.Stats.RejectionRows),
		zap.Duration("duration", result.Stats.ProcessingTime),
	)

	return result
}

// rejectionNames returns the report file names for the configured format(s).
func (p *Processor) rejectionNames() []string {
	name := utils.RejectionFileName(p.now())
	xlsxName := strings.TrimSuffix(name, filepath.Ext(name)) + ".xlsx"

	switch p.cfg.RejectionFormat {
	case config.RejectionFormatXLSX:
		return []string{xlsxName}
	case config.RejectionFormatBoth:
		return []string{name, xlsxName}
	default:
		return []string{name}
	}
}

// writeRejection writes rows to each of names, picking the writer by extension.
// Existing files are never replaced.
//
// RETURNS:
//   - The paths written, including those written before a failure.
func (p *Processor) writeRejection(rows []rejection.Row, names []string) ([]string, error) {
	var written []string

	for _, name := range names {
		if filepath.Ext(name) == ".xlsx" {
			if err := os.MkdirAll(p.files.OutputDir, 0755); err != nil {
				return written, fmt.Errorf("failed to create output directory: %w", err)
			}
			out := filepath.Join(p.files.OutputDir, name)
			if utils.FileExists(out) {
				return written, fmt.Errorf("%w: %s", utils.ErrOutputExists, out)
			}
			if err := reportwriter.WriteRejectionXLSX(out, rows); err != nil {
				return written, err
			}
			written = append(written, out)
			continue
		}

		data, err := reportwriter.RejectionCSV(rows)
		if err != nil {
			return written, err
		}
		out, err := p.files.CreateOutput(name, data)
		if err != nil {
			return written, err
		}
		written = append(written, out)
	}

	return written, nil
}

// =============================================================================
// VALIDATE
// =============================================================================

// CheckFile validates the file at path without writing anything.
func (p *Processor) CheckFile(path string) Result {
	startTime := time.Now()
	result := Result{FilePath: path}
	log := p.logger.With(zap.String("file", path))

	content, err := readInput(path)
	if err != nil {
		return p.fail(log, result, err)
	}

	options := validation.DefaultOptions()
	options.Policy = p.cfg.SplitPolicy()

	report := validation.ValidateWithOptions(content, options)
	result.Validation = report
	result.Success = report.IsValid
	result.Stats.DetailCount = report.DetailCount
	result.Stats.ProcessingTime = time.Since(startTime)

	if !report.IsValid {
		result.Error = fmt.Errorf("validation failed with %d error(s)", report.ErrorCount)
	}

	log.Debug("validated",
		zap.Bool("valid", report.IsValid),
		zap.Int("errors", report.ErrorCount),
		zap.Int("warnings", report.WarningCount),
	)

	return result
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// fail records err on result and logs it.
func (p *Processor) fail(log *zap.Logger, result Result, err error) Result {
	result.Success = false
	result.Error = err
	result.OutputFiles = nil
	log.Error("processing failed", zap.Error(err))
	return result
}

// discard removes outputs written before a later step failed.
func (p *Processor) discard(log *zap.Logger, paths []string) {
	if err := utils.RemoveOutputs(paths); err != nil {
		log.Warn("partial outputs left behind", zap.Strings("outputs", paths), zap.Error(err))
	}
}

// readInput loads the whole file as text.
func readInput(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read input file: %w", err)
	}
	return string(data), nil
}

// missingOrders returns the requested IDs that matched no order.
func missingOrders(requested []string, removed []edi.Order) []string {
	found := make(map[string]bool, len(removed))
	for _, order := range removed {
		found[order.ID] = true
	}

	var missing []string
	seen := make(map[string]bool, len(requested))
	for _, id := range requested {
		if found[id] || seen[id] {
			continue
		}
		seen[id] = true
		missing = append(missing, id)
	}
	return missing
}
