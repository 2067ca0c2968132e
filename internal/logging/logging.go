// =============================================================================
// EDI Splitter - Logging
// =============================================================================
//
// Builds the zap logger used by the CLI and the file processor. The engine
// packages (edi, rejection) never log.
//
// =============================================================================

package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options holds logging configuration.
type Options struct {
	// Level is "debug", "info", "warn" or "error". Invalid values fall back to info.
	Level string

	// Format is "console" or "json".
	Format string

	// File is an extra output path next to stderr. Empty disables it.
	File string

	// Verbose forces debug level.
	Verbose bool
}

// New creates a logger from opts.
func New(opts Options) (*zap.Logger, error) {
	var cfg zap.Config
	if opts.Format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		cfg.DisableStacktrace = true
	}

	level, err := zap.ParseAtomicLevel(opts.Level)
	if err != nil {
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	if opts.Verbose {
		level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	cfg.Level = level

	cfg.OutputPaths = []string{"stderr"}
	if opts.File != "" {
		cfg.OutputPaths = append(cfg.OutputPaths, opts.File)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return logger, nil
}
