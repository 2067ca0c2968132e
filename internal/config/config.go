// =============================================================================
// EDI Splitter - Configuration Module
// =============================================================================
//
// This module is responsible for loading and managing the application
// configuration.
//
// CONFIGURATION SOURCES (later wins):
//   1. Built-in defaults
//   2. The YAML config file (config.yaml by default, optional)
//   3. Environment variables prefixed with EDISPLIT_
//      e.g. EDISPLIT_OUTPUT_DIR=/data/out overrides output_dir
//      A .env file may supply them; variables already set win over it.
//
// The file is loaded with Viper. A commented starting file can be generated
// with `edisplit config init`, which writes the defaults with yaml.v3.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/edi-splitter/internal/edi"
	"github.com/ginjaninja78/edi-splitter/pkg/utils"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "EDISPLIT"

// Rejection report formats.
const (
	RejectionFormatCSV  = "csv"
	RejectionFormatXLSX = "xlsx"
	RejectionFormatBoth = "both"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned by `edisplit process` for files to split.
	// Default: "./input"
	InputDir string `mapstructure:"input_dir" yaml:"input_dir"`

	// OutputDir receives every generated file.
	// Default: "./output"
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`

	// InputArchiveDir receives input files after successful batch processing.
	// Default: "./input_archive"
	InputArchiveDir string `mapstructure:"input_archive_dir" yaml:"input_archive_dir"`

	// OutputArchiveDir receives copies of generated files.
	// Default: "./output_archive"
	OutputArchiveDir string `mapstructure:"output_archive_dir" yaml:"output_archive_dir"`

	// FilePattern is the glob used to discover input files.
	// Default: "*.txt"
	FilePattern string `mapstructure:"file_pattern" yaml:"file_pattern"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogFile is an additional log destination. Empty logs to stderr only.
	LogFile string `mapstructure:"log_file" yaml:"log_file"`

	// LogLevel controls verbosity: "debug", "info", "warn", "error".
	// Default: "info"
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	// LogFormat is "console" or "json".
	// Default: "console"
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the maximum number of files split concurrently.
	// Default: 4
	MaxConcurrency int `mapstructure:"max_concurrency" yaml:"max_concurrency"`

	// ArchiveOnSuccess moves input files to InputArchiveDir after a
	// successful batch split and copies outputs to OutputArchiveDir.
	// Default: false
	ArchiveOnSuccess bool `mapstructure:"archive_on_success" yaml:"archive_on_success"`

	// ArchiveTimestampSubdirs files archives under YYYY/MM/DD subdirectories.
	// Default: false
	ArchiveTimestampSubdirs bool `mapstructure:"archive_timestamp_subdirs" yaml:"archive_timestamp_subdirs"`

	// =========================================================================
	// FOOTER SETTINGS
	// =========================================================================
	// The downstream importer's expected count semantics have to be confirmed
	// per trading partner, so both rules are selectable.

	// SplitFooterPolicy is the footer count rule for split parts.
	// Default: "emitted"
	SplitFooterPolicy string `mapstructure:"split_footer_policy" yaml:"split_footer_policy"`

	// RemoveFooterPolicy is the footer count rule for cleaned files.
	// Default: "retained-minus-import"
	RemoveFooterPolicy string `mapstructure:"remove_footer_policy" yaml:"remove_footer_policy"`

	// =========================================================================
	// REJECTION SETTINGS
	// =========================================================================

	// RejectionFormat is "csv", "xlsx" or "both".
	// Default: "csv"
	RejectionFormat string `mapstructure:"rejection_format" yaml:"rejection_format"`

	// DefaultStatusCode is used when `remove` is run without --status.
	// Default: "NF"
	DefaultStatusCode string `mapstructure:"default_status_code" yaml:"default_status_code"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the configuration used when nothing else is set.
func Default() *MainConfig {
	return &MainConfig{
		InputDir:           "./input",
		OutputDir:          "./output",
		InputArchiveDir:    "./input_archive",
		OutputArchiveDir:   "./output_archive",
		FilePattern:        "*.txt",
		LogLevel:           "info",
		LogFormat:          "console",
		MaxConcurrency:     4,
		SplitFooterPolicy:  edi.PolicyNameEmitted,
		RemoveFooterPolicy: edi.PolicyNameRetainedMinusImport,
		RejectionFormat:    RejectionFormatCSV,
		DefaultStatusCode:  "NF",
	}
}

// setDefaults registers every default with Viper so env overrides apply to
// keys that are absent from the file.
func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("input_dir", d.InputDir)
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("input_archive_dir", d.InputArchiveDir)
	v.SetDefault("output_archive_dir", d.OutputArchiveDir)
	v.SetDefault("file_pattern", d.FilePattern)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("max_concurrency", d.MaxConcurrency)
	v.SetDefault("archive_on_success", d.ArchiveOnSuccess)
	v.SetDefault("archive_timestamp_subdirs", d.ArchiveTimestampSubdirs)
	v.SetDefault("split_footer_policy", d.SplitFooterPolicy)
	v.SetDefault("remove_footer_policy", d.RemoveFooterPolicy)
	v.SetDefault("rejection_format", d.RejectionFormat)
	v.SetDefault("default_status_code", d.DefaultStatusCode)
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Load reads the configuration.
//
// PARAMETERS:
//   - configPath: The YAML file to read. A missing file is not an error; the
//     defaults and environment are used instead.
//
// RETURNS:
//   - The validated configuration.
//   - An error if the file exists but cannot be parsed, or validation fails.
func Load(configPath string) (*MainConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
	}

	var cfg MainConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks setting values without touching the filesystem.
func (c *MainConfig) Validate() error {
	if _, err := edi.ParsePolicy(c.SplitFooterPolicy); err != nil {
		return fmt.Errorf("split_footer_policy: %w", err)
	}
	if _, err := edi.ParsePolicy(c.RemoveFooterPolicy); err != nil {
		return fmt.Errorf("remove_footer_policy: %w", err)
	}

	switch c.RejectionFormat {
	case RejectionFormatCSV, RejectionFormatXLSX, RejectionFormatBoth:
	default:
		return fmt.Errorf("rejection_format must be csv, xlsx or both, got %q", c.RejectionFormat)
	}

	if c.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be at least 1, got %d", c.MaxConcurrency)
	}

	if _, err := filepath.Match(c.FilePattern, ""); err != nil {
		return fmt.Errorf("file_pattern %q: %w", c.FilePattern, err)
	}

	return nil
}

// SplitPolicy returns the parsed split footer policy.
func (c *MainConfig) SplitPolicy() edi.FooterPolicy {
	p, err := edi.ParsePolicy(c.SplitFooterPolicy)
	if err != nil {
		return edi.EmittedCountPolicy
	}
	return p
}

// RemovePolicy returns the parsed remove footer policy.
func (c *MainConfig) RemovePolicy() edi.FooterPolicy {
	p, err := edi.ParsePolicy(c.RemoveFooterPolicy)
	if err != nil {
		return edi.RetainedMinusImportPolicy
	}
	return p
}

// LoadEnvFile copies KEY=VALUE pairs from path into the process environment.
// Variables that are already set are left alone. A missing file is ignored.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// WriteDefault writes the default configuration as YAML to path.
//
// It refuses to overwrite an existing file.
func WriteDefault(path string) error {
	if utils.FileExists(path) {
		return fmt.Errorf("config file already exists: %s", path)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	header := "# edisplit configuration\n# Every key can be overridden with an EDISPLIT_<KEY> environment variable.\n"
	if err := os.WriteFile(path, append([]byte(header), data...), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
