// =============================================================================
// EDI Splitter - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (edisplit)
//   ├── splitCmd   (edisplit split FILE)
//   ├── removeCmd  (edisplit remove FILE --orders A,B)
//   ├── ordersCmd  (edisplit orders FILE)
//   ├── processCmd (edisplit process)
//   ├── configCmd  (edisplit config init)
//   └── versionCmd (edisplit version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --env-file, --verbose)
//   2. Loading the configuration (file, EDISPLIT_* environment, defaults)
//   3. Building the logger
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/edi-splitter/internal/config"
	"github.com/ginjaninja78/edi-splitter/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// envFile is an optional dotenv file read before the configuration.
var envFile string

// verbose enables debug logging when set to true.
var verbose bool

// appConfig and logger are set by the root command before any subcommand runs.
var (
	appConfig *config.MainConfig
	logger    = zap.NewNop()
)

// skipConfigAnnotation marks commands that must work without a valid config.
const skipConfigAnnotation = "skip-config"

var (
	okMark   = color.New(color.FgGreen).Sprint("✓")
	failMark = color.New(color.FgRed).Sprint("✗")
	warnMark = color.New(color.FgYellow).Sprint("!")
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "edisplit",
	Short: "EDI Splitter - Split order files and remove orders from them",
	Long: `EDI Splitter works on fixed-prefix EDI order files made of an envelope
($$HDR, H1, H2), D1 detail records and a $$EOF footer carrying a record count.

Key Features:
  - Split a file into two halves, each a complete file with its own footer
  - Remove selected orders and produce a rejection report (CSV or XLSX)
  - List the orders in a file
  - Batch-split every file in an input directory

Example Usage:
  edisplit split orders.txt
  edisplit remove orders.txt --orders 7000799572,7000799580 --reject
  edisplit orders orders.txt --xlsx orders.xlsx
  edisplit process --config ./edisplit.yaml`,

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Annotations[skipConfigAnnotation] == "true" {
			return nil
		}
		return initConfig()
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		// Sync errors on stderr are expected on some platforms.
		_ = logger.Sync()
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the configuration file",
	)

	rootCmd.PersistentFlags().StringVar(
		&envFile,
		"env-file",
		".env",
		"Dotenv file with EDISPLIT_* overrides (ignored if missing)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// initConfig loads the configuration and builds the logger.
func initConfig() error {
	if err := config.LoadEnvFile(envFile); err != nil {
		return err
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		File:    cfg.LogFile,
		Verbose: verbose,
	})
	if err != nil {
		return err
	}

	appConfig = cfg
	logger = l
	logger.Debug("configuration loaded", zap.String("config", cfgFile))

	return nil
}

// =============================================================================
// OUTPUT HELPERS
// =============================================================================

func printOK(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s %s\n", okMark, fmt.Sprintf(format, args...))
}

func printFail(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s %s\n", failMark, fmt.Sprintf(format, args...))
}

func printWarn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s %s\n", warnMark, fmt.Sprintf(format, args...))
}
