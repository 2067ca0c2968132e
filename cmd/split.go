// =============================================================================
// EDI Splitter - Split Command
// =============================================================================
//
// COMMAND USAGE:
//   edisplit split FILE [--out DIR]
//
// OUTPUT:
//   <base>_p1<ext> holds the first half of the detail records, <base>_p2<ext>
//   the rest. Both get the envelope and a recalculated footer. Files are
//   written next to FILE unless --out is given.
//
// =============================================================================

package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/edi-splitter/internal/processor"
)

// splitOutDir overrides the output directory.
var splitOutDir string

// splitCmd represents the 'split' command.
var splitCmd = &cobra.Command{
	Use:   "split FILE",
	Short: "Split an EDI file into two halves",
	Long: `Split divides the D1 detail records of FILE in two. The first half goes to
<base>_p1 and the second half to <base>_p2. Each part is a complete file with
the original $$HDR, H1 and H2 lines and a footer whose count is recalculated.

An odd number of records puts the extra record in the second part.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file := args[0]
		p := processor.New(appConfig, logger, processor.WithOutputDir(outputDirFor(file, splitOutDir)))

		result := p.SplitFile(file)
		out := cmd.OutOrStdout()
		if !result.Success {
			printFail(out, "%s: %v", filepath.Base(file), result.Error)
			return result.Error
		}

		printOK(out, "%s -> %s (%d records)", filepath.Base(file), filepath.Base(result.OutputFiles[0]), result.Stats.Part1Count)
		printOK(out, "%s -> %s (%d records)", filepath.Base(file), filepath.Base(result.OutputFiles[1]), result.Stats.Part2Count)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(splitCmd)

	splitCmd.Flags().StringVarP(&splitOutDir, "out", "o", "", "Output directory (default: next to FILE)")
}

// outputDirFor returns flagValue, or the directory holding file when it is empty.
func outputDirFor(file, flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return filepath.Dir(file)
}
