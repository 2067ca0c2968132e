// =============================================================================
// EDI Splitter - Remove Command
// =============================================================================
//
// COMMAND USAGE:
//   edisplit remove FILE --orders A,B [--status NF] [--reject] [--out DIR]
//
// OUTPUT:
//   <base>_cleaned<ext> without the D1 lines of the selected orders, and with
//   --reject a rejection report named PPO.M{MM}{DD}{YY}{hh}{mm}.PPR (CSV),
//   .xlsx, or both, depending on rejection_format.
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/edi-splitter/internal/processor"
	"github.com/ginjaninja78/edi-splitter/internal/rejection"
)

var (
	removeOrderIDs []string
	removeStatus   string
	removeReject   bool
	removeOutDir   string
)

// removeCmd represents the 'remove' command.
var removeCmd = &cobra.Command{
	Use:   "remove FILE",
	Short: "Remove orders from an EDI file",
	Long: fmt.Sprintf(`Remove drops every D1 record belonging to the selected orders and writes
the result to <base>_cleaned. All other lines are kept, and the footer count
is recalculated.

With --reject a rejection report lists one row per removed record:
  orderId,recordNumber,productId,statusCode,reason

Predefined status codes: %s`, strings.Join(rejection.StatusCodes(), ", ")),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file := args[0]

		ids := normalizeOrderIDs(removeOrderIDs)
		if len(ids) == 0 {
			return errors.New("no orders selected: pass at least one id with --orders")
		}

		p := processor.New(appConfig, logger, processor.WithOutputDir(outputDirFor(file, removeOutDir)))
		result := p.RemoveFromFile(file, processor.RemoveRequest{
			OrderIDs:   ids,
			StatusCode: normalizeStatus(removeStatus),
			Reject:     removeReject,
		})

		out := cmd.OutOrStdout()
		for _, warning := range result.Warnings {
			printWarn(out, "%s", warning)
		}
		if !result.Success {
			printFail(out, "%s: %v", filepath.Base(file), result.Error)
			return result.Error
		}

		printOK(out, "Removed %d record(s) from %s", result.Stats.RemovedCount, filepath.Base(file))
		for _, written := range result.OutputFiles {
			printOK(out, "Wrote %s", written)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(removeCmd)

	removeCmd.Flags().StringSliceVar(&removeOrderIDs, "orders", nil, "Comma-separated order ids to remove (required)")
	removeCmd.Flags().StringVar(&removeStatus, "status", "", "Status code for rejection rows (default: default_status_code)")
	removeCmd.Flags().BoolVar(&removeReject, "reject", false, "Write a rejection report for the removed records")
	removeCmd.Flags().StringVarP(&removeOutDir, "out", "o", "", "Output directory (default: next to FILE)")

	removeCmd.MarkFlagRequired("orders")
}

// normalizeOrderIDs trims ids and drops empty and repeated entries.
func normalizeOrderIDs(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	var ids []string
	for _, id := range raw {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

// normalizeStatus trims raw and upper-cases it when that matches a predefined
// code. Custom codes are kept as typed.
func normalizeStatus(raw string) string {
	status := strings.TrimSpace(raw)
	if upper := strings.ToUpper(status); rejection.IsKnown(upper) {
		return upper
	}
	return status
}
