// =============================================================================
// EDI Splitter - Orders Command
// =============================================================================
//
// COMMAND USAGE:
//   edisplit orders FILE [--search TERM] [--xlsx PATH]
//
// OUTPUT:
//   One row per order, sorted by order id:
//     ORDER ID   RECORDS  FIRST  LAST
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/edi-splitter/internal/edi"
	"github.com/ginjaninja78/edi-splitter/internal/reportwriter"
)

var (
	ordersSearch string
	ordersXLSX   string
)

// ordersCmd represents the 'orders' command.
var ordersCmd = &cobra.Command{
	Use:   "orders FILE",
	Short: "List the orders in an EDI file",
	Long: `Orders lists every order found in the D1 records of FILE with its record
count and its first and last record numbers. --search keeps the orders whose id
contains TERM; --xlsx also saves the listing as a workbook.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read input file: %w", err)
		}

		orders := filterOrders(edi.ExtractOrdersFromContent(string(data)), ordersSearch)
		logger.Debug("orders listed", zap.String("file", args[0]), zap.Int("orders", len(orders)))

		out := cmd.OutOrStdout()
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ORDER ID\tRECORDS\tFIRST\tLAST")
		for _, order := range orders {
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", order.ID, order.RecordCount(), order.FirstRecord(), order.LastRecord())
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(out, "\n%d order(s)\n", len(orders))

		if ordersXLSX != "" {
			if err := reportwriter.WriteOrdersXLSX(ordersXLSX, orders); err != nil {
				return err
			}
			printOK(out, "Wrote %s", ordersXLSX)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(ordersCmd)

	ordersCmd.Flags().StringVar(&ordersSearch, "search", "", "Only list orders whose id contains TERM")
	ordersCmd.Flags().StringVar(&ordersXLSX, "xlsx", "", "Also write the listing to an XLSX workbook")
}

// filterOrders keeps orders whose id contains term. An empty term keeps all.
func filterOrders(orders []edi.Order, term string) []edi.Order {
	term = strings.TrimSpace(term)
	if term == "" {
		return orders
	}

	var kept []edi.Order
	for _, order := range orders {
		if strings.Contains(order.ID, term) {
			kept = append(kept, order)
		}
	}
	return kept
}
