package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Charlisim/sat-gt-fel-invoices-downloader/internal/model"
)

var (
	listFrom          string
	listTo            string
	listDirection     string
	listStatus        string
	listEstablishment int
	listJSON          bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List invoices for a date range",
	Long: `List invoice summaries for a date range without downloading documents.

Examples:
  # Invoices received in January 2026
  sat-fel-downloader list --from 2026-01-01 --to 2026-01-31

  # Only cancelled invoices the taxpayer issued
  sat-fel-downloader list --from 2026-01-01 --to 2026-01-31 --direction issued --status cancelled

  # Machine-readable output
  sat-fel-downloader list --from 2026-01-01 --to 2026-01-31 --json`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&listFrom, "from", "", "Start of the emission date range (YYYY-MM-DD)")
	listCmd.Flags().StringVar(&listTo, "to", "", "End of the emission date range (YYYY-MM-DD)")
	listCmd.Flags().StringVar(&listDirection, "direction", "received", "Invoice direction (received, issued)")
	listCmd.Flags().StringVar(&listStatus, "status", "all", "Certification status (all, active, cancelled)")
	listCmd.Flags().IntVar(&listEstablishment, "establishment", 0, "Establishment code (0 for all)")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print raw JSON instead of a table")

	listCmd.MarkFlagRequired("from")
	listCmd.MarkFlagRequired("to")
}

func runList(cmd *cobra.Command, args []string) error {
	filter, err := buildFilter(listFrom, listTo, listDirection, listStatus, listEstablishment)
	if err != nil {
		return err
	}

	client := newClient()
	defer client.Logout(cmd.Context())

	summaries, err := client.Invoices(cmd.Context(), filter)
	if err != nil {
		return err
	}

	if listJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "UUID\tISSUER NIT\tRECEIVER\tSTATUS\tTOTAL")
	for _, sum := range summaries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			sum.NumeroUUID, sum.NitEmisor, sum.IDReceptor, sum.Estado, sum.MontoTotal.StringFixed(2))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%d invoice(s)\n", len(summaries))
	return nil
}

func buildFilter(from, to, direction, status string, establishment int) (model.Filter, error) {
	fromDate, toDate, err := parseDateRange(from, to)
	if err != nil {
		return model.Filter{}, err
	}
	dir, err := parseDirection(direction)
	if err != nil {
		return model.Filter{}, err
	}
	st, err := parseStatus(status)
	if err != nil {
		return model.Filter{}, err
	}

	return model.Filter{
		Establishment: establishment,
		Status:        st,
		From:          fromDate,
		To:            toDate,
		Direction:     dir,
	}, nil
}
