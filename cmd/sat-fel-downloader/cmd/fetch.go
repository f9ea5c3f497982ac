package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Charlisim/sat-gt-fel-invoices-downloader/pkg/felclient"
)

var (
	fetchFrom          string
	fetchTo            string
	fetchDirection     string
	fetchStatus        string
	fetchEstablishment int
	fetchFormat        string
	fetchOut           string
	fetchUUIDs         []string
	fetchValidate      bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download invoice documents for a date range",
	Long: `Search invoices for a date range and download each one as PDF or XML.

Filenames follow the server's suggestion when it sends one, otherwise the
invoice's authorization UUID plus the format extension.

Examples:
  # Download January's received invoices as PDFs
  sat-fel-downloader fetch --from 2026-01-01 --to 2026-01-31 --out ./invoices

  # Download the certified XML of two specific invoices
  sat-fel-downloader fetch --from 2026-01-01 --to 2026-01-31 --format xml \
    --uuid 8F1A...-01 --uuid 9C2B...-02

  # Structurally validate every downloaded PDF
  sat-fel-downloader fetch --from 2026-01-01 --to 2026-01-31 --validate`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVar(&fetchFrom, "from", "", "Start of the emission date range (YYYY-MM-DD)")
	fetchCmd.Flags().StringVar(&fetchTo, "to", "", "End of the emission date range (YYYY-MM-DD)")
	fetchCmd.Flags().StringVar(&fetchDirection, "direction", "received", "Invoice direction (received, issued)")
	fetchCmd.Flags().StringVar(&fetchStatus, "status", "all", "Certification status (all, active, cancelled)")
	fetchCmd.Flags().IntVar(&fetchEstablishment, "establishment", 0, "Establishment code (0 for all)")
	fetchCmd.Flags().StringVarP(&fetchFormat, "format", "f", "pdf", "Document format (pdf, xml)")
	fetchCmd.Flags().StringVarP(&fetchOut, "out", "o", ".", "Output directory")
	fetchCmd.Flags().StringArrayVar(&fetchUUIDs, "uuid", nil, "Only download these authorization UUIDs (repeatable)")
	fetchCmd.Flags().BoolVar(&fetchValidate, "validate", false, "Structurally validate downloaded PDFs")

	fetchCmd.MarkFlagRequired("from")
	fetchCmd.MarkFlagRequired("to")
}

func runFetch(cmd *cobra.Command, args []string) error {
	format := felclient.Format(fetchFormat)
	if format != felclient.FormatPDF && format != felclient.FormatXML {
		return fmt.Errorf("invalid format %q (use pdf or xml)", fetchFormat)
	}

	filter, err := buildFilter(fetchFrom, fetchTo, fetchDirection, fetchStatus, fetchEstablishment)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(fetchOut, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	client := newClient()
	defer client.Logout(cmd.Context())

	summaries, err := client.Invoices(cmd.Context(), filter)
	if err != nil {
		return err
	}
	summaries = filterByUUID(summaries, fetchUUIDs)
	if len(summaries) == 0 {
		fmt.Println("No invoices matched.")
		return nil
	}

	for _, sum := range summaries {
		doc, err := client.Fetch(cmd.Context(), sum, format, filter.Direction)
		if err != nil {
			return fmt.Errorf("download %s: %w", sum.NumeroUUID, err)
		}

		if fetchValidate && format == felclient.FormatPDF {
			if err := felclient.ValidatePDF(doc.Content); err != nil {
				return fmt.Errorf("validate %s: %w", sum.NumeroUUID, err)
			}
		}

		name := felclient.Filename(doc, sum, format)
		path := filepath.Join(fetchOut, name)
		if err := os.WriteFile(path, doc.Content, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}

		printVerbose("saved %s (%s)\n", path, doc.Provenance)
		fmt.Println(path)
	}

	fmt.Printf("\nDownloaded %d document(s) to %s\n", len(summaries), fetchOut)
	return nil
}

func filterByUUID(summaries []felclient.InvoiceSummary, uuids []string) []felclient.InvoiceSummary {
	if len(uuids) == 0 {
		return summaries
	}
	wanted := make(map[string]bool, len(uuids))
	for _, id := range uuids {
		wanted[id] = true
	}
	kept := summaries[:0]
	for _, sum := range summaries {
		if wanted[sum.NumeroUUID] {
			kept = append(kept, sum)
		}
	}
	return kept
}
