package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Charlisim/sat-gt-fel-invoices-downloader/pkg/felclient"
)

var parseCmd = &cobra.Command{
	Use:   "parse <file.xml> [file.xml...]",
	Short: "Parse downloaded DTE XML files into structured JSON",
	Long: `Parse one or more certified DTE XML files into the invoice model and
print them as JSON. Works offline; no portal credentials needed.

Examples:
  # Parse a single document
  sat-fel-downloader parse invoice.xml

  # Parse everything previously fetched
  sat-fel-downloader parse invoices/*.xml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	invoices := make([]*felclient.Invoice, 0, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		invoice, err := felclient.ParseInvoice(data)
		if err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		invoices = append(invoices, invoice)
		printVerbose("parsed %s\n", path)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if len(invoices) == 1 {
		return enc.Encode(invoices[0])
	}
	return enc.Encode(invoices)
}
