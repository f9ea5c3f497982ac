package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Charlisim/sat-gt-fel-invoices-downloader/internal/model"
	"github.com/Charlisim/sat-gt-fel-invoices-downloader/pkg/config"
	"github.com/Charlisim/sat-gt-fel-invoices-downloader/pkg/felclient"
	"github.com/Charlisim/sat-gt-fel-invoices-downloader/pkg/logger"
)

var (
	version = "1.0.0"

	// Global flags
	verbose  bool
	username string
	password string

	cfg *config.Config
	log zerolog.Logger
)

// dateFormat is the YYYY-MM-DD layout CLI date flags use.
const dateFormat = "2006-01-02"

var rootCmd = &cobra.Command{
	Use:   "sat-fel-downloader",
	Short: "Download FEL electronic invoices from SAT Guatemala",
	Long: `sat-fel-downloader lists and downloads FEL electronic invoices (DTEs)
through SAT's Agencia Virtual portal, using regular taxpayer credentials.

Examples:
  # List invoices received in January 2026
  sat-fel-downloader list --from 2026-01-01 --to 2026-01-31

  # Download all of them as PDFs into ./invoices
  sat-fel-downloader fetch --from 2026-01-01 --to 2026-01-31 --out ./invoices

  # Parse a previously downloaded DTE XML
  sat-fel-downloader parse invoice.xml

  # Expose the downloader as an HTTP API
  sat-fel-downloader serve --address :8080

Credentials come from --username/--password, the SAT_USERNAME and
SAT_PASSWORD environment variables, or a .env file.`,
	Version: version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&username, "username", "u", "", "Portal username, usually the NIT (env: SAT_USERNAME)")
	rootCmd.PersistentFlags().StringVarP(&password, "password", "p", "", "Portal password (env: SAT_PASSWORD)")

	cobra.OnInitialize(initConfig)
}

func initConfig() {
	loaded, err := config.Load()
	if err != nil {
		loaded = &config.Config{}
	}
	cfg = loaded

	if username == "" {
		username = cfg.SAT.Username
	}
	if password == "" {
		password = cfg.SAT.Password
	}

	level := cfg.App.LogLevel
	if verbose {
		level = "debug"
	}
	log = logger.New(logger.Config{Env: cfg.App.Env, Level: level})
}

func printVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// newClient builds the portal client from flags and environment.
func newClient() *felclient.Client {
	opts := []felclient.Option{felclient.WithLogger(log)}
	if cfg.SAT.TimeoutSeconds > 0 {
		opts = append(opts, felclient.WithTimeout(time.Duration(cfg.SAT.TimeoutSeconds)*time.Second))
	}
	return felclient.New(felclient.Credentials{Username: username, Password: password}, opts...)
}

// parseDirection maps the --direction flag to an API direction code.
func parseDirection(s string) (model.Direction, error) {
	switch s {
	case "received", "R", "":
		return model.DirectionReceived, nil
	case "issued", "E":
		return model.DirectionIssued, nil
	}
	return "", fmt.Errorf("invalid direction %q (use received or issued)", s)
}

// parseStatus maps the --status flag to an API status code.
func parseStatus(s string) (model.DTEStatus, error) {
	switch s {
	case "all", "":
		return model.StatusAll, nil
	case "active", "V":
		return model.StatusActive, nil
	case "cancelled", "I":
		return model.StatusCancelled, nil
	}
	return "", fmt.Errorf("invalid status %q (use all, active or cancelled)", s)
}

// parseDateRange parses the --from/--to flags.
func parseDateRange(from, to string) (time.Time, time.Time, error) {
	fromDate, err := time.Parse(dateFormat, from)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --from date %q (use YYYY-MM-DD)", from)
	}
	toDate, err := time.Parse(dateFormat, to)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --to date %q (use YYYY-MM-DD)", to)
	}
	return fromDate, toDate, nil
}
