package main

import (
	"fmt"
	"os"

	"github.com/Charlisim/sat-gt-fel-invoices-downloader/cmd/sat-fel-downloader/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
