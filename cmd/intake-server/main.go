package main

import (
	"os"

	"github.com/spf13/cobra"
)

// version is reported by /health and in telemetry resources.
var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:          "intake-server",
		Short:        "Patient intake and appointment scheduling API",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(clientCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
