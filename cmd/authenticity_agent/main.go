// Package main provides the command-line entry point for the persona authenticity pipeline.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/persona-authenticity/internal/observability"
)

var rootCmd = &cobra.Command{
	Use:   "authenticity_agent",
	Short: "Persona-aware text generation with authenticity scoring",
	Long: `authenticity_agent generates short texts written as a regional persona, scores them for
authenticity, machine likelihood and readability, and regenerates with escalating corrections
until a candidate passes or the attempt budget runs out.`,
	SilenceUsage: true,
}

var (
	flagConfigPath   string
	flagPersonasFile string
	flagDatabaseURL  string
	flagMetricsAddr  string
	flagLogLevel     string
	flagTrace        bool
	flagVerbose      bool
	flagJSON         bool
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfigPath, "config", "", "Path to config file (YAML or JSON); values can be overridden by flags")
	pf.StringVar(&flagPersonasFile, "personas", "", "Path to persona definitions (defaults to personas_file from config)")
	pf.StringVar(&flagDatabaseURL, "db-url", "", "PostgreSQL connection URL for result persistence (optional, defaults to DATABASE_URL env var)")
	pf.StringVar(&flagMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.BoolVar(&flagTrace, "trace", false, "Export trace spans to stderr")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Print detailed progress for every attempt")
	pf.BoolVar(&flagJSON, "json", false, "Print results as JSON")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	err := rootCmd.Execute()
	observability.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
