package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const defaultHost = "http://localhost:8080"

type options struct {
	host  string
	token string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "awapctl",
		Short: "Operate an awap-platform API server",
		Long: `A command-line interface for the admin endpoints of awap-platform:
start tournaments and scrimmage rounds, and inspect or flip permission flags.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.host, "host", envOr("AWAP_HOST", defaultHost), "The API server base URL (env AWAP_HOST)")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("AWAP_TOKEN"), "Admin bearer token (env AWAP_TOKEN)")

	rootCmd.AddCommand(
		newHealthCmd(opts),
		newStartTournamentCmd(opts),
		newStartScrimmagesCmd(opts),
		newPermissionsCmd(opts),
	)

	return rootCmd
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "awapctl: %v\n", err)
		os.Exit(1)
	}
}
