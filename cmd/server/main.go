// Command marketops serves the marketing dashboard API.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "marketops",
	Short: "Marketing operations dashboard backend",
	Long: `marketops serves the data behind the marketing dashboard pages, proxies the
record store, triggers automation webhooks and answers assistant questions.

Running it without a subcommand starts the HTTP server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "optional YAML config file (env vars override it)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(matchCmd)
}
