package cmd

import (
	"fmt"
	"os"

	"github.com/JerryLinyx/newsdigest/config"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var flagConfig string

var rootCmd = &cobra.Command{
	Use:   "newsdigest",
	Short: "Category news aggregator with summaries",
	Long: "newsdigest fetches the latest article per category from a news provider, summarizes it,\n" +
		"and serves the result as a dashboard and JSON API or sends it as an email digest.",
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file (default ./config/config.yaml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(digestCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "newsdigest %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

func loadConfig() (*config.Config, error) {
	return config.Load(flagConfig)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
