package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hemoscan",
	Short: "Anemia risk assessment client",
	Long:  "HemoScan — terminal client for the HemoScan anemia risk scoring service.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to YAML config file (default $XDG_CONFIG_HOME/hemoscan/config.yaml)")
	flags.String("api-url", "", "Scoring service base URL (overrides HEMOSCAN_API_URL)")
	flags.String("db", "", "Path to SQLite database file (overrides HEMOSCAN_DB env var)")
	flags.String("log-file", "", "Path to the log file (overrides HEMOSCAN_LOG_FILE)")
	flags.Bool("debug", false, "Log at debug level")
	rootCmd.Flags().Bool("no-splash", false, "Open directly on the home screen")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(versionCmd)
}
