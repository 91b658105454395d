package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/ieltsprep/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "ieltsprep",
	Short: "IELTS Reading and Listening practice",
	Long:  "ieltsprep: a terminal app for timed IELTS Academic Reading and Listening practice tests with autosave and band scoring.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, nil)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides IELTSPREP_DB_PATH)")
	rootCmd.PersistentFlags().String("store", "", "Progress backend: sqlite, file, redis or memory (overrides IELTSPREP_STORE)")
	rootCmd.PersistentFlags().String("config", "", "Path to a config file (default <data dir>/config.yaml)")

	rootCmd.AddCommand(practiceCmd)
	rootCmd.AddCommand(testsCmd)
	rootCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(shareCmd)
	rootCmd.AddCommand(retryCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveConfig loads settings with the persistent flags applied on top.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	var ov config.Overrides
	ov.ConfigFile, _ = cmd.Flags().GetString("config")
	ov.Store, _ = cmd.Flags().GetString("store")
	ov.DBPath, _ = cmd.Flags().GetString("db")
	return config.Load(ov)
}
