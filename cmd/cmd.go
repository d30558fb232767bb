// Package cmd defines the command-line interface for devian-archive.
package cmd

import (
	"github.com/huangsam/devian-archive/internal/contract"
	"github.com/huangsam/devian-archive/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(patternsCmd)
	rootCmd.AddCommand(findRootCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("root", "", "Project root (default: detected from the current directory)")
	rootCmd.PersistentFlags().String("output", "", "Directory that receives the archive (default: project root)")
	rootCmd.PersistentFlags().Bool("exclude-generated", false, "Exclude Generated directories at any depth")
	rootCmd.PersistentFlags().Bool("exclude-data", false, "Exclude .ndjson data files at any depth")
	rootCmd.PersistentFlags().Bool("include-temp", false, "Keep temp directories, which are excluded by default")
	rootCmd.PersistentFlags().String("ignore-file", schema.DefaultIgnoreFile, "Ignore file, relative to the root unless absolute")
	rootCmd.PersistentFlags().String("exclude", "", "Comma-separated list of extra exclusion patterns")
	rootCmd.PersistentFlags().String("format", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("history-backend", "", "Run history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
