package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/huangsam/devian-archive/core"
	"github.com/huangsam/devian-archive/internal/contract"
	"github.com/huangsam/devian-archive/internal/history"
	"github.com/huangsam/devian-archive/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// rootCmd is the command-line entrypoint for all other commands.
// Without a subcommand it archives the project.
var rootCmd = &cobra.Command{
	Use:   "devian-archive [root]",
	Short: "Archive a project directory, skipping ignored and generated files.",
	Long: `devian-archive finds your project root, filters its tree through built-in,
.gitignore and command-line exclusion patterns, and writes the surviving files
to devian-<YYYYMMDD-HHMMSS>.zip.

Running without a subcommand is the same as 'devian-archive archive'.`,
	Version:            version,
	Args:               cobra.MaximumNArgs(1),
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	PreRunE:            sharedSetupWrapper,
	Run:                runArchive,
}

// setConfigSearch points viper at an explicit config file or the default locations.
func setConfigSearch() {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		return
	}
	viper.SetConfigName(".devian") // Name of config file (without extension)
	viper.SetConfigType("yaml")    // We'll use YAML format
	viper.AddConfigPath(".")       // Look in the current directory
	viper.AddConfigPath("$HOME")   // Look in the home directory
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	setConfigSearch()

	// Set environment variable prefix
	viper.SetEnvPrefix("DEVIAN")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // Read in environment variables that match

	// Set defaults in Viper
	viper.SetDefault("ignore-file", schema.DefaultIgnoreFile)
	viper.SetDefault("format", schema.TextOut)
	viper.SetDefault("history-backend", "")
	viper.SetDefault("history-db-connect", "")
	viper.SetDefault("color", "yes")
}

// sharedSetup unmarshals config and runs validation.
func sharedSetup(_ context.Context, _ *cobra.Command, args []string) error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := readConfigFile(); err != nil {
		return err
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Handle positional arguments (which Viper doesn't do).
	if len(args) == 1 {
		input.Root = args[0]
	}

	// 4. Run all validation and complex parsing.
	if err := contract.ProcessAndValidate(cfg, core.FindRoot, input); err != nil {
		return err
	}
	contract.SetColors(cfg.UseColors)

	// 5. History is optional; a broken store never blocks an archive.
	if err := history.InitStores(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		contract.LogWarn("History disabled", err)
	}
	return nil
}

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// readConfigFile loads the config file if present.
func readConfigFile() error {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}
	return nil
}

// loadConfigFile handles config file loading logic common to the light setups.
func loadConfigFile() error {
	setConfigSearch()
	return readConfigFile()
}

// runArchive is shared by the root command and 'archive'.
func runArchive(_ *cobra.Command, _ []string) {
	if err := core.ExecuteArchive(rootCtx, cfg, history.Manager); err != nil {
		contract.LogFatal("Cannot create archive", err)
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
