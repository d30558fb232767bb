package cmd

import (
	"fmt"

	"github.com/huangsam/devian-archive/core"
	"github.com/huangsam/devian-archive/internal/contract"
	"github.com/spf13/cobra"
)

// archiveCmd collects the project files and writes the archive.
var archiveCmd = &cobra.Command{
	Use:   "archive [root]",
	Short: "Create a zip archive of the project.",
	Long: `Collect every project file that survives the exclusion patterns and write
them to devian-<YYYYMMDD-HHMMSS>.zip in the output directory.

Patterns are merged in this order:
- Built-ins (.git, node_modules, __pycache__, *.pyc, .DS_Store, *.zip)
- The ignore file (default .gitignore; '!' lines are skipped)
- Toggles (--exclude-generated, --exclude-data, temp directories)
- --exclude values

Excluded directories are never entered. When nothing is left to archive,
no file is written and the command still succeeds.

Examples:
  # Archive the detected project into its root
  devian-archive archive

  # Archive another directory into a backups folder
  devian-archive archive ~/work/game --output ~/backups

  # Skip generated code and data dumps
  devian-archive archive --exclude-generated --exclude-data

  # Add patterns on the fly
  devian-archive archive --exclude "*.log,docs/drafts/"`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run:     runArchive,
}

// listCmd performs a dry run and prints the collected files.
var listCmd = &cobra.Command{
	Use:   "list [root]",
	Short: "Show the files an archive would contain.",
	Long: `Run the same collection as 'archive' without writing anything.

Examples:
  # Review the file list
  devian-archive list

  # Export the list for tooling
  devian-archive list --format json --output-file files.json
  devian-archive list --format parquet --output-file files.parquet`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteList(rootCtx, cfg, nil); err != nil {
			contract.LogFatal("Cannot list files", err)
		}
	},
}

// patternsCmd prints the effective pattern set.
var patternsCmd = &cobra.Command{
	Use:   "patterns [root]",
	Short: "Show the exclusion patterns in effect and where each came from.",
	Long: `Print every exclusion pattern in merge order with its source
(builtin, ignore-file, toggle, cli) and parse flags.

Examples:
  devian-archive patterns
  devian-archive patterns --exclude-generated --format csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecutePatterns(rootCtx, cfg, nil); err != nil {
			contract.LogFatal("Cannot show patterns", err)
		}
	},
}

// findRootCmd prints the detected project root.
var findRootCmd = &cobra.Command{
	Use:   "root [path]",
	Short: "Print the project root detected from a path.",
	Long: `Walk up from the path (default: current directory) and print the first
directory holding input/build.json, build.json, .git or skills. When none is
found the starting directory is printed.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		start := "."
		if len(args) == 1 {
			start = args[0]
		}
		root, err := core.FindRoot(start)
		if err != nil {
			contract.LogFatal("Cannot detect project root", err)
		}
		fmt.Println(root)
	},
}
