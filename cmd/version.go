package cmd

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
)

// versionCmd prints build details for bug reports.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the devian-archive build details.",
	Long: `Print the release, commit and build date stamped in at link time, along
with the Go runtime and platform the binary was built for.

Include this output when reporting a problem with an archive.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		writeVersion(cmd.OutOrStdout())
	},
}

// writeVersion prints one labeled line per build detail.
func writeVersion(w io.Writer) {
	_, _ = fmt.Fprintf(w, "devian-archive %s\n", version)
	for _, kv := range [][2]string{
		{"commit", commit},
		{"built", date},
		{"go", runtime.Version()},
		{"platform", runtime.GOOS + "/" + runtime.GOARCH},
	} {
		_, _ = fmt.Fprintf(w, "  %-9s %s\n", kv[0]+":", kv[1])
	}
}
