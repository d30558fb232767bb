package outwriter

import (
	"os"

	"github.com/huangsam/devian-archive/internal/contract"
	"golang.org/x/term"
)

// Path column bounds for table output.
const (
	minPathWidth     = 15
	maxPathWidth     = 90
	defaultTermWidth = 80
)

// getTermWidth returns the width override, the detected terminal width, or
// a conservative default for pipes and CI.
func getTermWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		return defaultTermWidth
	}
	return detectedWidth
}

// getMaxTablePathWidth calculates the maximum width for paths in a table
// whose other columns take fixedWidth characters.
func getMaxTablePathWidth(cfg *contract.Config, fixedWidth int) int {
	// Reserve space for table borders, separators, and padding
	available := getTermWidth(cfg) - fixedWidth - 10
	if available < minPathWidth {
		return minPathWidth
	}
	if available > maxPathWidth {
		return maxPathWidth
	}
	return available
}
