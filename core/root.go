package core

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/huangsam/devian-archive/internal/contract"
	"github.com/huangsam/devian-archive/schema"
)

// rootMarkers are checked in order at each directory level.
var rootMarkers = []string{
	filepath.Join(schema.BuildInputDirName, schema.BuildConfigName),
	schema.BuildConfigName,
	schema.VCSDirName,
	schema.SkillsDirName,
}

// FindRoot walks upward from startPath looking for a directory that holds a
// project marker. The first level with any marker wins. When no level has
// one, the absolute startPath is returned. A startPath that is itself a
// symlink is replaced by its target first. The filesystem root is checked too.
func FindRoot(startPath string) (string, error) {
	start, err := filepath.Abs(startPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", startPath, err)
	}
	if resolved, err := contract.ResolveLinkedDir(start); err == nil {
		start = resolved
	}

	for dir := start; ; {
		if hasRootMarker(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return start, nil
}

// hasRootMarker reports whether dir directly contains any root marker.
func hasRootMarker(dir string) bool {
	for _, marker := range rootMarkers {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	return false
}
