package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/devian-archive/internal/contract"
	"github.com/huangsam/devian-archive/schema"
	"github.com/spf13/viper"
)

// tempDirKey is the build config key naming the project's scratch directory.
const tempDirKey = "tempDir"

// findBuildConfig returns the first build config under root, preferring the
// one inside the input directory.
func findBuildConfig(root string) (string, bool) {
	candidates := []string{
		filepath.Join(root, schema.BuildInputDirName, schema.BuildConfigName),
		filepath.Join(root, schema.BuildConfigName),
	}
	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path, true
		}
	}
	return "", false
}

// ReadBuildTempDir returns the root-relative temp directory declared by the
// project's build config. The declared path is resolved against the config
// file's own directory. It reports false when there is no readable config or
// the directory does not lie strictly inside root.
func ReadBuildTempDir(root string) (string, bool) {
	path, ok := findBuildConfig(root)
	if !ok {
		return "", false
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetDefault(tempDirKey, schema.DefaultTempDir)
	if err := v.ReadInConfig(); err != nil {
		contract.LogWarn("Cannot read build config", err)
		return "", false
	}

	tempDir := strings.TrimSpace(v.GetString(tempDirKey))
	if tempDir == "" {
		return "", false
	}
	if !filepath.IsAbs(tempDir) {
		tempDir = filepath.Join(filepath.Dir(path), tempDir)
	}

	rel, err := filepath.Rel(root, filepath.Clean(tempDir))
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		contract.LogWarn("Ignoring build temp dir", fmt.Errorf("%q is not inside %q", tempDir, root))
		return "", false
	}
	return filepath.ToSlash(rel), true
}
