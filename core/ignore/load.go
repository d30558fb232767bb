package ignore

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/huangsam/devian-archive/schema"
)

// DefaultBuiltins are always excluded: version control metadata, dependency
// caches, Python bytecode, OS metadata and earlier archives.
var DefaultBuiltins = []string{
	".git",
	".git/**",
	"node_modules",
	"node_modules/**",
	"__pycache__",
	"__pycache__/**",
	"*.pyc",
	".DS_Store",
	"*" + schema.ArchiveExt,
}

// Toggles are the caller-facing switches that add or suppress patterns.
type Toggles struct {
	ExcludeGenerated bool // exclude "Generated" directories at any depth
	ExcludeData      bool // exclude .ndjson data files at any depth
	IncludeTemp      bool // keep "temp" directories (excluded by default)
}

// LoadOptions describes every pattern source for one collection pass.
type LoadOptions struct {
	IgnoreFile string   // Path of the ignore file; empty disables it
	Builtins   []string // Built-in patterns; nil means DefaultBuiltins
	Toggles    Toggles
	TempDir    string   // Extra root-relative temp directory from the build config
	Extra      []string // Patterns supplied on the command line
}

// LoadReport summarizes what LoadPatterns found.
type LoadReport struct {
	IgnoreFileFound bool
	IgnoreFileCount int
	Counts          map[schema.PatternSource]int
}

// LoadPatterns builds the effective pattern set: builtins, then ignore-file
// entries, then toggle patterns, then command-line patterns. A missing ignore
// file contributes nothing; any other read error is returned.
func LoadPatterns(opts LoadOptions) (*PatternSet, LoadReport, error) {
	report := LoadReport{Counts: make(map[schema.PatternSource]int)}
	set := NewPatternSet()

	builtins := opts.Builtins
	if builtins == nil {
		builtins = DefaultBuiltins
	}
	report.Counts[schema.BuiltinSource] = set.AddRaw(schema.BuiltinSource, builtins...)

	if opts.IgnoreFile != "" {
		lines, found, err := ParseIgnoreFile(opts.IgnoreFile)
		if err != nil {
			return nil, report, err
		}
		report.IgnoreFileFound = found
		report.IgnoreFileCount = set.AddRaw(schema.IgnoreFileSource, lines...)
		report.Counts[schema.IgnoreFileSource] = report.IgnoreFileCount
	}

	report.Counts[schema.ToggleSource] = set.AddRaw(schema.ToggleSource, TogglePatterns(opts.Toggles, opts.TempDir)...)
	report.Counts[schema.CLISource] = set.AddRaw(schema.CLISource, opts.Extra...)

	return set, report, nil
}

// TogglePatterns returns the patterns implied by the toggles. tempDir is an
// optional root-relative directory excluded alongside the default temp dirs.
func TogglePatterns(t Toggles, tempDir string) []string {
	var out []string
	if t.ExcludeGenerated {
		out = append(out, "**/"+schema.GeneratedDirName, "**/"+schema.GeneratedDirName+"/**")
	}
	if t.ExcludeData {
		out = append(out, "**/*."+schema.DataFileExt)
	}
	if !t.IncludeTemp {
		d := schema.DefaultTempDir
		out = append(out, d, d+"/**", "**/"+d, "**/"+d+"/**")
		if tempDir = strings.Trim(tempDir, "/"); tempDir != "" && tempDir != d {
			out = append(out, tempDir, tempDir+"/**")
		}
	}
	return out
}

// ParseIgnoreFile reads exclusion patterns from an ignore file. found is
// false, with a nil error, when the file does not exist.
func ParseIgnoreFile(path string) (lines []string, found bool, err error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to open ignore file %q: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	lines, err = ParseIgnoreLines(f)
	if err != nil {
		return nil, true, fmt.Errorf("failed to read ignore file %q: %w", path, err)
	}
	return lines, true, nil
}

// ParseIgnoreLines returns the pattern lines of ignore-file content. Blank
// lines, "#" comments and "!" negations are dropped; negation is not supported.
// Lines have no length limit.
func ParseIgnoreLines(r io.Reader) ([]string, error) {
	var lines []string
	reader := bufio.NewReader(r)
	for first := true; ; first = false {
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		if first {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") && !strings.HasPrefix(line, "!") {
			lines = append(lines, line)
		}
		if err != nil {
			return lines, nil
		}
	}
}
