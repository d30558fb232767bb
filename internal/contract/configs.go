package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/devian-archive/schema"
)

// Config holds the runtime configuration for an archive run.
// This struct is the "final, validated" config.
type Config struct {
	RootPath     string // Absolute project root
	RootExplicit bool   // Root came from --root instead of detection
	OutputDir    string // Absolute directory that receives the archive
	IgnoreFile   string // Absolute ignore file path; empty disables it

	ExcludeGenerated bool
	ExcludeData      bool
	IncludeTemp      bool
	Excludes         []string // Extra patterns from --exclude

	Format     schema.OutputMode // Format for the list command
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Root             string `mapstructure:"root"`
	Output           string `mapstructure:"output"`
	ExcludeGenerated bool   `mapstructure:"exclude-generated"`
	ExcludeData      bool   `mapstructure:"exclude-data"`
	IncludeTemp      bool   `mapstructure:"include-temp"`
	IgnoreFile       string `mapstructure:"ignore-file"`
	Exclude          string `mapstructure:"exclude"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`
	Color            string `mapstructure:"color"`
	Width            int    `mapstructure:"width"`

	// --- Fields from listCmd.Flags() ---
	Format     string `mapstructure:"format"`
	OutputFile string `mapstructure:"output-file"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Excludes != nil {
		clone.Excludes = make([]string, len(c.Excludes))
		copy(clone.Excludes, c.Excludes)
	}
	return &clone
}

// ConfigParams returns the settings recorded with each history run.
func (c *Config) ConfigParams() map[string]any {
	return map[string]any{
		"root":              c.RootPath,
		"output":            c.OutputDir,
		"ignore_file":       c.IgnoreFile,
		"exclude_generated": c.ExcludeGenerated,
		"exclude_data":      c.ExcludeData,
		"include_temp":      c.IncludeTemp,
		"excludes":          c.Excludes,
	}
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, findRoot RootFinder, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := resolveRootPath(cfg, findRoot, input); err != nil {
		return err
	}
	if err := resolveOutputDir(cfg, input); err != nil {
		return err
	}
	resolveIgnoreFile(cfg, input)
	return nil
}

// RevalidateRoot points cfg at another project root and output directory.
// The ignore file and a default output directory move with the root.
// Empty arguments keep the current values.
func RevalidateRoot(cfg *Config, root, outputDir string) error {
	oldRoot := cfg.RootPath
	if root != "" {
		if err := resolveRootPath(cfg, nil, &ConfigRawInput{Root: root}); err != nil {
			return err
		}
		if rel, err := filepath.Rel(oldRoot, cfg.IgnoreFile); oldRoot != "" && err == nil && !strings.HasPrefix(rel, "..") {
			cfg.IgnoreFile = filepath.Join(cfg.RootPath, rel)
		}
		if cfg.OutputDir == oldRoot {
			cfg.OutputDir = cfg.RootPath
		}
	}
	if cfg.IgnoreFile == "" {
		resolveIgnoreFile(cfg, &ConfigRawInput{})
	}
	if outputDir != "" || cfg.OutputDir == "" {
		return resolveOutputDir(cfg, &ConfigRawInput{Output: outputDir})
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ParseHistoryBackend normalizes a backend name. Empty means no history.
func ParseHistoryBackend(s string) (schema.DatabaseBackend, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return schema.NoneBackend, nil
	}
	backend := schema.DatabaseBackend(s)
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", s)
	}
	return backend, nil
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.ExcludeGenerated = input.ExcludeGenerated
	cfg.ExcludeData = input.ExcludeData
	cfg.IncludeTemp = input.IncludeTemp
	cfg.OutputFile = input.OutputFile
	cfg.Excludes = SplitList(input.Exclude)

	colorStr := input.Color
	if colorStr == "" {
		colorStr = "yes"
	}
	colors, err := ParseBoolString(colorStr)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Width < 0 {
		return fmt.Errorf("width cannot be negative (received %d)", input.Width)
	}
	cfg.Width = input.Width

	format := strings.ToLower(strings.TrimSpace(input.Format))
	if format == "" {
		format = string(schema.TextOut)
	}
	cfg.Format = schema.OutputMode(format)
	if _, ok := schema.ValidOutputModes[cfg.Format]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Format)
	}
	if cfg.Format == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	backend, err := ParseHistoryBackend(input.HistoryBackend)
	if err != nil {
		return err
	}
	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = input.HistoryDBConnect
	return ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect)
}

// resolveRootPath validates an explicit --root or detects the root from the
// working directory.
func resolveRootPath(cfg *Config, findRoot RootFinder, input *ConfigRawInput) error {
	if input.Root == "" {
		root, err := findRoot(".")
		if err != nil {
			return fmt.Errorf("failed to detect project root: %w", err)
		}
		cfg.RootPath = root
		cfg.RootExplicit = false
		return nil
	}

	root, err := filepath.Abs(input.Root)
	if err != nil {
		return fmt.Errorf("failed to resolve project root %q: %w", input.Root, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("project root %q does not exist: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("project root %q is not a directory", root)
	}
	root, err = ResolveLinkedDir(root)
	if err != nil {
		return fmt.Errorf("failed to resolve project root %q: %w", input.Root, err)
	}
	cfg.RootPath = filepath.Clean(root)
	cfg.RootExplicit = true
	return nil
}

// resolveOutputDir makes the output directory absolute, creates it and
// verifies it accepts new files.
func resolveOutputDir(cfg *Config, input *ConfigRawInput) error {
	dir := input.Output
	if dir == "" {
		dir = cfg.RootPath
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve output directory %q: %w", dir, err)
	}
	if err := EnsureWritableDir(abs); err != nil {
		return err
	}
	cfg.OutputDir = abs
	return nil
}

// EnsureWritableDir creates dir when missing and checks that a file can be
// created inside it.
func EnsureWritableDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create output directory %q: %w", dir, err)
	}
	probe, err := os.CreateTemp(dir, ".devian-probe-*")
	if err != nil {
		return fmt.Errorf("output directory %q is not writable: %w", dir, err)
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)
	return nil
}

// resolveIgnoreFile places a relative ignore file under the project root.
func resolveIgnoreFile(cfg *Config, input *ConfigRawInput) {
	name := strings.TrimSpace(input.IgnoreFile)
	switch {
	case name == "":
		cfg.IgnoreFile = filepath.Join(cfg.RootPath, schema.DefaultIgnoreFile)
	case filepath.IsAbs(name):
		cfg.IgnoreFile = filepath.Clean(name)
	default:
		cfg.IgnoreFile = filepath.Join(cfg.RootPath, name)
	}
}
