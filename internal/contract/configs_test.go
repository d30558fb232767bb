package contract

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/huangsam/devian-archive/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedRoot returns a RootFinder that always resolves to root.
func fixedRoot(root string) RootFinder {
	return func(string) (string, error) { return root, nil }
}

func TestProcessAndValidate(t *testing.T) {
	root := t.TempDir()
	missing := filepath.Join(root, "missing")
	plainFile := filepath.Join(root, "file.txt")
	require.NoError(t, os.WriteFile(plainFile, []byte("x"), 0o644))

	tests := []struct {
		name        string
		input       *ConfigRawInput
		expectError bool
	}{
		{
			name:  "valid minimal config",
			input: &ConfigRawInput{},
		},
		{
			name:  "explicit root",
			input: &ConfigRawInput{Root: root, Format: "json", Color: "no"},
		},
		{
			name:        "explicit root missing",
			input:       &ConfigRawInput{Root: missing},
			expectError: true,
		},
		{
			name:        "explicit root is a file",
			input:       &ConfigRawInput{Root: plainFile},
			expectError: true,
		},
		{
			name:        "invalid format",
			input:       &ConfigRawInput{Format: "yaml"},
			expectError: true,
		},
		{
			name:        "parquet without output file",
			input:       &ConfigRawInput{Format: "parquet"},
			expectError: true,
		},
		{
			name:  "parquet with output file",
			input: &ConfigRawInput{Format: "parquet", OutputFile: filepath.Join(root, "files.parquet")},
		},
		{
			name:        "invalid color",
			input:       &ConfigRawInput{Color: "sometimes"},
			expectError: true,
		},
		{
			name:        "negative width",
			input:       &ConfigRawInput{Width: -1},
			expectError: true,
		},
		{
			name:        "invalid history backend",
			input:       &ConfigRawInput{HistoryBackend: "oracle"},
			expectError: true,
		},
		{
			name:        "mysql without connection string",
			input:       &ConfigRawInput{HistoryBackend: "mysql"},
			expectError: true,
		},
		{
			name:  "sqlite history",
			input: &ConfigRawInput{HistoryBackend: "SQLite"},
		},
		{
			name:        "output path is a file",
			input:       &ConfigRawInput{Output: plainFile},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			err := ProcessAndValidate(cfg, fixedRoot(root), tt.input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, root, cfg.RootPath)
			assert.True(t, filepath.IsAbs(cfg.OutputDir))
		})
	}
}

func TestProcessAndValidateDefaults(t *testing.T) {
	root := t.TempDir()
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, fixedRoot(root), &ConfigRawInput{
		Exclude:     "*.log, secrets/ ,",
		ExcludeData: true,
	}))

	assert.Equal(t, root, cfg.RootPath)
	assert.False(t, cfg.RootExplicit)
	assert.Equal(t, root, cfg.OutputDir)
	assert.Equal(t, filepath.Join(root, schema.DefaultIgnoreFile), cfg.IgnoreFile)
	assert.Equal(t, []string{"*.log", "secrets/"}, cfg.Excludes)
	assert.Equal(t, schema.TextOut, cfg.Format)
	assert.Equal(t, schema.NoneBackend, cfg.HistoryBackend)
	assert.True(t, cfg.UseColors)
	assert.True(t, cfg.ExcludeData)
	assert.False(t, cfg.IncludeTemp)
}

func TestProcessAndValidateCreatesOutputDir(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "dist", "archives")

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, fixedRoot(root), &ConfigRawInput{Root: root, Output: out}))
	assert.True(t, cfg.RootExplicit)
	assert.Equal(t, out, cfg.OutputDir)
	assert.DirExists(t, out)

	// The writability probe leaves nothing behind.
	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestProcessAndValidateIgnoreFile(t *testing.T) {
	root := t.TempDir()
	abs := filepath.Join(t.TempDir(), "shared.ignore")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"default", "", filepath.Join(root, ".gitignore")},
		{"relative", ".archiveignore", filepath.Join(root, ".archiveignore")},
		{"absolute", abs, abs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			require.NoError(t, ProcessAndValidate(cfg, fixedRoot(root), &ConfigRawInput{IgnoreFile: tt.input}))
			assert.Equal(t, tt.expected, cfg.IgnoreFile)
		})
	}
}

func TestProcessAndValidateRootFinderError(t *testing.T) {
	failing := func(string) (string, error) { return "", errors.New("boom") }
	err := ProcessAndValidate(&Config{}, failing, &ConfigRawInput{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name    string
		backend schema.DatabaseBackend
		connStr string
		wantErr bool
	}{
		{"sqlite empty", schema.SQLiteBackend, "", false},
		{"none empty", schema.NoneBackend, "", false},
		{"mysql valid", schema.MySQLBackend, "user:pass@tcp(localhost:3306)/devian", false},
		{"mysql missing tcp", schema.MySQLBackend, "user:pass@localhost/devian", true},
		{"mysql missing db", schema.MySQLBackend, "user:pass@tcp(localhost:3306)", true},
		{"postgres valid", schema.PostgreSQLBackend, "host=localhost port=5432 user=u password=p dbname=devian", false},
		{"postgres missing host", schema.PostgreSQLBackend, "dbname=devian", true},
		{"postgres missing dbname", schema.PostgreSQLBackend, "host=localhost", true},
		{"postgres empty", schema.PostgreSQLBackend, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.connStr)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseHistoryBackend(t *testing.T) {
	backend, err := ParseHistoryBackend("")
	require.NoError(t, err)
	assert.Equal(t, schema.NoneBackend, backend)

	backend, err = ParseHistoryBackend(" PostgreSQL ")
	require.NoError(t, err)
	assert.Equal(t, schema.PostgreSQLBackend, backend)

	_, err = ParseHistoryBackend("redis")
	assert.Error(t, err)
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{RootPath: "/repo", Excludes: []string{"a"}}
	clone := cfg.Clone()
	clone.Excludes[0] = "b"
	clone.RootPath = "/other"
	assert.Equal(t, "a", cfg.Excludes[0])
	assert.Equal(t, "/repo", cfg.RootPath)
}

func TestConfigParams(t *testing.T) {
	cfg := &Config{RootPath: "/repo", IncludeTemp: true, Excludes: []string{"x"}}
	params := cfg.ConfigParams()
	assert.Equal(t, "/repo", params["root"])
	assert.Equal(t, true, params["include_temp"])
	assert.Equal(t, []string{"x"}, params["excludes"])
}

func TestRevalidateRoot(t *testing.T) {
	oldRoot := t.TempDir()
	newRoot := t.TempDir()
	base := &Config{
		RootPath:   oldRoot,
		OutputDir:  oldRoot,
		IgnoreFile: filepath.Join(oldRoot, "custom.ignore"),
	}

	t.Run("moves derived paths", func(t *testing.T) {
		cfg := base.Clone()
		require.NoError(t, RevalidateRoot(cfg, newRoot, ""))
		assert.Equal(t, newRoot, cfg.RootPath)
		assert.True(t, cfg.RootExplicit)
		assert.Equal(t, newRoot, cfg.OutputDir)
		assert.Equal(t, filepath.Join(newRoot, "custom.ignore"), cfg.IgnoreFile)
	})

	t.Run("keeps external ignore file and output dir", func(t *testing.T) {
		external := filepath.Join(t.TempDir(), "global.ignore")
		out := t.TempDir()
		cfg := &Config{RootPath: oldRoot, OutputDir: out, IgnoreFile: external}
		require.NoError(t, RevalidateRoot(cfg, newRoot, ""))
		assert.Equal(t, external, cfg.IgnoreFile)
		assert.Equal(t, out, cfg.OutputDir)
	})

	t.Run("explicit output dir", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "archives")
		cfg := base.Clone()
		require.NoError(t, RevalidateRoot(cfg, "", out))
		assert.Equal(t, oldRoot, cfg.RootPath)
		assert.Equal(t, out, cfg.OutputDir)
		assert.DirExists(t, out)
	})

	t.Run("empty config gets defaults", func(t *testing.T) {
		cfg := &Config{}
		require.NoError(t, RevalidateRoot(cfg, newRoot, ""))
		assert.Equal(t, filepath.Join(newRoot, ".gitignore"), cfg.IgnoreFile)
		assert.Equal(t, newRoot, cfg.OutputDir)
	})

	t.Run("missing root", func(t *testing.T) {
		cfg := base.Clone()
		assert.Error(t, RevalidateRoot(cfg, filepath.Join(newRoot, "nope"), ""))
	})
}

func TestProcessAndValidateSymlinkRoot(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	// Temp dirs may sit behind symlinks, e.g. /var on macOS
	target, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	link := filepath.Join(t.TempDir(), "project")
	require.NoError(t, os.Symlink(target, link))

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, fixedRoot("/unused"), &ConfigRawInput{Root: link}))
	assert.Equal(t, target, cfg.RootPath)
	assert.True(t, cfg.RootExplicit)
	assert.Equal(t, target, cfg.OutputDir)
	assert.Equal(t, filepath.Join(target, schema.DefaultIgnoreFile), cfg.IgnoreFile)
}
