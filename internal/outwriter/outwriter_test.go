package outwriter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/devian-archive/internal/contract"
	"github.com/huangsam/devian-archive/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// outputConfig returns a config writing format to a temp file.
func outputConfig(t *testing.T, format schema.OutputMode) *contract.Config {
	t.Helper()
	return &contract.Config{
		Format:     format,
		OutputFile: filepath.Join(t.TempDir(), "out"),
		Width:      120,
	}
}

func readOutput(t *testing.T, cfg *contract.Config) string {
	t.Helper()
	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	return string(data)
}

func sampleFiles() []schema.FileRecord {
	mod := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return []schema.FileRecord{
		{AbsPath: "/p/a.txt", RelPath: "a.txt", Size: 1024, ModTime: mod},
		{AbsPath: "/p/src/b.go", RelPath: "src/b.go", Size: 2048, ModTime: mod},
	}
}

func TestWriteFiles(t *testing.T) {
	ow := NewOutWriter()

	t.Run("table", func(t *testing.T) {
		cfg := outputConfig(t, schema.TextOut)
		require.NoError(t, ow.WriteFiles(sampleFiles(), cfg))
		out := readOutput(t, cfg)
		assert.Contains(t, out, "src/b.go")
		assert.Contains(t, out, "2048")
		assert.Contains(t, out, "2 files, 0.00 MB total")
	})

	t.Run("csv", func(t *testing.T) {
		cfg := outputConfig(t, schema.CSVOut)
		require.NoError(t, ow.WriteFiles(sampleFiles(), cfg))
		lines := strings.Split(strings.TrimSpace(readOutput(t, cfg)), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, "rel_path,abs_path,size_bytes,mod_time", lines[0])
		assert.Equal(t, "a.txt,/p/a.txt,1024,2024-05-01T12:00:00Z", lines[1])
	})

	t.Run("json", func(t *testing.T) {
		cfg := outputConfig(t, schema.JSONOut)
		require.NoError(t, ow.WriteFiles(sampleFiles(), cfg))
		var got []schema.FileRecord
		require.NoError(t, json.Unmarshal([]byte(readOutput(t, cfg)), &got))
		assert.Equal(t, sampleFiles(), got)
	})

	t.Run("json empty", func(t *testing.T) {
		cfg := outputConfig(t, schema.JSONOut)
		require.NoError(t, ow.WriteFiles(nil, cfg))
		assert.Equal(t, "[]\n", readOutput(t, cfg))
	})

	t.Run("parquet", func(t *testing.T) {
		cfg := outputConfig(t, schema.ParquetOut)
		require.NoError(t, ow.WriteFiles(sampleFiles(), cfg))
		info, err := os.Stat(cfg.OutputFile)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	})

	t.Run("parquet needs output file", func(t *testing.T) {
		err := ow.WriteFiles(sampleFiles(), &contract.Config{Format: schema.ParquetOut})
		assert.ErrorContains(t, err, "requires --output-file")
	})
}

func TestWritePatterns(t *testing.T) {
	rows := []schema.PatternRow{
		{Pattern: ".git", Source: schema.BuiltinSource},
		{Pattern: "**/Generated/", Source: schema.ToggleSource, DirOnly: true, DoubleStar: true},
		{Pattern: "/build", Source: schema.IgnoreFileSource, Rooted: true},
	}
	ow := NewOutWriter()

	t.Run("table", func(t *testing.T) {
		cfg := outputConfig(t, schema.TextOut)
		require.NoError(t, ow.WritePatterns(rows, cfg))
		out := readOutput(t, cfg)
		assert.Contains(t, out, "**/Generated/")
		assert.Contains(t, out, "dir,**")
		assert.Contains(t, out, "3 patterns")
	})

	t.Run("csv", func(t *testing.T) {
		cfg := outputConfig(t, schema.CSVOut)
		require.NoError(t, ow.WritePatterns(rows, cfg))
		assert.Equal(t, "pattern,source,dir_only,double_star,rooted\n"+
			".git,builtin,false,false,false\n"+
			"**/Generated/,toggle,true,true,false\n"+
			"/build,ignore-file,false,false,true\n", readOutput(t, cfg))
	})

	t.Run("json", func(t *testing.T) {
		cfg := outputConfig(t, schema.JSONOut)
		require.NoError(t, ow.WritePatterns(rows, cfg))
		var got []schema.PatternRow
		require.NoError(t, json.Unmarshal([]byte(readOutput(t, cfg)), &got))
		assert.Equal(t, rows, got)
	})
}

func TestPatternFlags(t *testing.T) {
	assert.Empty(t, patternFlags(schema.PatternRow{}))
	assert.Equal(t, "dir,**,rooted", patternFlags(schema.PatternRow{DirOnly: true, DoubleStar: true, Rooted: true}))
}

func TestWriteRuns(t *testing.T) {
	end := time.Date(2024, 5, 1, 12, 0, 2, 0, time.UTC)
	duration := int32(2000)
	runs := []schema.ArchiveRunRecord{
		{
			RunID:         "0123456789abcdef",
			Root:          "/p",
			ArchivePath:   "/p/devian-20240501-120000.zip",
			StartTime:     end.Add(-2 * time.Second),
			EndTime:       &end,
			RunDurationMs: &duration,
			FileCount:     2,
			SizeBytes:     3 * 1024 * 1024,
		},
		{RunID: "short", StartTime: end},
	}
	ow := NewOutWriter()

	t.Run("table", func(t *testing.T) {
		cfg := outputConfig(t, schema.TextOut)
		require.NoError(t, ow.WriteRuns(runs, cfg))
		out := readOutput(t, cfg)
		assert.Contains(t, out, "01234567")
		assert.NotContains(t, out, "0123456789abcdef")
		assert.Contains(t, out, "2000ms")
		assert.Contains(t, out, "3.00 MB")
		assert.Contains(t, out, "2 runs")
	})

	t.Run("json", func(t *testing.T) {
		cfg := outputConfig(t, schema.JSONOut)
		require.NoError(t, ow.WriteRuns(runs, cfg))
		var got []schema.ArchiveRunRecord
		require.NoError(t, json.Unmarshal([]byte(readOutput(t, cfg)), &got))
		require.Len(t, got, 2)
		assert.Equal(t, "0123456789abcdef", got[0].RunID)
	})
}

func TestShortRunID(t *testing.T) {
	assert.Equal(t, "abcdefgh", shortRunID("abcdefgh-1234"))
	assert.Equal(t, "abc", shortRunID("abc"))
}
