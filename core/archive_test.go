package core

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/huangsam/devian-archive/schema"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// zipEntries returns the sorted entry names of an archive.
func zipEntries(t *testing.T, path string) []string {
	t.Helper()
	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names
}

// readEntry returns the content of one archive entry.
func readEntry(t *testing.T, path, name string) string {
	t.Helper()
	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	for _, f := range r.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer func() { _ = rc.Close() }()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(data)
	}
	t.Fatalf("entry %s not found", name)
	return ""
}

func TestWriteArchive_EntriesAreRelativePaths(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.txt":          "alpha",
		"src/deep/b.txt": "beta",
	})
	files, err := Collect(t.Context(), root, nil)
	require.NoError(t, err)

	now := time.Date(2024, 2, 3, 4, 5, 6, 0, time.Local)
	out := t.TempDir()
	archivePath, err := WriteArchive(root, files, out, now)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(out, "devian-20240203-040506.zip"), archivePath)
	assert.Equal(t, []string{"a.txt", "src/deep/b.txt"}, zipEntries(t, archivePath))
	assert.Equal(t, "beta", readEntry(t, archivePath, "src/deep/b.txt"))
}

func TestWriteArchive_DeflateAndModTime(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "alpha alpha alpha alpha"})
	mod := time.Date(2023, 7, 1, 12, 30, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(filepath.Join(root, "a.txt"), mod, mod))

	files, err := Collect(t.Context(), root, nil)
	require.NoError(t, err)
	archivePath, err := WriteArchive(root, files, t.TempDir(), time.Now())
	require.NoError(t, err)

	r, err := zip.OpenReader(archivePath)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()
	require.Len(t, r.File, 1)
	assert.Equal(t, zip.Deflate, r.File[0].Method)
	assert.True(t, mod.Equal(r.File[0].Modified.UTC()), "got %v", r.File[0].Modified)
}

func TestWriteArchive_FallsBackToRelPath(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"dir/f.txt": "content"})

	files := []schema.FileRecord{{RelPath: "dir/f.txt"}}
	archivePath, err := WriteArchive(root, files, t.TempDir(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, "content", readEntry(t, archivePath, "dir/f.txt"))
}

func TestWriteArchive_RemovesPartialArchive(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "a"})
	files := []schema.FileRecord{
		{AbsPath: filepath.Join(root, "a.txt"), RelPath: "a.txt"},
		{AbsPath: filepath.Join(root, "vanished.txt"), RelPath: "vanished.txt"},
	}

	out := t.TempDir()
	archivePath, err := WriteArchive(root, files, out, time.Now())
	require.Error(t, err)
	assert.Empty(t, archivePath)
	assert.Empty(t, zipFiles(t, out), "partial archive must be removed")
}

func TestWriteArchive_OverwritesSameName(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "new"})
	out := t.TempDir()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)

	stale := filepath.Join(out, schema.ArchiveName(now))
	require.NoError(t, os.WriteFile(stale, []byte("not a zip"), 0o644))

	files, err := Collect(t.Context(), root, nil)
	require.NoError(t, err)
	archivePath, err := WriteArchive(root, files, out, now)
	require.NoError(t, err)
	assert.Equal(t, stale, archivePath)
	assert.Equal(t, "new", readEntry(t, archivePath, "a.txt"))
}

func TestWriteArchive_CreatesOutputDir(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "a"})
	out := filepath.Join(t.TempDir(), "nested", "out")

	files, err := Collect(t.Context(), root, nil)
	require.NoError(t, err)
	archivePath, err := WriteArchive(root, files, out, time.Now())
	require.NoError(t, err)
	assert.FileExists(t, archivePath)
}

func TestLockPath(t *testing.T) {
	dir := t.TempDir()
	a := lockPath(dir)
	b := lockPath(dir + string(filepath.Separator) + ".")
	assert.Equal(t, a, b, "equivalent paths share a lock")
	assert.NotEqual(t, a, lockPath(t.TempDir()))
	assert.Equal(t, os.TempDir(), filepath.Dir(a))
	assert.Regexp(t, `^devian-[0-9a-f-]{36}\.lock$`, filepath.Base(a))
}

func TestLockOutputDir(t *testing.T) {
	dir := t.TempDir()
	t.Cleanup(func() { _ = os.Remove(lockPath(dir)) })

	unlock, err := lockOutputDir(dir)
	require.NoError(t, err)
	unlock()

	// The same file is reused by the next run
	assert.FileExists(t, lockPath(dir))
	unlock, err = lockOutputDir(dir)
	require.NoError(t, err)
	unlock()
}
