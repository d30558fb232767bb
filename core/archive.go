package core

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/huangsam/devian-archive/schema"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
)

// WriteArchive writes every file into a new zip archive in outputDir named
// after now, and returns the archive path. Entries are stored at their
// relative paths with Deflate at the fastest level. An archive with the same
// name is replaced. On any failure the partial archive is removed.
func WriteArchive(root string, files []schema.FileRecord, outputDir string, now time.Time) (archivePath string, err error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory %q: %w", outputDir, err)
	}

	unlock, err := lockOutputDir(outputDir)
	if err != nil {
		return "", err
	}
	defer unlock()

	archivePath = filepath.Join(outputDir, schema.ArchiveName(now))
	out, err := os.Create(archivePath)
	if err != nil {
		return "", fmt.Errorf("failed to create archive %q: %w", archivePath, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(archivePath)
		}
	}()

	zw := zip.NewWriter(out)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.BestSpeed)
	})

	for _, f := range files {
		if err = addFile(zw, root, f); err != nil {
			_ = zw.Close()
			_ = out.Close()
			return "", err
		}
	}
	if err = zw.Close(); err != nil {
		_ = out.Close()
		return "", fmt.Errorf("failed to finalize archive %q: %w", archivePath, err)
	}
	if err = out.Close(); err != nil {
		return "", fmt.Errorf("failed to close archive %q: %w", archivePath, err)
	}
	return archivePath, nil
}

// addFile copies one file into the archive under its relative path.
func addFile(zw *zip.Writer, root string, f schema.FileRecord) error {
	src := f.AbsPath
	if src == "" {
		src = filepath.Join(root, filepath.FromSlash(f.RelPath))
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %q: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %q: %w", src, err)
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("failed to build header for %q: %w", f.RelPath, err)
	}
	header.Name = f.RelPath
	header.Method = zip.Deflate
	if !f.ModTime.IsZero() {
		header.Modified = f.ModTime
	}

	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to add %q: %w", f.RelPath, err)
	}
	if _, err := io.Copy(w, in); err != nil {
		return fmt.Errorf("failed to write %q: %w", f.RelPath, err)
	}
	return nil
}

// lockPath returns the lock file guarding outputDir. The name is derived
// from the absolute directory so every process agrees on it.
func lockPath(outputDir string) string {
	abs, err := filepath.Abs(outputDir)
	if err != nil {
		abs = outputDir
	}
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.ToSlash(abs)))
	return filepath.Join(os.TempDir(), "devian-"+id.String()+".lock")
}

// lockOutputDir blocks until this process holds the output directory lock.
// The lock file stays in place after unlocking so waiters share one inode.
func lockOutputDir(outputDir string) (func(), error) {
	fl := flock.New(lockPath(outputDir))
	if err := fl.Lock(); err != nil {
		return nil, fmt.Errorf("failed to lock output directory %q: %w", outputDir, err)
	}
	return func() { _ = fl.Unlock() }, nil
}
