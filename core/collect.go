package core

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/huangsam/devian-archive/core/ignore"
	"github.com/huangsam/devian-archive/internal/contract"
	"github.com/huangsam/devian-archive/schema"
)

// Collect walks root top-down and returns a record for every regular file
// not excluded by set. Excluded directories are pruned before descent, so
// nothing beneath them is visited. Records come back in lexical walk order.
//
// Symlinks are never followed into directories: a link to a regular file is
// collected, any other link is skipped with a warning. An unreadable
// directory aborts the walk. A root that is itself a symlink is walked at
// its target.
func Collect(ctx context.Context, root string, set *ignore.PatternSet) ([]schema.FileRecord, error) {
	if set == nil {
		set = ignore.NewPatternSet()
	}
	files := []schema.FileRecord{}

	resolved, err := contract.ResolveLinkedDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk %q: %w", root, err)
	}
	root = resolved

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return fmt.Errorf("failed to walk %q: %w", path, walkErr)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("failed to relativize %q: %w", path, err)
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if set.Excluded(rel, true) {
				return fs.SkipDir
			}
			return nil
		}
		if set.Excluded(rel, false) {
			return nil
		}

		record, ok, err := fileRecord(path, rel, d)
		if err != nil {
			return err
		}
		if ok {
			files = append(files, record)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// fileRecord builds the record for a non-directory entry. It reports false
// for entries that cannot be archived as a regular file.
func fileRecord(path, rel string, d fs.DirEntry) (schema.FileRecord, bool, error) {
	var (
		info fs.FileInfo
		err  error
	)
	if d.Type()&fs.ModeSymlink != 0 {
		info, err = os.Stat(path)
		if err != nil {
			contract.LogWarn("Skipping broken symlink "+rel, err)
			return schema.FileRecord{}, false, nil
		}
		if !info.Mode().IsRegular() {
			contract.LogWarn("Skipping symlink "+rel, errors.New("target is not a regular file"))
			return schema.FileRecord{}, false, nil
		}
	} else {
		if !d.Type().IsRegular() {
			return schema.FileRecord{}, false, nil
		}
		info, err = d.Info()
		if err != nil {
			return schema.FileRecord{}, false, fmt.Errorf("failed to stat %q: %w", path, err)
		}
	}

	return schema.FileRecord{
		AbsPath: path,
		RelPath: rel,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, true, nil
}
