// Package core locates a project root, collects its files through the
// exclusion patterns and packages them into an archive.
package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/devian-archive/core/ignore"
	"github.com/huangsam/devian-archive/internal/contract"
	"github.com/huangsam/devian-archive/internal/outwriter"
	"github.com/huangsam/devian-archive/schema"
)

// ErrNoFiles is returned when nothing survives the exclusion patterns.
var ErrNoFiles = errors.New("no files to archive")

// ExecutorFunc defines the function signature for executing the different commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager) error

// ExecuteArchive collects the project files and writes the archive.
// It serves as the main entry point for the 'archive' command.
func ExecuteArchive(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager) error {
	_, err := GetArchiveResult(ctx, cfg, mgr)
	if errors.Is(err, ErrNoFiles) {
		return nil
	}
	return err
}

// ExecuteList collects the project files and prints them without archiving.
func ExecuteList(ctx context.Context, cfg *contract.Config, _ contract.HistoryManager) error {
	files, err := GetCollectResults(WithSuppressHeader(ctx), cfg)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteFiles(files, cfg)
}

// ExecutePatterns prints the effective pattern set.
func ExecutePatterns(_ context.Context, cfg *contract.Config, _ contract.HistoryManager) error {
	rows, err := GetPatternResults(cfg)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WritePatterns(rows, cfg)
}

// GetPatternResults returns the effective pattern set in merge order.
func GetPatternResults(cfg *contract.Config) ([]schema.PatternRow, error) {
	set, _, err := ignore.LoadPatterns(loadOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to load patterns: %w", err)
	}
	return set.Rows(), nil
}

// GetCollectResults loads the pattern set for cfg and walks the project root.
func GetCollectResults(ctx context.Context, cfg *contract.Config) ([]schema.FileRecord, error) {
	progress := outwriter.NewProgress(progressWriter(ctx))
	progress.Root(cfg.RootPath)

	set, report, err := ignore.LoadPatterns(loadOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to load patterns: %w", err)
	}
	if report.IgnoreFileFound {
		progress.IgnoreFile(filepath.Base(cfg.IgnoreFile), report.IgnoreFileCount)
	}

	progress.Collecting()
	files, err := Collect(ctx, cfg.RootPath, set)
	if err != nil {
		return nil, err
	}
	progress.Collected(len(files))
	return files, nil
}

// GetArchiveResult runs a full archive pass and records it in the history
// store when one is configured. It returns ErrNoFiles, and writes nothing,
// when no file was collected. A failed run is still closed in the store,
// with no archive path and zero files.
func GetArchiveResult(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager) (schema.ArchiveResult, error) {
	start := time.Now()
	result := schema.ArchiveResult{
		RunID:     uuid.NewString(),
		Root:      cfg.RootPath,
		StartTime: start,
	}
	progress := outwriter.NewProgress(progressWriter(ctx))
	run := beginRun(mgr, result, cfg)

	files, err := GetCollectResults(ctx, cfg)
	if err != nil {
		run.end(result, nil)
		return result, err
	}
	if len(files) == 0 {
		progress.Empty()
		run.end(result, nil)
		return result, ErrNoFiles
	}

	progress.Creating()
	archivePath, err := WriteArchive(cfg.RootPath, files, cfg.OutputDir, start)
	if err != nil {
		run.end(result, nil)
		return result, err
	}
	info, err := os.Stat(archivePath)
	if err != nil {
		run.end(result, nil)
		return result, fmt.Errorf("failed to stat archive %q: %w", archivePath, err)
	}

	result.ArchivePath = archivePath
	result.FileCount = len(files)
	result.SizeBytes = info.Size()
	result.EndTime = time.Now()
	progress.Done(result)

	run.end(result, files)
	return result, nil
}

// loadOptions maps the validated config onto pattern loader options.
func loadOptions(cfg *contract.Config) ignore.LoadOptions {
	opts := ignore.LoadOptions{
		IgnoreFile: cfg.IgnoreFile,
		Toggles: ignore.Toggles{
			ExcludeGenerated: cfg.ExcludeGenerated,
			ExcludeData:      cfg.ExcludeData,
			IncludeTemp:      cfg.IncludeTemp,
		},
		Extra: cfg.Excludes,
	}
	if !cfg.IncludeTemp {
		if tempDir, ok := ReadBuildTempDir(cfg.RootPath); ok {
			opts.TempDir = tempDir
		}
	}
	return opts
}

// historyRun tracks one run in the history store. A nil store records nothing.
type historyRun struct {
	store contract.HistoryStore
	id    string
}

// beginRun opens the history row for the run. Store failures are warnings.
func beginRun(mgr contract.HistoryManager, result schema.ArchiveResult, cfg *contract.Config) historyRun {
	if mgr == nil {
		return historyRun{}
	}
	store := mgr.GetHistoryStore()
	if store == nil {
		return historyRun{}
	}
	if err := store.BeginRun(result.RunID, result.Root, result.StartTime, cfg.ConfigParams()); err != nil {
		contract.LogWarn("Cannot record archive run", err)
		return historyRun{}
	}
	return historyRun{store: store, id: result.RunID}
}

// end stores the archived files and closes the history row.
func (r historyRun) end(result schema.ArchiveResult, files []schema.FileRecord) {
	if r.store == nil {
		return
	}
	if len(files) > 0 {
		if err := r.store.RecordFiles(r.id, files); err != nil {
			contract.LogWarn("Cannot record archived files", err)
		}
	}
	endTime := result.EndTime
	if endTime.IsZero() {
		endTime = time.Now()
	}
	if err := r.store.EndRun(r.id, endTime, result.ArchivePath, result.FileCount, result.SizeBytes); err != nil {
		contract.LogWarn("Cannot finish archive run", err)
	}
}
