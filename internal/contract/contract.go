// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/huangsam/devian-archive/schema"
)

// RootFinder resolves the project root for a start path.
// This allows config validation to be tested without a real project tree.
type RootFinder func(startPath string) (string, error)

// HistoryManager defines the interface for managing the history store.
// This allows the history layer to be mocked for testing.
type HistoryManager interface {
	GetHistoryStore() HistoryStore
}

// HistoryStore defines the interface for tracking archive runs.
type HistoryStore interface {
	// BeginRun records the start of an archive run
	BeginRun(runID string, root string, startTime time.Time, configParams map[string]any) error

	// EndRun updates the run with completion data
	EndRun(runID string, endTime time.Time, archivePath string, fileCount int, sizeBytes int64) error

	// RecordFiles stores the files that went into the run's archive
	RecordFiles(runID string, files []schema.FileRecord) error

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// GetAllRuns returns every stored run, newest first
	GetAllRuns() ([]schema.ArchiveRunRecord, error)

	// GetAllFiles returns every stored file row
	GetAllFiles() ([]schema.ArchivedFileRecord, error)

	// Close closes the underlying connection
	Close() error
}
