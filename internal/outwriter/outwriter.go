// Package outwriter has output and writer logic.
package outwriter

import (
	"github.com/huangsam/devian-archive/internal/contract"
	"github.com/huangsam/devian-archive/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteFiles prints a collected file list using the configured output format.
func (ow *OutWriter) WriteFiles(files []schema.FileRecord, cfg *contract.Config) error {
	return WriteFileList(files, cfg)
}

// WritePatterns prints the effective pattern set.
func (ow *OutWriter) WritePatterns(rows []schema.PatternRow, cfg *contract.Config) error {
	return WritePatternRows(rows, cfg)
}

// WriteRuns prints archive runs from the history store.
func (ow *OutWriter) WriteRuns(runs []schema.ArchiveRunRecord, cfg *contract.Config) error {
	return WriteRunRows(runs, cfg)
}
