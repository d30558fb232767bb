// Package schema has models and constants shared by all parts of devian-archive.
package schema

import "time"

// FileRecord is one collected file: where it lives on disk and where it goes in the archive.
type FileRecord struct {
	AbsPath string    `json:"abs_path"` // Absolute location on disk
	RelPath string    `json:"rel_path"` // Forward-slash path relative to the project root
	Size    int64     `json:"size"`     // Size in bytes at collection time
	ModTime time.Time `json:"mod_time"` // Modification time at collection time
}

// ArchiveResult describes a completed archive run.
type ArchiveResult struct {
	RunID       string    `json:"run_id"`
	Root        string    `json:"root"`
	ArchivePath string    `json:"archive_path"`
	FileCount   int       `json:"file_count"`
	SizeBytes   int64     `json:"size_bytes"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
}

// SizeMB returns the archive size in megabytes.
func (r ArchiveResult) SizeMB() float64 {
	return BytesToMB(r.SizeBytes)
}

// PatternRow is the printable form of one exclusion pattern.
type PatternRow struct {
	Pattern    string        `json:"pattern"`
	Source     PatternSource `json:"source"`
	DirOnly    bool          `json:"dir_only"`
	DoubleStar bool          `json:"double_star"`
	Rooted     bool          `json:"rooted"`
}
