package schema

import "time"

// HistoryStatus represents the status of the history store.
type HistoryStatus struct {
	Backend       string           `json:"backend"`
	Connected     bool             `json:"connected"`
	TotalRuns     int              `json:"total_runs"`
	LastRunID     string           `json:"last_run_id"`
	LastRunTime   time.Time        `json:"last_run_time"`
	OldestRunTime time.Time        `json:"oldest_run_time"`
	TotalFiles    int              `json:"total_files"`
	TotalBytes    int64            `json:"total_bytes"`
	TableSizes    map[string]int64 `json:"table_sizes"`
}

// ArchiveRunRecord represents a row from the devian_archive_runs table.
type ArchiveRunRecord struct {
	RunID         string
	Root          string
	ArchivePath   string
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	FileCount     int32
	SizeBytes     int64
	ConfigParams  *string
}

// ArchivedFileRecord represents a row from the devian_archived_files table.
type ArchivedFileRecord struct {
	RunID     string
	RelPath   string
	SizeBytes int64
	ModTime   time.Time
}
