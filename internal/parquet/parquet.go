// Package parquet provides data structures and functions for exporting file
// lists and archive history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/devian-archive/schema"
	"github.com/parquet-go/parquet-go"
)

// FileRow is one collected file from a dry run.
type FileRow struct {
	// RelPath is the forward-slash path inside the archive
	RelPath string `parquet:"rel_path,snappy"`

	// AbsPath is the file's location on disk
	AbsPath string `parquet:"abs_path,snappy"`

	// SizeBytes is the file size at collection time
	SizeBytes int64 `parquet:"size_bytes,snappy"`

	// ModTime is the modification time at collection time
	ModTime time.Time `parquet:"mod_time,snappy"`
}

// ArchiveRun represents a single archive run with metadata.
// This struct maps to the devian_archive_runs database table.
type ArchiveRun struct {
	RunID         string     `parquet:"run_id,snappy"`
	RootPath      string     `parquet:"root_path,snappy"`
	ArchivePath   string     `parquet:"archive_path,snappy"`
	StartTime     time.Time  `parquet:"start_time,snappy"`
	EndTime       *time.Time `parquet:"end_time,optional,snappy"`
	RunDurationMs *int32     `parquet:"run_duration_ms,optional,snappy"`
	FileCount     int32      `parquet:"file_count,snappy"`
	SizeBytes     int64      `parquet:"size_bytes,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// ArchivedFile represents one file stored by an archive run.
// This struct maps to the devian_archived_files database table.
type ArchivedFile struct {
	RunID     string    `parquet:"run_id,snappy"`
	RelPath   string    `parquet:"rel_path,snappy"`
	SizeBytes int64     `parquet:"size_bytes,snappy"`
	ModTime   time.Time `parquet:"mod_time,snappy"`
}

// writeParquet writes rows to a new Parquet file at outputPath.
// The schema is derived from the row type's struct tags.
func writeParquet[T any](data []T, outputPath string) (err error) {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", closeErr)
		}
	}()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteFilesParquet writes collected file rows to a Parquet file.
func WriteFilesParquet(data []FileRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteArchiveRunsParquet writes archive run rows to a Parquet file.
func WriteArchiveRunsParquet(data []ArchiveRun, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteArchivedFilesParquet writes archived file rows to a Parquet file.
func WriteArchivedFilesParquet(data []ArchivedFile, outputPath string) error {
	return writeParquet(data, outputPath)
}

// ConvertFileRecords converts collected files to Parquet rows.
func ConvertFileRecords(records []schema.FileRecord) []FileRow {
	out := make([]FileRow, 0, len(records))
	for _, r := range records {
		out = append(out, FileRow{
			RelPath:   r.RelPath,
			AbsPath:   r.AbsPath,
			SizeBytes: r.Size,
			ModTime:   r.ModTime,
		})
	}
	return out
}

// ConvertArchiveRunRecords converts history run rows to Parquet rows.
func ConvertArchiveRunRecords(records []schema.ArchiveRunRecord) []ArchiveRun {
	out := make([]ArchiveRun, 0, len(records))
	for _, r := range records {
		out = append(out, ArchiveRun{
			RunID:         r.RunID,
			RootPath:      r.Root,
			ArchivePath:   r.ArchivePath,
			StartTime:     r.StartTime,
			EndTime:       r.EndTime,
			RunDurationMs: r.RunDurationMs,
			FileCount:     r.FileCount,
			SizeBytes:     r.SizeBytes,
			ConfigParams:  r.ConfigParams,
		})
	}
	return out
}

// ConvertArchivedFileRecords converts history file rows to Parquet rows.
func ConvertArchivedFileRecords(records []schema.ArchivedFileRecord) []ArchivedFile {
	out := make([]ArchivedFile, 0, len(records))
	for _, r := range records {
		out = append(out, ArchivedFile(r))
	}
	return out
}
