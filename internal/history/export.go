package history

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/devian-archive/internal/contract"
	"github.com/huangsam/devian-archive/internal/parquet"
)

// Export writes all stored history to two Parquet files derived from outputFile.
func Export(w io.Writer, store contract.HistoryStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("history store is not initialized")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no history data found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total archive runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total file records: %d\n", status.TableSizes[filesTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve archive runs: %w", err)
	}
	files, err := store.GetAllFiles()
	if err != nil {
		return fmt.Errorf("failed to retrieve archived files: %w", err)
	}

	runRows := parquet.ConvertArchiveRunRecords(runs)
	runsFile := outputFile + ".archive_runs.parquet"
	if err := parquet.WriteArchiveRunsParquet(runRows, runsFile); err != nil {
		return fmt.Errorf("failed to write archive runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d archive runs to: %s\n", len(runRows), runsFile)

	fileRows := parquet.ConvertArchivedFileRecords(files)
	filesFile := outputFile + ".archived_files.parquet"
	if err := parquet.WriteArchivedFilesParquet(fileRows, filesFile); err != nil {
		return fmt.Errorf("failed to write archived files: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d archived file records to: %s\n", len(fileRows), filesFile)

	return nil
}
