package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/huangsam/devian-archive/internal/contract"
	"github.com/huangsam/devian-archive/internal/parquet"
	"github.com/huangsam/devian-archive/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// fileTableFixedWidth covers the #, Size and Modified columns.
const fileTableFixedWidth = 45

// WriteFileList outputs a collected file list, dispatching based on the output format configured.
func WriteFileList(files []schema.FileRecord, cfg *contract.Config) error {
	switch cfg.Format {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeFileListJSON(w, files)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeFileListCSV(w, files)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return errors.New("parquet format requires --output-file")
		}
		if err := parquet.WriteFilesParquet(parquet.ConvertFileRecords(files), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		_, _ = fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", cfg.OutputFile)
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeFileListTable(w, files, cfg)
		}, "Wrote table")
	}
	return nil
}

// writeFileListTable generates and writes the human-readable table.
func writeFileListTable(w io.Writer, files []schema.FileRecord, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "Path", "Size", "Modified"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	pathWidth := getMaxTablePathWidth(cfg, fileTableFixedWidth)
	data := make([][]string, 0, len(files))
	for i, f := range files {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			contract.TruncatePath(f.RelPath, pathWidth),
			strconv.FormatInt(f.Size, 10),
			f.ModTime.Local().Format(timestampFormat),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d files, %s total\n", len(files), schema.FormatMB(schema.TotalSize(files)))
	return err
}

// writeFileListCSV writes one row per collected file.
func writeFileListCSV(w io.Writer, files []schema.FileRecord) error {
	header := []string{"rel_path", "abs_path", "size_bytes", "mod_time"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, f := range files {
			rec := []string{
				f.RelPath,
				f.AbsPath,
				strconv.FormatInt(f.Size, 10),
				f.ModTime.UTC().Format(time.RFC3339),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeFileListJSON writes the file records as an indented JSON array.
func writeFileListJSON(w io.Writer, files []schema.FileRecord) error {
	if files == nil {
		files = []schema.FileRecord{}
	}
	return writeJSON(w, files)
}
