package outwriter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/devian-archive/internal/contract"
	"github.com/huangsam/devian-archive/schema"
)

// runTableFixedWidth covers every column except the archive path.
const runTableFixedWidth = 80

// WriteRunRows outputs archive runs as a table or JSON.
func WriteRunRows(runs []schema.ArchiveRunRecord, cfg *contract.Config) error {
	switch cfg.Format {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if runs == nil {
				return writeJSON(w, []schema.ArchiveRunRecord{})
			}
			return writeJSON(w, runs)
		}, "Wrote JSON")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRunTable(w, runs, cfg)
		}, "Wrote table")
	}
}

func writeRunTable(w io.Writer, runs []schema.ArchiveRunRecord, cfg *contract.Config) error {
	pathWidth := getMaxTablePathWidth(cfg, runTableFixedWidth)
	data := make([][]string, 0, len(runs))
	for _, r := range runs {
		duration := "-"
		if r.RunDurationMs != nil {
			duration = strconv.Itoa(int(*r.RunDurationMs)) + "ms"
		}
		data = append(data, []string{
			shortRunID(r.RunID),
			r.StartTime.Local().Format(timestampFormat),
			duration,
			strconv.Itoa(int(r.FileCount)),
			schema.FormatMB(r.SizeBytes),
			contract.TruncatePath(r.ArchivePath, pathWidth),
		})
	}
	if err := renderTable(w, []string{"Run", "Started", "Duration", "Files", "Size", "Archive"}, data); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d runs\n", len(runs))
	return err
}

// shortRunID keeps the first UUID group, which is enough to tell runs apart.
func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
