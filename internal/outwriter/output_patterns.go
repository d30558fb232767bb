package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/huangsam/devian-archive/internal/contract"
	"github.com/huangsam/devian-archive/schema"
)

// WritePatternRows outputs the effective pattern set with provenance.
// Parquet is not offered for patterns; it falls back to the table.
func WritePatternRows(rows []schema.PatternRow, cfg *contract.Config) error {
	switch cfg.Format {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if rows == nil {
				return writeJSON(w, []schema.PatternRow{})
			}
			return writeJSON(w, rows)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writePatternCSV(w, rows)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writePatternTable(w, rows)
		}, "Wrote table")
	}
}

// patternFlags renders the pattern's parse flags, e.g. "dir,**".
func patternFlags(r schema.PatternRow) string {
	var flags []string
	if r.DirOnly {
		flags = append(flags, "dir")
	}
	if r.DoubleStar {
		flags = append(flags, "**")
	}
	if r.Rooted {
		flags = append(flags, "rooted")
	}
	return strings.Join(flags, ",")
}

func writePatternTable(w io.Writer, rows []schema.PatternRow) error {
	data := make([][]string, 0, len(rows))
	for i, r := range rows {
		data = append(data, []string{strconv.Itoa(i + 1), r.Pattern, string(r.Source), patternFlags(r)})
	}
	if err := renderTable(w, []string{"#", "Pattern", "Source", "Flags"}, data); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d patterns\n", len(rows))
	return err
}

func writePatternCSV(w io.Writer, rows []schema.PatternRow) error {
	header := []string{"pattern", "source", "dir_only", "double_star", "rooted"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range rows {
			rec := []string{
				r.Pattern,
				string(r.Source),
				strconv.FormatBool(r.DirOnly),
				strconv.FormatBool(r.DoubleStar),
				strconv.FormatBool(r.Rooted),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
