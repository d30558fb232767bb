package schema

import (
	"fmt"
	"time"
)

// bytesPerMB is the binary megabyte used for size reporting.
const bytesPerMB = 1024 * 1024

// BytesToMB converts a byte count to megabytes.
func BytesToMB(n int64) float64 {
	return float64(n) / bytesPerMB
}

// FormatMB formats a byte count as megabytes with two decimals, e.g. "1.50 MB".
func FormatMB(n int64) string {
	return fmt.Sprintf("%.2f MB", BytesToMB(n))
}

// ArchiveName returns the archive file name for the given local time.
func ArchiveName(now time.Time) string {
	return ArchivePrefix + now.Format(ArchiveTimestampFormat) + ArchiveExt
}

// TotalSize sums the sizes of the given records.
func TotalSize(files []FileRecord) int64 {
	var total int64
	for _, f := range files {
		total += f.Size
	}
	return total
}
