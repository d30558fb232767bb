package contract

import (
	"strings"
	"testing"
	"unicode/utf8"
)

// FuzzTruncatePath fuzzes TruncatePath with random paths and widths.
func FuzzTruncatePath(f *testing.F) {
	f.Add("src/main.go", 5)
	f.Add("very/long/path/to/file.txt", 10)
	f.Add("", 0)
	f.Add("日本語/ファイル.txt", 4)

	f.Fuzz(func(t *testing.T, path string, width int) {
		if !utf8.ValidString(path) {
			return
		}
		got := TruncatePath(path, width)
		if got == path {
			return
		}
		if !strings.HasPrefix(got, "...") {
			t.Fatalf("truncated path %q lacks ellipsis", got)
		}
		if utf8.RuneCountInString(got) != width {
			t.Fatalf("truncated path %q has width %d, want %d", got, utf8.RuneCountInString(got), width)
		}
	})
}

// FuzzSplitList fuzzes SplitList with random comma-separated input.
func FuzzSplitList(f *testing.F) {
	f.Add("*.log,build/")
	f.Add(" , ,")
	f.Add("")

	f.Fuzz(func(t *testing.T, s string) {
		for _, item := range SplitList(s) {
			if item == "" || strings.Contains(item, ",") || strings.TrimSpace(item) != item {
				t.Fatalf("bad item %q from %q", item, s)
			}
		}
	})
}
