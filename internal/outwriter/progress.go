package outwriter

import (
	"fmt"
	"io"

	"github.com/huangsam/devian-archive/internal/contract"
	"github.com/huangsam/devian-archive/schema"
)

// Progress prints the step-by-step lines of an archive run.
type Progress struct {
	w io.Writer
}

// NewProgress returns a Progress writing to w. A nil writer discards output.
func NewProgress(w io.Writer) *Progress {
	if w == nil {
		w = io.Discard
	}
	return &Progress{w: w}
}

func (p *Progress) line(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format+"\n", args...)
}

// Root reports the resolved project root.
func (p *Progress) Root(root string) {
	p.line("%s %s", contract.HeaderColor.Sprint("Project root:"), root)
}

// IgnoreFile reports how many patterns came from the ignore file.
func (p *Progress) IgnoreFile(name string, count int) {
	p.line("Loaded %d patterns from %s", count, name)
}

// Collecting marks the start of the walk.
func (p *Progress) Collecting() {
	p.line("Collecting files...")
}

// Collected reports the number of files found.
func (p *Progress) Collected(count int) {
	p.line("Collected files: %d", count)
}

// Empty reports that there was nothing to archive.
func (p *Progress) Empty() {
	p.line("%s", contract.NoticeColor.Sprint("No files to archive."))
}

// Creating marks the start of the archive write.
func (p *Progress) Creating() {
	p.line("Creating archive...")
}

// Done reports the written archive and its size.
func (p *Progress) Done(result schema.ArchiveResult) {
	p.line("%s %s", contract.SuccessColor.Sprint("Done:"), result.ArchivePath)
	p.line("Size: %s", schema.FormatMB(result.SizeBytes))
}
