package summarizer

import (
	"fmt"
	"path/filepath"

	"github.com/user/storyreel/pkg/ports"
)

// Writer renders compile summaries and stores them through a FileSystem.
type Writer struct {
	formatter Formatter
	fs        ports.FileSystem
}

// NewWriter creates a Writer that formats with formatter and writes to fs.
func NewWriter(formatter Formatter, fs ports.FileSystem) *Writer {
	return &Writer{
		formatter: formatter,
		fs:        fs,
	}
}

// Write formats summary and stores it at path, creating the parent
// directory when needed.
func (w *Writer) Write(path string, summary *Summary) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := w.fs.MkdirAll(dir); err != nil {
			return fmt.Errorf("summary directory %s: %w", dir, err)
		}
	}

	if err := w.fs.WriteFile(path, []byte(w.formatter.Format(summary))); err != nil {
		return fmt.Errorf("summary %s: %w", path, err)
	}
	return nil
}
