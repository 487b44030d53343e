//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package writer

import (
	"fmt"
	"os"
)

// BufferedWriter falls back to plain positional writes on platforms
// without the mmap support buffered_unix.go uses. Correctness is
// identical (disjoint ranges, no data loss); only the write mechanism
// differs, so this is a documented platform-parity gap, not a silent
// behavior change.
type BufferedWriter struct {
	file *os.File
}

// NewBufferedWriter truncates file to its final size.
func NewBufferedWriter(file *os.File, size int64) (*BufferedWriter, error) {
	if err := file.Truncate(size); err != nil {
		return nil, fmt.Errorf("truncate to final size: %w", err)
	}

	return &BufferedWriter{file: file}, nil
}

// WriteAt implements Writer.
func (w *BufferedWriter) WriteAt(p []byte, off int64) (int, error) {
	return w.file.WriteAt(p, off)
}

// Close implements Writer.
func (w *BufferedWriter) Close() error {
	return w.file.Close()
}
