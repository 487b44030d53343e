// Package writer provides the two strategies for assembling concurrently
// fetched byte ranges into one output file: a direct locked writer and a
// memory-mapped, chunk-buffered writer.
package writer

import "io"

// Writer is the shared shape both write strategies implement: a plain
// positional write, unifying the direct *os.File target and the
// mmap-backed target behind one interface.
type Writer interface {
	io.WriterAt

	// Close flushes and releases any resources the writer holds.
	Close() error
}
