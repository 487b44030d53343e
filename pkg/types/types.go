// Package types defines the shared data model for the rangedl download library.
package types

import (
	"net/http"
	"time"
)

// RAMBufferMode selects whether the downloader stages writes through a
// bounded in-RAM chunk buffer and memory-mapped file, writes directly
// under a locked seek+write, or decides automatically from the
// destination filesystem.
type RAMBufferMode int

const (
	// RAMBufferAuto disables the RAM buffer when the destination is a
	// RAM-backed filesystem (tmpfs/ramfs/devtmpfs) and enables it otherwise.
	RAMBufferAuto RAMBufferMode = iota
	// RAMBufferEnabled forces the memory-mapped, chunk-buffered writer.
	RAMBufferEnabled
	// RAMBufferDisabled forces the direct locked writer.
	RAMBufferDisabled
)

// ConnectionCount selects either an explicit connection count or the sizing
// model's automatic choice.
type ConnectionCount struct {
	Auto  bool
	Value int
}

// Auto is the sentinel ConnectionCount that defers to the sizing model.
var Auto = ConnectionCount{Auto: true}

// Explicit returns a ConnectionCount pinned to n connections.
func Explicit(n int) ConnectionCount {
	return ConnectionCount{Value: n}
}

// RemoteFileInfo is the resolved identity of a remote object, as produced
// by the probe step.
type RemoteFileInfo struct {
	// CanonicalURL is the URL after redirects were followed.
	CanonicalURL string

	// Filename is derived from Content-Disposition, else the URL path
	// basename, else "unknown_file" plus a MIME-guessed extension.
	Filename string

	// MIMEType is the first token of Content-Type, default application/octet-stream.
	MIMEType string

	// Size is the total size of the remote object in bytes. Always > 0;
	// an unknown or non-positive size is surfaced as an error before a
	// RemoteFileInfo is ever constructed.
	Size int64

	// SupportsRanges reports whether the server advertised Accept-Ranges: bytes.
	SupportsRanges bool
}

// ChunkRange is a closed inclusive byte interval assigned to one worker.
type ChunkRange struct {
	Start int64
	End   int64
}

// Len returns the number of bytes covered by the range.
func (c ChunkRange) Len() int64 {
	return c.End - c.Start + 1
}

// DownloadOptions configures a single Download call.
type DownloadOptions struct {
	// OutputPath is the destination file or directory. If empty, the
	// resolved filename is written to the current directory.
	OutputPath string

	// Connections picks the number of concurrent ranged GETs. The zero
	// value is types.Auto, deferring to the sizing model.
	Connections ConnectionCount

	// ConnectionSpeedMbps is the caller's estimate of link speed, fed
	// into the sizing model when Connections is Auto. Non-positive
	// values fall back to a default of 100.
	ConnectionSpeedMbps float64

	// PreAllocateSpace truncates the output file to its final size
	// before any writes occur.
	PreAllocateSpace bool

	// EnableRAMBuffer selects the write strategy. Defaults to RAMBufferAuto.
	EnableRAMBuffer RAMBufferMode

	// Overwrite controls collision handling: true replaces an existing
	// file at OutputPath, false appends a numeric suffix (_1, _2, ...)
	// until a free name is found.
	Overwrite bool

	// Headers are additional request headers, case-insensitively merged
	// with the downloader's configured headers. Accept-Encoding, Range,
	// and Connection are reserved and rejected.
	Headers map[string]string

	// InactivityTimeout bounds how long each request on the built-in
	// transport waits for response headers. Idle time between body reads
	// is not bounded, and the value has no effect when HTTPClient is set.
	// Zero uses the default of 120s.
	InactivityTimeout time.Duration

	// Timeout bounds the whole operation. Zero means no overall timeout.
	Timeout time.Duration

	// ExpectedHash, if non-empty, is compared against the assembled
	// file's digest computed with HashType.
	ExpectedHash string

	// HashType names the digest algorithm: md5, sha1, sha224, sha256,
	// sha384, sha512, blake2b, blake2s, sha3_224, sha3_256, sha3_384,
	// sha3_512, shake_128, shake_256. Defaults to md5.
	HashType string

	// HTTPClient overrides the transport used for this download. Nil
	// builds the default tuned single-host transport.
	HTTPClient *http.Client
}

// Result is returned by a successful Download call.
type Result struct {
	// JobID correlates this download's log lines and progress events; a
	// fresh UUID generated once per Download call.
	JobID string

	// OutputPath is the final filesystem path the file was written to.
	OutputPath string

	// Size is the number of bytes written.
	Size int64

	// Connections is the number of concurrent ranged GETs used.
	Connections int

	// UsedRAMBuffer reports which writer strategy was actually used.
	UsedRAMBuffer bool

	// StartTime and EndTime bound the operation.
	StartTime time.Time
	EndTime   time.Time

	// HashVerified reports whether a hash comparison was performed and passed.
	HashVerified bool
}

// Duration returns the wall-clock time the download took.
func (r *Result) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}
