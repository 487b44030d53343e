// Package rangedl downloads one URL over several concurrent byte-range
// GETs and reassembles the result into a single local file.
package rangedl

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/corewget/rangedl/internal/coordinator"
	"github.com/corewget/rangedl/internal/probe"
	"github.com/corewget/rangedl/pkg/progress"
	"github.com/corewget/rangedl/pkg/types"
)

// Result is returned by a successful Download call.
type Result = types.Result

// Downloader holds configuration shared across every Download call it
// makes: connection policy, headers, the HTTP client, and the logger.
type Downloader struct {
	client              *http.Client
	connections         types.ConnectionCount
	connectionSpeedMbps float64
	headers             map[string]string
	showProgress        bool
	logger              *log.Logger
}

// Option configures a Downloader at construction time.
type Option func(*Downloader)

// WithMaxConnections pins the connection count used for every download
// made by this Downloader, overriding the sizing model. n must be within
// [1, 32]; Download validates and rejects an out-of-range value.
func WithMaxConnections(n int) Option {
	return func(d *Downloader) {
		d.connections = types.Explicit(n)
	}
}

// WithConnectionSpeed sets the estimated link speed in Mbps fed into the
// sizing model when the connection count is left automatic.
func WithConnectionSpeed(mbps float64) Option {
	return func(d *Downloader) {
		d.connectionSpeedMbps = mbps
	}
}

// WithHeaders sets request headers merged into every download made by this
// Downloader. Per-call headers passed to Download take precedence.
func WithHeaders(headers map[string]string) Option {
	return func(d *Downloader) {
		d.headers = headers
	}
}

// WithShowProgress enables a logging-based progress sink for every
// download; when false, progress updates are discarded.
func WithShowProgress(show bool) Option {
	return func(d *Downloader) {
		d.showProgress = show
	}
}

// WithLogger overrides the Downloader's logger. The default logs to
// os.Stderr with a "[RANGEDL] " prefix.
func WithLogger(logger *log.Logger) Option {
	return func(d *Downloader) {
		d.logger = logger
	}
}

// WithHTTPClient overrides the Downloader's HTTP client, replacing its
// default transport tuning.
func WithHTTPClient(client *http.Client) Option {
	return func(d *Downloader) {
		d.client = client
	}
}

// New constructs a Downloader. Connections default to types.Auto and
// connection speed to 100 Mbps unless overridden.
func New(opts ...Option) *Downloader {
	d := &Downloader{
		connections: types.Auto,
		logger:      log.New(os.Stderr, "[RANGEDL] ", log.LstdFlags),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// DownloadOption configures a single Download call.
type DownloadOption func(*types.DownloadOptions)

// WithOutputPath sets the destination file or directory.
func WithOutputPath(path string) DownloadOption {
	return func(o *types.DownloadOptions) {
		o.OutputPath = path
	}
}

// WithPreAllocateSpace truncates the destination file to its final size
// before any writes occur.
func WithPreAllocateSpace(enable bool) DownloadOption {
	return func(o *types.DownloadOptions) {
		o.PreAllocateSpace = enable
	}
}

// WithRAMBuffer selects the write strategy for this call.
func WithRAMBuffer(mode types.RAMBufferMode) DownloadOption {
	return func(o *types.DownloadOptions) {
		o.EnableRAMBuffer = mode
	}
}

// WithOverwrite controls collision handling for an existing destination.
func WithOverwrite(overwrite bool) DownloadOption {
	return func(o *types.DownloadOptions) {
		o.Overwrite = overwrite
	}
}

// WithRequestHeaders merges additional per-call request headers.
func WithRequestHeaders(headers map[string]string) DownloadOption {
	return func(o *types.DownloadOptions) {
		if o.Headers == nil {
			o.Headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			o.Headers[k] = v
		}
	}
}

// WithInactivityTimeout sets how long each ranged request waits for its
// response headers on the built-in transport; idle time between body
// reads is not bounded.
func WithInactivityTimeout(d time.Duration) DownloadOption {
	return func(o *types.DownloadOptions) {
		o.InactivityTimeout = d
	}
}

// WithTimeout bounds the whole download.
func WithTimeout(d time.Duration) DownloadOption {
	return func(o *types.DownloadOptions) {
		o.Timeout = d
	}
}

// WithExpectedHash enables post-download hash verification.
func WithExpectedHash(hashType, expected string) DownloadOption {
	return func(o *types.DownloadOptions) {
		o.HashType = hashType
		o.ExpectedHash = expected
	}
}

// Download fetches rawURL and writes it to the destination named by opts,
// applying functional per-call options over the Downloader's defaults.
func (d *Downloader) Download(ctx context.Context, rawURL string, opts ...DownloadOption) (*Result, error) {
	headers := make(map[string]string, len(d.headers))
	for k, v := range d.headers {
		headers[k] = v
	}

	options := types.DownloadOptions{
		Connections:         d.connections,
		ConnectionSpeedMbps: d.connectionSpeedMbps,
		Headers:             headers,
		HTTPClient:          d.client,
	}

	for _, opt := range opts {
		opt(&options)
	}

	jobID := uuid.New().String()

	var sink progress.Sink = progress.NoopSink{}
	if d.showProgress {
		sink = progress.NewCallbackSink(-1, func(bytesDownloaded, totalBytes, speed int64) {
			d.logProgress(jobID, bytesDownloaded, totalBytes, speed)
		})
	}

	result, err := coordinator.Run(ctx, rawURL, options, sink)
	if result != nil {
		result.JobID = jobID
	}

	return result, err
}

// logProgress is the progress callback used when WithShowProgress is
// enabled.
func (d *Downloader) logProgress(jobID string, bytesDownloaded, totalBytes, speed int64) {
	d.logger.Print(fmt.Sprintf("download progress: job=%s bytes=%d total=%d speed_bps=%d", jobID, bytesDownloaded, totalBytes, speed))
}

// Probe resolves a remote file's identity without downloading it.
func (d *Downloader) Probe(ctx context.Context, rawURL string) (*types.RemoteFileInfo, error) {
	client := d.client
	if client == nil {
		client = http.DefaultClient
	}

	return probe.Probe(ctx, client, rawURL, d.headers)
}
