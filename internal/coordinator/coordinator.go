package coordinator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/corewget/rangedl/internal/bufpool"
	"github.com/corewget/rangedl/internal/chunkbuf"
	"github.com/corewget/rangedl/internal/hashverify"
	"github.com/corewget/rangedl/internal/probe"
	"github.com/corewget/rangedl/internal/retry"
	"github.com/corewget/rangedl/internal/sizing"
	"github.com/corewget/rangedl/internal/spaceguard"
	"github.com/corewget/rangedl/internal/writer"
	gdlerrors "github.com/corewget/rangedl/pkg/errors"
	"github.com/corewget/rangedl/pkg/progress"
	"github.com/corewget/rangedl/pkg/types"
	"github.com/corewget/rangedl/pkg/validation"
)

const (
	defaultConnectionSpeedMbps = 100
	defaultInactivityTimeout   = 120 * time.Second
	minExplicitConnections     = 1
	maxExplicitConnections     = 32
	workerReadBufferSize       = 1 << 20 // 1 MiB, per spec.md's per-worker network chunk bound
	defaultHashType            = "md5"
)

// readBufferPool reuses per-worker network read buffers across ranges
// and across downloads, avoiding a fresh 1 MiB allocation per read call.
var readBufferPool = bufpool.New(workerReadBufferSize)

// Run executes one complete download: probing the remote object, sizing
// and partitioning the byte range, guarding free space, fetching every
// range concurrently, and optionally verifying the assembled file's hash.
// On any failure it unlinks the partial output before returning.
func Run(ctx context.Context, rawURL string, opts types.DownloadOptions, sink progress.Sink) (*types.Result, error) {
	if sink == nil {
		sink = progress.NoopSink{}
	}

	if err := validation.ValidateURL(rawURL); err != nil {
		return nil, gdlerrors.WrapErrorWithURL(err, gdlerrors.CodeInvalidArgument, "invalid URL", rawURL)
	}
	if err := validation.ValidateHeaders(opts.Headers); err != nil {
		return nil, gdlerrors.WrapError(err, gdlerrors.CodeInvalidArgument, "invalid headers")
	}
	if !opts.Connections.Auto {
		if err := validation.ValidateMaxConnections(opts.Connections.Value, minExplicitConnections, maxExplicitConnections); err != nil {
			return nil, gdlerrors.WrapError(err, gdlerrors.CodeInvalidArgument, "invalid connection count")
		}
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	m := newMachine()
	result := &types.Result{StartTime: time.Now()}

	client := opts.HTTPClient
	if client == nil {
		client = newClient(opts)
		defer client.CloseIdleConnections()
	}

	info, err := probe.Probe(ctx, client, rawURL, opts.Headers)
	if err != nil {
		return nil, err
	}
	if err := m.advance(Probed); err != nil {
		return nil, err
	}

	if err := validation.ValidateFileSize(info.Size); err != nil {
		return nil, gdlerrors.WrapErrorWithURL(err, gdlerrors.CodeInvalidFileSize, "invalid remote file size", rawURL)
	}

	outputPath, err := resolveOutputPath(opts.OutputPath, info.Filename, opts.Overwrite)
	if err != nil {
		return nil, gdlerrors.WrapError(err, gdlerrors.CodeInvalidArgument, "cannot resolve destination path")
	}
	if err := validation.ValidateDestination(outputPath); err != nil {
		return nil, gdlerrors.WrapError(err, gdlerrors.CodeInvalidArgument, "invalid destination")
	}

	connections := opts.Connections.Value
	if opts.Connections.Auto {
		speed := opts.ConnectionSpeedMbps
		if speed <= 0 {
			speed = defaultConnectionSpeedMbps
		}
		connections = sizing.Connections(info.Size, speed)
	}
	if !info.SupportsRanges {
		connections = 1
	}

	ranges := sizing.Partition(info.Size, connections)
	if err := m.advance(Planned); err != nil {
		return nil, err
	}

	destDir := filepath.Dir(outputPath)
	if err := spaceguard.CheckAvailableSpace(destDir, info.Size); err != nil {
		return nil, err
	}

	useRAMBuffer := resolveRAMBuffer(opts.EnableRAMBuffer, destDir)

	file, err := os.OpenFile(outputPath, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, gdlerrors.WrapErrorWithURL(err, gdlerrors.CodeDownload, "cannot create destination file", rawURL)
	}

	w, err := newWriter(file, info.Size, useRAMBuffer, opts.PreAllocateSpace)
	if err != nil {
		_ = file.Close()
		_ = os.Remove(outputPath)
		return nil, gdlerrors.WrapErrorWithURL(err, gdlerrors.CodeDownload, "cannot allocate destination file", rawURL)
	}
	if err := m.advance(Allocated); err != nil {
		_ = w.Close()
		_ = os.Remove(outputPath)
		return nil, err
	}

	if err := m.advance(Fetching); err != nil {
		_ = w.Close()
		_ = os.Remove(outputPath)
		return nil, err
	}

	fetchErr := fetchAll(ctx, client, rawURL, opts, info, ranges, w, useRAMBuffer, sink)
	closeErr := w.Close()

	if fetchErr != nil {
		_ = m.advance(Aborted)
		_ = os.Remove(outputPath)
		if ctx.Err() != nil || errors.Is(fetchErr, context.Canceled) {
			return nil, gdlerrors.WrapErrorWithURL(fetchErr, gdlerrors.CodeDownloadInterrupted, "download interrupted", rawURL)
		}
		return nil, fetchErr
	}
	if closeErr != nil {
		_ = m.advance(Aborted)
		_ = os.Remove(outputPath)
		return nil, gdlerrors.WrapErrorWithURL(closeErr, gdlerrors.CodeDownload, "failed to finalize destination file", rawURL)
	}

	result.OutputPath = outputPath
	result.Size = info.Size
	result.Connections = len(ranges)
	result.UsedRAMBuffer = useRAMBuffer

	if opts.ExpectedHash != "" {
		hashType := opts.HashType
		if hashType == "" {
			hashType = defaultHashType
		}

		verified, err := hashverify.VerifyFile(outputPath, hashType, opts.ExpectedHash)
		if err != nil {
			_ = m.advance(Aborted)
			_ = os.Remove(outputPath)
			return nil, gdlerrors.WrapErrorWithURL(err, gdlerrors.CodeHashVerification, "hash verification failed", rawURL)
		}
		if !verified {
			_ = m.advance(Aborted)
			_ = os.Remove(outputPath)
			return nil, gdlerrors.NewDownloadError(gdlerrors.CodeHashVerification, "downloaded file hash does not match the expected hash")
		}

		result.HashVerified = true
	}

	if err := m.advance(Completed); err != nil {
		return nil, err
	}

	result.EndTime = time.Now()

	return result, nil
}

// newClient builds a single-host HTTP transport tuned for a handful of
// concurrent ranged GETs against one origin.
func newClient(opts types.DownloadOptions) *http.Client {
	inactivity := opts.InactivityTimeout
	if inactivity <= 0 {
		inactivity = defaultInactivityTimeout
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          sizing.MaxConnections,
		MaxIdleConnsPerHost:   sizing.MaxConnections,
		MaxConnsPerHost:       sizing.MaxConnections,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		DisableCompression:    true,
		ResponseHeaderTimeout: inactivity,
	}

	return &http.Client{Transport: transport}
}

// resolveOutputPath fills in a missing or directory-only destination with
// the probed filename, then applies the overwrite/collision policy.
func resolveOutputPath(outputPath, filename string, overwrite bool) (string, error) {
	dest := outputPath
	if dest == "" {
		dest = filename
	} else if info, statErr := os.Stat(dest); statErr == nil && info.IsDir() {
		dest = filepath.Join(dest, filename)
	}

	dest, err := filepath.Abs(dest)
	if err != nil {
		return "", fmt.Errorf("resolving absolute path: %w", err)
	}

	if overwrite {
		return dest, nil
	}

	return nextAvailableName(dest), nil
}

// nextAvailableName appends _1, _2, ... before the extension until a free
// path is found.
func nextAvailableName(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}

	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)

	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", base, i, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

// resolveRAMBuffer applies the Enabled/Disabled/Auto policy; Auto disables
// the buffer when the destination directory is itself RAM-backed.
func resolveRAMBuffer(mode types.RAMBufferMode, destDir string) bool {
	switch mode {
	case types.RAMBufferEnabled:
		return true
	case types.RAMBufferDisabled:
		return false
	default:
		return !spaceguard.IsRAMBacked(destDir)
	}
}

// newWriter constructs the direct or mmap-backed writer for the destination
// file. The mmap-backed writer always pre-sizes the file; the direct writer
// pre-sizes it only when preAllocate is set.
func newWriter(file *os.File, size int64, useRAMBuffer, preAllocate bool) (writer.Writer, error) {
	if useRAMBuffer {
		return writer.NewBufferedWriter(file, size)
	}

	if preAllocate {
		if err := file.Truncate(size); err != nil {
			return nil, fmt.Errorf("pre-allocating destination: %w", err)
		}
	}

	return writer.NewDirectWriter(file), nil
}

// fetchAll spawns one task per range and waits for all of them, cancelling
// the remaining tasks on the first error.
func fetchAll(
	ctx context.Context,
	client *http.Client,
	rawURL string,
	opts types.DownloadOptions,
	info *types.RemoteFileInfo,
	ranges []types.ChunkRange,
	w writer.Writer,
	useRAMBuffer bool,
	sink progress.Sink,
) error {
	group, groupCtx := errgroup.WithContext(ctx)

	var limiter *chunkbuf.Limiter
	if useRAMBuffer {
		available, haveRAM := spaceguard.AvailableMemory()
		limiter = chunkbuf.NewLimiter(sizing.MaxBufferSize(sizing.DefaultMaxBufferSize, available, haveRAM))
	}

	// A single task against a server that never advertised range support
	// gets a plain GET instead of a Range header it may reject outright.
	omitRangeHeader := len(ranges) == 1 && !info.SupportsRanges

	for _, r := range ranges {
		r := r
		taskID := sink.AddTask(r.Len())

		group.Go(func() error {
			err := fetchRange(groupCtx, client, rawURL, opts.Headers, r, w, useRAMBuffer, limiter, omitRangeHeader, sink, taskID)
			sink.Finish(taskID)
			return err
		})
	}

	return group.Wait()
}

// fetchRange downloads one byte range with retry and writes it into w at
// its absolute file offset.
func fetchRange(
	ctx context.Context,
	client *http.Client,
	rawURL string,
	headers map[string]string,
	r types.ChunkRange,
	w writer.Writer,
	useRAMBuffer bool,
	limiter *chunkbuf.Limiter,
	omitRangeHeader bool,
	sink progress.Sink,
	taskID progress.TaskID,
) error {
	var writePos int64

	var chunkBuf *chunkbuf.Buffer
	if useRAMBuffer {
		chunkSize := r.Len()
		if chunkSize > sizing.MaxChunkSize {
			chunkSize = sizing.MaxChunkSize
		}
		chunkBuf = chunkbuf.NewBuffer(limiter, chunkSize)
	}

	manager := retry.WorkerRetryManager()

	return manager.ExecuteWithRetry(ctx, func() error {
		// A retried attempt resumes from where the previous one left off.
		// Any bytes the failed attempt left staged in chunkBuf were never
		// written to the file, so they're discarded rather than counted:
		// refetching them from the network is the only way to get a
		// contiguous write, and keeping them around would duplicate bytes
		// at the retried offset.
		if chunkBuf != nil {
			chunkBuf.Discard()
		}

		remaining := types.ChunkRange{Start: r.Start + writePos, End: r.End}
		if remaining.Start > remaining.End {
			return nil
		}

		n, err := fetchOnce(ctx, client, rawURL, headers, remaining, w, useRAMBuffer, chunkBuf, omitRangeHeader, sink, taskID, r.Start+writePos)
		writePos += n

		return err
	})
}

// fetchOnce performs a single HTTP attempt for remaining, returning the
// number of bytes durably flushed to w (never bytes merely read from the
// network and still staged in chunkBuf), so writePos only ever advances
// past data that's actually on disk.
func fetchOnce(
	ctx context.Context,
	client *http.Client,
	rawURL string,
	headers map[string]string,
	remaining types.ChunkRange,
	w writer.Writer,
	useRAMBuffer bool,
	chunkBuf *chunkbuf.Buffer,
	omitRangeHeader bool,
	sink progress.Sink,
	taskID progress.TaskID,
	absoluteStart int64,
) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, gdlerrors.WrapErrorWithURL(err, gdlerrors.CodeDownload, "creating range request", rawURL)
	}

	for name, value := range headers {
		req.Header.Set(name, value)
	}
	req.Header.Set("Accept-Encoding", "identity")
	if !omitRangeHeader {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", remaining.Start, remaining.End))
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, gdlerrors.WrapErrorWithURL(err, gdlerrors.CodeDownload, "fetching range", rawURL)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusPartialContent && resp.StatusCode != http.StatusOK {
		return 0, gdlerrors.FromHTTPStatus(resp.StatusCode, rawURL)
	}

	var flushed int64
	buf := readBufferPool.Get()
	defer readBufferPool.Put(buf)
	writeOffset := absoluteStart

	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			data := buf[:n]

			if useRAMBuffer {
				emitted, bufErr := chunkBuf.Write(ctx, data)
				if bufErr != nil {
					return flushed, gdlerrors.WrapErrorWithURL(bufErr, gdlerrors.CodeDownload, "staging range", rawURL)
				}
				if emitted != nil {
					if _, werr := w.WriteAt(emitted, writeOffset); werr != nil {
						return flushed, gdlerrors.WrapErrorWithURL(werr, gdlerrors.CodeDownload, "writing range", rawURL)
					}
					writeOffset += int64(len(emitted))
					chunkBuf.Release(int64(len(emitted)))
					flushed += int64(len(emitted))
				}
			} else {
				if _, werr := w.WriteAt(data, writeOffset); werr != nil {
					return flushed, gdlerrors.WrapErrorWithURL(werr, gdlerrors.CodeDownload, "writing range", rawURL)
				}
				writeOffset += int64(n)
				flushed += int64(n)
			}

			sink.Advance(taskID, int64(n))
		}

		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return flushed, gdlerrors.WrapErrorWithURL(readErr, gdlerrors.CodeDownload, "reading range response", rawURL)
		}
	}

	if useRAMBuffer {
		if residual := chunkBuf.Flush(); len(residual) > 0 {
			if _, werr := w.WriteAt(residual, writeOffset); werr != nil {
				return flushed, gdlerrors.WrapErrorWithURL(werr, gdlerrors.CodeDownload, "writing final range chunk", rawURL)
			}
			chunkBuf.Release(int64(len(residual)))
			flushed += int64(len(residual))
		}
	}

	return flushed, nil
}
