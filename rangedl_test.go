package rangedl

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/google/uuid"

	"github.com/corewget/rangedl/pkg/types"
)

func rangeServer(t *testing.T, payload []byte) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Accept-Ranges", "bytes")
		w.Header().Set("Content-Disposition", `attachment; filename="payload.bin"`)

		rangeHeader := r.Header.Get("Range")
		if rangeHeader == "" {
			w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
			w.WriteHeader(http.StatusOK)
			if r.Method != http.MethodHead {
				_, _ = w.Write(payload)
			}
			return
		}

		var start, end int
		if _, err := fmt.Sscanf(rangeHeader, "bytes=%d-%d", &start, &end); err != nil {
			http.Error(w, "bad range", http.StatusRequestedRangeNotSatisfiable)
			return
		}
		if end >= len(payload) {
			end = len(payload) - 1
		}

		w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, len(payload)))
		w.Header().Set("Content-Length", strconv.Itoa(end-start+1))
		w.WriteHeader(http.StatusPartialContent)
		_, _ = w.Write(payload[start : end+1])
	}))
}

func TestDownloaderDownloadEndToEnd(t *testing.T) {
	payload := bytes.Repeat([]byte("xyz123"), 10000)

	server := rangeServer(t, payload)
	defer server.Close()

	d := New(WithMaxConnections(4), WithConnectionSpeed(50))

	outputPath := filepath.Join(t.TempDir(), "out.bin")
	result, err := d.Download(context.Background(), server.URL,
		WithOutputPath(outputPath),
		WithOverwrite(true),
	)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}

	if result.Size != int64(len(payload)) {
		t.Errorf("Size = %d, want %d", result.Size, len(payload))
	}
	if _, err := uuid.Parse(result.JobID); err != nil {
		t.Errorf("JobID = %q, want a valid UUID: %v", result.JobID, err)
	}

	got, err := os.ReadFile(result.OutputPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Error("downloaded file contents do not match the source payload")
	}
}

func TestDownloaderProbeResolvesFileInfo(t *testing.T) {
	payload := []byte("probe me")
	server := rangeServer(t, payload)
	defer server.Close()

	d := New()

	info, err := d.Probe(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if info.Size != int64(len(payload)) {
		t.Errorf("Size = %d, want %d", info.Size, len(payload))
	}
	if !info.SupportsRanges {
		t.Error("expected SupportsRanges true")
	}
}

func TestWithRequestHeadersMergesAcrossCalls(t *testing.T) {
	var opts types.DownloadOptions
	WithRequestHeaders(map[string]string{"X-One": "1"})(&opts)
	WithRequestHeaders(map[string]string{"X-Two": "2"})(&opts)

	if opts.Headers["X-One"] != "1" || opts.Headers["X-Two"] != "2" {
		t.Errorf("Headers = %v, want both X-One and X-Two set", opts.Headers)
	}
}

func TestNewDefaultsConnectionsToAuto(t *testing.T) {
	d := New()
	if !d.connections.Auto {
		t.Error("expected New() to default Connections to Auto")
	}
}
