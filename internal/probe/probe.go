// Package probe resolves the identity of a remote file before any bytes
// are fetched: its size, filename, content type, and whether the server
// honors byte-range requests.
package probe

import (
	"context"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/corewget/rangedl/internal/retry"
	gdlerrors "github.com/corewget/rangedl/pkg/errors"
	"github.com/corewget/rangedl/pkg/types"
)

const defaultFilename = "unknown_file"

// Probe resolves rawURL's RemoteFileInfo. It first tries a HEAD request;
// servers that reject or mishandle HEAD (405, 501, or a transport error)
// are retried with a ranged GET of a single byte, which every
// range-capable server answers correctly and which costs at most one byte
// of transfer. The whole operation is wrapped in retry.ProbeRetryManager's
// exponential backoff.
func Probe(ctx context.Context, client *http.Client, rawURL string, headers map[string]string) (*types.RemoteFileInfo, error) {
	var info *types.RemoteFileInfo

	rm := retry.ProbeRetryManager()
	err := rm.ExecuteWithRetry(ctx, func() error {
		resolved, probeErr := probeOnce(ctx, client, rawURL, headers)
		if probeErr != nil {
			return probeErr
		}

		info = resolved

		return nil
	})
	if err != nil {
		return nil, err
	}

	return info, nil
}

func probeOnce(ctx context.Context, client *http.Client, rawURL string, headers map[string]string) (*types.RemoteFileInfo, error) {
	resp, err := doHead(ctx, client, rawURL, headers)
	if err != nil || !usableHeadResponse(resp) {
		if resp != nil {
			_ = resp.Body.Close()
		}

		resp, err = doRangedGET(ctx, client, rawURL, headers)
		if err != nil {
			return nil, gdlerrors.WrapErrorWithURL(err, gdlerrors.CodeRemoteFile, "probe request failed", rawURL)
		}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return nil, gdlerrors.FromHTTPStatus(resp.StatusCode, rawURL)
	}

	size, err := resolveSize(resp)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, gdlerrors.NewDownloadError(gdlerrors.CodeInvalidFileSize, "remote server reported a non-positive file size")
	}

	return &types.RemoteFileInfo{
		CanonicalURL:   resp.Request.URL.String(),
		Filename:       resolveFilename(rawURL, resp),
		MIMEType:       resolveMIMEType(resp),
		Size:           size,
		SupportsRanges: resp.Header.Get("Accept-Ranges") == "bytes" || resp.StatusCode == http.StatusPartialContent,
	}, nil
}

func doHead(ctx context.Context, client *http.Client, rawURL string, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return nil, err
	}

	applyHeaders(req, headers)

	return client.Do(req)
}

func doRangedGET(ctx context.Context, client *http.Client, rawURL string, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	applyHeaders(req, headers)
	req.Header.Set("Range", "bytes=0-0")

	return client.Do(req)
}

func applyHeaders(req *http.Request, headers map[string]string) {
	req.Header.Set("Accept-Encoding", "identity")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
}

// usableHeadResponse reports whether a HEAD response can be trusted for
// sizing, rejecting the 405/501 cases some servers return for HEAD.
func usableHeadResponse(resp *http.Response) bool {
	if resp == nil {
		return false
	}

	switch resp.StatusCode {
	case http.StatusMethodNotAllowed, http.StatusNotImplemented:
		return false
	default:
		return true
	}
}

func resolveSize(resp *http.Response) (int64, error) {
	if resp.StatusCode == http.StatusPartialContent {
		if size, ok := sizeFromContentRange(resp.Header.Get("Content-Range")); ok {
			return size, nil
		}
	}

	contentLength := resp.Header.Get("Content-Length")
	if contentLength == "" {
		return 0, gdlerrors.NewDownloadError(gdlerrors.CodeUnidentifiedFileSize, "remote server did not disclose a file size")
	}

	size, err := strconv.ParseInt(contentLength, 10, 64)
	if err != nil {
		return 0, gdlerrors.WrapError(err, gdlerrors.CodeUnidentifiedFileSize, "malformed Content-Length header")
	}

	return size, nil
}

// sizeFromContentRange parses "bytes 0-0/12345" into 12345.
func sizeFromContentRange(header string) (int64, bool) {
	idx := strings.LastIndex(header, "/")
	if idx == -1 || idx == len(header)-1 {
		return 0, false
	}

	total := header[idx+1:]
	if total == "*" {
		return 0, false
	}

	size, err := strconv.ParseInt(total, 10, 64)
	if err != nil {
		return 0, false
	}

	return size, true
}

// resolveFilename picks a name from Content-Disposition, falling back to
// the URL's last path segment and finally a generic placeholder. Whatever
// name is chosen, if it carries no extension the response's MIME type
// supplies one, so every resolved filename ends up identifiable by
// extension even when the source gave none.
func resolveFilename(rawURL string, resp *http.Response) string {
	name := defaultFilename

	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if cdName := filenameFromContentDisposition(cd); cdName != "" {
			name = cdName
		}
	}

	if name == defaultFilename {
		if urlName := filenameFromURL(rawURL); urlName != "" {
			name = urlName
		}
	}

	if filepath.Ext(name) == "" {
		if ext := extensionFromContentType(resp.Header.Get("Content-Type")); ext != "" {
			name += ext
		}
	}

	return name
}

// filenameFromContentDisposition supports both the plain filename="..."
// form and the RFC 5987 filename*=UTF-8''... form, preferring the latter
// when both are present since it carries an explicit charset.
func filenameFromContentDisposition(header string) string {
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}

	if encoded, ok := params["filename*"]; ok {
		if name := decodeRFC5987(encoded); name != "" {
			return name
		}
	}

	return params["filename"]
}

// decodeRFC5987 decodes "UTF-8''%e2%82%ac%20rates" style values.
func decodeRFC5987(value string) string {
	parts := strings.SplitN(value, "'", 3)
	if len(parts) != 3 {
		return ""
	}

	decoded, err := url.QueryUnescape(parts[2])
	if err != nil {
		return ""
	}

	return decoded
}

func filenameFromURL(rawURL string) string {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	urlPath := parsedURL.Path
	if urlPath == "" || urlPath == "/" {
		return ""
	}

	segments := strings.Split(strings.Trim(urlPath, "/"), "/")
	filename := segments[len(segments)-1]
	if filename == "" || filename == "." {
		return ""
	}

	return filename
}

func extensionFromContentType(contentType string) string {
	if contentType == "" {
		return ""
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}

	exts, err := mime.ExtensionsByType(mediaType)
	if err != nil || len(exts) == 0 {
		return ""
	}

	return exts[0]
}

func resolveMIMEType(resp *http.Response) string {
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		return "application/octet-stream"
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return contentType
	}

	return mediaType
}
