// Command rangedl downloads a single URL over concurrent byte-range GETs.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/corewget/rangedl"
	"github.com/corewget/rangedl/pkg/types"
)

var version = "dev" // set via ldflags during build

const appName = "rangedl"

// config holds the parsed command-line flags for one invocation.
type config struct {
	output          string
	connections     int
	connectionSpeed float64
	timeout         time.Duration
	inactivity      time.Duration
	overwrite       bool
	preAllocate     bool
	ramBuffer       string
	hashType        string
	expectedHash    string
	quiet           bool
	showVersion     bool
}

// headerFlags implements flag.Value, collecting repeated -header "Key: Value" pairs.
type headerFlags []string

func (h *headerFlags) String() string {
	return strings.Join(*h, ",")
}

func (h *headerFlags) Set(value string) error {
	*h = append(*h, value)
	return nil
}

func parseArgs(args []string) (*config, string, map[string]string, error) {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)

	cfg := &config{}
	var headers headerFlags

	fs.StringVar(&cfg.output, "o", "", "output file path (default: derived from the URL)")
	fs.StringVar(&cfg.output, "output", "", "output file path (default: derived from the URL)")
	fs.IntVar(&cfg.connections, "connections", 0, "number of concurrent ranged GETs (0 = automatic)")
	fs.Float64Var(&cfg.connectionSpeed, "connection-speed", 100, "estimated link speed in Mbps, used when -connections is 0")
	fs.DurationVar(&cfg.timeout, "timeout", 0, "overall download timeout (0 = no limit)")
	fs.DurationVar(&cfg.inactivity, "inactivity-timeout", 120*time.Second, "how long each ranged request waits for response headers (idle body reads are not bounded)")
	fs.BoolVar(&cfg.overwrite, "f", false, "overwrite an existing file at the output path")
	fs.BoolVar(&cfg.overwrite, "force", false, "overwrite an existing file at the output path")
	fs.BoolVar(&cfg.preAllocate, "preallocate", false, "truncate the output file to its final size before writing")
	fs.StringVar(&cfg.ramBuffer, "ram-buffer", "auto", "write strategy: auto, on, or off")
	fs.StringVar(&cfg.hashType, "hash-type", "", "digest algorithm to verify against -hash (md5, sha256, blake2b, ...)")
	fs.StringVar(&cfg.expectedHash, "hash", "", "expected digest; when set, the download is verified and removed on mismatch")
	fs.BoolVar(&cfg.quiet, "q", false, "suppress progress output")
	fs.BoolVar(&cfg.quiet, "quiet", false, "suppress progress output")
	fs.BoolVar(&cfg.showVersion, "version", false, "print version information and exit")
	fs.Var(&headers, "header", "add a request header 'Key: Value' (repeatable)")

	if err := fs.Parse(args[1:]); err != nil {
		return nil, "", nil, err
	}

	headerMap := make(map[string]string, len(headers))
	for _, h := range headers {
		parts := strings.SplitN(h, ":", 2)
		if len(parts) != 2 {
			return nil, "", nil, fmt.Errorf("invalid -header value %q, want 'Key: Value'", h)
		}
		headerMap[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}

	rawURL := ""
	if rest := fs.Args(); len(rest) > 0 {
		rawURL = rest[0]
	}

	return cfg, rawURL, headerMap, nil
}

func ramBufferMode(s string) (types.RAMBufferMode, error) {
	switch strings.ToLower(s) {
	case "auto", "":
		return types.RAMBufferAuto, nil
	case "on", "enabled":
		return types.RAMBufferEnabled, nil
	case "off", "disabled":
		return types.RAMBufferDisabled, nil
	default:
		return 0, fmt.Errorf("invalid -ram-buffer value %q, want auto, on, or off", s)
	}
}

func run(args []string) int {
	cfg, rawURL, headers, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		return 2
	}

	if cfg.showVersion {
		fmt.Printf("%s %s\n", appName, version)
		return 0
	}

	if rawURL == "" {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <url>\n", appName)
		return 2
	}

	mode, err := ramBufferMode(cfg.ramBuffer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		return 2
	}

	downloaderOpts := []rangedl.Option{
		rangedl.WithConnectionSpeed(cfg.connectionSpeed),
		rangedl.WithShowProgress(!cfg.quiet),
	}
	if cfg.connections > 0 {
		downloaderOpts = append(downloaderOpts, rangedl.WithMaxConnections(cfg.connections))
	}
	if len(headers) > 0 {
		downloaderOpts = append(downloaderOpts, rangedl.WithHeaders(headers))
	}

	d := rangedl.New(downloaderOpts...)

	downloadOpts := []rangedl.DownloadOption{
		rangedl.WithOutputPath(cfg.output),
		rangedl.WithOverwrite(cfg.overwrite),
		rangedl.WithPreAllocateSpace(cfg.preAllocate),
		rangedl.WithRAMBuffer(mode),
		rangedl.WithInactivityTimeout(cfg.inactivity),
		rangedl.WithTimeout(cfg.timeout),
	}
	if cfg.expectedHash != "" {
		hashType := cfg.hashType
		if hashType == "" {
			hashType = "md5"
		}
		downloadOpts = append(downloadOpts, rangedl.WithExpectedHash(hashType, cfg.expectedHash))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	result, err := d.Download(ctx, rawURL, downloadOpts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: download failed: %v\n", appName, err)
		return 1
	}

	if !cfg.quiet {
		fmt.Printf("downloaded %s to %s in %s (%d connections, ram_buffer=%t)\n",
			formatBytes(result.Size), result.OutputPath, result.Duration().Round(time.Millisecond),
			result.Connections, result.UsedRAMBuffer)
	}

	return 0
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}

	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func main() {
	os.Exit(run(os.Args))
}
