// Package sizing computes how many concurrent ranged GETs to issue against
// a remote file and how to partition its bytes among them.
package sizing

const (
	// OneMB is one mebibyte, the unit the connection-count model works in.
	OneMB = 1024 * 1024

	// OneGB is one gibibyte, used as the free-space safety margin.
	OneGB = 1024 * 1024 * 1024

	// MinChunkSize is the smallest range a single worker is ever assigned.
	MinChunkSize = 16 * OneMB

	// MaxChunkSize is the largest range a single worker is ever assigned.
	MaxChunkSize = 256 * OneMB

	// MinConnections is the floor on concurrent ranged GETs.
	MinConnections = 2

	// MaxConnections is the ceiling on concurrent ranged GETs.
	MaxConnections = 24

	// FreeSpaceMargin is added to the remote file size when checking
	// available disk space, to leave headroom for filesystem overhead.
	FreeSpaceMargin = OneGB

	// DefaultMaxBufferSize bounds the staged chunk-buffer writer's
	// in-flight memory when enable_ram_buffer is active.
	DefaultMaxBufferSize = 2 * OneGB

	// MaxRAMUsageFraction is the enforced ceiling on the buffer's share
	// of RAM available at construction time: the effective cap is
	// min(DefaultMaxBufferSize, MaxRAMUsageFraction * available RAM).
	MaxRAMUsageFraction = 0.30
)
