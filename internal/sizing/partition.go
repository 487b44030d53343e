package sizing

import "github.com/corewget/rangedl/pkg/types"

// Partition divides a file of sizeBytes into contiguous, non-overlapping
// byte ranges for connections workers. The per-worker chunk size is
// clamp(ceil(size/connections), MinChunkSize, MaxChunkSize); the last
// range absorbs whatever remainder doesn't divide evenly, so the number of
// ranges returned can be less than connections for small files and more
// than connections for very large ones once the clamp caps chunk size.
func Partition(sizeBytes int64, connections int) []types.ChunkRange {
	if sizeBytes <= 0 || connections <= 0 {
		return nil
	}

	chunkSize := ceilDiv(sizeBytes, int64(connections))
	if chunkSize < MinChunkSize {
		chunkSize = MinChunkSize
	}
	if chunkSize > MaxChunkSize {
		chunkSize = MaxChunkSize
	}

	var ranges []types.ChunkRange

	start := int64(0)
	for start < sizeBytes {
		end := start + chunkSize - 1
		if end > sizeBytes-1 {
			end = sizeBytes - 1
		}

		ranges = append(ranges, types.ChunkRange{Start: start, End: end})
		start = end + 1
	}

	return ranges
}

func ceilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}

// MaxBufferSize returns the effective cap on the buffered writer's
// in-flight memory: min(configuredCap, MaxRAMUsageFraction * available
// RAM). If available RAM couldn't be sampled, configuredCap alone applies.
func MaxBufferSize(configuredCap int64, availableRAM uint64, haveRAM bool) int64 {
	if !haveRAM {
		return configuredCap
	}

	ramCap := int64(float64(availableRAM) * MaxRAMUsageFraction)
	if ramCap < MinChunkSize {
		ramCap = MinChunkSize
	}
	if ramCap < configuredCap {
		return ramCap
	}

	return configuredCap
}
