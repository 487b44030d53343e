//go:build !linux

package spaceguard

// IsRAMBacked always reports false on platforms without a
// /proc/self/mountinfo-style mount table to consult, so in auto mode
// callers keep the buffered writer.
func IsRAMBacked(dir string) bool {
	return false
}

// AvailableMemory always reports unknown on platforms without a
// /proc/meminfo-style interface to consult; callers fall back to the
// configured buffer cap alone.
func AvailableMemory() (bytes uint64, ok bool) {
	return 0, false
}
