//go:build linux

package spaceguard

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

// ramFilesystems is the set of in-memory filesystem types; a destination on
// one of them already lives in RAM, so auto mode skips the RAM-staged
// buffered writer there and uses direct writes.
var ramFilesystems = map[string]struct{}{
	"tmpfs":    {},
	"ramfs":    {},
	"devtmpfs": {},
}

// IsRAMBacked reports whether dir sits on a RAM-backed filesystem
// (tmpfs/ramfs/devtmpfs), by finding the longest mountinfo entry whose
// mount point prefixes dir.
func IsRAMBacked(dir string) bool {
	fsType, ok := filesystemType(dir)
	if !ok {
		return false
	}

	_, isRAM := ramFilesystems[fsType]

	return isRAM
}

// AvailableMemory reports the kernel's best estimate of free-to-allocate
// RAM, read from /proc/meminfo's MemAvailable field (the same figure
// psutil's virtual_memory().available surfaces on Linux). ok is false if
// /proc/meminfo can't be read or lacks the field.
func AvailableMemory() (bytes uint64, ok bool) {
	f, err := os.Open("/proc/meminfo")
	if err != nil {
		return 0, false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 || fields[0] != "MemAvailable:" {
			continue
		}

		kb, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return 0, false
		}

		return kb * 1024, true
	}

	return 0, false
}

// filesystemType finds the filesystem type backing dir by scanning
// /proc/self/mountinfo for the longest mount-point prefix match, the same
// resolution strategy the kernel itself uses for path-to-mount lookups.
func filesystemType(dir string) (string, bool) {
	f, err := os.Open("/proc/self/mountinfo")
	if err != nil {
		return "", false
	}
	defer f.Close()

	dir = strings.TrimSuffix(dir, "/")

	var bestMount, bestType string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		mountPoint, fsType, ok := parseMountinfoLine(scanner.Text())
		if !ok {
			continue
		}

		if !isPrefixMountPoint(dir, mountPoint) {
			continue
		}

		if len(mountPoint) > len(bestMount) {
			bestMount = mountPoint
			bestType = fsType
		}
	}

	if bestMount == "" {
		return "", false
	}

	return bestType, true
}

// isPrefixMountPoint reports whether mountPoint is an ancestor of (or
// equal to) dir.
func isPrefixMountPoint(dir, mountPoint string) bool {
	if mountPoint == "/" {
		return true
	}

	return dir == mountPoint || strings.HasPrefix(dir, mountPoint+"/")
}

// parseMountinfoLine extracts the mount point and filesystem type from one
// /proc/self/mountinfo line:
//
//	36 35 98:0 /mnt1 /mnt2 rw,noatime master:1 - ext3 /dev/root rw,errors=continue
//
// The separator field is a literal "-"; the filesystem type is the field
// immediately after it.
func parseMountinfoLine(line string) (mountPoint, fsType string, ok bool) {
	fields := strings.Fields(line)

	sep := -1
	for i, f := range fields {
		if f == "-" {
			sep = i
			break
		}
	}

	if sep == -1 || sep+1 >= len(fields) || len(fields) < 5 {
		return "", "", false
	}

	return fields[4], fields[sep+1], true
}
