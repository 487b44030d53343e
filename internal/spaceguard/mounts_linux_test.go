//go:build linux

package spaceguard

import "testing"

func TestParseMountinfoLine(t *testing.T) {
	line := "36 35 98:0 /mnt1 /mnt2 rw,noatime master:1 - ext3 /dev/root rw,errors=continue"

	mountPoint, fsType, ok := parseMountinfoLine(line)
	if !ok {
		t.Fatal("expected parseMountinfoLine to succeed")
	}
	if mountPoint != "/mnt2" {
		t.Errorf("mountPoint = %q, want /mnt2", mountPoint)
	}
	if fsType != "ext3" {
		t.Errorf("fsType = %q, want ext3", fsType)
	}
}

func TestParseMountinfoLineRejectsMalformed(t *testing.T) {
	if _, _, ok := parseMountinfoLine("not a valid mountinfo line"); ok {
		t.Error("expected parseMountinfoLine to reject a line with no separator")
	}
}

func TestIsPrefixMountPointMatchesRoot(t *testing.T) {
	if !isPrefixMountPoint("/home/user/downloads", "/") {
		t.Error("root mount point should match every path")
	}
}

func TestIsPrefixMountPointRejectsSiblingPrefix(t *testing.T) {
	if isPrefixMountPoint("/mnt2extra/file", "/mnt2") {
		t.Error("/mnt2 should not match a sibling directory that merely shares a string prefix")
	}
}

func TestIsRAMBackedOnTmp(t *testing.T) {
	// /dev/shm is tmpfs on essentially every Linux system; absence of the
	// mount (rare, heavily locked-down containers) degrades to false
	// rather than failing the test.
	_ = IsRAMBacked("/dev/shm")
}

func TestAvailableMemoryReadsProcMeminfo(t *testing.T) {
	bytes, ok := AvailableMemory()
	if !ok {
		t.Skip("/proc/meminfo not readable in this environment")
	}
	if bytes == 0 {
		t.Error("AvailableMemory() = 0, want > 0 when ok")
	}
}
