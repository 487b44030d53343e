// Package spaceguard checks that a destination filesystem has enough free
// space for a download, and detects RAM-backed filesystems that should
// steer the downloader away from its memory-mapped write path.
package spaceguard

import (
	"fmt"
	"syscall"

	gdlerrors "github.com/corewget/rangedl/pkg/errors"
)

// FreeSpaceMargin is added to the file size when checking available space,
// to leave headroom for filesystem block overhead and metadata.
const FreeSpaceMargin = 1024 * 1024 * 1024 // 1 GiB

// CheckAvailableSpace verifies that the filesystem containing dir has at
// least fileSize+FreeSpaceMargin bytes free.
func CheckAvailableSpace(dir string, fileSize int64) error {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(dir, &stat); err != nil {
		return gdlerrors.WrapError(err, gdlerrors.CodeNotEnoughSpace, "failed to read filesystem statistics")
	}

	available := int64(stat.Bavail) * int64(stat.Bsize)
	required := fileSize + FreeSpaceMargin

	if available < required {
		return gdlerrors.NewDownloadErrorWithDetails(
			gdlerrors.CodeNotEnoughSpace,
			"not enough free disk space",
			fmt.Sprintf("required %d bytes, available %d bytes", required, available),
		)
	}

	return nil
}
