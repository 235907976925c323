//go:build darwin

package platform

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// cloneFile makes a copy-on-write clone when source and destination share an
// APFS volume. ok is false when the caller should fall back to copying.
func cloneFile(srcPath, dstPath string, size int64) (CopyResult, bool, error) {
	err := unix.Clonefile(srcPath, dstPath, 0)
	if err == nil {
		return CopyResult{BytesWritten: size, Method: Clonefile}, true, nil
	}
	if isFallbackCloneErr(err) {
		return CopyResult{}, false, nil
	}
	return CopyResult{}, false, err
}

func copyFile(src, dst *os.File, size int64) (CopyResult, error) {
	return copyReadWrite(src, dst, size)
}

func isFallbackCloneErr(err error) bool {
	return errors.Is(err, unix.ENOTSUP) || errors.Is(err, unix.EXDEV)
}
