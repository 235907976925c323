//go:build linux

package platform

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

func cloneFile(_, _ string, _ int64) (CopyResult, bool, error) {
	return CopyResult{}, false, nil
}

// copyFile tries the most efficient copy method available on Linux,
// falling through on unsupported/cross-device errors.
func copyFile(src, dst *os.File, size int64) (CopyResult, error) {
	preallocate(dst, size)

	result, err := copyFileRange(src, dst, size)
	if err == nil || !isFallbackErr(err) {
		return result, err
	}

	result, err = copySendfile(src, dst, size)
	if err == nil || !isFallbackErr(err) {
		return result, err
	}

	return copyReadWrite(src, dst, size)
}

//nolint:gosec // G115: fd values are small non-negative integers
func copyFileRange(src, dst *os.File, size int64) (CopyResult, error) {
	var roff, woff int64
	remaining := size
	var total int64
	for remaining > 0 {
		n, err := unix.CopyFileRange(int(src.Fd()), &roff, int(dst.Fd()), &woff, int(remaining), 0)
		if err != nil {
			if total == 0 {
				return CopyResult{}, err
			}
			return CopyResult{BytesWritten: total, Method: CopyFileRange}, err
		}
		if n == 0 {
			break
		}
		remaining -= int64(n)
		total += int64(n)
	}
	return CopyResult{BytesWritten: total, Method: CopyFileRange}, nil
}

//nolint:gosec // G115: fd values are small non-negative integers
func copySendfile(src, dst *os.File, size int64) (CopyResult, error) {
	var offset int64
	remaining := size
	var total int64
	for remaining > 0 {
		n, err := unix.Sendfile(int(dst.Fd()), int(src.Fd()), &offset, int(remaining))
		if err != nil {
			if total == 0 {
				return CopyResult{}, err
			}
			return CopyResult{BytesWritten: total, Method: Sendfile}, err
		}
		if n == 0 {
			break
		}
		remaining -= int64(n)
		total += int64(n)
	}
	return CopyResult{BytesWritten: total, Method: Sendfile}, nil
}

// preallocate reserves disk space. Errors are ignored as fallocate is not
// supported on all filesystems.
//
//nolint:gosec // G115: fd values are small non-negative integers
func preallocate(fd *os.File, size int64) {
	if size <= 0 {
		return
	}
	_ = unix.Fallocate(int(fd.Fd()), 0, 0, size)
}

// isFallbackErr returns true if err should trigger a fallback to the next copy strategy.
func isFallbackErr(err error) bool {
	return errors.Is(err, unix.ENOSYS) ||
		errors.Is(err, unix.EXDEV) ||
		errors.Is(err, unix.EINVAL) ||
		errors.Is(err, unix.ENOTSUP) ||
		errors.Is(err, unix.EOPNOTSUPP)
}
