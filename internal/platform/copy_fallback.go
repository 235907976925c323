//go:build !linux && !darwin

package platform

import "os"

func cloneFile(_, _ string, _ int64) (CopyResult, bool, error) {
	return CopyResult{}, false, nil
}

// copyFile falls back to read/write on other platforms.
func copyFile(src, dst *os.File, size int64) (CopyResult, error) {
	return copyReadWrite(src, dst, size)
}
