package platform

import (
	"errors"
	"fmt"
	"os"
)

// CopyMethod identifies which syscall/strategy was used for a copy.
type CopyMethod int

const (
	ReadWrite     CopyMethod = iota
	CopyFileRange            // Linux copy_file_range(2)
	Sendfile                 // Linux sendfile(2)
	Clonefile                // macOS clonefile(2)
)

func (m CopyMethod) String() string {
	switch m {
	case ReadWrite:
		return "read_write"
	case CopyFileRange:
		return "copy_file_range"
	case Sendfile:
		return "sendfile"
	case Clonefile:
		return "clonefile"
	default:
		return "unknown"
	}
}

// CopyResult reports the outcome of a copy operation.
type CopyResult struct {
	BytesWritten int64
	Method       CopyMethod
}

// CopyFile copies the whole of srcPath into a new file at dstPath, which must
// not exist yet. The destination gets the source's permission bits. On error
// a partially written dstPath may remain; the caller owns its cleanup.
func CopyFile(srcPath, dstPath string) (CopyResult, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return CopyResult{}, err
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return CopyResult{}, fmt.Errorf("stat %s: %w", srcPath, err)
	}
	if info.IsDir() {
		return CopyResult{}, fmt.Errorf("copy %s: %w", srcPath, errIsDir)
	}

	if res, ok, err := cloneFile(srcPath, dstPath, info.Size()); ok || err != nil {
		return res, err
	}

	dst, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return CopyResult{}, err
	}
	res, err := copyFile(src, dst, info.Size())
	if cerr := dst.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close %s: %w", dstPath, cerr)
	}
	return res, err
}

var errIsDir = errors.New("is a directory")
