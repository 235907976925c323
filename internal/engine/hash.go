package engine

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/zeebo/blake3"
)

// HashChunkSize is the read size used when streaming a file into the hasher.
const HashChunkSize = 1 << 20 // 1 MiB

// FailedDigest is the digest recorded for a file that could not be hashed.
// It is never equal to a real digest, and the comparator never treats two
// FailedDigest values as equal.
const FailedDigest = "!failed"

// HashFile computes the BLAKE3 hash of the file at path, returning the hex-encoded digest.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := blake3.New()
	buf := make([]byte, HashChunkSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			_, _ = h.Write(buf[:n])
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("hash %s: %w", path, err)
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Digest is HashFile with errors absorbed into FailedDigest.
func Digest(path string) string {
	d, err := HashFile(path)
	if err != nil {
		slog.Warn("hash failed", "path", path, "error", err)
		return FailedDigest
	}
	return d
}
