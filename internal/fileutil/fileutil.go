// Package fileutil materializes streamed media without ever exposing a
// partial file at its final path.
package fileutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// UnknownSize marks a stream whose source does not report a byte count.
const UnknownSize int64 = -1

// WriteStreamAtomic streams r into dir/name through a temporary file in the
// same directory and promotes it with a rename only on success. When
// expectSize is not UnknownSize the byte count is verified before the
// promote. Any failure removes the temporary file and leaves the final path
// untouched.
func WriteStreamAtomic(dir, name string, r io.Reader, expectSize int64) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create directory %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+name+".partial-*")
	if err != nil {
		return "", fmt.Errorf("create temp file in %q: %w", dir, err)
	}
	tmpPath := tmp.Name()

	written, err := io.Copy(tmp, r)
	if err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("flush %s: %w", name, err)
	}

	if expectSize != UnknownSize && written != expectSize {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("short write for %s: got %d bytes, expected %d", name, written, expectSize)
	}

	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("chmod %s: %w", name, err)
	}

	final := filepath.Join(dir, name)
	if err := os.Rename(tmpPath, final); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("promote %s: %w", name, err)
	}
	return final, nil
}
