package outfile

import (
	"bytes"
	"os"
	"path/filepath"
)

// WriteGeneratedFile writes src to outPath, creating parent directories. It
// reports false without touching the file when the content is already current,
// so watchers on the output do not fire for no-op regenerations.
func WriteGeneratedFile(outPath string, src []byte) (bool, error) {
	// #nosec G304 -- outPath is derived from a collected source path.
	if cur, err := os.ReadFile(outPath); err == nil && bytes.Equal(cur, src) {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return false, err
	}
	if err := os.WriteFile(outPath, src, 0o644); err != nil {
		return false, err
	}
	return true, nil
}
