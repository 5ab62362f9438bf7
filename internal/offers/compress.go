package offers

import (
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Compress re-encodes the PDF through pdfcpu optimization to shrink it
// under the size limit. When the result is still over the limit the
// attempt is discarded and an error returned; when under, the compressed
// copy replaces the original under the same name.
func (m *Manager) Compress(path string) error {
	tmpPath := path + ".compressed"

	if err := api.OptimizeFile(path, tmpPath, nil); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to compress %s: %w", path, err)
	}

	info, err := os.Stat(tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to stat compressed output: %w", err)
	}

	if info.Size() > m.maxFileSizeBytes {
		os.Remove(tmpPath)
		return fmt.Errorf("compression insufficient: %s is %d bytes after optimization (limit %d)",
			path, info.Size(), m.maxFileSizeBytes)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to promote compressed file: %w", err)
	}
	return nil
}
