package ingestion

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// SaveUpload writes an uploaded offer PDF into destDir under its base
// name. An existing file with the same name is overwritten.
func SaveUpload(destDir, filename string, r io.Reader) error {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("failed to create offers directory: %w", err)
	}

	destPath := filepath.Join(destDir, filepath.Base(filename))
	f, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", destPath, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(destPath)
		return fmt.Errorf("failed to write file %s: %w", destPath, err)
	}
	return nil
}
