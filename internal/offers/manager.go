package offers

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var (
	// Letters, digits, underscore, whitespace and hyphens survive name
	// cleaning; accented characters in company or position names are kept.
	nameCleaner  = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)
	spaceCleaner = regexp.MustCompile(`\s+`)
)

// Manager mediates all filesystem transitions for offer PDFs across the
// three lifecycle directories and enforces the size policy.
type Manager struct {
	newDir           string
	inProgressDir    string
	archivedDir      string
	maxFileSizeBytes int64
	cleanupDays      int
}

// NewManager creates a file manager over the three stage directories.
func NewManager(newDir, inProgressDir, archivedDir string, maxFileSizeMB, cleanupDays int) *Manager {
	return &Manager{
		newDir:           newDir,
		inProgressDir:    inProgressDir,
		archivedDir:      archivedDir,
		maxFileSizeBytes: int64(maxFileSizeMB) * 1024 * 1024,
		cleanupDays:      cleanupDays,
	}
}

// NewDir returns the directory watched for incoming offers.
func (m *Manager) NewDir() string {
	return m.newDir
}

// ListNew returns the PDF files currently in the new-offers directory.
// The listing reflects disk state at call time; nothing is cached.
func (m *Manager) ListNew() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(m.newDir, "*.pdf"))
	if err != nil {
		return nil, fmt.Errorf("failed to list new offers: %w", err)
	}
	return matches, nil
}

// ValidateSize reports whether the file is at or below the configured limit.
func (m *Manager) ValidateSize(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return info.Size() <= m.maxFileSizeBytes, nil
}

// MoveToInProgress moves a file from the new directory to in_progress,
// preserving its name. An oversized file is compressed first; if compression
// cannot bring it under the limit the move fails.
func (m *Manager) MoveToInProgress(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("file not found: %s: %w", path, err)
	}

	ok, err := m.ValidateSize(path)
	if err != nil {
		return "", err
	}
	if !ok {
		if err := m.Compress(path); err != nil {
			return "", fmt.Errorf("file too large and compression failed: %s: %w", path, err)
		}
	}

	newPath := filepath.Join(m.inProgressDir, filepath.Base(path))
	if err := moveFile(path, newPath); err != nil {
		return "", fmt.Errorf("failed to move %s to in_progress: %w", path, err)
	}
	log.Printf("Moved %s to in_progress directory", filepath.Base(path))
	return newPath, nil
}

// MoveToArchived moves a file into the archived directory. Size policy does
// not apply; archived files were validated on ingestion.
func (m *Manager) MoveToArchived(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("file not found: %s: %w", path, err)
	}

	newPath := filepath.Join(m.archivedDir, filepath.Base(path))
	if err := moveFile(path, newPath); err != nil {
		return "", fmt.Errorf("failed to move %s to archived: %w", path, err)
	}
	log.Printf("Moved %s to archived directory", filepath.Base(path))
	return newPath, nil
}

// StandardizeFilename builds the post-analysis file name:
// {company}_{position}_{YYYYMMDDHHMMSS}.pdf, lower-cased with punctuation
// stripped and whitespace runs replaced by single underscores.
func StandardizeFilename(company, position string, now time.Time) string {
	return fmt.Sprintf("%s_%s_%s.pdf", cleanNamePart(company), cleanNamePart(position), now.Format("20060102150405"))
}

func cleanNamePart(s string) string {
	s = nameCleaner.ReplaceAllString(strings.ToLower(s), "")
	s = spaceCleaner.ReplaceAllString(strings.TrimSpace(s), "_")
	return s
}

// RenameAfterAnalysis renames the file in place using the standardized name
// derived from the analysis results. The second-resolution timestamp is
// what keeps names unique; an existing file of the same name fails the
// rename rather than being overwritten.
func (m *Manager) RenameAfterAnalysis(path, company, position string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("file not found: %s: %w", path, err)
	}

	newPath := filepath.Join(filepath.Dir(path), StandardizeFilename(company, position, time.Now()))
	if _, err := os.Stat(newPath); err == nil {
		return "", fmt.Errorf("standardized name already exists: %s", newPath)
	}

	if err := os.Rename(path, newPath); err != nil {
		return "", fmt.Errorf("failed to rename %s: %w", path, err)
	}
	log.Printf("Renamed %s to %s", filepath.Base(path), filepath.Base(newPath))
	return newPath, nil
}

// CleanupExpired removes archived PDFs whose modification time is older
// than the retention window. Per-file errors are logged and do not abort
// the scan.
func (m *Manager) CleanupExpired() {
	cutoff := time.Now().AddDate(0, 0, -m.cleanupDays)

	matches, err := filepath.Glob(filepath.Join(m.archivedDir, "*.pdf"))
	if err != nil {
		log.Printf("Error during cleanup scan: %v", err)
		return
	}

	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			log.Printf("Cleanup: failed to stat %s: %v", path, err)
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(path); err != nil {
				log.Printf("Cleanup: failed to remove %s: %v", path, err)
				continue
			}
			log.Printf("Removed old file: %s", filepath.Base(path))
		}
	}
}

// Find resolves an offer file name against the in_progress and archived
// directories, in that order.
func (m *Manager) Find(fileName string) (string, bool) {
	for _, dir := range []string{m.inProgressDir, m.archivedDir} {
		path := filepath.Join(dir, fileName)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

// moveFile renames across directories, falling back to copy+remove when the
// rename crosses filesystems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}
	return os.Remove(src)
}
