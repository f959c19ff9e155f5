package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"budget/internal/core"
)

// FileStore writes rendered reports under a base directory and maps them to
// URLs under a base URL. It stands in for an object store in self-hosted
// deployments.
type FileStore struct {
	baseDir string
	baseURL string
}

func NewFileStore(baseDir, baseURL string) *FileStore {
	return &FileStore{
		baseDir: baseDir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Save writes the report and returns its path and public URL. Files are
// keyed by owner, month and a millisecond timestamp so repeated exports
// never overwrite each other.
func (s *FileStore) Save(owner string, month core.MonthKey, ext string, data []byte) (path, url string, err error) {
	dir := filepath.Join(s.baseDir, ownerSegment(owner))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", "", fmt.Errorf("create export directory: %w", err)
	}

	name := fmt.Sprintf("%s-%d.%s", month, time.Now().UnixMilli(), ext)
	path = filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", "", fmt.Errorf("write report: %w", err)
	}

	url = fmt.Sprintf("%s/%s/%s", s.baseURL, ownerSegment(owner), name)
	return path, url, nil
}

func ownerSegment(owner string) string {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return "all"
	}
	// Owners come from auth subjects; keep the path flat.
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, owner)
}
