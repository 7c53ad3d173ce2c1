package logostore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var allowedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
}

// MaxLogoSize limits uploaded logo files.
const MaxLogoSize = 2 << 20

// Store keeps uploaded logo images on disk under a single directory. Logo
// files are owned by exactly one short link and are deleted with it; the
// nightly sweep removes anything left behind.
type Store struct {
	dir string
	log *zap.Logger
}

func NewStore(dir string, log *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create logo dir: %w", err)
	}
	return &Store{dir: dir, log: log}, nil
}

// AllowedExtension reports whether ext (with leading dot) is an accepted
// logo image type.
func AllowedExtension(ext string) bool {
	_, ok := allowedExtensions[strings.ToLower(ext)]
	return ok
}

// Save writes data under a generated collision-free name and returns the
// stored path.
func (s *Store) Save(ext string, data []byte) (string, error) {
	ext = strings.ToLower(ext)
	if !AllowedExtension(ext) {
		return "", fmt.Errorf("unsupported logo extension %q", ext)
	}
	name := fmt.Sprintf("logo-%d-%s%s", time.Now().UnixNano(), uuid.NewString()[:8], ext)
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (s *Store) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Delete removes a stored logo. A missing file is not an error: the record
// is already gone or the sweep got there first.
func (s *Store) Delete(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.log.Error("Failed to delete logo file", zap.String("path", path), zap.Error(err))
		return
	}
	s.log.Info("Logo file deleted", zap.String("path", path))
}

// SweepOrphans removes files in the store directory not present in
// referenced (paths as stored on ShortLink records).
func (s *Store) SweepOrphans(referenced map[string]struct{}) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		if _, ok := referenced[path]; ok {
			continue
		}
		if err := os.Remove(path); err != nil {
			s.log.Error("Failed to remove orphaned logo", zap.String("path", path), zap.Error(err))
			continue
		}
		removed++
	}
	return removed, nil
}
