package services

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var safeExt = regexp.MustCompile(`^\.[a-z0-9]{1,8}$`)

// FileStorage stores uploaded proof documents on local disk.
type FileStorage struct {
	storageDir string
}

// NewFileStorage creates the storage directory if needed.
func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create proofs directory: %w", err)
	}
	return &FileStorage{storageDir: dir}, nil
}

// Save writes data under a fresh unique name, keeping the extension of
// originalName when it looks sane, and returns the stored name.
func (s *FileStorage) Save(data []byte, originalName string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty file data")
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	if !safeExt.MatchString(ext) {
		ext = ""
	}
	filename := uuid.New().String() + ext

	if err := os.WriteFile(filepath.Join(s.storageDir, filename), data, 0644); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	return filename, nil
}

// Dir returns the storage directory path.
func (s *FileStorage) Dir() string {
	return s.storageDir
}
