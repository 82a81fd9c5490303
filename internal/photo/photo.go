package photo

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store saves uploaded photos on local disk. Only the generated filename is
// handed back for persistence; image bytes never enter the database.
type Store struct {
	dir string
}

// New creates a photo store rooted at dir, creating it if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory photos are written to.
func (s *Store) Dir() string { return s.dir }

// Save writes the uploaded file under a fresh uuid filename, preserving the
// original extension, and returns the filename reference.
func (s *Store) Save(file multipart.File, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	name := uuid.NewString() + ext

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create photo file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("write photo file: %w", err)
	}
	return name, nil
}
