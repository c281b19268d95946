// Package media stores product images on local disk.
package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// URLPrefix is where the HTTP server mounts the upload directory.
const URLPrefix = "/uploads/"

var (
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrInvalidContent  = errors.New("image content is not valid base64")
)

var extensions = map[string]string{
	"image/png":     ".png",
	"image/jpeg":    ".jpg",
	"image/jpg":     ".jpg",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
}

// Upload is an image as sent by clients: a MIME type and base64 content.
// Content may carry a data URL prefix.
type Upload struct {
	Type    string `json:"type" validate:"required"`
	Content string `json:"content" validate:"required"`
}

type Store struct {
	dir string
	log *zap.Logger
}

func NewStore(dir string, log *zap.Logger) (*Store, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create upload directory: %w", err)
		}
	}
	return &Store{dir: dir, log: log}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// Save writes the upload under a fresh uuid name and returns its public path.
func (s *Store) Save(upload Upload) (string, error) {
	ext, ok := extensions[strings.ToLower(strings.TrimSpace(upload.Type))]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, upload.Type)
	}

	content := upload.Content
	if strings.HasPrefix(content, "data:") {
		if _, data, found := strings.Cut(content, ","); found {
			content = data
		}
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(content))
	if err != nil || len(data) == 0 {
		return "", ErrInvalidContent
	}

	filename := uuid.New().String() + ext
	if err := os.WriteFile(filepath.Join(s.dir, filename), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	return URLPrefix + filename, nil
}

// SaveAll stores every upload. On failure the files already written are
// removed again.
func (s *Store) SaveAll(uploads []Upload) ([]string, error) {
	paths := make([]string, 0, len(uploads))
	for _, upload := range uploads {
		path, err := s.Save(upload)
		if err != nil {
			s.Remove(paths)
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// Remove deletes stored files by public path. Failures are logged, not
// returned.
func (s *Store) Remove(paths []string) {
	for _, path := range paths {
		name := filepath.Base(strings.TrimPrefix(path, URLPrefix))
		if name == "." || name == "/" {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
			s.log.Warn("Failed to remove image", zap.String("path", path), zap.Error(err))
		}
	}
}
