package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"assetdesk-backend/internal/logger"
)

// ErrInvalidKey is returned for keys that resolve outside the upload
// directory. The photo route is public, so keys are untrusted input.
var ErrInvalidKey = fmt.Errorf("storage key escapes the upload directory")

// StorageInterface abstracts where item photos live. The local
// implementation keeps them on disk under the configured upload dir; a
// cloud backend (S3, Azure) can slot in behind the same interface.
type StorageInterface interface {
	SaveFile(ctx context.Context, key string, reader io.Reader) error
	ReadFile(ctx context.Context, key string) (io.ReadCloser, error)
	FileExists(ctx context.Context, key string) (exists bool, size int64, err error)
	DeleteFile(ctx context.Context, key string) error

	// FileURL resolves the public URL an uploaded key is served from.
	FileURL(key string) string
}

// LocalStorageService stores item photos on the local filesystem.
type LocalStorageService struct {
	baseURL   string
	uploadDir string
	imagesDir string
}

func NewLocalStorageService(baseURL, uploadDir string) (*LocalStorageService, error) {
	imagesDir := filepath.Join(uploadDir, "images")
	if err := os.MkdirAll(imagesDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create images directory: %w", err)
	}
	return &LocalStorageService{
		baseURL:   baseURL,
		uploadDir: uploadDir,
		imagesDir: imagesDir,
	}, nil
}

// resolve maps a key to a path under imagesDir. Clean does not strip a
// leading "..", so the resolved path is checked against the base dir.
func (s *LocalStorageService) resolve(key string) (string, error) {
	fullPath := filepath.Join(s.imagesDir, filepath.Clean(key))
	rel, err := filepath.Rel(s.imagesDir, fullPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrInvalidKey
	}
	return fullPath, nil
}

func (s *LocalStorageService) SaveFile(ctx context.Context, key string, reader io.Reader) error {
	fullPath, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	logger.Debug("Stored file", "key", key, "path", fullPath)
	return nil
}

func (s *LocalStorageService) ReadFile(ctx context.Context, key string) (io.ReadCloser, error) {
	fullPath, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

func (s *LocalStorageService) FileExists(ctx context.Context, key string) (bool, int64, error) {
	fullPath, err := s.resolve(key)
	if err != nil {
		return false, 0, err
	}
	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, 0, nil
		}
		return false, 0, err
	}
	return true, info.Size(), nil
}

func (s *LocalStorageService) DeleteFile(ctx context.Context, key string) error {
	fullPath, err := s.resolve(key)
	if err != nil {
		return err
	}
	err = os.Remove(fullPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *LocalStorageService) FileURL(key string) string {
	return fmt.Sprintf("%s/api/items/photos/%s", s.baseURL, key)
}
