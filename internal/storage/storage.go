// Package storage keeps uploaded images (payment proofs, review photos)
// on the local filesystem and hands out their public URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	ErrFileTooLarge    = errors.New("file exceeds the upload size limit")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrEmptyFile       = errors.New("file is empty")
)

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/webp"}

type FileStore interface {
	// SaveImage sniffs and stores an image under folder and returns its public URL.
	SaveImage(ctx context.Context, folder string, src io.Reader) (string, error)
	Remove(ctx context.Context, url string) error
}

type LocalStore struct {
	root       string
	publicPath string
	maxSize    int64
}

func NewLocalStore(root, publicPath string, maxSize int64) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	return &LocalStore{root: root, publicPath: publicPath, maxSize: maxSize}, nil
}

func (s *LocalStore) MaxSize() int64 {
	return s.maxSize
}

func (s *LocalStore) SaveImage(ctx context.Context, folder string, src io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(src, s.maxSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	if len(data) == 0 {
		return "", ErrEmptyFile
	}

	if int64(len(data)) > s.maxSize {
		return "", ErrFileTooLarge
	}

	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), allowedImageTypes...) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mtype.String())
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir := filepath.Join(s.root, filepath.Clean(folder))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload folder: %w", err)
	}

	name := uuid.NewString() + mtype.Extension()
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write upload: %w", err)
	}

	return path.Join(s.publicPath, folder, name), nil
}

// Remove deletes a file previously returned by SaveImage. Missing files are ignored.
func (s *LocalStore) Remove(_ context.Context, url string) error {
	rel, err := filepath.Rel(s.publicPath, url)
	if err != nil || rel == ".." || strings.HasPrefix(rel, "../") {
		return fmt.Errorf("url %q is outside the upload directory", url)
	}

	if err := os.Remove(filepath.Join(s.root, rel)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove upload: %w", err)
	}

	return nil
}
