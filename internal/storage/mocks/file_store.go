package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
)

type FileStore struct {
	mock.Mock
}

func (m *FileStore) SaveImage(ctx context.Context, folder string, src io.Reader) (string, error) {
	args := m.Called(ctx, folder, src)
	return args.String(0), args.Error(1)
}

func (m *FileStore) Remove(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}
