package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sharedeck/sharedeck/internal/blob"
)

// MockStore is a testify mock of blob.Store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Upload(ctx context.Context, localPath string, opts blob.UploadOptions) (string, error) {
	args := m.Called(ctx, localPath, opts)
	return args.String(0), args.Error(1)
}
