package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"paperapi/internal/storage"
)

type MockStorage struct {
	mock.Mock
}

var _ storage.Storage = (*MockStorage)(nil)

func (m *MockStorage) PutExport(ctx context.Context, e storage.PaperExport) (storage.ExportedObject, error) {
	args := m.Called(ctx, e)
	return args.Get(0).(storage.ExportedObject), args.Error(1)
}

func (m *MockStorage) Remove(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockStorage) PresignDownload(ctx context.Context, key string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, key, expiry)
	return args.String(0), args.Error(1)
}
