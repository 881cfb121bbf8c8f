package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"paperapi/internal/model"
	"paperapi/internal/service"
)

type MockPaperService struct {
	mock.Mock
}

func (m *MockPaperService) Create(ctx context.Context, in service.CreatePaperInput) (*model.Paper, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Paper), args.Error(1)
}

func (m *MockPaperService) List(ctx context.Context, limit, offset int, level string) (*service.PaperListResult, error) {
	args := m.Called(ctx, limit, offset, level)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PaperListResult), args.Error(1)
}

func (m *MockPaperService) Get(ctx context.Context, id int64) (*model.Paper, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Paper), args.Error(1)
}

func (m *MockPaperService) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPaperService) Export(ctx context.Context, id int64) (*service.ExportResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExportResult), args.Error(1)
}
