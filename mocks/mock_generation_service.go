package mocks

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"billdoc/internal/domain"
	"billdoc/internal/service"
)

// MockGenerationService is a mock implementation of service.GenerationService.
type MockGenerationService struct {
	mock.Mock
}

func (m *MockGenerationService) Render(ctx context.Context, data domain.ExtractedBillData, templateName string) (*service.RenderResult, error) {
	args := m.Called(ctx, data, templateName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RenderResult), args.Error(1)
}

func (m *MockGenerationService) Generate(ctx context.Context, input service.GenerateInput) (*service.GenerationResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.GenerationResult), args.Error(1)
}

func (m *MockGenerationService) ExtractAndGenerate(ctx context.Context, upload service.BillUploadInput, templateName string, notify []string) (*service.GenerationResult, error) {
	args := m.Called(ctx, upload, templateName, notify)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.GenerationResult), args.Error(1)
}

func (m *MockGenerationService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Generation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Generation), args.Error(1)
}

func (m *MockGenerationService) GetDownloadURL(ctx context.Context, id uuid.UUID) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockGenerationService) List(ctx context.Context, offset, limit int) ([]domain.Generation, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Generation), args.Int(1), args.Error(2)
}

func (m *MockGenerationService) Export(ctx context.Context, w io.Writer, format string) error {
	args := m.Called(ctx, w, format)
	return args.Error(0)
}
