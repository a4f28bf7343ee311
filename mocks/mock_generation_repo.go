package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"billdoc/internal/domain"
)

// MockGenerationRepo is a mock implementation of port.GenerationRepository.
type MockGenerationRepo struct {
	mock.Mock
}

func (m *MockGenerationRepo) Create(ctx context.Context, gen *domain.Generation) error {
	args := m.Called(ctx, gen)
	return args.Error(0)
}

func (m *MockGenerationRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Generation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Generation), args.Error(1)
}

func (m *MockGenerationRepo) List(ctx context.Context, offset, limit int) ([]domain.Generation, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Generation), args.Int(1), args.Error(2)
}

func (m *MockGenerationRepo) ListAll(ctx context.Context) ([]domain.Generation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Generation), args.Error(1)
}
