package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"billdoc/internal/service"
)

// MockBillService is a mock implementation of service.BillService.
type MockBillService struct {
	mock.Mock
}

func (m *MockBillService) Extract(ctx context.Context, input service.BillUploadInput) (*service.BillExtraction, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BillExtraction), args.Error(1)
}
