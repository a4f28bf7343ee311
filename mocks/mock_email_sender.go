package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"billdoc/internal/port"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendGenerationNotice(ctx context.Context, toEmail string, notice port.GenerationNotice) error {
	args := m.Called(ctx, toEmail, notice)
	return args.Error(0)
}
