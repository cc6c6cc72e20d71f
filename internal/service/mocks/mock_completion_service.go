package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ocrapi/internal/model"
)

type MockCompletionService struct {
	mock.Mock
}

func (m *MockCompletionService) Complete(ctx context.Context, documentID, rawStatus string) (model.TerminalStatus, error) {
	args := m.Called(ctx, documentID, rawStatus)
	ts, _ := args.Get(0).(model.TerminalStatus)
	return ts, args.Error(1)
}
