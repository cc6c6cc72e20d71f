package mocks

import (
	"context"

	"ocrapi/internal/ocr"

	"github.com/stretchr/testify/mock"
)

type MockEngine struct {
	mock.Mock
}

func (m *MockEngine) StartAnalysis(ctx context.Context, src ocr.Source) (string, error) {
	args := m.Called(ctx, src)
	return args.String(0), args.Error(1)
}

func (m *MockEngine) Result(ctx context.Context, jobID string) (*ocr.Result, error) {
	args := m.Called(ctx, jobID)
	res, _ := args.Get(0).(*ocr.Result)
	return res, args.Error(1)
}
