package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ocrapi/internal/service"
)

type MockResultService struct {
	mock.Mock
}

func (m *MockResultService) Fetch(ctx context.Context, documentID, accept string) (*service.FetchResult, error) {
	args := m.Called(ctx, documentID, accept)
	res, _ := args.Get(0).(*service.FetchResult)
	return res, args.Error(1)
}
