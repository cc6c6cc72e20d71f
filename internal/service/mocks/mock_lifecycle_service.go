package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"ocrapi/internal/model"
	"ocrapi/internal/service"
)

type MockLifecycleService struct {
	mock.Mock
}

func (m *MockLifecycleService) Create(ctx context.Context, req service.CreateRequest) (*model.Record, error) {
	args := m.Called(ctx, req)
	rec, _ := args.Get(0).(*model.Record)
	return rec, args.Error(1)
}

func (m *MockLifecycleService) Update(ctx context.Context, req service.CreateRequest) (*model.Record, error) {
	args := m.Called(ctx, req)
	rec, _ := args.Get(0).(*model.Record)
	return rec, args.Error(1)
}

func (m *MockLifecycleService) Metadata(ctx context.Context, documentID string) (*model.Record, error) {
	args := m.Called(ctx, documentID)
	rec, _ := args.Get(0).(*model.Record)
	return rec, args.Error(1)
}

func (m *MockLifecycleService) Document(ctx context.Context, documentID string) (io.ReadCloser, *model.Record, error) {
	args := m.Called(ctx, documentID)
	body, _ := args.Get(0).(io.ReadCloser)
	rec, _ := args.Get(1).(*model.Record)
	return body, rec, args.Error(2)
}

func (m *MockLifecycleService) Status(ctx context.Context, documentID string) (*service.StatusResult, error) {
	args := m.Called(ctx, documentID)
	res, _ := args.Get(0).(*service.StatusResult)
	return res, args.Error(1)
}

func (m *MockLifecycleService) Submit(ctx context.Context, documentID string) error {
	args := m.Called(ctx, documentID)
	return args.Error(0)
}

func (m *MockLifecycleService) UploadURL(ctx context.Context, documentID string) (*service.UploadDescriptor, error) {
	args := m.Called(ctx, documentID)
	desc, _ := args.Get(0).(*service.UploadDescriptor)
	return desc, args.Error(1)
}
