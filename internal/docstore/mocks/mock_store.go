package mocks

import (
	"context"
	"io"

	"ocrapi/internal/docstore"
	"ocrapi/internal/model"
	"ocrapi/internal/storage"
	"ocrapi/internal/tagset"

	"github.com/stretchr/testify/mock"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) SaveDocument(ctx context.Context, req docstore.SaveDocumentRequest) (*model.Record, error) {
	args := m.Called(ctx, req)
	rec, _ := args.Get(0).(*model.Record)
	return rec, args.Error(1)
}

func (m *MockStore) Record(ctx context.Context, documentID string) (*model.Record, error) {
	args := m.Called(ctx, documentID)
	rec, _ := args.Get(0).(*model.Record)
	return rec, args.Error(1)
}

func (m *MockStore) Body(ctx context.Context, documentID string) (io.ReadCloser, *model.Record, error) {
	args := m.Called(ctx, documentID)
	rc, _ := args.Get(0).(io.ReadCloser)
	rec, _ := args.Get(1).(*model.Record)
	return rc, rec, args.Error(2)
}

func (m *MockStore) MergeTags(ctx context.Context, documentID string, updates []tagset.Tag) error {
	args := m.Called(ctx, documentID, updates)
	return args.Error(0)
}

func (m *MockStore) PresignUpload(ctx context.Context, documentID string) (string, error) {
	args := m.Called(ctx, documentID)
	return args.String(0), args.Error(1)
}

func (m *MockStore) SaveArtifact(ctx context.Context, key string, body io.Reader, size int64, prov docstore.Provenance) error {
	args := m.Called(ctx, key, body, size, prov)
	return args.Error(0)
}

func (m *MockStore) ArtifactInfo(ctx context.Context, key string) (storage.ObjectInfo, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(storage.ObjectInfo), args.Error(1)
}

func (m *MockStore) ArtifactBody(ctx context.Context, key string) (io.ReadCloser, storage.ObjectInfo, error) {
	args := m.Called(ctx, key)
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.Get(1).(storage.ObjectInfo), args.Error(2)
}

func (m *MockStore) PresignArtifact(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}
