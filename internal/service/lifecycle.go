package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"ocrapi/internal/docstore"
	"ocrapi/internal/model"
	"ocrapi/internal/ocr"
	"ocrapi/internal/storage"
	"ocrapi/internal/tagset"
)

var (
	ErrIDRequired     = errors.New("document id is required")
	ErrBodyNil        = errors.New("body reader is nil")
	ErrNotFound       = errors.New("document not found")
	ErrConflict       = errors.New("document already exists")
	ErrAlreadyTerminal  = errors.New("document recognition already finished")
	ErrAlreadySubmitted = errors.New("document already submitted for recognition")
)

// CreateRequest carries an inbound document write.
type CreateRequest struct {
	DocumentID  string
	Body        io.Reader
	Size        int64
	FileName    string
	ContentType string
	UserID      string
	SiteID      string
}

// UploadDescriptor is a time-limited direct-upload grant.
type UploadDescriptor struct {
	DocumentID   string `json:"document_id"`
	URL          string `json:"url"`
	ExpiresInSec int    `json:"expires_in_sec"`
}

// StatusResult answers a status query. Absence of the record, its metadata or
// its status tag all collapse into StatusUnknown: the answer never reveals
// whether the record exists.
type StatusResult struct {
	DocumentID string       `json:"document_id"`
	Status     model.Status `json:"status"`
}

// LifecycleService drives a document through its states:
// New -> Submitted -> {Succeeded, Failed}. Terminal transitions are applied by
// the completion processor, not here.
type LifecycleService interface {
	// Create writes a new document record. An existing record is a conflict;
	// the existence check is a best-effort head lookup immediately before the
	// write, not a hard exclusivity guarantee.
	Create(ctx context.Context, req CreateRequest) (*model.Record, error)

	// Update rewrites an existing document's body and metadata and resets its
	// status to New. Absent records are NotFound.
	Update(ctx context.Context, req CreateRequest) (*model.Record, error)

	// Metadata returns the document record without its body.
	Metadata(ctx context.Context, documentID string) (*model.Record, error)

	// Document streams the body alongside the record.
	Document(ctx context.Context, documentID string) (io.ReadCloser, *model.Record, error)

	// Status reports the recorded lifecycle status, collapsing every absence
	// condition into Unknown.
	Status(ctx context.Context, documentID string) (*StatusResult, error)

	// Submit starts an asynchronous recognition job and records
	// {ocr-status: Submitted, job-id}. Engine failure leaves the tags
	// untouched and propagates; there is no local retry. Submit refuses to
	// act on documents that already hold a job id or a terminal status, so a
	// redelivered creation event cannot regress the state machine.
	Submit(ctx context.Context, documentID string) error

	// UploadURL returns a presigned direct-upload descriptor.
	UploadURL(ctx context.Context, documentID string) (*UploadDescriptor, error)
}

type lifecycleService struct {
	store         docstore.Store
	engine        ocr.Engine
	sourceBucket  string
	presignExpiry int
}

// NewLifecycleService constructs the lifecycle state machine over the given
// document store and recognition engine.
func NewLifecycleService(store docstore.Store, engine ocr.Engine, sourceBucket string, presignExpirySec int) LifecycleService {
	return &lifecycleService{
		store:         store,
		engine:        engine,
		sourceBucket:  sourceBucket,
		presignExpiry: presignExpirySec,
	}
}

func (s *lifecycleService) Create(ctx context.Context, req CreateRequest) (*model.Record, error) {
	if req.DocumentID == "" {
		return nil, ErrIDRequired
	}
	if req.Body == nil {
		return nil, ErrBodyNil
	}

	// Check-then-act: two concurrent creates can both pass this check and the
	// later write wins. Accepted; the chosen store has no conditional write in
	// the adapter contract.
	_, err := s.store.Record(ctx, req.DocumentID)
	switch {
	case err == nil:
		return nil, ErrConflict
	case !errors.Is(err, storage.ErrNotFound):
		return nil, fmt.Errorf("check existing record: %w", err)
	}

	rec, err := s.store.SaveDocument(ctx, saveRequest(req))
	if err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	return rec, nil
}

func (s *lifecycleService) Update(ctx context.Context, req CreateRequest) (*model.Record, error) {
	if req.DocumentID == "" {
		return nil, ErrIDRequired
	}
	if req.Body == nil {
		return nil, ErrBodyNil
	}

	if _, err := s.store.Record(ctx, req.DocumentID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("check existing record: %w", err)
	}

	rec, err := s.store.SaveDocument(ctx, saveRequest(req))
	if err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	return rec, nil
}

func (s *lifecycleService) Metadata(ctx context.Context, documentID string) (*model.Record, error) {
	if documentID == "" {
		return nil, ErrIDRequired
	}
	rec, err := s.store.Record(ctx, documentID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (s *lifecycleService) Document(ctx context.Context, documentID string) (io.ReadCloser, *model.Record, error) {
	if documentID == "" {
		return nil, nil, ErrIDRequired
	}
	body, rec, err := s.store.Body(ctx, documentID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	return body, rec, nil
}

func (s *lifecycleService) Status(ctx context.Context, documentID string) (*StatusResult, error) {
	if documentID == "" {
		return nil, ErrIDRequired
	}
	rec, err := s.store.Record(ctx, documentID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &StatusResult{DocumentID: documentID, Status: model.StatusUnknown}, nil
		}
		return nil, err
	}
	return &StatusResult{DocumentID: documentID, Status: rec.Status}, nil
}

func (s *lifecycleService) Submit(ctx context.Context, documentID string) error {
	if documentID == "" {
		return ErrIDRequired
	}

	rec, err := s.store.Record(ctx, documentID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("read record: %w", err)
	}
	if rec.Status.Terminal() {
		return ErrAlreadyTerminal
	}
	// job-id is set at most once.
	if rec.JobID != "" {
		return ErrAlreadySubmitted
	}

	jobID, err := s.engine.StartAnalysis(ctx, ocr.Source{
		Bucket: s.sourceBucket,
		Key:    documentID,
		JobTag: documentID,
	})
	if err != nil {
		// State untouched; the invocation framework owns retries.
		return fmt.Errorf("start analysis: %w", err)
	}

	err = s.store.MergeTags(ctx, documentID, []tagset.Tag{
		{Key: model.TagKeyStatus, Value: string(model.StatusSubmitted)},
		{Key: model.TagKeyJobID, Value: jobID},
	})
	if err != nil {
		return fmt.Errorf("record submission: %w", err)
	}
	return nil
}

func (s *lifecycleService) UploadURL(ctx context.Context, documentID string) (*UploadDescriptor, error) {
	if documentID == "" {
		return nil, ErrIDRequired
	}
	u, err := s.store.PresignUpload(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}
	return &UploadDescriptor{DocumentID: documentID, URL: u, ExpiresInSec: s.presignExpiry}, nil
}

func saveRequest(req CreateRequest) docstore.SaveDocumentRequest {
	return docstore.SaveDocumentRequest{
		DocumentID:    req.DocumentID,
		Body:          req.Body,
		Size:          req.Size,
		FileName:      req.FileName,
		ContentType:   req.ContentType,
		UserID:        req.UserID,
		SiteID:        req.SiteID,
		InitialStatus: model.StatusNew,
	}
}
