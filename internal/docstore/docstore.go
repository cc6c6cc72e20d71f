// Package docstore presents the object store's primitives (head, get, put,
// tags) as a uniform document-record view: immutable metadata written once at
// creation, plus the mutable status/job tag overlay. It spans two namespaces:
// the source bucket holding document bodies and the destination bucket holding
// derived artifacts.
package docstore

import (
	"context"
	"io"
	"time"

	"ocrapi/internal/model"
	"ocrapi/internal/storage"
	"ocrapi/internal/tagset"
)

// SaveDocumentRequest carries everything needed to write a document record.
// Empty descriptive fields are defaulted: FileName falls back to the document
// id, UserID/SiteID to "unknown", ContentType to a MIME guess from the file
// name, and InitialStatus to New.
type SaveDocumentRequest struct {
	DocumentID    string
	Body          io.Reader
	Size          int64
	FileName      string
	ContentType   string
	UserID        string
	SiteID        string
	InitialStatus model.Status
}

// Provenance is the ownership metadata carried forward onto derived artifacts.
type Provenance struct {
	FileName string
	UserID   string
	SiteID   string
}

// Store is the document-record view over the object store. Absence is reported
// as storage.ErrNotFound on every read path.
type Store interface {
	// SaveDocument writes body, immutable metadata and the initial status tag
	// to the source namespace. It overwrites blindly; existence checks are the
	// caller's concern.
	SaveDocument(ctx context.Context, req SaveDocumentRequest) (*model.Record, error)
	// Record assembles the record from a head lookup plus a tag read.
	Record(ctx context.Context, documentID string) (*model.Record, error)
	// Body streams the document body alongside its record.
	Body(ctx context.Context, documentID string) (io.ReadCloser, *model.Record, error)
	// MergeTags read–modify–writes the tag overlay: untouched keys survive,
	// updated keys are replaced, new keys appended. Not transactional;
	// concurrent writers to the same document race last-write-wins.
	MergeTags(ctx context.Context, documentID string, updates []tagset.Tag) error
	// PresignUpload returns a time-limited URL for writing the document body
	// directly to the source namespace.
	PresignUpload(ctx context.Context, documentID string) (string, error)

	// SaveArtifact writes a derived result to the destination namespace,
	// carrying the source document's provenance. Overwrite is the idempotency
	// mechanism for redelivered completions.
	SaveArtifact(ctx context.Context, key string, body io.Reader, size int64, prov Provenance) error
	// ArtifactInfo heads a derived result.
	ArtifactInfo(ctx context.Context, key string) (storage.ObjectInfo, error)
	// ArtifactBody streams a derived result.
	ArtifactBody(ctx context.Context, key string) (io.ReadCloser, storage.ObjectInfo, error)
	// PresignArtifact returns a time-limited URL for reading a derived result
	// directly from the destination namespace.
	PresignArtifact(ctx context.Context, key string) (string, error)
}

type objectStore struct {
	source        storage.Storage
	destination   storage.Storage
	presignExpiry time.Duration
}

// NewStore builds a Store over the source and destination namespaces.
func NewStore(source, destination storage.Storage, presignExpiry time.Duration) Store {
	return &objectStore{source: source, destination: destination, presignExpiry: presignExpiry}
}

func (s *objectStore) SaveDocument(ctx context.Context, req SaveDocumentRequest) (*model.Record, error) {
	fileName := req.FileName
	if fileName == "" {
		fileName = req.DocumentID
	}
	userID := req.UserID
	if userID == "" {
		userID = model.UnknownOwner
	}
	siteID := req.SiteID
	if siteID == "" {
		siteID = model.UnknownOwner
	}
	contentType := req.ContentType
	if contentType == "" {
		contentType = model.GuessContentType(fileName)
	}
	status := req.InitialStatus
	if status == "" {
		status = model.StatusNew
	}

	info, err := s.source.Put(ctx, req.DocumentID, req.Body, storage.PutObjectOptions{
		Size:        req.Size,
		ContentType: contentType,
		Metadata: map[string]string{
			model.MetaKeyFileName: fileName,
			model.MetaKeyUserID:   userID,
			model.MetaKeySiteID:   siteID,
		},
		Tags: map[string]string{
			model.TagKeyStatus: string(status),
		},
	})
	if err != nil {
		return nil, err
	}

	return &model.Record{
		DocumentID:   req.DocumentID,
		FileName:     fileName,
		ContentType:  contentType,
		UserID:       userID,
		SiteID:       siteID,
		Status:       status,
		Size:         info.Size,
		LastModified: info.LastModified,
	}, nil
}

func (s *objectStore) Record(ctx context.Context, documentID string) (*model.Record, error) {
	info, err := s.source.Head(ctx, documentID)
	if err != nil {
		return nil, err
	}
	tags, err := s.source.GetTags(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return assembleRecord(documentID, info, tags), nil
}

func (s *objectStore) Body(ctx context.Context, documentID string) (io.ReadCloser, *model.Record, error) {
	body, info, err := s.source.Get(ctx, documentID)
	if err != nil {
		return nil, nil, err
	}
	tags, err := s.source.GetTags(ctx, documentID)
	if err != nil {
		body.Close()
		return nil, nil, err
	}
	return body, assembleRecord(documentID, info, tags), nil
}

func (s *objectStore) MergeTags(ctx context.Context, documentID string, updates []tagset.Tag) error {
	existing, err := s.source.GetTags(ctx, documentID)
	if err != nil {
		return err
	}
	return s.source.PutTags(ctx, documentID, tagset.Merge(existing, updates))
}

func (s *objectStore) PresignUpload(ctx context.Context, documentID string) (string, error) {
	return s.source.PresignPut(ctx, documentID, s.presignExpiry)
}

func (s *objectStore) SaveArtifact(ctx context.Context, key string, body io.Reader, size int64, prov Provenance) error {
	fileName := prov.FileName
	if fileName == "" {
		fileName = key
	}
	userID := prov.UserID
	if userID == "" {
		userID = model.UnknownOwner
	}
	siteID := prov.SiteID
	if siteID == "" {
		siteID = model.UnknownOwner
	}

	contentType := model.GuessContentType(key)
	_, err := s.destination.Put(ctx, key, body, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata: map[string]string{
			model.MetaKeyFileName: fileName,
			model.MetaKeyUserID:   userID,
			model.MetaKeySiteID:   siteID,
			model.MetaKeyMimeType: contentType,
		},
	})
	return err
}

func (s *objectStore) ArtifactInfo(ctx context.Context, key string) (storage.ObjectInfo, error) {
	return s.destination.Head(ctx, key)
}

func (s *objectStore) ArtifactBody(ctx context.Context, key string) (io.ReadCloser, storage.ObjectInfo, error) {
	return s.destination.Get(ctx, key)
}

func (s *objectStore) PresignArtifact(ctx context.Context, key string) (string, error) {
	return s.destination.PresignGet(ctx, key, s.presignExpiry)
}

// assembleRecord merges head metadata and the tag overlay into one record.
// Documents dropped directly into the source bucket may lack any of the
// descriptive metadata; absent owner fields read as "unknown" and an absent
// status tag reads as Unknown.
func assembleRecord(documentID string, info storage.ObjectInfo, tags map[string]string) *model.Record {
	rec := &model.Record{
		DocumentID:   documentID,
		FileName:     info.Metadata[model.MetaKeyFileName],
		ContentType:  info.ContentType,
		UserID:       info.Metadata[model.MetaKeyUserID],
		SiteID:       info.Metadata[model.MetaKeySiteID],
		Status:       model.ParseStatus(tags[model.TagKeyStatus]),
		JobID:        tags[model.TagKeyJobID],
		Size:         info.Size,
		LastModified: info.LastModified,
	}
	if rec.FileName == "" {
		rec.FileName = documentID
	}
	if rec.UserID == "" {
		rec.UserID = model.UnknownOwner
	}
	if rec.SiteID == "" {
		rec.SiteID = model.UnknownOwner
	}
	return rec
}
