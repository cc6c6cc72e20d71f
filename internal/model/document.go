package model

import (
	"mime"
	"path/filepath"
	"time"
)

// Metadata keys stored immutably with the source object. The storage backend
// exposes them as user metadata; they are written once at creation and never
// rewritten by later lifecycle operations.
const (
	MetaKeyFileName = "file-name"
	MetaKeyUserID   = "user-id"
	MetaKeySiteID   = "site-id"
	MetaKeyMimeType = "mime-type"
)

// Tag keys stored mutably with the source object. Tags can be replaced without
// rewriting the object body, which is why lifecycle state lives here.
const (
	TagKeyStatus = "ocr-status"
	TagKeyJobID  = "job-id"
)

// Artifact key suffixes in the destination namespace.
const (
	TextArtifactSuffix = ".txt"
	JSONArtifactSuffix = ".json"
)

// UnknownOwner is recorded when a document arrives without provenance headers,
// or was dropped into the source bucket directly.
const UnknownOwner = "unknown"

// Record is the uniform view of one document: identity, immutable metadata and
// the mutable status/job tags, assembled from a head lookup plus a tag read.
// It carries no body; bodies are streamed separately.
type Record struct {
	DocumentID   string    `json:"document_id"`
	FileName     string    `json:"file_name"`
	ContentType  string    `json:"content_type"`
	UserID       string    `json:"user_id"`
	SiteID       string    `json:"site_id"`
	Status       Status    `json:"status"`
	JobID        string    `json:"job_id,omitempty"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// TextArtifactID returns the destination key of the derived plain-text artifact.
func TextArtifactID(documentID string) string { return documentID + TextArtifactSuffix }

// JSONArtifactID returns the destination key of the derived layout artifact.
func JSONArtifactID(documentID string) string { return documentID + JSONArtifactSuffix }

// GuessContentType resolves a MIME type from the file name extension, falling
// back to application/octet-stream when the extension is unknown or absent.
func GuessContentType(fileName string) string {
	if ct := mime.TypeByExtension(filepath.Ext(fileName)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
