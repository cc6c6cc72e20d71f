// Package storage contains the object store abstraction used for document
// bodies and derived artifacts. Implementations must rely on streaming I/O
// only; no local disk.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound is returned when the requested object does not exist. Callers
// map it to "record does not exist"; every other storage failure is a real
// error and must propagate.
var ErrNotFound = errors.New("object not found")

// SizeUnknown marks an object whose content length could not be determined.
const SizeUnknown int64 = -1

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1 and
// the implementation will buffer/chunk as supported by the backend.
// Metadata is written once with the object; Tags form the mutable overlay that
// can later be replaced via PutTags without rewriting the body.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
	Tags        map[string]string
}

// ObjectInfo contains basic information about an object in storage.
// Size is SizeUnknown when the backend did not report a content length.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Event describes an object-created notification from the backing bucket.
type Event struct {
	Key string
	// Err is set when the notification stream itself failed; Key is empty then.
	Err error
}

// Storage is an S3-compatible object store client scoped to a single bucket.
// Methods use context and streaming readers; implementations must be safe for
// concurrent use.
type Storage interface {
	// Put uploads an object under the given key with metadata and initial tags.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Head returns object info without fetching the body. Missing objects
	// return ErrNotFound.
	Head(ctx context.Context, key string) (ObjectInfo, error)
	// GetTags returns the object's full tag set.
	GetTags(ctx context.Context, key string) (map[string]string, error)
	// PutTags replaces the object's full tag set.
	PutTags(ctx context.Context, key string, tags map[string]string) error
	// PresignGet returns a time-limited URL for downloading the object without credentials.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
	// PresignPut returns a time-limited URL for uploading the object without credentials.
	PresignPut(ctx context.Context, key string, expiry time.Duration) (string, error)
	// Ping verifies the bucket is reachable.
	Ping(ctx context.Context) error
}

// EventListener streams object-created events from the bucket. Implemented by
// backends that support bucket notifications; the submission watcher consumes it.
type EventListener interface {
	// ListenCreated emits an Event per created object until ctx is cancelled.
	ListenCreated(ctx context.Context) <-chan Event
}
