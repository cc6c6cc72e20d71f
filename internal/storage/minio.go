package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/tags"

	"ocrapi/internal/config"
)

// minioStorage implements Storage against an S3-compatible backend (MinIO,
// AWS S3, etc.), scoped to one bucket. Safe for concurrent use.
type minioStorage struct {
	client *minio.Client
	bucket string
}

// NewMinIO creates a bucket-scoped storage client. It validates connectivity
// and ensures the bucket exists (creates it if missing).
func NewMinIO(cfg config.MinIOConfig, bucket string) (Storage, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio credentials are required")
	}
	if bucket == "" {
		return nil, fmt.Errorf("minio bucket is required")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ms := &minioStorage{client: cli, bucket: bucket}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return ms, nil
}

// mapErr translates backend "no such object" responses into ErrNotFound so
// callers can distinguish absence from failure.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.StatusCode == 404 {
		return ErrNotFound
	}
	return err
}

// lowerKeys normalizes user-metadata keys, which the backend reports in
// canonical HTTP header casing.
func lowerKeys(m map[string]string) map[string]string {
	if len(m) == 0 {
		return m
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[strings.ToLower(k)] = v
	}
	return out
}

func (m *minioStorage) Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	info, err := m.client.PutObject(ctx, m.bucket, key, r, opt.Size, minio.PutObjectOptions{
		ContentType:  opt.ContentType,
		UserMetadata: opt.Metadata,
		UserTags:     opt.Tags,
	})
	if err != nil {
		return ObjectInfo{}, err
	}
	return ObjectInfo{
		Key:          key,
		Size:         info.Size,
		ETag:         info.ETag,
		ContentType:  opt.ContentType,
		LastModified: time.Now(), // PutObject does not report LastModified
		Metadata:     opt.Metadata,
	}, nil
}

func (m *minioStorage) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, ObjectInfo{}, mapErr(err)
	}
	// GetObject is lazy; Stat surfaces a missing object before any read.
	st, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, ObjectInfo{}, mapErr(err)
	}
	return obj, objectInfo(key, st), nil
}

func (m *minioStorage) Head(ctx context.Context, key string) (ObjectInfo, error) {
	st, err := m.client.StatObject(ctx, m.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return ObjectInfo{}, mapErr(err)
	}
	return objectInfo(key, st), nil
}

func (m *minioStorage) GetTags(ctx context.Context, key string) (map[string]string, error) {
	t, err := m.client.GetObjectTagging(ctx, m.bucket, key, minio.GetObjectTaggingOptions{})
	if err != nil {
		return nil, mapErr(err)
	}
	return t.ToMap(), nil
}

func (m *minioStorage) PutTags(ctx context.Context, key string, tagMap map[string]string) error {
	t, err := tags.NewTags(tagMap, true)
	if err != nil {
		return fmt.Errorf("build tag set: %w", err)
	}
	return mapErr(m.client.PutObjectTagging(ctx, m.bucket, key, t, minio.PutObjectTaggingOptions{}))
}

func (m *minioStorage) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, m.bucket, key, expiry, url.Values{})
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (m *minioStorage) PresignPut(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := m.client.PresignedPutObject(ctx, m.bucket, key, expiry)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (m *minioStorage) Ping(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("bucket %q does not exist", m.bucket)
	}
	return nil
}

// ListenCreated subscribes to object-created notifications on the bucket and
// emits one Event per created object until the context is cancelled.
func (m *minioStorage) ListenCreated(ctx context.Context) <-chan Event {
	out := make(chan Event)
	go func() {
		defer close(out)
		for info := range m.client.ListenBucketNotification(ctx, m.bucket, "", "", []string{"s3:ObjectCreated:*"}) {
			if info.Err != nil {
				out <- Event{Err: info.Err}
				continue
			}
			for _, rec := range info.Records {
				key := rec.S3.Object.Key
				// Notification keys arrive URL-encoded.
				if decoded, err := url.QueryUnescape(key); err == nil {
					key = decoded
				}
				out <- Event{Key: key}
			}
		}
	}()
	return out
}

func objectInfo(key string, st minio.ObjectInfo) ObjectInfo {
	return ObjectInfo{
		Key:          key,
		Size:         st.Size,
		ETag:         st.ETag,
		ContentType:  st.ContentType,
		LastModified: st.LastModified,
		Metadata:     lowerKeys(st.UserMetadata),
	}
}
