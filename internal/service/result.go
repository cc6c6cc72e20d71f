package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"ocrapi/internal/docstore"
	"ocrapi/internal/model"
	"ocrapi/internal/storage"
)

// FetchResult is the routing decision for one artifact retrieval. Exactly one
// of the two shapes is populated: a redirect Location for large or
// unknown-size artifacts, or an inline Body for small ones. The caller owns
// closing Body.
type FetchResult struct {
	Redirect bool
	Location string
	Body     io.ReadCloser
	Info     storage.ObjectInfo
}

// ResultService retrieves derived artifacts, choosing between inline delivery
// and a time-limited redirect based on artifact size.
type ResultService interface {
	// Fetch retrieves the artifact for a document. The accept parameter picks
	// the representation: "text/plain" selects the extracted-text artifact,
	// anything else the raw recognition result. Artifacts at or above the
	// size threshold, or of unknown size, are answered with a redirect.
	Fetch(ctx context.Context, documentID, accept string) (*FetchResult, error)
}

type resultService struct {
	store     docstore.Store
	threshold int64
}

// NewResultService constructs the artifact retrieval router. threshold is the
// byte size at which responses switch from inline to redirect.
func NewResultService(store docstore.Store, threshold int64) ResultService {
	return &resultService{store: store, threshold: threshold}
}

func (s *resultService) Fetch(ctx context.Context, documentID, accept string) (*FetchResult, error) {
	if documentID == "" {
		return nil, ErrIDRequired
	}

	key := model.JSONArtifactID(documentID)
	if wantsText(accept) {
		key = model.TextArtifactID(documentID)
	}

	info, err := s.store.ArtifactInfo(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("head artifact: %w", err)
	}

	// Unknown size is treated as large: redirecting costs the client one
	// extra round trip, buffering an unbounded body could cost much more.
	if info.Size < 0 || info.Size >= s.threshold {
		u, err := s.store.PresignArtifact(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("presign artifact: %w", err)
		}
		return &FetchResult{Redirect: true, Location: u, Info: info}, nil
	}

	body, bodyInfo, err := s.store.ArtifactBody(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get artifact: %w", err)
	}
	return &FetchResult{Body: body, Info: bodyInfo}, nil
}

func wantsText(accept string) bool {
	for _, part := range strings.Split(accept, ",") {
		mt := strings.TrimSpace(part)
		if i := strings.IndexByte(mt, ';'); i >= 0 {
			mt = strings.TrimSpace(mt[:i])
		}
		if strings.EqualFold(mt, "text/plain") {
			return true
		}
	}
	return false
}
