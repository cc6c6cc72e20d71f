package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"ocrapi/internal/docstore"
	"ocrapi/internal/extract"
	"ocrapi/internal/model"
	"ocrapi/internal/ocr"
	"ocrapi/internal/storage"
	"ocrapi/internal/tagset"
)

var (
	ErrStatusRequired        = errors.New("terminal status is required")
	ErrJobIDMissing          = errors.New("document has no recorded job id")
	ErrUnknownTerminalStatus = errors.New("unrecognized terminal status")
)

// CompletionService applies terminal outcomes reported by the recognition
// engine. Delivery is at-least-once, so Complete is safe to re-run: artifact
// writes are overwrites and the terminal tag transition is applied last.
type CompletionService interface {
	// Complete processes one completion notification for a document.
	//
	// On success it fetches the full result from the engine, writes the
	// extracted-text and raw-result artifacts, and only then records the
	// terminal status tag, so a redelivered notification that failed halfway
	// redoes the whole relocation. On failure it records the tag only; no
	// artifacts exist for failed documents. An unrecognized status value is
	// recorded on the document verbatim and reported as
	// ErrUnknownTerminalStatus.
	Complete(ctx context.Context, documentID, rawStatus string) (model.TerminalStatus, error)
}

// CompletionOptions tune the completion processor.
type CompletionOptions struct {
	// Extract controls which layout categories the text artifact excludes.
	Extract extract.Options
	// StrictTagWrites makes a failed status-tag write fail the whole
	// completion, leaving the notification for redelivery. When false the
	// failure is surfaced to the caller's logger but the completion counts as
	// processed; the status read-side then reports a stale value until a
	// later write repairs it.
	StrictTagWrites bool
	// OnTagWriteError receives tag-write failures when StrictTagWrites is
	// false. Optional.
	OnTagWriteError func(documentID string, err error)
}

type completionService struct {
	store  docstore.Store
	engine ocr.Engine
	opts   CompletionOptions
}

// NewCompletionService constructs the completion processor.
func NewCompletionService(store docstore.Store, engine ocr.Engine, opts CompletionOptions) CompletionService {
	return &completionService{store: store, engine: engine, opts: opts}
}

func (s *completionService) Complete(ctx context.Context, documentID, rawStatus string) (model.TerminalStatus, error) {
	if documentID == "" {
		return model.TerminalStatus{}, ErrIDRequired
	}
	if rawStatus == "" {
		return model.TerminalStatus{}, ErrStatusRequired
	}

	ts := model.ParseTerminalStatus(rawStatus)

	if ts.Known() && ts.Succeeded() {
		if err := s.relocateResult(ctx, documentID); err != nil {
			return ts, err
		}
	}

	// Terminal tag last: a crash before this point leaves the document
	// Submitted and the redelivered notification starts over.
	err := s.store.MergeTags(ctx, documentID, []tagset.Tag{
		{Key: model.TagKeyStatus, Value: ts.TagValue()},
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ts, ErrNotFound
		}
		err = fmt.Errorf("record terminal status: %w", err)
		if s.opts.StrictTagWrites {
			return ts, err
		}
		if s.opts.OnTagWriteError != nil {
			s.opts.OnTagWriteError(documentID, err)
		}
	}

	if !ts.Known() {
		return ts, fmt.Errorf("%w: %q", ErrUnknownTerminalStatus, ts.Raw())
	}
	return ts, nil
}

// relocateResult pulls the full recognition result and writes both derived
// artifacts to the destination namespace.
func (s *completionService) relocateResult(ctx context.Context, documentID string) error {
	rec, err := s.store.Record(ctx, documentID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("read record: %w", err)
	}
	if rec.JobID == "" {
		return ErrJobIDMissing
	}

	res, err := s.engine.Result(ctx, rec.JobID)
	if err != nil {
		return fmt.Errorf("fetch result for job %s: %w", rec.JobID, err)
	}

	prov := docstore.Provenance{
		FileName: rec.FileName,
		UserID:   rec.UserID,
		SiteID:   rec.SiteID,
	}

	text := extract.Text(res, s.opts.Extract)
	err = s.store.SaveArtifact(ctx, model.TextArtifactID(documentID),
		strings.NewReader(text), int64(len(text)), prov)
	if err != nil {
		return fmt.Errorf("save text artifact: %w", err)
	}

	raw, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	err = s.store.SaveArtifact(ctx, model.JSONArtifactID(documentID),
		strings.NewReader(string(raw)), int64(len(raw)), prov)
	if err != nil {
		return fmt.Errorf("save json artifact: %w", err)
	}
	return nil
}
