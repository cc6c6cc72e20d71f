// Package watch turns the source bucket's object-created notifications into
// recognition submissions, the in-process equivalent of a storage-triggered
// function.
package watch

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"ocrapi/internal/storage"
)

// Submitter starts recognition for one document. Implemented by the lifecycle
// service.
type Submitter interface {
	Submit(ctx context.Context, documentID string) error
}

// Watcher consumes created-object events and submits each new document.
type Watcher struct {
	listener storage.EventListener
	submit   Submitter
}

// New builds a watcher over the given event source.
func New(listener storage.EventListener, submit Submitter) *Watcher {
	return &Watcher{listener: listener, submit: submit}
}

// Run consumes events until the context is cancelled or the stream closes.
// Submission failures are logged and do not stop the watcher: the engine is
// never retried locally, and one bad document must not stall the stream.
func (w *Watcher) Run(ctx context.Context) error {
	for ev := range w.listener.ListenCreated(ctx) {
		if ev.Err != nil {
			logEvent("error", "bucket_notification_error", "", ev.Err)
			continue
		}
		if err := w.submit.Submit(ctx, ev.Key); err != nil {
			logEvent("error", "submit_failed", ev.Key, err)
			continue
		}
		logEvent("info", "document_submitted", ev.Key, nil)
	}
	return ctx.Err()
}

func logEvent(level, msg, documentID string, err error) {
	entry := map[string]any{"level": level, "msg": msg}
	if documentID != "" {
		entry["document_id"] = documentID
	}
	if err != nil {
		entry["error"] = err.Error()
	}
	if b, mErr := json.Marshal(entry); mErr == nil {
		log.New(os.Stdout, "", 0).Println(string(b))
	}
}
