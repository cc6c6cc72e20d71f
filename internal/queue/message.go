package queue

import (
	"encoding/json"
	"fmt"
)

// CompletionMessage is the terminal-status notification emitted by the
// recognition engine. JobTag carries the document id the job was submitted
// with; Status is the engine's literal terminal value (SUCCEEDED, FAILED, or
// anything else the engine chooses to report).
type CompletionMessage struct {
	JobID     string `json:"JobId"`
	Status    string `json:"Status"`
	API       string `json:"API,omitempty"`
	JobTag    string `json:"JobTag"`
	Timestamp int64  `json:"Timestamp,omitempty"`

	DocumentLocation struct {
		S3ObjectName string `json:"S3ObjectName,omitempty"`
		S3Bucket     string `json:"S3Bucket,omitempty"`
	} `json:"DocumentLocation,omitempty"`
}

// DocumentID returns the document the signal belongs to, falling back to the
// source object name when the job tag is absent.
func (m CompletionMessage) DocumentID() string {
	if m.JobTag != "" {
		return m.JobTag
	}
	return m.DocumentLocation.S3ObjectName
}

// EncodeMessage returns the JSON representation of a completion message.
func EncodeMessage(msg CompletionMessage) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a CompletionMessage. The payload
// must at least identify the document and carry a status.
func DecodeMessage(payload []byte) (CompletionMessage, error) {
	var msg CompletionMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return CompletionMessage{}, fmt.Errorf("decode completion message: %w", err)
	}
	if msg.DocumentID() == "" {
		return CompletionMessage{}, fmt.Errorf("completion message has no job tag or object name")
	}
	if msg.Status == "" {
		return CompletionMessage{}, fmt.Errorf("completion message has no status")
	}
	return msg, nil
}
