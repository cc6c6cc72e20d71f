package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ocrapi/internal/config"
)

func TestDecodeMessage(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr bool
		wantDoc string
	}{
		{
			name: "engine notification payload",
			payload: `{
				"JobId": "J1",
				"Status": "FAILED",
				"API": "StartDocumentAnalysis",
				"JobTag": "1DAE93F8-646C-43B7-9981-9B41AE047881",
				"Timestamp": 1717616867091,
				"DocumentLocation": {"S3ObjectName": "1DAE93F8-646C-43B7-9981-9B41AE047881", "S3Bucket": "docs-source"}
			}`,
			wantDoc: "1DAE93F8-646C-43B7-9981-9B41AE047881",
		},
		{
			name:    "falls back to object name when job tag absent",
			payload: `{"JobId": "J2", "Status": "SUCCEEDED", "DocumentLocation": {"S3ObjectName": "doc-9"}}`,
			wantDoc: "doc-9",
		},
		{name: "missing status", payload: `{"JobId": "J3", "JobTag": "doc-1"}`, wantErr: true},
		{name: "missing document identity", payload: `{"JobId": "J4", "Status": "SUCCEEDED"}`, wantErr: true},
		{name: "not json", payload: `Status=SUCCEEDED`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := DecodeMessage([]byte(tt.payload))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDoc, msg.DocumentID())
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	msg := CompletionMessage{JobID: "J1", Status: "SUCCEEDED", JobTag: "doc-1"}
	payload, err := EncodeMessage(msg)
	require.NoError(t, err)

	got, err := DecodeMessage(payload)
	require.NoError(t, err)
	assert.Equal(t, msg.JobID, got.JobID)
	assert.Equal(t, msg.Status, got.Status)
}

// fakeSQS feeds one batch of messages, then cancels the consumer's context so
// Run returns.
type fakeSQS struct {
	messages []types.Message
	cancel   context.CancelFunc

	received bool
	deleted  []string
}

func (f *fakeSQS) ReceiveMessage(ctx context.Context, in *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	if f.received {
		f.cancel()
		return &sqs.ReceiveMessageOutput{}, nil
	}
	f.received = true
	return &sqs.ReceiveMessageOutput{Messages: f.messages}, nil
}

func (f *fakeSQS) DeleteMessage(ctx context.Context, in *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(in.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

func TestSQSConsumerRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fake := &fakeSQS{
		cancel: cancel,
		messages: []types.Message{
			{Body: aws.String(`{"JobId":"J1","Status":"SUCCEEDED","JobTag":"doc-ok"}`), ReceiptHandle: aws.String("rh-ok")},
			{Body: aws.String(`{"JobId":"J2","Status":"SUCCEEDED","JobTag":"doc-fail"}`), ReceiptHandle: aws.String("rh-fail")},
			{Body: aws.String(`not json`), ReceiptHandle: aws.String("rh-bad")},
		},
	}
	c := &SQSConsumer{client: fake, queueURL: "q", waitTimeSec: 0, maxMessages: 10}

	var handled []string
	err := c.Run(ctx, func(ctx context.Context, msg CompletionMessage) error {
		handled = append(handled, msg.DocumentID())
		if msg.DocumentID() == "doc-fail" {
			return errors.New("transient failure")
		}
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"doc-ok", "doc-fail"}, handled)
	// Succeeded and malformed messages are deleted; the failed one is left
	// for redelivery.
	assert.ElementsMatch(t, []string{"rh-ok", "rh-bad"}, fake.deleted)
}

func TestNewSQSConsumerRequiresURL(t *testing.T) {
	_, err := NewSQSConsumer(context.Background(), config.QueueConfig{})
	assert.Error(t, err)
}
