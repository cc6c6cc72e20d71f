package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"ocrapi/internal/config"
)

// Handler processes one completion message. Returning an error leaves the
// message on the queue for redelivery, so handlers must be idempotent.
type Handler func(ctx context.Context, msg CompletionMessage) error

// sqsAPI is the subset of the SQS client the consumer needs; narrowed for
// substitution in tests.
type sqsAPI interface {
	ReceiveMessage(ctx context.Context, in *sqs.ReceiveMessageInput, opts ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, in *sqs.DeleteMessageInput, opts ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// SQSConsumer long-polls the completion queue and dispatches messages to a
// handler. Messages are deleted only after the handler succeeds, giving
// at-least-once delivery.
type SQSConsumer struct {
	client      sqsAPI
	queueURL    string
	waitTimeSec int
	maxMessages int
}

// NewSQSConsumer constructs an SQS-backed completion consumer.
func NewSQSConsumer(ctx context.Context, cfg config.QueueConfig) (*SQSConsumer, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("completion queue URL is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &SQSConsumer{
		client:      sqs.NewFromConfig(awsCfg),
		queueURL:    cfg.URL,
		waitTimeSec: cfg.WaitTimeSec,
		maxMessages: cfg.MaxMessages,
	}, nil
}

// Run polls until the context is cancelled. Receive failures are logged and
// polling continues; a malformed message is logged and deleted (redelivering
// it can never succeed).
func (c *SQSConsumer) Run(ctx context.Context, handle Handler) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		out, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(c.queueURL),
			MaxNumberOfMessages: int32(c.maxMessages),
			WaitTimeSeconds:     int32(c.waitTimeSec),
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logEvent("error", "completion_receive_failed", map[string]any{"error": err.Error()})
			continue
		}

		for _, raw := range out.Messages {
			c.dispatch(ctx, raw, handle)
		}
	}
}

func (c *SQSConsumer) dispatch(ctx context.Context, raw types.Message, handle Handler) {
	body := aws.ToString(raw.Body)

	msg, err := DecodeMessage([]byte(body))
	if err != nil {
		logEvent("error", "completion_message_invalid", map[string]any{"error": err.Error()})
		c.delete(ctx, raw)
		return
	}

	if err := handle(ctx, msg); err != nil {
		// Leave the message for redelivery.
		logEvent("error", "completion_handle_failed", map[string]any{
			"document_id": msg.DocumentID(),
			"job_id":      msg.JobID,
			"error":       err.Error(),
		})
		return
	}

	c.delete(ctx, raw)
}

func (c *SQSConsumer) delete(ctx context.Context, raw types.Message) {
	_, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: raw.ReceiptHandle,
	})
	if err != nil {
		logEvent("error", "completion_delete_failed", map[string]any{"error": err.Error()})
	}
}

func logEvent(level, msg string, fields map[string]any) {
	entry := map[string]any{"level": level, "msg": msg}
	for k, v := range fields {
		entry[k] = v
	}
	if b, err := json.Marshal(entry); err == nil {
		log.New(os.Stdout, "", 0).Println(string(b))
	}
}
