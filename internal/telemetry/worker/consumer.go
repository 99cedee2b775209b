// Package worker consumes auth events from Kafka and forwards them to Loki.
package worker

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const pushTimeout = 10 * time.Second

// MessageReader is the subset of *kafka.Reader the worker uses.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Pusher forwards one raw event payload to a sink.
type Pusher interface {
	PushEventJSON(ctx context.Context, raw []byte) error
}

// NewReader returns a consumer-group reader for topic.
func NewReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  time.Second,
	})
}

// Run fetches messages until ctx is cancelled. Each message is committed after a push attempt;
// a failed push is logged and skipped so one bad sink response does not stall the partition.
func Run(ctx context.Context, r MessageReader, p Pusher, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	for {
		msg, err := r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, context.Canceled) {
				return nil
			}
			log.Warn("worker: kafka fetch failed", zap.Error(err))
			continue
		}

		pushCtx, cancel := context.WithTimeout(ctx, pushTimeout)
		if err := p.PushEventJSON(pushCtx, msg.Value); err != nil {
			log.Warn("worker: loki push failed",
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err))
		}
		cancel()

		if err := r.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			log.Warn("worker: commit failed", zap.Int64("offset", msg.Offset), zap.Error(err))
		}
	}
}
