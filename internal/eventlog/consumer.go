package eventlog

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/mysocial/relay/internal/backoffutil"
)

// Handler processes one raw record. Returning an error leaves the
// record's offset uncommitted so the broker redelivers it (§7:
// Transient errors are "a reason to not commit and redeliver").
type Handler func(ctx context.Context, key, value []byte) error

// Consumer wraps a franz-go client in a poll/handle/commit loop,
// grounded on the consumeLoop shape in
// ws/internal/shared/kafka/consumer.go, stripped of the resource-guard
// machinery that component doesn't need here.
type Consumer struct {
	client *kgo.Client
	log    zerolog.Logger
}

func NewConsumer(brokers []string, group string, topics []string, log zerolog.Logger) (*Consumer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumerGroup(group),
		kgo.ConsumeTopics(topics...),
		kgo.DisableAutoCommit(),
		kgo.OnPartitionsRevoked(func(ctx context.Context, c *kgo.Client, _ map[string][]int32) {
			_ = c.CommitUncommittedOffsets(ctx)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("new kafka consumer (group=%s): %w", group, err)
	}
	return &Consumer{client: client, log: log}, nil
}

func (c *Consumer) Close() {
	c.client.Close()
}

// Run polls until ctx is cancelled, invoking handle per record and
// committing offsets for records it processed without error. Poll
// errors use capped exponential backoff per §5 ("Consumer receive:
// unlimited block; errors trigger capped exponential backoff").
func (c *Consumer) Run(ctx context.Context, handle Handler) error {
	backoff := backoffutil.New(time.Second, 30*time.Second)
	rateLimitedLog := backoffutil.NewRateLimitedLogger(30 * time.Second)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return nil
		}
		if errs := fetches.Errors(); len(errs) > 0 {
			if rateLimitedLog.Allow() {
				c.log.Error().Interface("errors", errs).Msg("consumer fetch error")
			}
			if err := backoff.Sleep(ctx); err != nil {
				return err
			}
			continue
		}
		backoff.Reset()

		fetches.EachRecord(func(record *kgo.Record) {
			if err := handle(ctx, record.Key, record.Value); err != nil {
				c.log.Error().Err(err).
					Str("topic", record.Topic).
					Str("key", string(record.Key)).
					Msg("handler error, offset not committed")
				return
			}
			if err := c.client.CommitRecords(ctx, record); err != nil {
				c.log.Error().Err(err).Msg("commit offset failed")
			}
		})
	}
}
