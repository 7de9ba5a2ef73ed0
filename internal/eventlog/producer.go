package eventlog

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Producer publishes envelopes to the event log. One Producer is
// shared process-wide (cheap to clone, per §9 shared-context note).
type Producer struct {
	client *kgo.Client
	log    zerolog.Logger
}

func NewProducer(brokers []string, log zerolog.Logger) (*Producer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchMaxBytes(1<<20),
	)
	if err != nil {
		return nil, fmt.Errorf("new kafka client: %w", err)
	}
	return &Producer{client: client, log: log}, nil
}

func (p *Producer) Close() {
	p.client.Close()
}

// Produce sends one record, blocking up to 5s per §5 ("Producer send:
// 5s timeout"). It returns the error a caller should treat as
// row-local Transient.
func (p *Producer) Produce(ctx context.Context, topic, key string, value []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	record := &kgo.Record{Topic: topic, Key: []byte(key), Value: value}
	results := p.client.ProduceSync(ctx, record)
	if err := results.FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", topic, err)
	}
	return nil
}

// ProduceEnvelope marshals and sends an Envelope keyed per its own
// Key() rule.
func (p *Producer) ProduceEnvelope(ctx context.Context, topic string, env Envelope) error {
	body, err := env.Marshal()
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	return p.Produce(ctx, topic, env.Key(), body)
}
