package outbox

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/mysocial/relay/internal/db"
	"github.com/mysocial/relay/internal/eventlog"
)

// Poller drains the outbox table, grounded on
// relay-outbox/src/poller.rs's poll_and_publish loop.
type Poller struct {
	db         *db.DB
	producer   *eventlog.Producer
	log        zerolog.Logger
	interval   time.Duration
	batchSize  int
	maxRetries int
}

func NewPoller(database *db.DB, producer *eventlog.Producer, log zerolog.Logger, interval time.Duration, batchSize, maxRetries int) *Poller {
	return &Poller{
		db:         database,
		producer:   producer,
		log:        log,
		interval:   interval,
		batchSize:  batchSize,
		maxRetries: maxRetries,
	}
}

// Run loops until ctx is cancelled, ticking every interval. A tick
// error (database failure during selection) sleeps 1s before retrying
// per §4.1's failure semantics.
func (p *Poller) Run(ctx context.Context) error {
	p.log.Info().Msg("starting outbox poller")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := p.Tick(ctx); err != nil {
			p.log.Error().Err(err).Msg("outbox tick failed")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.interval):
		}
	}
}

// Tick performs one select-batch -> route -> produce -> mark pass.
func (p *Poller) Tick(ctx context.Context) error {
	rows, err := p.db.SelectBatch(ctx, p.batchSize, p.maxRetries)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	p.log.Debug().Int("count", len(rows)).Msg("found unprocessed outbox rows")

	for _, row := range rows {
		p.publishRow(ctx, row)
	}
	return nil
}

func (p *Poller) publishRow(ctx context.Context, row db.OutboxRow) {
	topic := RouteFor(row.EventType)

	env := eventlog.Envelope{
		EventType: row.EventType,
		EventData: row.EventData,
		Timestamp: time.Now(),
	}
	if row.EventID != nil {
		env.EventID = *row.EventID
	}
	if row.TransactionID != nil {
		env.TransactionID = *row.TransactionID
	}

	if err := p.producer.ProduceEnvelope(ctx, topic, env); err != nil {
		p.log.Warn().Err(err).Int64("id", row.ID).Str("event_type", row.EventType).Msg("failed to publish outbox row")
		if markErr := p.db.MarkRetry(ctx, row.ID, err.Error(), p.maxRetries); markErr != nil {
			p.log.Error().Err(markErr).Int64("id", row.ID).Msg("failed to record retry")
		}
		return
	}

	if err := p.db.MarkProcessed(ctx, row.ID); err != nil {
		p.log.Error().Err(err).Int64("id", row.ID).Msg("failed to mark outbox row processed")
		return
	}
	p.log.Debug().Int64("id", row.ID).Str("topic", topic).Msg("published and marked outbox row processed")
}
