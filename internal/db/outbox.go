package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// SelectBatch returns up to limit unprocessed, non-quarantined rows
// ordered by creation time, per §4.1's select clause.
func (d *DB) SelectBatch(ctx context.Context, limit int, maxRetries int) ([]OutboxRow, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT id, event_type, event_data, event_id, transaction_id,
		       created_at, processed_at, published_at, retry_count, error_message, status
		FROM relay_outbox
		WHERE processed_at IS NULL AND retry_count < $1
		ORDER BY created_at ASC
		LIMIT $2
	`, maxRetries, limit)
	if err != nil {
		return nil, fmt.Errorf("select outbox batch: %w", err)
	}
	defer rows.Close()
	return pgx.CollectRows(rows, pgx.RowToStructByName[OutboxRow])
}

// MarkProcessed transitions pending -> processed (§4.1 state table).
func (d *DB) MarkProcessed(ctx context.Context, id int64) error {
	_, err := d.Pool.Exec(ctx, `
		UPDATE relay_outbox
		SET processed_at = now(), published_at = now(), status = 'processed'
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("mark outbox row %d processed: %w", id, err)
	}
	return nil
}

// MarkRetry increments retry_count and records the error, transitioning
// pending -> pending, or pending -> quarantined once retry_count hits
// maxRetries (the dead-letter visibility added in SPEC_FULL.md).
func (d *DB) MarkRetry(ctx context.Context, id int64, errMsg string, maxRetries int) error {
	_, err := d.Pool.Exec(ctx, `
		UPDATE relay_outbox
		SET retry_count = retry_count + 1,
		    error_message = $2,
		    status = CASE WHEN retry_count + 1 >= $3 THEN 'quarantined' ELSE 'pending' END
		WHERE id = $1
	`, id, errMsg, maxRetries)
	if err != nil {
		return fmt.Errorf("mark outbox row %d retry: %w", id, err)
	}
	return nil
}

// InsertOutboxRow is provided for tests and for C6's user-initiated
// message path, which injects into the event log by writing the
// outbox table directly (closing the loop described in §2's data flow).
func (d *DB) InsertOutboxRow(ctx context.Context, eventType string, eventData []byte, eventID, transactionID *string) (int64, error) {
	var id int64
	err := d.Pool.QueryRow(ctx, `
		INSERT INTO relay_outbox (event_type, event_data, event_id, transaction_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, eventType, eventData, eventID, transactionID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert outbox row: %w", err)
	}
	return id, nil
}
