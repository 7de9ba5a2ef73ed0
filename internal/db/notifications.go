package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// InsertNotification persists a notification, upserting on
// idempotency_key when present so consumer redelivery updates rather
// than duplicates the row (Open Question (b)).
func (d *DB) InsertNotification(ctx context.Context, n Notification) (int64, error) {
	var id int64
	err := d.Pool.QueryRow(ctx, `
		INSERT INTO relay_notifications
		    (user_address, notification_type, title, body, data, platform_id, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (idempotency_key) WHERE idempotency_key IS NOT NULL
		DO UPDATE SET title = EXCLUDED.title
		RETURNING id
	`, n.UserAddress, n.NotificationType, n.Title, n.Body, n.Data, n.PlatformID, n.IdempotencyKey).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert notification: %w", err)
	}
	return id, nil
}

func (d *DB) ListNotifications(ctx context.Context, userAddress string, platformID *string, limit, offset int) ([]Notification, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT id, user_address, notification_type, title, body, data, platform_id, idempotency_key, read_at, created_at
		FROM relay_notifications
		WHERE user_address = $1 AND ($2::text IS NULL OR platform_id = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`, userAddress, platformID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()
	return pgx.CollectRows(rows, pgx.RowToStructByName[Notification])
}

func (d *DB) GetNotification(ctx context.Context, id int64) (*Notification, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT id, user_address, notification_type, title, body, data, platform_id, idempotency_key, read_at, created_at
		FROM relay_notifications
		WHERE id = $1
	`, id)
	if err != nil {
		return nil, fmt.Errorf("get notification: %w", err)
	}
	defer rows.Close()
	n, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[Notification])
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// MarkNotificationRead transitions read_at from null to now, once.
// Returns alreadyRead=true if it was already set (§8 scenario S2).
func (d *DB) MarkNotificationRead(ctx context.Context, id int64) (alreadyRead bool, err error) {
	var readAt *time.Time
	err = d.Pool.QueryRow(ctx, `
		UPDATE relay_notifications
		SET read_at = now()
		WHERE id = $1 AND read_at IS NULL
		RETURNING read_at
	`, id).Scan(&readAt)
	if err == pgx.ErrNoRows {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("mark notification %d read: %w", id, err)
	}
	return false, nil
}

func (d *DB) CountUnreadByPlatform(ctx context.Context, userAddress string) (map[string]int, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT COALESCE(platform_id, '') AS platform_id, count(*) AS n
		FROM relay_notifications
		WHERE user_address = $1 AND read_at IS NULL
		GROUP BY platform_id
	`, userAddress)
	if err != nil {
		return nil, fmt.Errorf("count unread by platform: %w", err)
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var platformID string
		var n int
		if err := rows.Scan(&platformID, &n); err != nil {
			return nil, err
		}
		out[platformID] = n
	}
	return out, rows.Err()
}
