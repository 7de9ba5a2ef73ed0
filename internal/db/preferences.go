package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// GetPreferences returns nil (not an error) when no row exists — the
// caller applies the documented default (push on, email on, sms off,
// empty type map) per §3.
func (d *DB) GetPreferences(ctx context.Context, userAddress string) (*UserPreferences, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT user_address, push_enabled, email_enabled, sms_enabled, notification_types, created_at, updated_at
		FROM relay_user_preferences WHERE user_address = $1
	`, userAddress)
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	defer rows.Close()
	p, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[UserPreferences])
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (d *DB) UpsertPreferences(ctx context.Context, p UserPreferences) error {
	_, err := d.Pool.Exec(ctx, `
		INSERT INTO relay_user_preferences (user_address, push_enabled, email_enabled, sms_enabled, notification_types, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (user_address) DO UPDATE SET
		    push_enabled = EXCLUDED.push_enabled,
		    email_enabled = EXCLUDED.email_enabled,
		    sms_enabled = EXCLUDED.sms_enabled,
		    notification_types = EXCLUDED.notification_types,
		    updated_at = now()
	`, p.UserAddress, p.PushEnabled, p.EmailEnabled, p.SMSEnabled, p.NotificationTypes)
	if err != nil {
		return fmt.Errorf("upsert preferences: %w", err)
	}
	return nil
}
