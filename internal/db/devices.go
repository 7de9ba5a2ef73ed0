package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// UpsertDeviceToken refreshes last_used_at on every re-registration,
// unique by (user_address, device_token) per §3.
func (d *DB) UpsertDeviceToken(ctx context.Context, t DeviceToken) error {
	_, err := d.Pool.Exec(ctx, `
		INSERT INTO relay_device_tokens (user_address, device_token, platform, device_id, app_version, last_used_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (user_address, device_token) DO UPDATE SET
		    platform = EXCLUDED.platform,
		    device_id = EXCLUDED.device_id,
		    app_version = EXCLUDED.app_version,
		    last_used_at = now(),
		    updated_at = now()
	`, t.UserAddress, t.DeviceToken, t.Platform, t.DeviceID, t.AppVersion)
	if err != nil {
		return fmt.Errorf("upsert device token: %w", err)
	}
	return nil
}

func (d *DB) ListDeviceTokens(ctx context.Context, userAddress string) ([]DeviceToken, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT id, user_address, device_token, platform, device_id, app_version, created_at, updated_at, last_used_at
		FROM relay_device_tokens WHERE user_address = $1
	`, userAddress)
	if err != nil {
		return nil, fmt.Errorf("list device tokens: %w", err)
	}
	defer rows.Close()
	return pgx.CollectRows(rows, pgx.RowToStructByName[DeviceToken])
}
