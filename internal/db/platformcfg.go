package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// GetPlatformDeliveryConfig returns nil (not an error) when the
// platform has no tenant override row; the caller falls back to
// global defaults field-by-field per §4.4.
func (d *DB) GetPlatformDeliveryConfig(ctx context.Context, platformID string) (*PlatformDeliveryConfig, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT id, platform_id, apns_bundle_id, apns_key_id, apns_team_id, apns_key_path, apns_key_content,
		       fcm_server_key, resend_api_key, resend_from_email, created_at, updated_at
		FROM platform_delivery_config WHERE platform_id = $1
	`, platformID)
	if err != nil {
		return nil, fmt.Errorf("get platform delivery config: %w", err)
	}
	defer rows.Close()
	cfg, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[PlatformDeliveryConfig])
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &cfg, nil
}
