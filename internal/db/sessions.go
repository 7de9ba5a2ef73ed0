package db

import (
	"context"
	"fmt"
)

// InsertSession registers a WebSocket upgrade (§4.5 session
// lifecycle).
func (d *DB) InsertSession(ctx context.Context, userAddress, connectionID string) error {
	_, err := d.Pool.Exec(ctx, `
		INSERT INTO relay_ws_connections (user_address, connection_id, connected_at, last_heartbeat_at)
		VALUES ($1, $2, now(), now())
	`, userAddress, connectionID)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (d *DB) TouchHeartbeat(ctx context.Context, connectionID string) error {
	_, err := d.Pool.Exec(ctx, `
		UPDATE relay_ws_connections SET last_heartbeat_at = now() WHERE connection_id = $1
	`, connectionID)
	if err != nil {
		return fmt.Errorf("touch heartbeat %s: %w", connectionID, err)
	}
	return nil
}

func (d *DB) CloseSession(ctx context.Context, connectionID string) error {
	_, err := d.Pool.Exec(ctx, `
		UPDATE relay_ws_connections SET disconnected_at = now()
		WHERE connection_id = $1 AND disconnected_at IS NULL
	`, connectionID)
	if err != nil {
		return fmt.Errorf("close session %s: %w", connectionID, err)
	}
	return nil
}
