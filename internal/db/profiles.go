package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ResolveProfile performs the case-insensitive owner_address match
// §4.6 step 3 requires; a nil result (no error) means the wallet has
// no profile and the caller should respond Forbidden.
func (d *DB) ResolveProfile(ctx context.Context, walletAddress string) (*Profile, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT id, owner_address FROM profiles WHERE lower(owner_address) = lower($1)
	`, walletAddress)
	if err != nil {
		return nil, fmt.Errorf("resolve profile: %w", err)
	}
	defer rows.Close()
	p, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[Profile])
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
