// Package db wraps the process-global pgx connection pool and holds
// the query methods for every table in the data model (§3), grounded
// on relay-core/src/schema.rs and relay-core/src/db.rs, with the pool
// bootstrap idiom taken from ashita-ai/akashi's internal/storage/pool.go.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/mysocial/relay/internal/backoffutil"
)

// DB wraps the shared connection pool. It is cheap to hold by pointer
// and safe for concurrent use by every component (§9 shared context).
type DB struct {
	Pool *pgxpool.Pool
}

// Open establishes the pool with the startup retry policy from §5:
// 15s timeout per attempt, exponential backoff 1,2,4,8s, five attempts.
func Open(ctx context.Context, databaseURL string, maxConns int32, log zerolog.Logger) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	poolCfg.MaxConns = maxConns

	var pool *pgxpool.Pool
	err = backoffutil.RetryWithBackoff(ctx, 5, time.Second, 8*time.Second, func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()

		p, openErr := pgxpool.NewWithConfig(attemptCtx, poolCfg)
		if openErr != nil {
			return openErr
		}
		if pingErr := p.Ping(attemptCtx); pingErr != nil {
			p.Close()
			return pingErr
		}
		pool = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("open database pool after retries: %w", err)
	}

	log.Info().Msg("database pool established")
	return &DB{Pool: pool}, nil
}

func (d *DB) Close() {
	d.Pool.Close()
}
