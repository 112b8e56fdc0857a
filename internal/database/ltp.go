package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema is the DDL for the mirror table. Applied with CREATE IF NOT
// EXISTS on startup; one row per instrument key, updated in place.
const Schema = `
CREATE TABLE IF NOT EXISTS ltp_latest (
    instrument_key TEXT PRIMARY KEY,
    segment        TEXT NOT NULL,
    last_price     DOUBLE PRECISION NOT NULL,
    observed_at    TIMESTAMPTZ NOT NULL
)`

const upsertSQL = `
INSERT INTO ltp_latest (instrument_key, segment, last_price, observed_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (instrument_key) DO UPDATE
SET segment = EXCLUDED.segment,
    last_price = EXCLUDED.last_price,
    observed_at = EXCLUDED.observed_at`

// LTPMirror persists the latest observed price per key. Satisfies the
// Mirror interfaces in the feed and poller packages.
type LTPMirror struct {
	db *pgxpool.Pool
}

// NewLTPMirror ensures the mirror table exists and returns the mirror.
func NewLTPMirror(ctx context.Context, db *pgxpool.Pool) (*LTPMirror, error) {
	if _, err := db.Exec(ctx, Schema); err != nil {
		return nil, fmt.Errorf("create ltp_latest table: %w", err)
	}
	return &LTPMirror{db: db}, nil
}

// Upsert stores the latest price for key, replacing any prior value.
func (m *LTPMirror) Upsert(ctx context.Context, key, segment string, price float64, observedAt time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := m.db.Exec(ctx, upsertSQL, key, segment, price, observedAt); err != nil {
		return fmt.Errorf("upsert ltp: %w", err)
	}
	return nil
}
