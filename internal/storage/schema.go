package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// schema is applied on startup. Statements are idempotent so restarts
// against an initialized database are safe.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS gateways (
		id TEXT PRIMARY KEY,
		first_seen TIMESTAMPTZ NOT NULL,
		last_seen TIMESTAMPTZ NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS devices (
		id TEXT PRIMARY KEY,
		first_seen TIMESTAMPTZ NOT NULL,
		last_seen TIMESTAMPTZ NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS receptions (
		id UUID PRIMARY KEY,
		device_id TEXT NOT NULL REFERENCES devices(id),
		gateway_id TEXT NOT NULL REFERENCES gateways(id),
		timestamp TIMESTAMPTZ NOT NULL,
		rssi DOUBLE PRECISION NOT NULL,
		snr DOUBLE PRECISION NOT NULL,
		rf_score INTEGER NOT NULL,
		is_best BOOLEAN NOT NULL DEFAULT FALSE
	)`,

	`CREATE INDEX IF NOT EXISTS idx_receptions_device_ts
		ON receptions (device_id, timestamp DESC)`,

	`CREATE INDEX IF NOT EXISTS idx_receptions_gateway_ts
		ON receptions (gateway_id, timestamp DESC)`,
}

// InitSchema creates tables and indexes if they do not exist
func (s *PostgresStore) InitSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.getDB().ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}

	log.Info().Msg("Database schema ready")
	return nil
}
