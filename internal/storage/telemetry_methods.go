package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rifatsekerariot/ariowan/internal/models"
)

// ========== Ingestion Methods ==========

// StoreReception persists one reception. The gateway upsert, device
// upsert and reception insert run in a single transaction: all three
// succeed or none do.
func (s *PostgresStore) StoreReception(ctx context.Context, rec *models.Reception) error {
	if rec.DeviceID == "" || rec.GatewayID == "" {
		return ErrInvalidData
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}

	started := time.Now()
	defer s.logSlow("store_reception", started)

	ctx, cancel := s.stmtCtx(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := tx.upsertGateway(ctx, rec.GatewayID, rec.Timestamp); err != nil {
		tx.Rollback()
		return fmt.Errorf("upsert gateway: %w", err)
	}

	if err := tx.upsertDevice(ctx, rec.DeviceID, rec.Timestamp); err != nil {
		tx.Rollback()
		return fmt.Errorf("upsert device: %w", err)
	}

	query := `
		INSERT INTO receptions (
			id, device_id, gateway_id, timestamp, rssi, snr, rf_score, is_best
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)`

	_, err = tx.getDB().ExecContext(ctx, query,
		rec.ID, rec.DeviceID, rec.GatewayID, rec.Timestamp,
		rec.RSSI, rec.SNR, rec.RFScore, rec.IsBest,
	)
	if err != nil {
		tx.Rollback()
		if strings.Contains(err.Error(), "duplicate key") {
			return ErrDuplicateKey
		}
		return fmt.Errorf("insert reception: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// TouchDevice upserts a device row without a reception, used by join
// events which prove the device is alive.
func (s *PostgresStore) TouchDevice(ctx context.Context, devEUI string, seenAt time.Time) error {
	if devEUI == "" {
		return ErrInvalidData
	}

	ctx, cancel := s.stmtCtx(ctx)
	defer cancel()

	return s.upsertDevice(ctx, devEUI, seenAt)
}

// upsertGateway inserts the gateway on first reference and advances
// last_seen on every one after that.
func (s *PostgresStore) upsertGateway(ctx context.Context, id string, seenAt time.Time) error {
	query := `
		INSERT INTO gateways (id, first_seen, last_seen)
		VALUES ($1, $2, $2)
		ON CONFLICT (id) DO UPDATE SET last_seen = EXCLUDED.last_seen`

	_, err := s.getDB().ExecContext(ctx, query, id, seenAt)
	return err
}

// upsertDevice mirrors upsertGateway for the devices relation.
func (s *PostgresStore) upsertDevice(ctx context.Context, id string, seenAt time.Time) error {
	query := `
		INSERT INTO devices (id, first_seen, last_seen)
		VALUES ($1, $2, $2)
		ON CONFLICT (id) DO UPDATE SET last_seen = EXCLUDED.last_seen`

	_, err := s.getDB().ExecContext(ctx, query, id, seenAt)
	return err
}
