package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/rifatsekerariot/ariowan/internal/models"
)

// ========== Gateway Queries ==========

// GetGateway gets a gateway by ID
func (s *PostgresStore) GetGateway(ctx context.Context, id string) (*models.Gateway, error) {
	ctx, cancel := s.stmtCtx(ctx)
	defer cancel()

	query := `SELECT id, first_seen, last_seen FROM gateways WHERE id = $1`

	gateway := &models.Gateway{}
	err := s.getDB().QueryRowContext(ctx, query, id).Scan(
		&gateway.ID, &gateway.FirstSeen, &gateway.LastSeen,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return gateway, nil
}

// ListGateways lists all known gateways, most recently seen first
func (s *PostgresStore) ListGateways(ctx context.Context) ([]*models.Gateway, error) {
	ctx, cancel := s.stmtCtx(ctx)
	defer cancel()

	query := `SELECT id, first_seen, last_seen FROM gateways ORDER BY last_seen DESC`

	rows, err := s.getDB().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var gateways []*models.Gateway
	for rows.Next() {
		gateway := &models.Gateway{}
		if err := rows.Scan(&gateway.ID, &gateway.FirstSeen, &gateway.LastSeen); err != nil {
			return nil, err
		}
		gateways = append(gateways, gateway)
	}

	return gateways, rows.Err()
}

// GatewayMetrics aggregates receptions for one gateway since the given time
func (s *PostgresStore) GatewayMetrics(ctx context.Context, id string, since time.Time) (*models.GatewayMetrics, error) {
	started := time.Now()
	defer s.logSlow("gateway_metrics", started)

	ctx, cancel := s.stmtCtx(ctx)
	defer cancel()

	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE is_best),
		       COALESCE(AVG(rssi), 0),
		       COALESCE(AVG(snr), 0),
		       COALESCE(AVG(rf_score), 0)
		FROM receptions
		WHERE gateway_id = $1 AND timestamp >= $2`

	m := &models.GatewayMetrics{GatewayID: id}
	err := s.getDB().QueryRowContext(ctx, query, id, since).Scan(
		&m.ReceptionCount, &m.BestCount, &m.AvgRSSI, &m.AvgSNR, &m.AvgScore,
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// GatewaySNRSamples returns the most recent SNR samples for a gateway,
// newest first, within the given time window
func (s *PostgresStore) GatewaySNRSamples(ctx context.Context, id string, since time.Time, limit int) ([]float64, error) {
	return s.snrSamples(ctx, "gateway_id", id, since, limit)
}

// GatewayAverageScore averages the rf_score of the most recent receptions
func (s *PostgresStore) GatewayAverageScore(ctx context.Context, id string, limit int) (float64, int64, error) {
	return s.averageScore(ctx, "gateway_id", id, limit)
}

// ========== Device Queries ==========

// GetDevice gets a device by DevEUI
func (s *PostgresStore) GetDevice(ctx context.Context, devEUI string) (*models.Device, error) {
	ctx, cancel := s.stmtCtx(ctx)
	defer cancel()

	query := `SELECT id, first_seen, last_seen FROM devices WHERE id = $1`

	device := &models.Device{}
	err := s.getDB().QueryRowContext(ctx, query, devEUI).Scan(
		&device.ID, &device.FirstSeen, &device.LastSeen,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return device, nil
}

// ListDevices lists all known devices, most recently seen first
func (s *PostgresStore) ListDevices(ctx context.Context) ([]*models.Device, error) {
	ctx, cancel := s.stmtCtx(ctx)
	defer cancel()

	query := `SELECT id, first_seen, last_seen FROM devices ORDER BY last_seen DESC`

	rows, err := s.getDB().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devices []*models.Device
	for rows.Next() {
		device := &models.Device{}
		if err := rows.Scan(&device.ID, &device.FirstSeen, &device.LastSeen); err != nil {
			return nil, err
		}
		devices = append(devices, device)
	}

	return devices, rows.Err()
}

// DeviceMetrics aggregates receptions for one device since the given time
func (s *PostgresStore) DeviceMetrics(ctx context.Context, devEUI string, since time.Time) (*models.DeviceMetrics, error) {
	started := time.Now()
	defer s.logSlow("device_metrics", started)

	ctx, cancel := s.stmtCtx(ctx)
	defer cancel()

	query := `
		SELECT COUNT(*),
		       COUNT(DISTINCT gateway_id),
		       COALESCE(AVG(rssi), 0),
		       COALESCE(AVG(snr), 0),
		       COALESCE(AVG(rf_score), 0)
		FROM receptions
		WHERE device_id = $1 AND timestamp >= $2`

	m := &models.DeviceMetrics{DeviceID: devEUI}
	err := s.getDB().QueryRowContext(ctx, query, devEUI, since).Scan(
		&m.ReceptionCount, &m.GatewayCount, &m.AvgRSSI, &m.AvgSNR, &m.AvgScore,
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// DeviceSNRSamples returns the most recent SNR samples for a device
func (s *PostgresStore) DeviceSNRSamples(ctx context.Context, devEUI string, since time.Time, limit int) ([]float64, error) {
	return s.snrSamples(ctx, "device_id", devEUI, since, limit)
}

// DeviceAverageScore averages the rf_score of the most recent receptions
func (s *PostgresStore) DeviceAverageScore(ctx context.Context, devEUI string, limit int) (float64, int64, error) {
	return s.averageScore(ctx, "device_id", devEUI, limit)
}

// ========== History and Network Queries ==========

// LastReception returns the most recently stored reception
func (s *PostgresStore) LastReception(ctx context.Context) (*models.Reception, error) {
	ctx, cancel := s.stmtCtx(ctx)
	defer cancel()

	query := `
		SELECT id, device_id, gateway_id, timestamp, rssi, snr, rf_score, is_best
		FROM receptions
		ORDER BY timestamp DESC
		LIMIT 1`

	rec := &models.Reception{}
	err := s.getDB().QueryRowContext(ctx, query).Scan(
		&rec.ID, &rec.DeviceID, &rec.GatewayID, &rec.Timestamp,
		&rec.RSSI, &rec.SNR, &rec.RFScore, &rec.IsBest,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return rec, nil
}

// ListReceptionsByDevice pages through a device's reception history
func (s *PostgresStore) ListReceptionsByDevice(ctx context.Context, devEUI string, limit, offset int) ([]*models.Reception, int64, error) {
	ctx, cancel := s.stmtCtx(ctx)
	defer cancel()

	var count int64
	err := s.getDB().QueryRowContext(ctx,
		"SELECT COUNT(*) FROM receptions WHERE device_id = $1", devEUI,
	).Scan(&count)
	if err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, device_id, gateway_id, timestamp, rssi, snr, rf_score, is_best
		FROM receptions
		WHERE device_id = $1
		ORDER BY timestamp DESC
		LIMIT $2 OFFSET $3`

	rows, err := s.getDB().QueryContext(ctx, query, devEUI, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var receptions []*models.Reception
	for rows.Next() {
		rec := &models.Reception{}
		err := rows.Scan(
			&rec.ID, &rec.DeviceID, &rec.GatewayID, &rec.Timestamp,
			&rec.RSSI, &rec.SNR, &rec.RFScore, &rec.IsBest,
		)
		if err != nil {
			return nil, 0, err
		}
		receptions = append(receptions, rec)
	}

	return receptions, count, rows.Err()
}

// NetworkHealth aggregates network-wide counters
func (s *PostgresStore) NetworkHealth(ctx context.Context, now time.Time) (*models.NetworkHealth, error) {
	started := time.Now()
	defer s.logSlow("network_health", started)

	ctx, cancel := s.stmtCtx(ctx)
	defer cancel()

	query := `
		SELECT
			(SELECT COUNT(*) FROM gateways),
			(SELECT COUNT(*) FROM devices),
			(SELECT COUNT(*) FROM receptions),
			(SELECT COUNT(*) FROM receptions WHERE timestamp >= $1),
			(SELECT COALESCE(AVG(rf_score), 0) FROM receptions WHERE timestamp >= $2)`

	h := &models.NetworkHealth{}
	err := s.getDB().QueryRowContext(ctx, query,
		now.Add(-time.Hour), now.Add(-24*time.Hour),
	).Scan(
		&h.GatewayCount, &h.DeviceCount, &h.ReceptionCount,
		&h.ReceptionsLast1, &h.AvgScoreLast24,
	)
	if err != nil {
		return nil, err
	}

	return h, nil
}

// ========== Shared helpers ==========

func (s *PostgresStore) snrSamples(ctx context.Context, column, id string, since time.Time, limit int) ([]float64, error) {
	ctx, cancel := s.stmtCtx(ctx)
	defer cancel()

	// column is one of the two fixed index columns, never user input.
	query := `
		SELECT snr FROM receptions
		WHERE ` + column + ` = $1 AND timestamp >= $2
		ORDER BY timestamp DESC
		LIMIT $3`

	rows, err := s.getDB().QueryContext(ctx, query, id, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []float64
	for rows.Next() {
		var snr float64
		if err := rows.Scan(&snr); err != nil {
			return nil, err
		}
		samples = append(samples, snr)
	}

	return samples, rows.Err()
}

func (s *PostgresStore) averageScore(ctx context.Context, column, id string, limit int) (float64, int64, error) {
	ctx, cancel := s.stmtCtx(ctx)
	defer cancel()

	query := `
		SELECT COALESCE(AVG(rf_score), 0), COUNT(*)
		FROM (
			SELECT rf_score FROM receptions
			WHERE ` + column + ` = $1
			ORDER BY timestamp DESC
			LIMIT $2
		) recent`

	var avg float64
	var count int64
	err := s.getDB().QueryRowContext(ctx, query, id, limit).Scan(&avg, &count)
	if err != nil {
		return 0, 0, err
	}

	return avg, count, nil
}
