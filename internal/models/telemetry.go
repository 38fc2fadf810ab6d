package models

import (
	"time"

	"github.com/google/uuid"
)

// Gateway represents a LoRaWAN gateway known to the collector.
// Rows are created lazily on the first reception that names the gateway
// and refreshed on every reception after that.
type Gateway struct {
	ID        string    `json:"gatewayId" db:"id"`
	FirstSeen time.Time `json:"firstSeen" db:"first_seen"`
	LastSeen  time.Time `json:"lastSeen" db:"last_seen"`
}

// Device represents an end device, keyed by its DevEUI.
type Device struct {
	ID        string    `json:"devEui" db:"id"`
	FirstSeen time.Time `json:"firstSeen" db:"first_seen"`
	LastSeen  time.Time `json:"lastSeen" db:"last_seen"`
}

// Reception is one gateway's observation of one transmitted frame.
// Append-only; IsBest may be set for several rows of the same
// transmission when their SNR ties for the maximum.
type Reception struct {
	ID        uuid.UUID `json:"id" db:"id"`
	DeviceID  string    `json:"devEui" db:"device_id"`
	GatewayID string    `json:"gatewayId" db:"gateway_id"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
	RSSI      float64   `json:"rssi" db:"rssi"`
	SNR       float64   `json:"snr" db:"snr"`
	RFScore   int       `json:"rfScore" db:"rf_score"`
	IsBest    bool      `json:"isBest" db:"is_best"`
}

// GatewayMetrics summarizes stored receptions for one gateway over a window.
type GatewayMetrics struct {
	GatewayID      string  `json:"gatewayId"`
	ReceptionCount int64   `json:"receptionCount"`
	BestCount      int64   `json:"bestCount"`
	AvgRSSI        float64 `json:"avgRssi"`
	AvgSNR         float64 `json:"avgSnr"`
	AvgScore       float64 `json:"avgScore"`
}

// DeviceMetrics summarizes stored receptions for one device over a window.
type DeviceMetrics struct {
	DeviceID       string  `json:"devEui"`
	ReceptionCount int64   `json:"receptionCount"`
	GatewayCount   int64   `json:"gatewayCount"`
	AvgRSSI        float64 `json:"avgRssi"`
	AvgSNR         float64 `json:"avgSnr"`
	AvgScore       float64 `json:"avgScore"`
}

// NetworkHealth is the network-wide aggregate served by /api/network-health.
type NetworkHealth struct {
	GatewayCount    int64   `json:"gatewayCount"`
	DeviceCount     int64   `json:"deviceCount"`
	ReceptionCount  int64   `json:"receptionCount"`
	ReceptionsLast1 int64   `json:"receptionsLastHour"`
	AvgScoreLast24  float64 `json:"avgScoreLast24h"`
}
