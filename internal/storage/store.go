package storage

import (
	"context"
	"errors"
	"time"

	"github.com/rifatsekerariot/ariowan/internal/models"
)

// Common errors
var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrInvalidData  = errors.New("invalid data")
)

// Store defines the storage interface
type Store interface {
	// Transaction support
	BeginTx(ctx context.Context) (Store, error)
	Commit() error
	Rollback() error

	// Ingestion path. StoreReception upserts the gateway and device rows
	// and inserts the reception in one transaction.
	StoreReception(ctx context.Context, rec *models.Reception) error
	TouchDevice(ctx context.Context, devEUI string, seenAt time.Time) error

	// Gateway queries
	GetGateway(ctx context.Context, id string) (*models.Gateway, error)
	ListGateways(ctx context.Context) ([]*models.Gateway, error)
	GatewayMetrics(ctx context.Context, id string, since time.Time) (*models.GatewayMetrics, error)
	GatewaySNRSamples(ctx context.Context, id string, since time.Time, limit int) ([]float64, error)
	GatewayAverageScore(ctx context.Context, id string, limit int) (float64, int64, error)

	// Device queries
	GetDevice(ctx context.Context, devEUI string) (*models.Device, error)
	ListDevices(ctx context.Context) ([]*models.Device, error)
	DeviceMetrics(ctx context.Context, devEUI string, since time.Time) (*models.DeviceMetrics, error)
	DeviceSNRSamples(ctx context.Context, devEUI string, since time.Time, limit int) ([]float64, error)
	DeviceAverageScore(ctx context.Context, devEUI string, limit int) (float64, int64, error)

	// History and network-wide aggregates
	LastReception(ctx context.Context) (*models.Reception, error)
	ListReceptionsByDevice(ctx context.Context, devEUI string, limit, offset int) ([]*models.Reception, int64, error)
	NetworkHealth(ctx context.Context, now time.Time) (*models.NetworkHealth, error)

	// Liveness
	Ping(ctx context.Context) error

	// Close the store
	Close() error
}
