package ingest

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rifatsekerariot/ariowan/internal/models"
	"github.com/rifatsekerariot/ariowan/internal/storage"
)

// fakeStore records writes in memory and can inject failures per gateway.
type fakeStore struct {
	mu         sync.Mutex
	receptions []*models.Reception
	touched    map[string]time.Time
	failFor    map[string]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		touched: make(map[string]time.Time),
		failFor: make(map[string]error),
	}
}

func (f *fakeStore) StoreReception(_ context.Context, rec *models.Reception) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err, ok := f.failFor[rec.GatewayID]; ok {
		return err
	}

	stored := *rec
	f.receptions = append(f.receptions, &stored)
	return nil
}

func (f *fakeStore) TouchDevice(_ context.Context, devEUI string, seenAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touched[devEUI] = seenAt
	return nil
}

func (f *fakeStore) stored() []*models.Reception {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Reception, len(f.receptions))
	copy(out, f.receptions)
	return out
}

// The remaining Store methods are unused by the processor.

var errNotImplemented = errors.New("not implemented in fake")

func (f *fakeStore) BeginTx(context.Context) (storage.Store, error) { return f, nil }
func (f *fakeStore) Commit() error                                  { return nil }
func (f *fakeStore) Rollback() error                                { return nil }
func (f *fakeStore) Close() error                                   { return nil }
func (f *fakeStore) Ping(context.Context) error                     { return nil }

func (f *fakeStore) GetGateway(context.Context, string) (*models.Gateway, error) {
	return nil, errNotImplemented
}
func (f *fakeStore) ListGateways(context.Context) ([]*models.Gateway, error) {
	return nil, errNotImplemented
}
func (f *fakeStore) GatewayMetrics(context.Context, string, time.Time) (*models.GatewayMetrics, error) {
	return nil, errNotImplemented
}
func (f *fakeStore) GatewaySNRSamples(context.Context, string, time.Time, int) ([]float64, error) {
	return nil, errNotImplemented
}
func (f *fakeStore) GatewayAverageScore(context.Context, string, int) (float64, int64, error) {
	return 0, 0, errNotImplemented
}
func (f *fakeStore) GetDevice(context.Context, string) (*models.Device, error) {
	return nil, errNotImplemented
}
func (f *fakeStore) ListDevices(context.Context) ([]*models.Device, error) {
	return nil, errNotImplemented
}
func (f *fakeStore) DeviceMetrics(context.Context, string, time.Time) (*models.DeviceMetrics, error) {
	return nil, errNotImplemented
}
func (f *fakeStore) DeviceSNRSamples(context.Context, string, time.Time, int) ([]float64, error) {
	return nil, errNotImplemented
}
func (f *fakeStore) DeviceAverageScore(context.Context, string, int) (float64, int64, error) {
	return 0, 0, errNotImplemented
}
func (f *fakeStore) LastReception(context.Context) (*models.Reception, error) {
	return nil, errNotImplemented
}
func (f *fakeStore) ListReceptionsByDevice(context.Context, string, int, int) ([]*models.Reception, int64, error) {
	return nil, 0, errNotImplemented
}
func (f *fakeStore) NetworkHealth(context.Context, time.Time) (*models.NetworkHealth, error) {
	return nil, errNotImplemented
}
