package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rifatsekerariot/ariowan/internal/models"
	"github.com/rifatsekerariot/ariowan/pkg/radio"
)

func uplinkBody(t *testing.T) []byte {
	t.Helper()
	return []byte(`{
		"deviceInfo": {"devEui": "0102030405060708"},
		"rxInfo": [
			{"gatewayId": "gw-1", "rssi": -85, "snr": 5},
			{"gatewayId": "gw-2", "rssi": -80, "snr": 9},
			{"gatewayId": "gw-3", "rssi": -95, "snr": 9}
		]
	}`)
}

func TestProcessUplinkBestReceiverTies(t *testing.T) {
	store := newFakeStore()
	p := NewProcessor(store, nil)

	p.HandleEvent(context.Background(), models.EventTypeUplink, uplinkBody(t))

	recs := store.stored()
	require.Len(t, recs, 3)

	byGateway := map[string]*models.Reception{}
	for _, r := range recs {
		byGateway[r.GatewayID] = r
	}

	assert.False(t, byGateway["gw-1"].IsBest)
	assert.True(t, byGateway["gw-2"].IsBest)
	assert.True(t, byGateway["gw-3"].IsBest)

	// Stored scores must be reproducible from stored raw values.
	for _, r := range recs {
		score, err := radio.Score(r.SNR, r.RSSI)
		require.NoError(t, err)
		assert.Equal(t, score, r.RFScore)
	}
}

func TestProcessUplinkDropsInvalidEntries(t *testing.T) {
	store := newFakeStore()
	p := NewProcessor(store, nil)

	body := []byte(`{
		"deviceInfo": {"devEui": "0102030405060708"},
		"rxInfo": [
			{"rssi": -85, "snr": 5},
			{"gatewayId": "gw-2", "snr": 9},
			{"gatewayId": "gw-3", "rssi": -95, "snr": 4}
		]
	}`)

	p.HandleEvent(context.Background(), models.EventTypeUplink, body)

	recs := store.stored()
	require.Len(t, recs, 1)
	assert.Equal(t, "gw-3", recs[0].GatewayID)
	assert.True(t, recs[0].IsBest)
}

func TestProcessUplinkRejectsMalformedPayloads(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing devEui", `{"rxInfo": [{"gatewayId": "gw", "rssi": -80, "snr": 5}]}`},
		{"blank devEui", `{"deviceInfo": {"devEui": "  "}, "rxInfo": [{"gatewayId": "gw", "rssi": -80, "snr": 5}]}`},
		{"empty rxInfo", `{"deviceInfo": {"devEui": "aa"}, "rxInfo": []}`},
		{"missing rxInfo", `{"deviceInfo": {"devEui": "aa"}}`},
		{"not json", `garbage`},
		{"all entries invalid", `{"deviceInfo": {"devEui": "aa"}, "rxInfo": [{"rssi": -80, "snr": 5}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			p := NewProcessor(store, nil)
			p.HandleEvent(context.Background(), models.EventTypeUplink, []byte(tt.body))
			assert.Empty(t, store.stored())
		})
	}
}

func TestProcessUplinkStorageFailureDoesNotBlockSiblings(t *testing.T) {
	store := newFakeStore()
	store.failFor["gw-2"] = errors.New("db down")
	p := NewProcessor(store, nil)

	p.HandleEvent(context.Background(), models.EventTypeUplink, uplinkBody(t))

	recs := store.stored()
	require.Len(t, recs, 2)
	for _, r := range recs {
		assert.NotEqual(t, "gw-2", r.GatewayID)
	}
}

func TestProcessUplinkTimestampResolution(t *testing.T) {
	store := newFakeStore()
	p := NewProcessor(store, nil)

	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	body := []byte(`{
		"deviceInfo": {"devEui": "aa"},
		"rxInfo": [
			{"gatewayId": "gw-1", "rssi": -85, "snr": 5, "time": "2025-06-01T11:59:30Z"},
			{"gatewayId": "gw-2", "rssi": -80, "snr": 6, "time": "not-a-time"},
			{"gatewayId": "gw-3", "rssi": -95, "snr": 4}
		]
	}`)

	p.HandleEvent(context.Background(), models.EventTypeUplink, body)

	recs := store.stored()
	require.Len(t, recs, 3)

	byGateway := map[string]*models.Reception{}
	for _, r := range recs {
		byGateway[r.GatewayID] = r
	}

	assert.Equal(t, time.Date(2025, 6, 1, 11, 59, 30, 0, time.UTC), byGateway["gw-1"].Timestamp)
	assert.Equal(t, fixed, byGateway["gw-2"].Timestamp)
	assert.Equal(t, fixed, byGateway["gw-3"].Timestamp)
}

func TestProcessUplinkPublishesBestReception(t *testing.T) {
	store := newFakeStore()
	pub := &capturePublisher{}
	p := NewProcessor(store, pub)

	p.HandleEvent(context.Background(), models.EventTypeUplink, uplinkBody(t))

	require.NotNil(t, pub.uplink)
	assert.Equal(t, "0102030405060708", pub.uplinkDevEUI)
	assert.Equal(t, "gw-2", pub.uplink.GatewayID)
	assert.Equal(t, 3, pub.uplinkCount)
}

func TestProcessJoinTouchesDevice(t *testing.T) {
	store := newFakeStore()
	pub := &capturePublisher{}
	p := NewProcessor(store, pub)

	body := []byte(`{"deviceInfo": {"devEui": "aabbccdd"}, "devAddr": "01020304"}`)
	p.HandleEvent(context.Background(), models.EventTypeJoin, body)

	assert.Contains(t, store.touched, "aabbccdd")
	assert.Equal(t, "aabbccdd", pub.joinDevEUI)
}

func TestHandleEventUnknownIsNoop(t *testing.T) {
	store := newFakeStore()
	p := NewProcessor(store, nil)

	p.HandleEvent(context.Background(), models.EventTypeUnknown, []byte(`{}`))
	assert.Empty(t, store.stored())
	assert.Empty(t, store.touched)
}

// capturePublisher records the last published uplink and join.
type capturePublisher struct {
	uplink       *models.Reception
	uplinkDevEUI string
	uplinkCount  int
	joinDevEUI   string
}

func (c *capturePublisher) PublishUplink(devEUI string, best *models.Reception, count int) {
	c.uplinkDevEUI = devEUI
	c.uplink = best
	c.uplinkCount = count
}

func (c *capturePublisher) PublishJoin(devEUI string) {
	c.joinDevEUI = devEUI
}
