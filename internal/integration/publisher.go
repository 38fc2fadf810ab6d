package integration

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/rifatsekerariot/ariowan/internal/models"
)

// Publisher fans processed telemetry out to NATS so dashboards and
// forwarders can subscribe without touching the database. Publication
// is best-effort: a failure is logged and dropped, never retried.
type Publisher struct {
	nc *nats.Conn
}

// NewPublisher creates a NATS publisher
func NewPublisher(nc *nats.Conn) *Publisher {
	return &Publisher{nc: nc}
}

// uplinkMessage is the wire shape published on telemetry.device.<devEui>.up
type uplinkMessage struct {
	DevEUI         string    `json:"devEui"`
	GatewayID      string    `json:"gatewayId"`
	Timestamp      time.Time `json:"timestamp"`
	RSSI           float64   `json:"rssi"`
	SNR            float64   `json:"snr"`
	RFScore        int       `json:"rfScore"`
	ReceptionCount int       `json:"receptionCount"`
}

// PublishUplink publishes the best reception of a processed uplink.
func (p *Publisher) PublishUplink(devEUI string, best *models.Reception, receptionCount int) {
	msg := uplinkMessage{
		DevEUI:         devEUI,
		GatewayID:      best.GatewayID,
		Timestamp:      best.Timestamp,
		RSSI:           best.RSSI,
		SNR:            best.SNR,
		RFScore:        best.RFScore,
		ReceptionCount: receptionCount,
	}

	p.publish(fmt.Sprintf("telemetry.device.%s.up", devEUI), msg)
}

// PublishJoin publishes a join notification.
func (p *Publisher) PublishJoin(devEUI string) {
	p.publish(fmt.Sprintf("telemetry.device.%s.join", devEUI), map[string]interface{}{
		"devEui": devEUI,
		"time":   time.Now(),
	})
}

func (p *Publisher) publish(subject string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("subject", subject).Msg("Failed to marshal event")
		return
	}

	if err := p.nc.Publish(subject, data); err != nil {
		log.Error().Err(err).Str("subject", subject).Msg("Failed to publish event")
		return
	}

	log.Debug().Str("subject", subject).Msg("Event published")
}
