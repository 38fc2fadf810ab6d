package ingest

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rifatsekerariot/ariowan/internal/models"
	"github.com/rifatsekerariot/ariowan/internal/storage"
	"github.com/rifatsekerariot/ariowan/pkg/radio"
)

// UplinkPublisher receives processed uplinks for downstream fan-out.
type UplinkPublisher interface {
	PublishUplink(devEUI string, best *models.Reception, receptionCount int)
	PublishJoin(devEUI string)
}

// Processor routes classified webhook events to their handlers and
// implements the uplink scoring pipeline. All failures are terminal to
// the offending record and surface only through logs; the HTTP response
// was already sent when processing starts.
type Processor struct {
	store     storage.Store
	publisher UplinkPublisher

	// now is replaceable in tests.
	now func() time.Time
}

// NewProcessor creates an event processor. publisher may be nil.
func NewProcessor(store storage.Store, publisher UplinkPublisher) *Processor {
	return &Processor{
		store:     store,
		publisher: publisher,
		now:       time.Now,
	}
}

// HandleEvent dispatches one classified event body.
func (p *Processor) HandleEvent(ctx context.Context, eventType models.EventType, body []byte) {
	switch eventType {
	case models.EventTypeUplink:
		p.processUplink(ctx, body)
	case models.EventTypeJoin:
		p.processJoin(ctx, body)
	case models.EventTypeStatus:
		p.processStatus(body)
	case models.EventTypeAck:
		p.processAck(body)
	case models.EventTypeLog:
		p.processLog(body)
	case models.EventTypeLocation:
		p.processLocation(body)
	default:
		log.Warn().Str("eventType", string(eventType)).Msg("Unknown event type, dropped")
	}
}

// validReception is one rxInfo entry that survived validation.
type validReception struct {
	gatewayID string
	rssi      float64
	snr       float64
	timeField string
}

// processUplink validates the payload, scores every valid reception,
// marks the best receivers and persists each reception in its own
// transaction.
func (p *Processor) processUplink(ctx context.Context, body []byte) {
	var event models.UplinkEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Warn().Err(err).Msg("Malformed uplink payload, dropped")
		return
	}

	devEUI := strings.TrimSpace(event.DeviceInfo.DevEUI)
	if devEUI == "" {
		log.Warn().Msg("Uplink without device EUI, dropped")
		return
	}

	if len(event.RXInfo) == 0 {
		log.Warn().Str("devEui", devEUI).Msg("Uplink without rxInfo, dropped")
		return
	}

	valid := p.validateReceptions(devEUI, event.RXInfo)
	if len(valid) == 0 {
		log.Warn().Str("devEui", devEUI).Msg("No valid receptions in uplink, dropped")
		return
	}

	// Best receiver: maximum SNR. Comparison for the flag is by value,
	// so every tied entry is marked; the first one in input order is the
	// canonical entry for reporting.
	maxSNR := valid[0].snr
	for _, rx := range valid[1:] {
		if rx.snr > maxSNR {
			maxSNR = rx.snr
		}
	}

	var best *models.Reception
	stored := 0

	for _, rx := range valid {
		score, err := radio.Score(rx.snr, rx.rssi)
		if err != nil {
			// validateReceptions already rejected non-finite values.
			log.Warn().Err(err).Str("gatewayId", rx.gatewayID).Msg("Score computation failed, reception dropped")
			continue
		}

		rec := &models.Reception{
			DeviceID:  devEUI,
			GatewayID: rx.gatewayID,
			Timestamp: p.resolveTimestamp(devEUI, rx),
			RSSI:      rx.rssi,
			SNR:       rx.snr,
			RFScore:   score,
			IsBest:    rx.snr == maxSNR,
		}

		// Each reception is an independent write attempt: a failure here
		// does not block the remaining entries.
		if err := p.store.StoreReception(ctx, rec); err != nil {
			log.Error().
				Err(err).
				Str("devEui", devEUI).
				Str("gatewayId", rx.gatewayID).
				Time("timestamp", rec.Timestamp).
				Msg("Failed to store reception")
			continue
		}

		stored++
		if rec.IsBest && best == nil {
			best = rec
		}
	}

	if stored == 0 {
		return
	}

	log.Info().
		Str("devEui", devEUI).
		Int("receptions", stored).
		Float64("bestSnr", maxSNR).
		Msg("Uplink processed")

	if p.publisher != nil && best != nil {
		p.publisher.PublishUplink(devEUI, best, stored)
	}
}

// validateReceptions drops entries missing a gateway id or carrying
// missing/non-finite rssi or snr. Invalid entries never abort the rest.
func (p *Processor) validateReceptions(devEUI string, rxInfo []models.RXInfo) []validReception {
	valid := make([]validReception, 0, len(rxInfo))

	for i, rx := range rxInfo {
		gatewayID := strings.TrimSpace(rx.GatewayID)
		if gatewayID == "" {
			log.Warn().Str("devEui", devEUI).Int("entry", i).Msg("Reception without gateway id, dropped")
			continue
		}
		if rx.RSSI == nil || !isFinite(*rx.RSSI) {
			log.Warn().Str("devEui", devEUI).Str("gatewayId", gatewayID).Msg("Reception with invalid rssi, dropped")
			continue
		}
		if rx.SNR == nil || !isFinite(*rx.SNR) {
			log.Warn().Str("devEui", devEUI).Str("gatewayId", gatewayID).Msg("Reception with invalid snr, dropped")
			continue
		}

		valid = append(valid, validReception{
			gatewayID: gatewayID,
			rssi:      *rx.RSSI,
			snr:       *rx.SNR,
			timeField: rx.Time,
		})
	}

	return valid
}

// resolveTimestamp parses the per-reception time field, falling back to
// the processing time when it is absent or unparseable.
func (p *Processor) resolveTimestamp(devEUI string, rx validReception) time.Time {
	if rx.timeField == "" {
		return p.now()
	}

	ts, err := time.Parse(time.RFC3339Nano, rx.timeField)
	if err != nil {
		log.Warn().
			Str("devEui", devEUI).
			Str("gatewayId", rx.gatewayID).
			Str("time", rx.timeField).
			Msg("Unparseable reception time, using processing time")
		return p.now()
	}

	return ts
}

// processJoin refreshes the device row: a join proves the device is alive.
func (p *Processor) processJoin(ctx context.Context, body []byte) {
	var event models.JoinEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Warn().Err(err).Msg("Malformed join payload, dropped")
		return
	}

	devEUI := strings.TrimSpace(event.DeviceInfo.DevEUI)
	if devEUI == "" {
		log.Warn().Msg("Join without device EUI, dropped")
		return
	}

	if err := p.store.TouchDevice(ctx, devEUI, p.now()); err != nil {
		log.Error().Err(err).Str("devEui", devEUI).Msg("Failed to record join")
		return
	}

	log.Info().Str("devEui", devEUI).Str("devAddr", event.DevAddr).Msg("Device joined")

	if p.publisher != nil {
		p.publisher.PublishJoin(devEUI)
	}
}

func (p *Processor) processStatus(body []byte) {
	var event models.StatusEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Warn().Err(err).Msg("Malformed status payload, dropped")
		return
	}

	e := log.Info().Str("devEui", event.DeviceInfo.DevEUI)
	if event.Margin != nil {
		e = e.Int("margin", *event.Margin)
	}
	if event.BatteryLevel != nil {
		e = e.Float64("batteryLevel", *event.BatteryLevel)
	}
	e.Msg("Device status")
}

func (p *Processor) processAck(body []byte) {
	var event models.AckEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Warn().Err(err).Msg("Malformed ack payload, dropped")
		return
	}

	log.Info().
		Str("devEui", event.DeviceInfo.DevEUI).
		Bool("acknowledged", event.Acknowledged).
		Msg("Downlink acknowledgment")
}

func (p *Processor) processLog(body []byte) {
	var event models.LogEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Warn().Err(err).Msg("Malformed log payload, dropped")
		return
	}

	log.Info().
		Str("devEui", event.DeviceInfo.DevEUI).
		Str("level", event.Level).
		Str("code", event.Code).
		Str("description", event.Description).
		Msg("Device log event")
}

func (p *Processor) processLocation(body []byte) {
	var event models.LocationEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Warn().Err(err).Msg("Malformed location payload, dropped")
		return
	}

	e := log.Info().Str("devEui", event.DeviceInfo.DevEUI)
	if event.Location != nil {
		e = e.Float64("latitude", event.Location.Latitude).
			Float64("longitude", event.Location.Longitude)
	}
	e.Msg("Device location")
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
