package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/rifatsekerariot/ariowan/internal/models"
	"github.com/rifatsekerariot/ariowan/internal/storage"
	"github.com/rifatsekerariot/ariowan/pkg/radio"
)

// ========== Auth handlers ==========

// HandleLogin authenticates the admin credential and issues a token
func (s *RESTServer) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := s.auth.Authenticate(req.Username, req.Password)
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"access_token": token,
		"expires_in":   int(s.config.JWT.AccessTokenTTL.Std().Seconds()),
		"token_type":   "Bearer",
	})
}

// ========== Liveness ==========

// HandleHealth reports process and database liveness
func (s *RESTServer) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		log.Error().Err(err).Msg("Health check database ping failed")
		s.respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"error":  "database unreachable",
		})
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"name":    s.config.Server.Name,
		"version": s.config.Server.Version,
	})
}

// ========== Uplink history ==========

// HandleLastUplink returns the most recently stored reception
func (s *RESTServer) HandleLastUplink(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.LastReception(r.Context())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "no uplinks recorded")
			return
		}
		s.respondError(w, http.StatusInternalServerError, "query failed")
		return
	}

	s.respondJSON(w, http.StatusOK, rec)
}

// HandleDeviceUplinks pages through a device's reception history
func (s *RESTServer) HandleDeviceUplinks(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	receptions, total, err := s.store.ListReceptionsByDevice(r.Context(), id, limit, offset)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "query failed")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"total":   total,
		"uplinks": receptions,
	})
}

// ========== Gateway handlers ==========

type gatewayStatus struct {
	*models.Gateway
	Connectivity radio.ConnectivityStatus `json:"connectivity"`
}

// HandleListGateways lists gateways with their connectivity
func (s *RESTServer) HandleListGateways(w http.ResponseWriter, r *http.Request) {
	gateways, err := s.store.ListGateways(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "query failed")
		return
	}

	now := time.Now()
	threshold := s.config.Telemetry.OfflineThreshold()

	result := make([]gatewayStatus, 0, len(gateways))
	for _, gw := range gateways {
		lastSeen := gw.LastSeen
		result = append(result, gatewayStatus{
			Gateway:      gw,
			Connectivity: radio.Connectivity(&lastSeen, now, threshold),
		})
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"total":    len(result),
		"gateways": result,
	})
}

type healthEntry struct {
	ID           string                   `json:"id"`
	Connectivity radio.ConnectivityStatus `json:"connectivity"`
	Health       radio.HealthStatus       `json:"health"`
	Stability    radio.StabilityIndex     `json:"stability"`
	AvgScore     float64                  `json:"avgScore"`
	SampleCount  int64                    `json:"sampleCount"`
}

// HandleGatewaysHealth classifies every gateway
func (s *RESTServer) HandleGatewaysHealth(w http.ResponseWriter, r *http.Request) {
	gateways, err := s.store.ListGateways(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "query failed")
		return
	}

	result := make([]healthEntry, 0, len(gateways))
	for _, gw := range gateways {
		entry, err := s.gatewayHealth(r, gw)
		if err != nil {
			s.respondError(w, http.StatusInternalServerError, "query failed")
			return
		}
		result = append(result, entry)
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"total":    len(result),
		"gateways": result,
	})
}

// HandleGetGateway returns one gateway with its classifications
func (s *RESTServer) HandleGetGateway(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	gw, err := s.store.GetGateway(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "gateway not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, "query failed")
		return
	}

	entry, err := s.gatewayHealth(r, gw)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "query failed")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"gateway":      gw,
		"connectivity": entry.Connectivity,
		"health":       entry.Health,
		"stability":    entry.Stability,
		"avgScore":     entry.AvgScore,
	})
}

// HandleGatewayMetrics aggregates a gateway's receptions over a window
func (s *RESTServer) HandleGatewayMetrics(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	since := time.Now().Add(-windowHours(r))

	metrics, err := s.store.GatewayMetrics(r.Context(), id, since)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "query failed")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"metrics": metrics,
		"health":  radio.HealthFromScore(metrics.AvgScore),
	})
}

func (s *RESTServer) gatewayHealth(r *http.Request, gw *models.Gateway) (healthEntry, error) {
	ctx := r.Context()
	cfg := &s.config.Telemetry

	avgScore, count, err := s.store.GatewayAverageScore(ctx, gw.ID, cfg.HealthSampleSize)
	if err != nil {
		return healthEntry{}, err
	}

	samples, err := s.store.GatewaySNRSamples(ctx, gw.ID, time.Now().Add(-24*time.Hour), cfg.StabilitySampleSize)
	if err != nil {
		return healthEntry{}, err
	}

	lastSeen := gw.LastSeen
	return healthEntry{
		ID:           gw.ID,
		Connectivity: radio.Connectivity(&lastSeen, time.Now(), cfg.OfflineThreshold()),
		Health:       radio.HealthFromScore(avgScore),
		Stability:    radio.Stability(samples),
		AvgScore:     avgScore,
		SampleCount:  count,
	}, nil
}

// ========== Device handlers ==========

type deviceStatus struct {
	*models.Device
	Connectivity radio.ConnectivityStatus `json:"connectivity"`
}

// HandleListDevices lists devices with their connectivity
func (s *RESTServer) HandleListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.store.ListDevices(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "query failed")
		return
	}

	now := time.Now()
	threshold := s.config.Telemetry.OfflineThreshold()

	result := make([]deviceStatus, 0, len(devices))
	for _, dev := range devices {
		lastSeen := dev.LastSeen
		result = append(result, deviceStatus{
			Device:       dev,
			Connectivity: radio.Connectivity(&lastSeen, now, threshold),
		})
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"total":   len(result),
		"devices": result,
	})
}

// HandleDevicesHealth classifies every device
func (s *RESTServer) HandleDevicesHealth(w http.ResponseWriter, r *http.Request) {
	devices, err := s.store.ListDevices(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "query failed")
		return
	}

	result := make([]healthEntry, 0, len(devices))
	for _, dev := range devices {
		entry, err := s.deviceHealth(r, dev)
		if err != nil {
			s.respondError(w, http.StatusInternalServerError, "query failed")
			return
		}
		result = append(result, entry)
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"total":   len(result),
		"devices": result,
	})
}

// HandleGetDevice returns one device with its classifications
func (s *RESTServer) HandleGetDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	dev, err := s.store.GetDevice(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "device not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, "query failed")
		return
	}

	entry, err := s.deviceHealth(r, dev)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "query failed")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"device":       dev,
		"connectivity": entry.Connectivity,
		"health":       entry.Health,
		"stability":    entry.Stability,
		"avgScore":     entry.AvgScore,
	})
}

// HandleDeviceMetrics aggregates a device's receptions over a window
func (s *RESTServer) HandleDeviceMetrics(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	since := time.Now().Add(-windowHours(r))

	metrics, err := s.store.DeviceMetrics(r.Context(), id, since)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "query failed")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"metrics": metrics,
		"health":  radio.HealthFromScore(metrics.AvgScore),
	})
}

func (s *RESTServer) deviceHealth(r *http.Request, dev *models.Device) (healthEntry, error) {
	ctx := r.Context()
	cfg := &s.config.Telemetry

	avgScore, count, err := s.store.DeviceAverageScore(ctx, dev.ID, cfg.HealthSampleSize)
	if err != nil {
		return healthEntry{}, err
	}

	samples, err := s.store.DeviceSNRSamples(ctx, dev.ID, time.Now().Add(-24*time.Hour), cfg.StabilitySampleSize)
	if err != nil {
		return healthEntry{}, err
	}

	lastSeen := dev.LastSeen
	return healthEntry{
		ID:           dev.ID,
		Connectivity: radio.Connectivity(&lastSeen, time.Now(), cfg.OfflineThreshold()),
		Health:       radio.HealthFromScore(avgScore),
		Stability:    radio.Stability(samples),
		AvgScore:     avgScore,
		SampleCount:  count,
	}, nil
}

// ========== Network handlers ==========

// HandleNetworkHealth aggregates network-wide counters
func (s *RESTServer) HandleNetworkHealth(w http.ResponseWriter, r *http.Request) {
	health, err := s.store.NetworkHealth(r.Context(), time.Now())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "query failed")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"network": health,
		"status":  radio.HealthFromScore(health.AvgScoreLast24),
	})
}

// ========== Helpers ==========

// windowHours reads the aggregation window from the hours query param.
func windowHours(r *http.Request) time.Duration {
	hours, _ := strconv.Atoi(r.URL.Query().Get("hours"))
	if hours <= 0 || hours > 24*30 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}

// respondJSON writes a JSON response
func (s *RESTServer) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

// respondError responds with error
func (s *RESTServer) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{
		"error": message,
	})
}
