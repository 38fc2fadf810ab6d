package api

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rifatsekerariot/ariowan/internal/ingest"
)

// maxWebhookBody bounds the inbound payload size.
const maxWebhookBody = 1 << 20 // 1 MiB

// HandleWebhook ingests one telemetry event. The caller is acknowledged
// immediately after admission; processing runs in the background and
// its failures are observable only through logs.
func (s *RESTServer) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	identity := clientIdentity(r)

	if !s.limiter.Admit(identity) {
		s.respondRateLimited(w, identity)
		return
	}

	// Past admission the caller always gets a 200; a truncated body is
	// terminal to this one event, like every other ingestion failure.
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		log.Warn().Err(err).Str("identity", identity).Msg("Failed to read webhook body, event dropped")
		w.WriteHeader(http.StatusOK)
		return
	}

	eventType := ingest.Classify(r.URL.Query(), r.Header, body)

	log.Debug().
		Str("identity", identity).
		Str("eventType", string(eventType)).
		Int("bodySize", len(body)).
		Msg("Webhook event admitted")

	// Acknowledge before processing. The request context dies with this
	// response, so the background task gets its own.
	w.WriteHeader(http.StatusOK)

	go s.processor.HandleEvent(context.Background(), eventType, body)
}

// respondRateLimited sends the machine-readable 429 rejection.
func (s *RESTServer) respondRateLimited(w http.ResponseWriter, identity string) {
	retryAfter := s.limiter.RetryAfter(identity)
	retrySeconds := int(retryAfter.Round(time.Second).Seconds())
	if retrySeconds < 1 {
		retrySeconds = 1
	}

	w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", s.limiter.Limit()))
	w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", s.limiter.Remaining(identity)))
	w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", time.Now().Add(retryAfter).Unix()))
	w.Header().Set("Retry-After", fmt.Sprintf("%d", retrySeconds))

	log.Warn().Str("identity", identity).Msg("Webhook request rate limited")

	s.respondJSON(w, http.StatusTooManyRequests, map[string]interface{}{
		"error":      "rate_limit_exceeded",
		"message":    "too many requests, slow down",
		"retryAfter": retrySeconds,
	})
}

// clientIdentity derives the rate-limit identity from the caller's
// network address. middleware.RealIP has already resolved the reverse
// proxy header chain into RemoteAddr.
func clientIdentity(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
