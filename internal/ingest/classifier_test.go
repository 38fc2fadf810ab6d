package ingest

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rifatsekerariot/ariowan/internal/models"
)

func TestClassifyQueryParam(t *testing.T) {
	query := url.Values{"event": []string{"up"}}
	assert.Equal(t, models.EventTypeUplink, Classify(query, http.Header{}, nil))

	query = url.Values{"event": []string{"JOIN"}}
	assert.Equal(t, models.EventTypeJoin, Classify(query, http.Header{}, nil))
}

func TestClassifySkipsPlaceholders(t *testing.T) {
	// URL templates the sender never expanded.
	query := url.Values{"event": []string{"{event}", "status"}}
	assert.Equal(t, models.EventTypeStatus, Classify(query, http.Header{}, nil))

	query = url.Values{"event": []string{"{{event}}"}}
	assert.Equal(t, models.EventTypeUnknown, Classify(query, http.Header{}, nil))
}

func TestClassifyHeaders(t *testing.T) {
	header := http.Header{}
	header.Set("X-Event", "ack")
	assert.Equal(t, models.EventTypeAck, Classify(url.Values{}, header, nil))

	header = http.Header{}
	header.Set("X-Chirpstack-Event", "location")
	assert.Equal(t, models.EventTypeLocation, Classify(url.Values{}, header, nil))

	// Query parameter wins over headers.
	query := url.Values{"event": []string{"log"}}
	assert.Equal(t, models.EventTypeLog, Classify(query, header, nil))
}

func TestClassifyBodyFields(t *testing.T) {
	body := []byte(`{"event":"uplink","deviceInfo":{"devEui":"a"}}`)
	assert.Equal(t, models.EventTypeUplink, Classify(url.Values{}, http.Header{}, body))

	// Field priority: event before eventType before type.
	body = []byte(`{"type":"status","eventType":"join"}`)
	assert.Equal(t, models.EventTypeJoin, Classify(url.Values{}, http.Header{}, body))
}

func TestClassifyUnknown(t *testing.T) {
	assert.Equal(t, models.EventTypeUnknown, Classify(url.Values{}, http.Header{}, nil))
	assert.Equal(t, models.EventTypeUnknown, Classify(url.Values{}, http.Header{}, []byte(`not json`)))
	assert.Equal(t, models.EventTypeUnknown, Classify(url.Values{}, http.Header{}, []byte(`{"event":"frobnicate"}`)))
}
