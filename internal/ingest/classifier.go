package ingest

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/rifatsekerariot/ariowan/internal/models"
)

// Header names senders use to label the event type, in priority order.
var eventHeaders = []string{
	"X-Event",
	"X-Chirpstack-Event",
	"X-Webhook-Event",
}

// Body fields checked for an event tag, in priority order.
var eventBodyFields = []string{
	"event",
	"eventType",
	"type",
}

// Classify determines the event type of an inbound webhook message.
// Resolution order: "event" query parameter (first value that is not a
// template placeholder), recognized headers, body fields, unknown.
// Pure: no I/O, the body is already read.
func Classify(query url.Values, header http.Header, body []byte) models.EventType {
	for _, v := range query["event"] {
		if v == "" || isPlaceholder(v) {
			continue
		}
		return models.ParseEventType(strings.ToLower(v))
	}

	for _, name := range eventHeaders {
		if v := header.Get(name); v != "" && !isPlaceholder(v) {
			return models.ParseEventType(strings.ToLower(v))
		}
	}

	if len(body) > 0 {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(body, &fields); err == nil {
			for _, name := range eventBodyFields {
				raw, ok := fields[name]
				if !ok {
					continue
				}
				var v string
				if err := json.Unmarshal(raw, &v); err == nil && v != "" && !isPlaceholder(v) {
					return models.ParseEventType(strings.ToLower(v))
				}
			}
		}
	}

	return models.EventTypeUnknown
}

// isPlaceholder reports whether a value is an unexpanded template
// variable such as "{event}" or "{{event}}" left behind by the sender's
// URL template.
func isPlaceholder(v string) bool {
	return strings.HasPrefix(v, "{") && strings.HasSuffix(v, "}")
}
