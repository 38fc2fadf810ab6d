package models

// EventType represents the semantic type of an inbound webhook event.
type EventType string

const (
	EventTypeUplink   EventType = "up"
	EventTypeStatus   EventType = "status"
	EventTypeJoin     EventType = "join"
	EventTypeAck      EventType = "ack"
	EventTypeLog      EventType = "log"
	EventTypeLocation EventType = "location"
	EventTypeUnknown  EventType = "unknown"
)

// ParseEventType maps a lowercase event tag onto an EventType.
// "uplink" is an alias for "up" used by older senders.
func ParseEventType(tag string) EventType {
	switch tag {
	case "up", "uplink":
		return EventTypeUplink
	case "status":
		return EventTypeStatus
	case "join":
		return EventTypeJoin
	case "ack":
		return EventTypeAck
	case "log":
		return EventTypeLog
	case "location":
		return EventTypeLocation
	default:
		return EventTypeUnknown
	}
}
