package models

// UplinkEvent is the webhook payload for up/uplink events.
// Numeric fields are pointers so that absent values are distinguishable
// from legitimate zeroes.
type UplinkEvent struct {
	DeviceInfo DeviceInfo  `json:"deviceInfo"`
	RXInfo     []RXInfo    `json:"rxInfo"`
	FCnt       *uint32     `json:"fCnt,omitempty"`
	FPort      *uint8      `json:"fPort,omitempty"`
	Data       string      `json:"data,omitempty"`
	Object     interface{} `json:"object,omitempty"`
}

// DeviceInfo identifies the transmitting device.
type DeviceInfo struct {
	DevEUI     string `json:"devEui"`
	DeviceName string `json:"deviceName,omitempty"`
}

// RXInfo is one gateway's reception metadata for an uplink.
type RXInfo struct {
	GatewayID string   `json:"gatewayId"`
	RSSI      *float64 `json:"rssi"`
	SNR       *float64 `json:"snr"`
	Time      string   `json:"time,omitempty"`
}

// JoinEvent is the webhook payload for join events.
type JoinEvent struct {
	DeviceInfo DeviceInfo `json:"deviceInfo"`
	DevAddr    string     `json:"devAddr,omitempty"`
}

// StatusEvent is the webhook payload for status events.
type StatusEvent struct {
	DeviceInfo              DeviceInfo `json:"deviceInfo"`
	Margin                  *int       `json:"margin,omitempty"`
	BatteryLevel            *float64   `json:"batteryLevel,omitempty"`
	ExternalPowerSource     bool       `json:"externalPowerSource,omitempty"`
	BatteryLevelUnavailable bool       `json:"batteryLevelUnavailable,omitempty"`
}

// AckEvent is the webhook payload for downlink acknowledgment events.
type AckEvent struct {
	DeviceInfo   DeviceInfo `json:"deviceInfo"`
	Acknowledged bool       `json:"acknowledged"`
	FCntDown     *uint32    `json:"fCntDown,omitempty"`
}

// LogEvent is the webhook payload for log events.
type LogEvent struct {
	DeviceInfo  DeviceInfo `json:"deviceInfo"`
	Level       string     `json:"level,omitempty"`
	Code        string     `json:"code,omitempty"`
	Description string     `json:"description,omitempty"`
}

// LocationEvent is the webhook payload for location events.
type LocationEvent struct {
	DeviceInfo DeviceInfo `json:"deviceInfo"`
	Location   *Location  `json:"location,omitempty"`
}

// Location is a geographic position reported by a location solver.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
	Source    string  `json:"source,omitempty"`
}
