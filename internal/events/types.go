// Package events defines event types and the pub/sub bus used to decouple
// the monitor from its consumers (API cache, history store, MQTT telemetry).
package events

import (
	"time"

	"github.com/squareland/pinger/internal/ping"
)

// EventType represents the type of event emitted through the EventBus.
type EventType string

const (
	// Monitoring events
	EventStatusUpdate    EventType = "status_update"
	EventServerDown      EventType = "server_down"
	EventServerRecovered EventType = "server_recovered"

	// System events
	EventConfigChanged EventType = "config_changed"
	EventShutdown      EventType = "shutdown"
)

// Event represents a single event in the system.
type Event struct {
	Type    EventType
	Source  string
	Payload interface{}
}

// StatusUpdatePayload is emitted after every successful poll of a target.
type StatusUpdatePayload struct {
	Target    string        `json:"target"`
	Address   string        `json:"address"`
	Status    *ping.Status  `json:"status"`
	RTT       time.Duration `json:"rtt_ns"`
	Timestamp time.Time     `json:"timestamp"`
}

// ServerDownPayload is emitted when a poll fails, and again with the
// Recovered flag once the target answers after a failure.
type ServerDownPayload struct {
	Target    string    `json:"target"`
	Address   string    `json:"address"`
	Error     string    `json:"error,omitempty"`
	Recovered bool      `json:"recovered"`
	Timestamp time.Time `json:"timestamp"`
}

// ConfigChangedPayload is emitted when the target list changes at runtime.
type ConfigChangedPayload struct {
	Section string
	Key     string
	Value   interface{}
}
