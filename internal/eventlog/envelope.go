// Package eventlog wraps the partitioned event-log broker (Redpanda /
// Kafka via franz-go): the wire envelope, a thin producer, and a thin
// consumer. Grounded on relay-core/src/redpanda.rs for the envelope
// shape and ws/internal/shared/kafka/consumer.go for the franz-go
// client wiring idiom.
package eventlog

import (
	"encoding/json"
	"time"
)

// Envelope is the canonical JSON body for every topic (§6).
type Envelope struct {
	EventType     string          `json:"event_type"`
	EventData     json.RawMessage `json:"event_data"`
	EventID       string          `json:"event_id,omitempty"`
	TransactionID string          `json:"transaction_id,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
}

// Key returns the partition key per §4.1/§6: event_id if present,
// else transaction_id.
func (e Envelope) Key() string {
	if e.EventID != "" {
		return e.EventID
	}
	return e.TransactionID
}

func (e Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

func Unmarshal(data []byte) (Envelope, error) {
	var e Envelope
	err := json.Unmarshal(data, &e)
	return e, err
}

// DeliveryJob is the message exchanged between the notification
// worker and the delivery worker on the "notifications.delivery"
// topic, keyed by user_address for per-recipient stickiness.
type DeliveryJob struct {
	UserAddress  string          `json:"user_address"`
	Notification json.RawMessage `json:"notification"`
	PlatformID   string          `json:"platform_id,omitempty"`
}
