// Package audit captures domain lifecycle events. Events are append-only and
// transport-agnostic so sinks (Kafka, memory in tests) can be swapped freely.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventAction enumerates the domain lifecycle actions worth auditing.
type EventAction string

const (
	EventDomainRequested    EventAction = "domain.requested"
	EventDomainRegistered   EventAction = "domain.registered"
	EventDomainFailed       EventAction = "domain.register_failed"
	EventDomainConnected    EventAction = "domain.connected"
	EventDomainDisconnected EventAction = "domain.disconnected"
	EventBindingRetried     EventAction = "domain.binding_retried"
)

// Event is emitted from domain logic to capture key actions.
type Event struct {
	Timestamp time.Time   `json:"timestamp"`
	Action    EventAction `json:"action"`
	UserID    uuid.UUID   `json:"user_id"`
	SiteID    uuid.UUID   `json:"site_id"`
	Domain    string      `json:"domain"`
	RequestID string      `json:"request_id,omitempty"`
	Detail    string      `json:"detail,omitempty"`
}

// Sink receives serialized events. The Kafka producer implements it; tests
// use an in-memory sink.
type Sink interface {
	Publish(ctx context.Context, key string, payload []byte) error
}

// Publisher emits audit events to a sink. A nil *Publisher is a no-op so
// callers never need to guard their Emit calls.
type Publisher struct {
	sink Sink
}

func NewPublisher(sink Sink) *Publisher {
	return &Publisher{sink: sink}
}

// Emit publishes an event. Failures are returned for the caller to log;
// auditing never blocks a business operation.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if p == nil || p.sink == nil {
		return nil
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.sink.Publish(ctx, event.SiteID.String(), payload)
}
