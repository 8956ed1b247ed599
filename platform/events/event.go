// Package events is the in-process event bus. Domain event types live in
// internal/events; this package only knows names, ids and handlers.
package events

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
)

// Event is anything published on the bus.
type Event interface {
	// EventName routes the event to its subscribers.
	EventName() string
	// EventID is unique per published event; it ties log lines across
	// processes (API, scheduler) to one occurrence.
	EventID() string
	OccurredAt() time.Time
}

// BaseEvent is embedded by domain events.
type BaseEvent struct {
	ID        string    `json:"eventId"`
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) EventID() string       { return e.ID }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

// NewBaseEvent stamps an event with the current UTC time and a ULID, so ids
// sort in publish order.
func NewBaseEvent() BaseEvent {
	now := time.Now().UTC()
	return BaseEvent{ID: ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(), Timestamp: now}
}

// Handler reacts to one event.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus publishes events to the handlers subscribed to their name.
type Bus interface {
	// Publish delivers asynchronously; handler errors are only logged.
	Publish(ctx context.Context, event Event)
	// PublishSync delivers in subscription order and returns the joined
	// handler errors.
	PublishSync(ctx context.Context, event Event) error
	Subscribe(eventName string, handler Handler)
}
