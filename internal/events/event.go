package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types published on the user events queue.
const (
	UserRegistered = "user.registered"
	UserDeleted    = "user.deleted"
)

// UserEvent describes a change in a user's lifecycle.
type UserEvent struct {
	Type       string    `json:"type"`
	UserID     uuid.UUID `json:"userId"`
	Email      string    `json:"email"`
	Photo      *string   `json:"photo,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Publisher sends user events to the broker.
type Publisher interface {
	PublishUserEvent(ctx context.Context, event UserEvent) error
}

// Consumer delivers user events to handler until ctx is cancelled.
type Consumer interface {
	ConsumeUserEvents(ctx context.Context, handler func(context.Context, UserEvent) error) error
}

// NoopPublisher drops events. Used when no broker is configured.
type NoopPublisher struct{}

// PublishUserEvent implements Publisher.
func (NoopPublisher) PublishUserEvent(context.Context, UserEvent) error { return nil }
