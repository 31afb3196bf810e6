package service

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType classifies change events emitted by the core.
type EventType string

const (
	// EventRequestCreated fires when a user creates a request.
	EventRequestCreated EventType = "request.created"
	// EventRequestAccepted fires when a worker accepts a request.
	EventRequestAccepted EventType = "request.accepted"
	// EventRequestCompleted fires when an accepted request completes.
	EventRequestCompleted EventType = "request.completed"
	// EventRequestCancelled fires when a pending request is cancelled.
	EventRequestCancelled EventType = "request.cancelled"
	// EventChatMessage fires when a chat message is appended.
	EventChatMessage EventType = "chat.message"
)

// ChangeEvent is published at write time so interested parties see changes
// without polling the snapshot. RecipientIDs names the participants the
// event concerns (notification targets), not an access control list.
type ChangeEvent struct {
	ID           uuid.UUID   `json:"id"`
	Type         EventType   `json:"type"`
	RequestID    uuid.UUID   `json:"request_id"`
	ActorID      uuid.UUID   `json:"actor_id"`
	RecipientIDs []uuid.UUID `json:"recipient_ids,omitempty"`
	Message      string      `json:"message,omitempty"`
	OccurredAt   time.Time   `json:"occurred_at"`
}

// EventPublisher defines the interface for publishing change events.
type EventPublisher interface {
	// PublishChange publishes one change event for delivery to subscribers.
	PublishChange(ctx context.Context, event *ChangeEvent) error

	// Close releases any resources held by the publisher.
	Close() error
}

// ChangeFeed is the subscriber side of the in-process change feed. A write
// becomes visible to every open subscription immediately, replacing the
// interval polling the snapshot model otherwise forces on readers.
type ChangeFeed interface {
	// Subscribe registers a subscriber. The returned cancel function must
	// be called to release the subscription; the channel is closed after
	// cancellation or feed shutdown.
	Subscribe(ctx context.Context) (<-chan ChangeEvent, func())
}
