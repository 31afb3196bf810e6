package entity

import (
	"time"

	"github.com/google/uuid"
)

// UserNotificationType classifies entries in the user-facing ledger.
type UserNotificationType string

const (
	// NotifGeneral is the default classification.
	NotifGeneral UserNotificationType = "general"
	// NotifChat marks a chat-message notification.
	NotifChat UserNotificationType = "chat"
	// NotifRequestAccepted marks an acceptance notification.
	NotifRequestAccepted UserNotificationType = "request_accepted"
	// NotifRequestCompleted marks a completion notification.
	NotifRequestCompleted UserNotificationType = "request_completed"
)

// IsValid checks if the UserNotificationType is a valid value.
func (t UserNotificationType) IsValid() bool {
	switch t {
	case NotifGeneral, NotifChat, NotifRequestAccepted, NotifRequestCompleted:
		return true
	default:
		return false
	}
}

// WorkerNotification is one entry in the worker-facing notification ledger.
// Entries are created on request creation (role fan-out) and on incoming
// chat messages.
type WorkerNotification struct {
	ID        uuid.UUID `json:"id"`
	WorkerID  uuid.UUID `json:"workerId"`
	RequestID uuid.UUID `json:"requestId"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
	Read      bool      `json:"read"`
	IsChat    bool      `json:"isChat,omitempty"`
}

// UserNotification is one entry in the user-facing notification ledger.
// Entries are created on acceptance, completion and incoming chat messages.
type UserNotification struct {
	ID        uuid.UUID            `json:"id"`
	UserID    uuid.UUID            `json:"userId"`
	RequestID uuid.UUID            `json:"requestId"`
	Message   string               `json:"message"`
	Type      UserNotificationType `json:"type"`
	CreatedAt time.Time            `json:"createdAt"`
	Read      bool                 `json:"read"`
}
