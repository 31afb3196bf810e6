package entity

import (
	"time"

	"github.com/google/uuid"
)

// Request is a service request created by a user and fulfilled by a worker.
//
// UserName/UserPhone and WorkerName/WorkerPhone are point-in-time copies of
// the referenced accounts, taken at creation and acceptance respectively.
// They are never refreshed if the account changes later.
type Request struct {
	ID          uuid.UUID     `json:"id"`
	UserID      uuid.UUID     `json:"userId"`
	UserName    string        `json:"userName"`
	UserPhone   string        `json:"userPhone"`
	Type        RequestType   `json:"type"`
	Destination string        `json:"destination"`
	Distance    float64       `json:"distance"`
	Notes       string        `json:"notes,omitempty"`
	Status      RequestStatus `json:"status"`
	WorkerID    uuid.UUID     `json:"workerId,omitempty"` // Set exactly once, on acceptance.
	WorkerName  string        `json:"workerName,omitempty"`
	WorkerPhone string        `json:"workerPhone,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	CompletedAt time.Time     `json:"completedAt,omitzero"`
}

// Assigned reports whether a worker has been bound to the request.
func (r *Request) Assigned() bool {
	return r.WorkerID != uuid.Nil
}

// ChatMessage is one entry in a request's append-only conversation log.
type ChatMessage struct {
	ID          uuid.UUID `json:"id"`
	RequestID   uuid.UUID `json:"requestId"`
	SenderID    uuid.UUID `json:"senderId"`
	SenderName  string    `json:"senderName"`
	RecipientID uuid.UUID `json:"recipientId"`
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp"`
}
