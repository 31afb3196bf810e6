package usecase

import (
	"context"

	"dispatch/internal/domain/entity"

	"github.com/google/uuid"
)

// SendMessageInput carries one chat message.
type SendMessageInput struct {
	RequestID uuid.UUID `json:"requestId"`
	SenderID  uuid.UUID `json:"senderId" validate:"required"`
	Content   string    `json:"content" validate:"required"`
}

// ChatUsecase manages per-request conversations between the requesting user
// and the assigned worker. Each message bumps the recipient's unread counter
// and lands a preview in their notification ledger.
type ChatUsecase interface {
	// SendMessage appends a message to the request's conversation.
	SendMessage(ctx context.Context, input SendMessageInput) (*entity.ChatMessage, error)

	// Messages returns the request's conversation, oldest first.
	Messages(ctx context.Context, requestID uuid.UUID) ([]entity.ChatMessage, error)

	// UnreadCount returns the participant's unread counter for one request.
	UnreadCount(ctx context.Context, participantID, requestID uuid.UUID) (int, error)

	// MarkConversationRead zeroes the participant's unread counter and marks
	// their chat notifications for the request as read.
	MarkConversationRead(ctx context.Context, participantID, requestID uuid.UUID) error
}
