package impl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dispatch/internal/domain/entity"
	domainerrors "dispatch/internal/domain/errors"
	"dispatch/internal/domain/repository"
	"dispatch/internal/domain/service"
	"dispatch/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

// previewRunes caps the message excerpt embedded in notification text.
const previewRunes = 30

// chatService implements the ChatUsecase interface.
type chatService struct {
	store     repository.SnapshotStore
	publisher service.EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

// ChatServiceParams holds dependencies for chatService, injected by Fx.
type ChatServiceParams struct {
	fx.In

	Store     repository.SnapshotStore
	Publisher service.EventPublisher
	Logger    *slog.Logger
}

// NewChatService is the constructor for chatService.
func NewChatService(params ChatServiceParams) usecase.ChatUsecase {
	return &chatService{
		store:     params.Store,
		publisher: params.Publisher,
		logger:    params.Logger,
		now:       time.Now,
	}
}

// SendMessage appends a message to the request's conversation, bumps the
// recipient's unread counter and lands a preview in their ledger.
func (s *chatService) SendMessage(ctx context.Context, input usecase.SendMessageInput) (*entity.ChatMessage, error) {
	if input.Content == "" {
		return nil, domainerrors.ErrValidationFailed
	}

	var sent entity.ChatMessage
	err := s.store.Update(ctx, func(snap *entity.Snapshot) error {
		req := snap.FindRequest(input.RequestID)
		if req == nil {
			return domainerrors.ErrRequestNotFound
		}
		if !req.Assigned() {
			return domainerrors.ErrInvalidTransition
		}

		var senderName string
		var recipientID uuid.UUID
		switch input.SenderID {
		case req.UserID:
			senderName = req.UserName
			recipientID = req.WorkerID
		case req.WorkerID:
			senderName = req.WorkerName
			recipientID = req.UserID
		default:
			return domainerrors.ErrNotParticipant
		}

		sent = entity.ChatMessage{
			ID:          uuid.New(),
			RequestID:   req.ID,
			SenderID:    input.SenderID,
			SenderName:  senderName,
			RecipientID: recipientID,
			Content:     input.Content,
			Timestamp:   s.now(),
		}
		snap.ChatMessages = append(snap.ChatMessages, sent)

		key := entity.CounterKey{ParticipantID: recipientID, RequestID: req.ID}
		snap.UnreadCounters[key]++

		preview := fmt.Sprintf("%s: %s", senderName, chatPreview(input.Content))
		if recipientID == req.WorkerID {
			snap.Notifications = append(snap.Notifications, entity.WorkerNotification{
				ID:        uuid.New(),
				WorkerID:  recipientID,
				RequestID: req.ID,
				Message:   preview,
				IsChat:    true,
				CreatedAt: sent.Timestamp,
			})
		} else {
			snap.UserNotifications = append(snap.UserNotifications, entity.UserNotification{
				ID:        uuid.New(),
				UserID:    recipientID,
				RequestID: req.ID,
				Message:   preview,
				Type:      entity.NotifChat,
				CreatedAt: sent.Timestamp,
			})
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishMessage(ctx, &sent)

	return &sent, nil
}

// Messages returns the request's conversation, oldest first.
func (s *chatService) Messages(ctx context.Context, requestID uuid.UUID) ([]entity.ChatMessage, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if snap.FindRequest(requestID) == nil {
		return nil, domainerrors.ErrRequestNotFound
	}

	return snap.RequestMessages(requestID), nil
}

// UnreadCount returns the participant's unread counter for one request.
// Missing counters read as zero.
func (s *chatService) UnreadCount(ctx context.Context, participantID, requestID uuid.UUID) (int, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return 0, err
	}

	key := entity.CounterKey{ParticipantID: participantID, RequestID: requestID}

	return snap.UnreadCounters[key], nil
}

// MarkConversationRead zeroes the participant's unread counter and marks
// their chat notifications for the request as read.
func (s *chatService) MarkConversationRead(ctx context.Context, participantID, requestID uuid.UUID) error {
	return s.store.Update(ctx, func(snap *entity.Snapshot) error {
		key := entity.CounterKey{ParticipantID: participantID, RequestID: requestID}
		snap.UnreadCounters[key] = 0

		for i := range snap.Notifications {
			n := &snap.Notifications[i]
			if n.WorkerID == participantID && n.RequestID == requestID && n.IsChat {
				n.Read = true
			}
		}
		for i := range snap.UserNotifications {
			n := &snap.UserNotifications[i]
			if n.UserID == participantID && n.RequestID == requestID && n.Type == entity.NotifChat {
				n.Read = true
			}
		}

		return nil
	})
}

func (s *chatService) publishMessage(ctx context.Context, msg *entity.ChatMessage) {
	event := &service.ChangeEvent{
		ID:           uuid.New(),
		Type:         service.EventChatMessage,
		RequestID:    msg.RequestID,
		ActorID:      msg.SenderID,
		RecipientIDs: []uuid.UUID{msg.RecipientID},
		Message:      chatPreview(msg.Content),
		OccurredAt:   msg.Timestamp,
	}
	if err := s.publisher.PublishChange(ctx, event); err != nil {
		s.logger.Warn("publish chat event failed", slog.Any("error", err))
	}
}

// chatPreview truncates content to previewRunes runes with an ellipsis.
func chatPreview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewRunes {
		return content
	}

	return string(runes[:previewRunes]) + "..."
}
