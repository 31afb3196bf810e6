package usecase

import (
	"context"

	"dispatch/internal/domain/entity"

	"github.com/google/uuid"
)

// NotificationUsecase exposes the two notification ledgers. Entries are
// written by the request and chat flows; this interface only reads and
// acknowledges them.
type NotificationUsecase interface {
	// WorkerNotifications lists the worker's ledger, newest first.
	WorkerNotifications(ctx context.Context, workerID uuid.UUID) ([]entity.WorkerNotification, error)

	// UserNotifications lists the user's ledger, newest first.
	UserNotifications(ctx context.Context, userID uuid.UUID) ([]entity.UserNotification, error)

	// MarkWorkerNotificationRead acknowledges one worker ledger entry.
	MarkWorkerNotificationRead(ctx context.Context, workerID, notificationID uuid.UUID) error

	// MarkUserNotificationRead acknowledges one user ledger entry.
	MarkUserNotificationRead(ctx context.Context, userID, notificationID uuid.UUID) error
}
