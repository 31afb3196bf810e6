package impl

import (
	"context"

	"dispatch/internal/domain/entity"
	domainerrors "dispatch/internal/domain/errors"
	"dispatch/internal/domain/repository"
	"dispatch/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

// notificationService implements the NotificationUsecase interface.
type notificationService struct {
	store repository.SnapshotStore
}

// NotificationServiceParams holds dependencies for notificationService,
// injected by Fx.
type NotificationServiceParams struct {
	fx.In

	Store repository.SnapshotStore
}

// NewNotificationService is the constructor for notificationService.
func NewNotificationService(params NotificationServiceParams) usecase.NotificationUsecase {
	return &notificationService{store: params.Store}
}

// WorkerNotifications lists the worker's ledger, newest first.
func (s *notificationService) WorkerNotifications(ctx context.Context, workerID uuid.UUID) ([]entity.WorkerNotification, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if snap.FindWorker(workerID) == nil {
		return nil, domainerrors.ErrWorkerNotFound
	}

	return snap.WorkerNotificationsFor(workerID), nil
}

// UserNotifications lists the user's ledger, newest first.
func (s *notificationService) UserNotifications(ctx context.Context, userID uuid.UUID) ([]entity.UserNotification, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if snap.FindUser(userID) == nil {
		return nil, domainerrors.ErrUserNotFound
	}

	return snap.UserNotificationsFor(userID), nil
}

// MarkWorkerNotificationRead acknowledges one worker ledger entry. The entry
// must belong to the calling worker.
func (s *notificationService) MarkWorkerNotificationRead(ctx context.Context, workerID, notificationID uuid.UUID) error {
	return s.store.Update(ctx, func(snap *entity.Snapshot) error {
		for i := range snap.Notifications {
			n := &snap.Notifications[i]
			if n.ID == notificationID && n.WorkerID == workerID {
				n.Read = true

				return nil
			}
		}

		return domainerrors.ErrNotificationNotFound
	})
}

// MarkUserNotificationRead acknowledges one user ledger entry.
func (s *notificationService) MarkUserNotificationRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	return s.store.Update(ctx, func(snap *entity.Snapshot) error {
		for i := range snap.UserNotifications {
			n := &snap.UserNotifications[i]
			if n.ID == notificationID && n.UserID == userID {
				n.Read = true

				return nil
			}
		}

		return domainerrors.ErrNotificationNotFound
	})
}
