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

// requestService implements the RequestUsecase interface.
type requestService struct {
	store     repository.SnapshotStore
	publisher service.EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

// RequestServiceParams holds dependencies for requestService, injected by Fx.
type RequestServiceParams struct {
	fx.In

	Store     repository.SnapshotStore
	Publisher service.EventPublisher
	Logger    *slog.Logger
}

// NewRequestService is the constructor for requestService.
func NewRequestService(params RequestServiceParams) usecase.RequestUsecase {
	return &requestService{
		store:     params.Store,
		publisher: params.Publisher,
		logger:    params.Logger,
		now:       time.Now,
	}
}

// CreateRequest creates a pending request and fans a ledger entry out to
// every worker whose role serves the request type.
func (s *requestService) CreateRequest(ctx context.Context, input usecase.CreateRequestInput) (*entity.Request, error) {
	if !input.Type.IsValid() || input.Destination == "" {
		return nil, domainerrors.ErrValidationFailed
	}

	var created entity.Request
	var recipients []uuid.UUID
	err := s.store.Update(ctx, func(snap *entity.Snapshot) error {
		user := snap.FindUser(input.UserID)
		if user == nil {
			return domainerrors.ErrUserNotFound
		}

		created = entity.Request{
			ID:          uuid.New(),
			UserID:      user.ID,
			UserName:    user.Name,
			UserPhone:   user.Phone,
			Type:        input.Type,
			Destination: input.Destination,
			Distance:    input.Distance,
			Notes:       input.Notes,
			Status:      entity.StatusPending,
			CreatedAt:   s.now(),
		}
		snap.Requests = append(snap.Requests, created)

		message := fmt.Sprintf("New %s request from %s", created.Type.Label(), user.Name)
		recipients = recipients[:0]
		for _, worker := range snap.Workers {
			if !worker.Role.Serves(created.Type) {
				continue
			}
			recipients = append(recipients, worker.ID)
			snap.Notifications = append(snap.Notifications, entity.WorkerNotification{
				ID:        uuid.New(),
				WorkerID:  worker.ID,
				RequestID: created.ID,
				Message:   message,
				CreatedAt: created.CreatedAt,
			})
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("request created",
		slog.String("request_id", created.ID.String()),
		slog.String("type", created.Type.String()),
		slog.Int("notified_workers", len(recipients)),
	)
	s.publish(ctx, service.EventRequestCreated, created.ID, created.UserID, recipients, "")

	return &created, nil
}

// AcceptRequest binds a worker to a pending request and notifies the user.
func (s *requestService) AcceptRequest(ctx context.Context, requestID, workerID uuid.UUID) (*entity.Request, error) {
	var accepted entity.Request
	err := s.store.Update(ctx, func(snap *entity.Snapshot) error {
		req := snap.FindRequest(requestID)
		if req == nil {
			return domainerrors.ErrRequestNotFound
		}
		worker := snap.FindWorker(workerID)
		if worker == nil {
			return domainerrors.ErrWorkerNotFound
		}
		if req.Status != entity.StatusPending {
			return domainerrors.ErrInvalidTransition
		}
		if !worker.Role.Serves(req.Type) {
			return domainerrors.ErrInvalidTransition
		}

		req.Status = entity.StatusAccepted
		req.WorkerID = worker.ID
		req.WorkerName = worker.Name
		req.WorkerPhone = worker.Phone

		snap.UserNotifications = append(snap.UserNotifications, entity.UserNotification{
			ID:        uuid.New(),
			UserID:    req.UserID,
			RequestID: req.ID,
			Message:   fmt.Sprintf("%s accepted your %s request", worker.Name, req.Type.Label()),
			Type:      entity.NotifRequestAccepted,
			CreatedAt: s.now(),
		})
		accepted = *req

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("request accepted",
		slog.String("request_id", accepted.ID.String()),
		slog.String("worker_id", workerID.String()),
	)
	s.publish(ctx, service.EventRequestAccepted, accepted.ID, workerID, []uuid.UUID{accepted.UserID}, "")

	return &accepted, nil
}

// CompleteRequest moves an accepted request to its terminal state. Only the
// assigned worker may complete it.
func (s *requestService) CompleteRequest(ctx context.Context, requestID, workerID uuid.UUID) (*entity.Request, error) {
	var completed entity.Request
	err := s.store.Update(ctx, func(snap *entity.Snapshot) error {
		req := snap.FindRequest(requestID)
		if req == nil {
			return domainerrors.ErrRequestNotFound
		}
		if req.Status != entity.StatusAccepted {
			return domainerrors.ErrInvalidTransition
		}
		if req.WorkerID != workerID {
			return domainerrors.ErrNotAssignedWorker
		}

		req.Status = entity.StatusCompleted
		req.CompletedAt = s.now()

		snap.UserNotifications = append(snap.UserNotifications, entity.UserNotification{
			ID:        uuid.New(),
			UserID:    req.UserID,
			RequestID: req.ID,
			Message:   fmt.Sprintf("Your %s request has been completed", req.Type.Label()),
			Type:      entity.NotifRequestCompleted,
			CreatedAt: req.CompletedAt,
		})
		completed = *req

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("request completed", slog.String("request_id", completed.ID.String()))
	s.publish(ctx, service.EventRequestCompleted, completed.ID, workerID, []uuid.UUID{completed.UserID}, "")

	return &completed, nil
}

// UpdateStatus dispatches a status change to the matching transition.
func (s *requestService) UpdateStatus(ctx context.Context, requestID, actorID uuid.UUID, status entity.RequestStatus) (*entity.Request, error) {
	switch status {
	case entity.StatusAccepted:
		return s.AcceptRequest(ctx, requestID, actorID)
	case entity.StatusCompleted:
		return s.CompleteRequest(ctx, requestID, actorID)
	default:
		return nil, domainerrors.ErrValidationFailed
	}
}

// CancelRequest hard-deletes a pending request together with its chat log,
// unread counters and notification entries.
func (s *requestService) CancelRequest(ctx context.Context, requestID, userID uuid.UUID) error {
	err := s.store.Update(ctx, func(snap *entity.Snapshot) error {
		req := snap.FindRequest(requestID)
		if req == nil {
			return domainerrors.ErrRequestNotFound
		}
		if req.UserID != userID {
			return domainerrors.ErrNotRequestOwner
		}
		if req.Status != entity.StatusPending {
			return domainerrors.ErrInvalidTransition
		}

		snap.RemoveRequest(requestID)

		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("request cancelled", slog.String("request_id", requestID.String()))
	s.publish(ctx, service.EventRequestCancelled, requestID, userID, nil, "")

	return nil
}

// GetRequest fetches one request.
func (s *requestService) GetRequest(ctx context.Context, requestID uuid.UUID) (*entity.Request, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	req := snap.FindRequest(requestID)
	if req == nil {
		return nil, domainerrors.ErrRequestNotFound
	}

	found := *req

	return &found, nil
}

// UserRequests lists the user's requests in dashboard order.
func (s *requestService) UserRequests(ctx context.Context, userID uuid.UUID) ([]entity.Request, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if snap.FindUser(userID) == nil {
		return nil, domainerrors.ErrUserNotFound
	}

	return snap.UserRequests(userID), nil
}

// WorkerRequests lists assigned requests plus open pending work for the
// worker's role.
func (s *requestService) WorkerRequests(ctx context.Context, workerID uuid.UUID) ([]entity.Request, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	worker := snap.FindWorker(workerID)
	if worker == nil {
		return nil, domainerrors.ErrWorkerNotFound
	}

	return snap.WorkerRequests(workerID, worker.Role), nil
}

// publish sends a change event after a successful write. Delivery is best
// effort: the snapshot is already persisted, so a publish failure is logged
// and swallowed.
func (s *requestService) publish(ctx context.Context, eventType service.EventType, requestID, actorID uuid.UUID, recipients []uuid.UUID, message string) {
	event := &service.ChangeEvent{
		ID:           uuid.New(),
		Type:         eventType,
		RequestID:    requestID,
		ActorID:      actorID,
		RecipientIDs: recipients,
		Message:      message,
		OccurredAt:   s.now(),
	}
	if err := s.publisher.PublishChange(ctx, event); err != nil {
		s.logger.Warn("publish change event failed",
			slog.String("type", string(eventType)),
			slog.Any("error", err),
		)
	}
}
