package usecase

import (
	"context"

	"dispatch/internal/domain/entity"

	"github.com/google/uuid"
)

// CreateRequestInput carries a new service request.
type CreateRequestInput struct {
	UserID      uuid.UUID          `json:"userId" validate:"required"`
	Type        entity.RequestType `json:"type" validate:"required"`
	Destination string             `json:"destination" validate:"required"`
	Distance    float64            `json:"distance" validate:"gte=0"`
	Notes       string             `json:"notes"`
}

// RequestUsecase drives the request lifecycle: pending on creation, accepted
// by exactly one worker, then completed. Cancellation removes a pending
// request outright instead of parking it in a terminal state.
type RequestUsecase interface {
	// CreateRequest creates a pending request and notifies every worker
	// whose role serves the request type.
	CreateRequest(ctx context.Context, input CreateRequestInput) (*entity.Request, error)

	// AcceptRequest binds a worker to a pending request.
	AcceptRequest(ctx context.Context, requestID, workerID uuid.UUID) (*entity.Request, error)

	// CompleteRequest moves an accepted request to completed. Only the
	// assigned worker may complete it.
	CompleteRequest(ctx context.Context, requestID, workerID uuid.UUID) (*entity.Request, error)

	// UpdateStatus dispatches a status change to AcceptRequest or
	// CompleteRequest; any other target status is rejected.
	UpdateStatus(ctx context.Context, requestID, actorID uuid.UUID, status entity.RequestStatus) (*entity.Request, error)

	// CancelRequest hard-deletes a pending request along with its chat log,
	// counters and notification entries. Only the owning user may cancel.
	CancelRequest(ctx context.Context, requestID, userID uuid.UUID) error

	// GetRequest fetches one request.
	GetRequest(ctx context.Context, requestID uuid.UUID) (*entity.Request, error)

	// UserRequests lists the user's requests, accepted first, then pending,
	// then completed, newest first within each status.
	UserRequests(ctx context.Context, userID uuid.UUID) ([]entity.Request, error)

	// WorkerRequests lists requests assigned to the worker together with
	// open pending requests their role serves.
	WorkerRequests(ctx context.Context, workerID uuid.UUID) ([]entity.Request, error)
}
