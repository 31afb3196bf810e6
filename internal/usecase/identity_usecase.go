// Package usecase defines the application's business interfaces and their
// input types. Implementations live in the impl subpackage.
package usecase

import (
	"context"

	"dispatch/internal/domain/entity"

	"github.com/google/uuid"
)

// RegisterUserInput carries a new requester account registration.
type RegisterUserInput struct {
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
	Address  string `json:"address"`
}

// RegisterWorkerInput carries a new worker account registration.
type RegisterWorkerInput struct {
	Name           string            `json:"name" validate:"required"`
	Phone          string            `json:"phone" validate:"required"`
	Password       string            `json:"password" validate:"required,min=6"`
	Role           entity.WorkerRole `json:"role" validate:"required"`
	ProfilePicture string            `json:"profilePicture"`
}

// UpdateWorkerInput carries a worker profile update. Empty fields are left
// unchanged.
type UpdateWorkerInput struct {
	WorkerID       uuid.UUID         `json:"workerId"`
	Name           string            `json:"name"`
	Phone          string            `json:"phone"`
	Role           entity.WorkerRole `json:"role"`
	ProfilePicture string            `json:"profilePicture"`
}

// IdentityUsecase defines account registration, login and profile management
// for both users and workers. Phone numbers are the natural key on both
// sides: registration rejects a duplicate phone within the same account
// type, and login looks accounts up by phone.
type IdentityUsecase interface {
	// RegisterUser creates a requester account.
	RegisterUser(ctx context.Context, input RegisterUserInput) (*entity.User, error)

	// RegisterWorker creates a worker account.
	RegisterWorker(ctx context.Context, input RegisterWorkerInput) (*entity.Worker, error)

	// LoginUser authenticates a requester by phone and password.
	LoginUser(ctx context.Context, phone, password string) (*entity.User, error)

	// LoginWorker authenticates a worker by phone and password.
	LoginWorker(ctx context.Context, phone, password string) (*entity.Worker, error)

	// GetUser fetches one requester account.
	GetUser(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// GetWorker fetches one worker account.
	GetWorker(ctx context.Context, id uuid.UUID) (*entity.Worker, error)

	// GetUserByPhone fetches one requester account by its phone number.
	GetUserByPhone(ctx context.Context, phone string) (*entity.User, error)

	// GetWorkerByPhone fetches one worker account by its phone number.
	GetWorkerByPhone(ctx context.Context, phone string) (*entity.Worker, error)

	// UpdateWorkerProfile applies a partial profile update.
	UpdateWorkerProfile(ctx context.Context, input UpdateWorkerInput) (*entity.Worker, error)

	// ListWorkers returns every registered worker.
	ListWorkers(ctx context.Context) ([]entity.Worker, error)
}
