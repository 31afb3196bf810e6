// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"dispatch/internal/domain/entity"
	domainerrors "dispatch/internal/domain/errors"
	"dispatch/internal/domain/repository"
	"dispatch/internal/domain/service"
	"dispatch/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

// identityService implements the IdentityUsecase interface.
type identityService struct {
	store  repository.SnapshotStore
	hasher service.PasswordHasher
	logger *slog.Logger
	now    func() time.Time
}

// IdentityServiceParams holds dependencies for identityService, injected by Fx.
type IdentityServiceParams struct {
	fx.In

	Store  repository.SnapshotStore
	Hasher service.PasswordHasher
	Logger *slog.Logger
}

// NewIdentityService is the constructor for identityService.
func NewIdentityService(params IdentityServiceParams) usecase.IdentityUsecase {
	return &identityService{
		store:  params.Store,
		hasher: params.Hasher,
		logger: params.Logger,
		now:    time.Now,
	}
}

// RegisterUser creates a requester account keyed by phone number.
func (s *identityService) RegisterUser(ctx context.Context, input usecase.RegisterUserInput) (*entity.User, error) {
	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.logger.Error("hash password failed", slog.Any("error", err))

		return nil, domainerrors.ErrPasswordHashFailed
	}

	var created entity.User
	err = s.store.Update(ctx, func(snap *entity.Snapshot) error {
		if snap.FindUserByPhone(input.Phone) != nil {
			return domainerrors.ErrPhoneAlreadyRegistered
		}

		created = entity.User{
			ID:           uuid.New(),
			Name:         input.Name,
			Phone:        input.Phone,
			PasswordHash: hash,
			Address:      input.Address,
			CreatedAt:    s.now(),
		}
		snap.Users = append(snap.Users, created)

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", slog.String("user_id", created.ID.String()))

	return &created, nil
}

// RegisterWorker creates a worker account keyed by phone number.
func (s *identityService) RegisterWorker(ctx context.Context, input usecase.RegisterWorkerInput) (*entity.Worker, error) {
	if !input.Role.IsValid() {
		return nil, domainerrors.ErrValidationFailed
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.logger.Error("hash password failed", slog.Any("error", err))

		return nil, domainerrors.ErrPasswordHashFailed
	}

	var created entity.Worker
	err = s.store.Update(ctx, func(snap *entity.Snapshot) error {
		if snap.FindWorkerByPhone(input.Phone) != nil {
			return domainerrors.ErrPhoneAlreadyRegistered
		}

		created = entity.Worker{
			ID:             uuid.New(),
			Name:           input.Name,
			Phone:          input.Phone,
			PasswordHash:   hash,
			Role:           input.Role,
			ProfilePicture: input.ProfilePicture,
			CreatedAt:      s.now(),
		}
		snap.Workers = append(snap.Workers, created)

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("worker registered",
		slog.String("worker_id", created.ID.String()),
		slog.String("role", created.Role.String()),
	)

	return &created, nil
}

// LoginUser authenticates a requester by phone and password. Lookup misses
// and password mismatches are indistinguishable to the caller.
func (s *identityService) LoginUser(ctx context.Context, phone, password string) (*entity.User, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	user := snap.FindUserByPhone(phone)
	if user == nil || !s.hasher.Check(password, user.PasswordHash) {
		return nil, domainerrors.ErrInvalidCredentials
	}

	found := *user

	return &found, nil
}

// LoginWorker authenticates a worker by phone and password.
func (s *identityService) LoginWorker(ctx context.Context, phone, password string) (*entity.Worker, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	worker := snap.FindWorkerByPhone(phone)
	if worker == nil || !s.hasher.Check(password, worker.PasswordHash) {
		return nil, domainerrors.ErrInvalidCredentials
	}

	found := *worker

	return &found, nil
}

// GetUser fetches one requester account.
func (s *identityService) GetUser(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	user := snap.FindUser(id)
	if user == nil {
		return nil, domainerrors.ErrUserNotFound
	}

	found := *user

	return &found, nil
}

// GetWorker fetches one worker account.
func (s *identityService) GetWorker(ctx context.Context, id uuid.UUID) (*entity.Worker, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	worker := snap.FindWorker(id)
	if worker == nil {
		return nil, domainerrors.ErrWorkerNotFound
	}

	found := *worker

	return &found, nil
}

// GetUserByPhone fetches one requester account by its phone number.
func (s *identityService) GetUserByPhone(ctx context.Context, phone string) (*entity.User, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	user := snap.FindUserByPhone(phone)
	if user == nil {
		return nil, domainerrors.ErrUserNotFound
	}

	found := *user

	return &found, nil
}

// GetWorkerByPhone fetches one worker account by its phone number.
func (s *identityService) GetWorkerByPhone(ctx context.Context, phone string) (*entity.Worker, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	worker := snap.FindWorkerByPhone(phone)
	if worker == nil {
		return nil, domainerrors.ErrWorkerNotFound
	}

	found := *worker

	return &found, nil
}

// UpdateWorkerProfile applies a partial profile update; empty fields keep
// their current value.
func (s *identityService) UpdateWorkerProfile(ctx context.Context, input usecase.UpdateWorkerInput) (*entity.Worker, error) {
	var updated entity.Worker
	err := s.store.Update(ctx, func(snap *entity.Snapshot) error {
		worker := snap.FindWorker(input.WorkerID)
		if worker == nil {
			return domainerrors.ErrWorkerNotFound
		}

		if input.Phone != "" && input.Phone != worker.Phone {
			if snap.FindWorkerByPhone(input.Phone) != nil {
				return domainerrors.ErrPhoneAlreadyRegistered
			}
			worker.Phone = input.Phone
		}
		if input.Role != "" {
			if !input.Role.IsValid() {
				return domainerrors.ErrValidationFailed
			}
			worker.Role = input.Role
		}
		if input.Name != "" {
			worker.Name = input.Name
		}
		if input.ProfilePicture != "" {
			worker.ProfilePicture = input.ProfilePicture
		}
		updated = *worker

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

// ListWorkers returns every registered worker sorted by name.
func (s *identityService) ListWorkers(ctx context.Context) ([]entity.Worker, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	workers := make([]entity.Worker, len(snap.Workers))
	copy(workers, snap.Workers)
	sort.Slice(workers, func(i, j int) bool { return workers[i].Name < workers[j].Name })

	return workers, nil
}
