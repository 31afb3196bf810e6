package impl

import (
	"context"
	"log/slog"
	"time"

	"dispatch/config"
	deliverycontext "dispatch/internal/delivery/context"
	"dispatch/internal/domain/entity"
	domainerrors "dispatch/internal/domain/errors"
	"dispatch/internal/domain/repository"
	"dispatch/internal/domain/service"
	"dispatch/internal/infra/ratelimit"
	"dispatch/internal/usecase"

	"go.uber.org/fx"
)

// adminService implements the AdminUsecase interface.
type adminService struct {
	store          repository.SnapshotStore
	hasher         service.PasswordHasher
	lockout        *ratelimit.Lockout
	passwordHash   string
	manualPruneAge time.Duration
	logger         *slog.Logger
	now            func() time.Time
}

// AdminServiceParams holds dependencies for adminService, injected by Fx.
type AdminServiceParams struct {
	fx.In

	Store   repository.SnapshotStore
	Hasher  service.PasswordHasher
	Lockout *ratelimit.Lockout
	Config  *config.Config
	Logger  *slog.Logger
}

// NewAdminService is the constructor for adminService.
func NewAdminService(params AdminServiceParams) usecase.AdminUsecase {
	passwordHash := ""
	manualPruneAge := 7 * 24 * time.Hour
	if params.Config.Admin != nil {
		passwordHash = params.Config.Admin.PasswordHash
	}
	if params.Config.Retention != nil && params.Config.Retention.ManualPruneAge > 0 {
		manualPruneAge = params.Config.Retention.ManualPruneAge
	}

	return &adminService{
		store:          params.Store,
		hasher:         params.Hasher,
		lockout:        params.Lockout,
		passwordHash:   passwordHash,
		manualPruneAge: manualPruneAge,
		logger:         params.Logger,
		now:            time.Now,
	}
}

// Login checks the administrator password. Every call, including a
// successful one, counts against the lockout window.
func (s *adminService) Login(ctx context.Context, password string) error {
	if !s.lockout.Allow() {
		s.logger.Warn("admin login rejected by lockout",
			slog.String("request_id", deliverycontext.GetRequestIDFromContext(ctx)),
		)

		return domainerrors.ErrRateLimited
	}

	if s.passwordHash == "" || !s.hasher.Check(password, s.passwordHash) {
		s.logger.Warn("admin login failed",
			slog.String("request_id", deliverycontext.GetRequestIDFromContext(ctx)),
		)

		return domainerrors.ErrInvalidCredentials
	}

	s.logger.Info("admin login succeeded")

	return nil
}

// ResetAllData empties every collection while keeping the document identity.
// The caller must hold the administrator mark.
func (s *adminService) ResetAllData(ctx context.Context) error {
	if !deliverycontext.IsAdmin(ctx) {
		return domainerrors.ErrUnauthorized
	}

	err := s.store.Update(ctx, func(snap *entity.Snapshot) error {
		snap.Reset()

		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Warn("all data reset by administrator",
		slog.String("request_id", deliverycontext.GetRequestIDFromContext(ctx)),
	)

	return nil
}

// PruneCompleted removes completed requests older than the manual retention
// window.
func (s *adminService) PruneCompleted(ctx context.Context) (int, error) {
	if !deliverycontext.IsAdmin(ctx) {
		return 0, domainerrors.ErrUnauthorized
	}

	removed := 0
	err := s.store.Update(ctx, func(snap *entity.Snapshot) error {
		removed = snap.PruneCompleted(s.now().Add(-s.manualPruneAge))

		return nil
	})
	if err != nil {
		return 0, err
	}

	if removed > 0 {
		s.logger.Info("manual prune removed completed requests",
			slog.Int("removed", removed),
		)
	}

	return removed, nil
}
