package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"dispatch/config"
	"dispatch/internal/domain/entity"
	"dispatch/internal/domain/repository"
	"dispatch/internal/domain/service"
	"dispatch/internal/infra/auth"
	"dispatch/internal/infra/persistence/localstore"
	"dispatch/internal/infra/pubsub"
	"dispatch/internal/infra/ratelimit"
	"dispatch/internal/usecase"

	"github.com/stretchr/testify/require"
	"gocloud.dev/blob/memblob"
)

// testEnv wires the services against a real in-memory store and event bus
// so tests exercise the same code paths production does.
type testEnv struct {
	store  repository.SnapshotStore
	bus    *pubsub.Bus
	hasher service.PasswordHasher
	logger *slog.Logger
}

func newTestEnv(t *testing.T, opts ...localstore.Option) *testEnv {
	t.Helper()

	bucket := memblob.OpenBucket(nil)
	t.Cleanup(func() { _ = bucket.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
	bus := pubsub.NewBus(logger)
	t.Cleanup(func() { _ = bus.Close() })

	return &testEnv{
		store:  localstore.NewWithBucket(bucket, logger, opts...),
		bus:    bus,
		hasher: auth.NewBcryptHasher(),
		logger: logger,
	}
}

func (e *testEnv) identity() usecase.IdentityUsecase {
	return NewIdentityService(IdentityServiceParams{
		Store:  e.store,
		Hasher: e.hasher,
		Logger: e.logger,
	})
}

func (e *testEnv) requests() usecase.RequestUsecase {
	return NewRequestService(RequestServiceParams{
		Store:     e.store,
		Publisher: e.bus,
		Logger:    e.logger,
	})
}

func (e *testEnv) chat() usecase.ChatUsecase {
	return NewChatService(ChatServiceParams{
		Store:     e.store,
		Publisher: e.bus,
		Logger:    e.logger,
	})
}

func (e *testEnv) notifications() usecase.NotificationUsecase {
	return NewNotificationService(NotificationServiceParams{
		Store: e.store,
	})
}

func (e *testEnv) admin(cfg *config.Config) usecase.AdminUsecase {
	return NewAdminService(AdminServiceParams{
		Store:   e.store,
		Hasher:  e.hasher,
		Lockout: ratelimit.NewLockout(cfg),
		Config:  cfg,
		Logger:  e.logger,
	})
}

func registerUser(t *testing.T, identity usecase.IdentityUsecase, name, phone string) *entity.User {
	t.Helper()

	user, err := identity.RegisterUser(context.Background(), usecase.RegisterUserInput{
		Name:     name,
		Phone:    phone,
		Password: "passw0rd",
		Address:  "No. 1, Test Rd.",
	})
	require.NoError(t, err)

	return user
}

func registerWorker(t *testing.T, identity usecase.IdentityUsecase, name, phone string, role entity.WorkerRole) *entity.Worker {
	t.Helper()

	worker, err := identity.RegisterWorker(context.Background(), usecase.RegisterWorkerInput{
		Name:     name,
		Phone:    phone,
		Password: "passw0rd",
		Role:     role,
	})
	require.NoError(t, err)

	return worker
}

func adminTestConfig(hash string) *config.Config {
	cfg := &config.Config{}
	cfg.Admin = &config.AdminConfig{PasswordHash: hash}
	cfg.Retention = &config.RetentionConfig{
		AutoPruneAge:   48 * time.Hour,
		ManualPruneAge: 7 * 24 * time.Hour,
	}
	cfg.RateLimit = &config.RateLimitConfig{
		MaxAttempts: 5,
		Window:      time.Hour,
	}

	return cfg
}
