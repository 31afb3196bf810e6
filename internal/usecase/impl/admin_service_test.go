package impl

import (
	"context"
	"testing"
	"time"

	deliverycontext "dispatch/internal/delivery/context"
	"dispatch/internal/domain/entity"
	domainerrors "dispatch/internal/domain/errors"
	"dispatch/internal/infra/persistence/localstore"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustHash(t *testing.T, env *testEnv, password string) string {
	t.Helper()

	hash, err := env.hasher.Hash(password)
	require.NoError(t, err)

	return hash
}

func TestAdminLoginLockout(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	admin := env.admin(adminTestConfig(mustHash(t, env, "s3cret")))
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		err := admin.Login(ctx, "wrong")
		assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
	}

	// The fifth attempt trips the lockout even with the right password.
	err := admin.Login(ctx, "s3cret")
	assert.ErrorIs(t, err, domainerrors.ErrRateLimited)
}

func TestAdminLoginSucceedsBeforeLockout(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	admin := env.admin(adminTestConfig(mustHash(t, env, "s3cret")))

	require.NoError(t, admin.Login(context.Background(), "s3cret"))
}

func TestResetAllDataRequiresAdminContext(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	identity := env.identity()
	admin := env.admin(adminTestConfig(mustHash(t, env, "s3cret")))
	ctx := context.Background()

	user := registerUser(t, identity, "amy", "0912000001")
	registerWorker(t, identity, "bob", "0922000001", entity.RoleDeliveryWorker)
	createDeliveryRequest(t, env, user.ID)

	err := admin.ResetAllData(ctx)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	require.NoError(t, admin.ResetAllData(deliverycontext.WithAdmin(ctx)))

	snap, err := env.store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.Users)
	assert.Empty(t, snap.Workers)
	assert.Empty(t, snap.Requests)
}

func TestPruneCompletedUsesManualWindow(t *testing.T) {
	t.Parallel()

	// Keep auto-retention out of the way so only the manual window applies.
	env := newTestEnv(t, localstore.WithAutoPruneAge(365*24*time.Hour))
	admin := env.admin(adminTestConfig(mustHash(t, env, "s3cret")))
	ctx := deliverycontext.WithAdmin(context.Background())

	userID := uuid.New()
	old := entity.Request{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      entity.TypeDelivery,
		Status:    entity.StatusCompleted,
		CreatedAt: time.Now().Add(-8 * 24 * time.Hour),
	}
	fresh := entity.Request{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      entity.TypeDelivery,
		Status:    entity.StatusCompleted,
		CreatedAt: time.Now().Add(-24 * time.Hour),
	}
	oldPending := entity.Request{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      entity.TypeDelivery,
		Status:    entity.StatusPending,
		CreatedAt: time.Now().Add(-30 * 24 * time.Hour),
	}
	require.NoError(t, env.store.Update(ctx, func(snap *entity.Snapshot) error {
		snap.Requests = append(snap.Requests, old, fresh, oldPending)

		return nil
	}))

	_, err := env.admin(adminTestConfig("")).PruneCompleted(context.Background())
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	removed, err := admin.PruneCompleted(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	snap, err := env.store.Load(ctx)
	require.NoError(t, err)
	ids := make([]uuid.UUID, 0, len(snap.Requests))
	for _, req := range snap.Requests {
		ids = append(ids, req.ID)
	}
	assert.ElementsMatch(t, []uuid.UUID{fresh.ID, oldPending.ID}, ids)
}
