package impl

import (
	"context"
	"testing"

	"dispatch/internal/domain/entity"
	domainerrors "dispatch/internal/domain/errors"
	"dispatch/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLoginUser(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	identity := env.identity()
	ctx := context.Background()

	user := registerUser(t, identity, "amy", "0912000001")
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.NotEqual(t, "passw0rd", user.PasswordHash, "password is stored hashed")

	loggedIn, err := identity.LoginUser(ctx, "0912000001", "passw0rd")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	_, err = identity.LoginUser(ctx, "0912000001", "wrong")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)

	_, err = identity.LoginUser(ctx, "0999999999", "passw0rd")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials,
		"unknown phone is indistinguishable from a bad password")
}

func TestRegisterUserRejectsDuplicatePhone(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	identity := env.identity()

	registerUser(t, identity, "amy", "0912000001")

	_, err := identity.RegisterUser(context.Background(), usecase.RegisterUserInput{
		Name:     "impostor",
		Phone:    "0912000001",
		Password: "other",
	})
	assert.ErrorIs(t, err, domainerrors.ErrPhoneAlreadyRegistered)
}

func TestRegisterWorkerValidatesRole(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	identity := env.identity()

	_, err := identity.RegisterWorker(context.Background(), usecase.RegisterWorkerInput{
		Name:     "bob",
		Phone:    "0922000001",
		Password: "passw0rd",
		Role:     entity.WorkerRole("pilot"),
	})
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
}

func TestWorkerAndUserPhoneNamespacesAreSeparate(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	identity := env.identity()

	registerUser(t, identity, "amy", "0912000001")

	// The same phone may exist once per account type.
	worker := registerWorker(t, identity, "amy-driving", "0912000001", entity.RoleTaxiDriver)
	assert.Equal(t, entity.RoleTaxiDriver, worker.Role)
}

func TestUpdateWorkerProfileKeepsUnsetFields(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	identity := env.identity()
	ctx := context.Background()

	worker := registerWorker(t, identity, "bob", "0922000001", entity.RoleDeliveryWorker)

	updated, err := identity.UpdateWorkerProfile(ctx, usecase.UpdateWorkerInput{
		WorkerID:       worker.ID,
		ProfilePicture: "avatars/bob.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "bob", updated.Name)
	assert.Equal(t, "avatars/bob.png", updated.ProfilePicture)

	_, err = identity.UpdateWorkerProfile(ctx, usecase.UpdateWorkerInput{WorkerID: uuid.New()})
	assert.ErrorIs(t, err, domainerrors.ErrWorkerNotFound)
}

func TestUpdateWorkerProfilePhoneAndRole(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	identity := env.identity()
	ctx := context.Background()

	worker := registerWorker(t, identity, "bob", "0922000001", entity.RoleDeliveryWorker)
	registerWorker(t, identity, "cindy", "0922000002", entity.RoleTaxiDriver)

	updated, err := identity.UpdateWorkerProfile(ctx, usecase.UpdateWorkerInput{
		WorkerID: worker.ID,
		Phone:    "0922000003",
		Role:     entity.RoleTaxiDriver,
	})
	require.NoError(t, err)
	assert.Equal(t, "0922000003", updated.Phone)
	assert.Equal(t, entity.RoleTaxiDriver, updated.Role)

	_, err = identity.UpdateWorkerProfile(ctx, usecase.UpdateWorkerInput{
		WorkerID: worker.ID,
		Phone:    "0922000002",
	})
	assert.ErrorIs(t, err, domainerrors.ErrPhoneAlreadyRegistered)

	_, err = identity.UpdateWorkerProfile(ctx, usecase.UpdateWorkerInput{
		WorkerID: worker.ID,
		Role:     entity.WorkerRole("pilot"),
	})
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
}

func TestGetAndListAccounts(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	identity := env.identity()
	ctx := context.Background()

	user := registerUser(t, identity, "amy", "0912000001")
	registerWorker(t, identity, "bob", "0922000001", entity.RoleDeliveryWorker)
	registerWorker(t, identity, "cindy", "0922000002", entity.RoleTaxiDriver)

	got, err := identity.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "amy", got.Name)

	_, err = identity.GetUser(ctx, uuid.New())
	assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)

	_, err = identity.GetWorker(ctx, uuid.New())
	assert.ErrorIs(t, err, domainerrors.ErrWorkerNotFound)

	byPhone, err := identity.GetUserByPhone(ctx, "0912000001")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byPhone.ID)

	workerByPhone, err := identity.GetWorkerByPhone(ctx, "0922000002")
	require.NoError(t, err)
	assert.Equal(t, "cindy", workerByPhone.Name)

	_, err = identity.GetWorkerByPhone(ctx, "0999999999")
	assert.ErrorIs(t, err, domainerrors.ErrWorkerNotFound)

	workers, err := identity.ListWorkers(ctx)
	require.NoError(t, err)
	require.Len(t, workers, 2)
	assert.Equal(t, "bob", workers[0].Name, "workers are listed by name")
	assert.Equal(t, "cindy", workers[1].Name)
}
