package impl

import (
	"context"
	"testing"
	"time"

	"dispatch/internal/domain/entity"
	domainerrors "dispatch/internal/domain/errors"
	"dispatch/internal/domain/service"
	"dispatch/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createDeliveryRequest(t *testing.T, env *testEnv, userID uuid.UUID) *entity.Request {
	t.Helper()

	req, err := env.requests().CreateRequest(context.Background(), usecase.CreateRequestInput{
		UserID:      userID,
		Type:        entity.TypeDelivery,
		Destination: "No. 7, Harbor St.",
		Distance:    4.2,
	})
	require.NoError(t, err)

	return req
}

func TestRequestLifecycle(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	identity := env.identity()
	requests := env.requests()
	notifications := env.notifications()
	ctx := context.Background()

	user := registerUser(t, identity, "amy", "0912000001")
	courier := registerWorker(t, identity, "bob", "0922000001", entity.RoleDeliveryWorker)
	driver := registerWorker(t, identity, "cindy", "0922000002", entity.RoleTaxiDriver)

	req := createDeliveryRequest(t, env, user.ID)
	assert.Equal(t, entity.StatusPending, req.Status)
	assert.Equal(t, "amy", req.UserName)
	assert.False(t, req.Assigned())

	// Creation fan-out reaches only workers whose role serves the type.
	courierLedger, err := notifications.WorkerNotifications(ctx, courier.ID)
	require.NoError(t, err)
	require.Len(t, courierLedger, 1)
	assert.Contains(t, courierLedger[0].Message, "Delivery")
	assert.Contains(t, courierLedger[0].Message, "amy")

	driverLedger, err := notifications.WorkerNotifications(ctx, driver.ID)
	require.NoError(t, err)
	assert.Empty(t, driverLedger)

	// A taxi driver cannot take a delivery request.
	_, err = requests.AcceptRequest(ctx, req.ID, driver.ID)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidTransition)

	accepted, err := requests.AcceptRequest(ctx, req.ID, courier.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusAccepted, accepted.Status)
	assert.Equal(t, courier.ID, accepted.WorkerID)
	assert.Equal(t, "bob", accepted.WorkerName)

	// Acceptance is exclusive.
	_, err = requests.AcceptRequest(ctx, req.ID, courier.ID)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidTransition)

	userLedger, err := notifications.UserNotifications(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, userLedger, 1)
	assert.Equal(t, entity.NotifRequestAccepted, userLedger[0].Type)

	// Only the assigned worker completes.
	_, err = requests.CompleteRequest(ctx, req.ID, driver.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotAssignedWorker)

	completed, err := requests.CompleteRequest(ctx, req.ID, courier.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, completed.Status)
	assert.False(t, completed.CompletedAt.IsZero())

	// Terminal state refuses further transitions.
	_, err = requests.CompleteRequest(ctx, req.ID, courier.ID)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidTransition)

	userLedger, err = notifications.UserNotifications(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, userLedger, 2)
	assert.Equal(t, entity.NotifRequestCompleted, userLedger[0].Type, "newest first")
}

func TestCreateRequestValidation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	requests := env.requests()
	ctx := context.Background()

	_, err := requests.CreateRequest(ctx, usecase.CreateRequestInput{
		UserID:      uuid.New(),
		Type:        entity.RequestType("teleport"),
		Destination: "anywhere",
	})
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)

	user := registerUser(t, env.identity(), "amy", "0912000001")
	_, err = requests.CreateRequest(ctx, usecase.CreateRequestInput{
		UserID: user.ID,
		Type:   entity.TypeDelivery,
	})
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed, "destination is required")

	_, err = requests.CreateRequest(ctx, usecase.CreateRequestInput{
		UserID:      uuid.New(),
		Type:        entity.TypeDelivery,
		Destination: "No. 7, Harbor St.",
	})
	assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
}

func TestUpdateStatusDispatch(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	identity := env.identity()
	requests := env.requests()
	ctx := context.Background()

	user := registerUser(t, identity, "amy", "0912000001")
	courier := registerWorker(t, identity, "bob", "0922000001", entity.RoleDeliveryWorker)
	req := createDeliveryRequest(t, env, user.ID)

	accepted, err := requests.UpdateStatus(ctx, req.ID, courier.ID, entity.StatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusAccepted, accepted.Status)

	_, err = requests.UpdateStatus(ctx, req.ID, courier.ID, entity.StatusPending)
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed,
		"requests never go back to pending")

	completed, err := requests.UpdateStatus(ctx, req.ID, courier.ID, entity.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, completed.Status)
}

func TestCancelRequestRemovesConversation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	identity := env.identity()
	requests := env.requests()
	ctx := context.Background()

	user := registerUser(t, identity, "amy", "0912000001")
	other := registerUser(t, identity, "eve", "0912000002")
	courier := registerWorker(t, identity, "bob", "0922000001", entity.RoleDeliveryWorker)
	req := createDeliveryRequest(t, env, user.ID)

	err := requests.CancelRequest(ctx, req.ID, other.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotRequestOwner)

	require.NoError(t, requests.CancelRequest(ctx, req.ID, user.ID))

	_, err = requests.GetRequest(ctx, req.ID)
	assert.ErrorIs(t, err, domainerrors.ErrRequestNotFound)

	// The creation fan-out entries disappear with the request.
	ledger, err := env.notifications().WorkerNotifications(ctx, courier.ID)
	require.NoError(t, err)
	assert.Empty(t, ledger)

	// Accepted requests are no longer cancellable.
	second := createDeliveryRequest(t, env, user.ID)
	_, err = requests.AcceptRequest(ctx, second.ID, courier.ID)
	require.NoError(t, err)
	err = requests.CancelRequest(ctx, second.ID, user.ID)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidTransition)
}

func TestUserRequestsOrdering(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	identity := env.identity()
	requests := env.requests()
	ctx := context.Background()

	user := registerUser(t, identity, "amy", "0912000001")
	courier := registerWorker(t, identity, "bob", "0922000001", entity.RoleDeliveryWorker)

	first := createDeliveryRequest(t, env, user.ID)
	second := createDeliveryRequest(t, env, user.ID)
	third := createDeliveryRequest(t, env, user.ID)

	_, err := requests.AcceptRequest(ctx, first.ID, courier.ID)
	require.NoError(t, err)
	_, err = requests.AcceptRequest(ctx, second.ID, courier.ID)
	require.NoError(t, err)
	_, err = requests.CompleteRequest(ctx, second.ID, courier.ID)
	require.NoError(t, err)

	list, err := requests.UserRequests(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, first.ID, list[0].ID, "accepted first")
	assert.Equal(t, third.ID, list[1].ID, "then pending")
	assert.Equal(t, second.ID, list[2].ID, "completed last")
}

func TestWorkerRequestsScopedByRole(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	identity := env.identity()
	requests := env.requests()
	ctx := context.Background()

	user := registerUser(t, identity, "amy", "0912000001")
	courier := registerWorker(t, identity, "bob", "0922000001", entity.RoleDeliveryWorker)
	driver := registerWorker(t, identity, "cindy", "0922000002", entity.RoleTaxiDriver)

	delivery := createDeliveryRequest(t, env, user.ID)
	taxi, err := requests.CreateRequest(ctx, usecase.CreateRequestInput{
		UserID:      user.ID,
		Type:        entity.TypeTrafficJam,
		Destination: "Main Station",
		Distance:    8.0,
	})
	require.NoError(t, err)

	courierList, err := requests.WorkerRequests(ctx, courier.ID)
	require.NoError(t, err)
	require.Len(t, courierList, 1)
	assert.Equal(t, delivery.ID, courierList[0].ID)

	// Once accepted by someone else, a request leaves the open pool.
	_, err = requests.AcceptRequest(ctx, taxi.ID, driver.ID)
	require.NoError(t, err)

	driverList, err := requests.WorkerRequests(ctx, driver.ID)
	require.NoError(t, err)
	require.Len(t, driverList, 1)
	assert.Equal(t, taxi.ID, driverList[0].ID)
}

func TestRequestEventsReachSubscribers(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	identity := env.identity()
	requests := env.requests()
	ctx := context.Background()

	user := registerUser(t, identity, "amy", "0912000001")
	courier := registerWorker(t, identity, "bob", "0922000001", entity.RoleDeliveryWorker)

	feed, cancel := env.bus.Subscribe(ctx)
	defer cancel()

	req := createDeliveryRequest(t, env, user.ID)
	_, err := requests.AcceptRequest(ctx, req.ID, courier.ID)
	require.NoError(t, err)

	types := make([]service.EventType, 0, 2)
	for i := 0; i < 2; i++ {
		select {
		case event := <-feed:
			assert.Equal(t, req.ID, event.RequestID)
			types = append(types, event.Type)
		case <-time.After(time.Second):
			t.Fatal("expected change event")
		}
	}
	assert.Equal(t, []service.EventType{service.EventRequestCreated, service.EventRequestAccepted}, types)
}
