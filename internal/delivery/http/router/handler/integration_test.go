package handler_test

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dispatch/config"
	custommiddleware "dispatch/internal/delivery/http/middleware"
	"dispatch/internal/delivery/http/router"
	"dispatch/internal/delivery/http/router/handler"
	"dispatch/internal/delivery/http/validator"
	"dispatch/internal/infra/auth"
	"dispatch/internal/infra/persistence/localstore"
	"dispatch/internal/infra/pubsub"
	"dispatch/internal/infra/ratelimit"
	"dispatch/internal/usecase/impl"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob/memblob"
)

const adminToken = "test-admin-token"

// envelope mirrors the unified response structure for decoding.
type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Details string `json:"details"`
	} `json:"error"`
}

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	bucket := memblob.OpenBucket(nil)
	t.Cleanup(func() { _ = bucket.Close() })
	store := localstore.NewWithBucket(bucket, logger)

	bus := pubsub.NewBus(logger)
	t.Cleanup(func() { _ = bus.Close() })

	hasher := auth.NewBcryptHasher()
	adminHash, err := hasher.Hash("s3cret")
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Admin = &config.AdminConfig{PasswordHash: adminHash, Token: adminToken}
	cfg.Retention = &config.RetentionConfig{
		AutoPruneAge:   48 * time.Hour,
		ManualPruneAge: 7 * 24 * time.Hour,
	}
	cfg.RateLimit = &config.RateLimitConfig{MaxAttempts: 5, Window: time.Hour}

	identity := impl.NewIdentityService(impl.IdentityServiceParams{
		Store: store, Hasher: hasher, Logger: logger,
	})
	requests := impl.NewRequestService(impl.RequestServiceParams{
		Store: store, Publisher: bus, Logger: logger,
	})
	chat := impl.NewChatService(impl.ChatServiceParams{
		Store: store, Publisher: bus, Logger: logger,
	})
	notifications := impl.NewNotificationService(impl.NotificationServiceParams{Store: store})
	admin := impl.NewAdminService(impl.AdminServiceParams{
		Store:   store,
		Hasher:  hasher,
		Lockout: ratelimit.NewLockout(cfg),
		Config:  cfg,
		Logger:  logger,
	})

	e := echo.New()
	e.HideBanner = true
	e.Validator = validator.New()
	e.Use(custommiddleware.NewRequestIDMiddleware(logger).Tag)
	e.HTTPErrorHandler = custommiddleware.NewErrorMiddleware(logger).HandleHTTPError

	r := router.NewRouter(router.RouterParams{
		IdentityHandler:     handler.NewIdentityHandler(identity),
		RequestHandler:      handler.NewRequestHandler(requests),
		ChatHandler:         handler.NewChatHandler(chat),
		NotificationHandler: handler.NewNotificationHandler(notifications),
		AdminHandler:        handler.NewAdminHandler(admin),
		EventHandler:        handler.NewEventHandler(bus),
		AdminMiddleware:     custommiddleware.NewAdminMiddleware(cfg, logger),
	})
	r.RegisterRoutes(e)

	return e
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string, header map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))

	return rec, env
}

func TestRegisterAndRequestFlowOverHTTP(t *testing.T) {
	t.Parallel()

	e := newTestServer(t)

	rec, env := doJSON(t, e, http.MethodPost, "/auth/register/user",
		`{"name":"amy","phone":"0912000001","password":"passw0rd","address":"No. 1, Test Rd."}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.True(t, env.Success)
	assert.NotContains(t, string(env.Data), "password")

	var user struct {
		ID uuid.UUID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &user))

	rec, env = doJSON(t, e, http.MethodPost, "/auth/register/worker",
		`{"name":"bob","phone":"0922000001","password":"passw0rd","role":"delivery_worker"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var worker struct {
		ID uuid.UUID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &worker))

	rec, env = doJSON(t, e, http.MethodPost, "/requests",
		fmt.Sprintf(`{"userId":%q,"type":"delivery","destination":"No. 7, Harbor St.","distance":4.2}`, user.ID), nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var request struct {
		ID     uuid.UUID `json:"id"`
		Status string    `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &request))
	assert.Equal(t, "pending", request.Status)

	rec, env = doJSON(t, e, http.MethodPut, "/requests/"+request.ID.String()+"/status",
		fmt.Sprintf(`{"actorId":%q,"status":"accepted"}`, worker.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &request))
	assert.Equal(t, "accepted", request.Status)

	rec, env = doJSON(t, e, http.MethodPost, "/requests/"+request.ID.String()+"/messages",
		fmt.Sprintf(`{"senderId":%q,"content":"where are you?"}`, user.ID), nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, env = doJSON(t, e, http.MethodGet,
		"/requests/"+request.ID.String()+"/unread/"+worker.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"unread":1}`, string(env.Data))

	rec, env = doJSON(t, e, http.MethodGet, "/users/"+user.ID.String()+"/requests", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 1)
}

func TestValidationAndErrorMapping(t *testing.T) {
	t.Parallel()

	e := newTestServer(t)

	rec, env := doJSON(t, e, http.MethodPost, "/auth/register/user",
		`{"name":"amy"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)

	rec, env = doJSON(t, e, http.MethodGet, "/users/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "USER_NOT_FOUND", env.Error.Code)

	rec, env = doJSON(t, e, http.MethodGet, "/users/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_INPUT", env.Error.Code)
}

func TestAdminSurfaceOverHTTP(t *testing.T) {
	t.Parallel()

	e := newTestServer(t)

	rec, env := doJSON(t, e, http.MethodPost, "/admin/reset", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	header := map[string]string{custommiddleware.HeaderAdminToken: adminToken}

	rec, _ = doJSON(t, e, http.MethodPost, "/admin/reset", "", header)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = doJSON(t, e, http.MethodPost, "/admin/prune", "", header)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"removed":0}`, string(env.Data))

	rec, env = doJSON(t, e, http.MethodPost, "/admin/login", `{"password":"wrong"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_CREDENTIALS", env.Error.Code)

	rec, _ = doJSON(t, e, http.MethodPost, "/admin/login", `{"password":"s3cret"}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
