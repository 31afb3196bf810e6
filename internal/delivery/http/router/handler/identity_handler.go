// Package handler contains the HTTP handlers for the application.
package handler

import (
	"net/http"

	"dispatch/internal/delivery/http/response"
	"dispatch/internal/domain/entity"
	"dispatch/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// IdentityHandler holds dependencies for account handlers.
type IdentityHandler struct {
	uc usecase.IdentityUsecase
}

// NewIdentityHandler is the constructor for IdentityHandler, injected by Fx.
func NewIdentityHandler(uc usecase.IdentityUsecase) *IdentityHandler {
	return &IdentityHandler{uc: uc}
}

// loginInput is shared by the user and worker login endpoints.
type loginInput struct {
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func sanitizeUser(user *entity.User) *entity.User {
	out := *user
	out.PasswordHash = ""

	return &out
}

func sanitizeWorker(worker *entity.Worker) *entity.Worker {
	out := *worker
	out.PasswordHash = ""

	return &out
}

// RegisterUser handles the requester registration request.
func (h *IdentityHandler) RegisterUser(c echo.Context) error {
	var input usecase.RegisterUserInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid registration input")
	}
	if err := c.Validate(&input); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.uc.RegisterUser(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, sanitizeUser(user), "User registered successfully")
}

// RegisterWorker handles the worker registration request.
func (h *IdentityHandler) RegisterWorker(c echo.Context) error {
	var input usecase.RegisterWorkerInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid registration input")
	}
	if err := c.Validate(&input); err != nil {
		return errors.WithStack(err)
	}

	worker, err := h.uc.RegisterWorker(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, sanitizeWorker(worker), "Worker registered successfully")
}

// LoginUser handles the requester login request.
func (h *IdentityHandler) LoginUser(c echo.Context) error {
	var input loginInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid login input")
	}
	if err := c.Validate(&input); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.uc.LoginUser(c.Request().Context(), input.Phone, input.Password)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, sanitizeUser(user), "Login successful")
}

// LoginWorker handles the worker login request.
func (h *IdentityHandler) LoginWorker(c echo.Context) error {
	var input loginInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid login input")
	}
	if err := c.Validate(&input); err != nil {
		return errors.WithStack(err)
	}

	worker, err := h.uc.LoginWorker(c.Request().Context(), input.Phone, input.Password)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, sanitizeWorker(worker), "Login successful")
}

// GetUser returns one requester account.
func (h *IdentityHandler) GetUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid user id")
	}

	user, err := h.uc.GetUser(c.Request().Context(), id)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, sanitizeUser(user), "")
}

// GetWorker returns one worker account.
func (h *IdentityHandler) GetWorker(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid worker id")
	}

	worker, err := h.uc.GetWorker(c.Request().Context(), id)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, sanitizeWorker(worker), "")
}

// UpdateWorker applies a partial worker profile update.
func (h *IdentityHandler) UpdateWorker(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid worker id")
	}

	var input usecase.UpdateWorkerInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid profile input")
	}
	input.WorkerID = id

	worker, err := h.uc.UpdateWorkerProfile(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, sanitizeWorker(worker), "Profile updated")
}

// ListWorkers returns every registered worker.
func (h *IdentityHandler) ListWorkers(c echo.Context) error {
	workers, err := h.uc.ListWorkers(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	out := make([]entity.Worker, 0, len(workers))
	for i := range workers {
		out = append(out, *sanitizeWorker(&workers[i]))
	}

	return response.Success(c, http.StatusOK, out, "")
}
