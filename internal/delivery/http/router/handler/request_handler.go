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

// RequestHandler holds dependencies for request lifecycle handlers.
type RequestHandler struct {
	uc usecase.RequestUsecase
}

// NewRequestHandler is the constructor for RequestHandler, injected by Fx.
func NewRequestHandler(uc usecase.RequestUsecase) *RequestHandler {
	return &RequestHandler{uc: uc}
}

// Create handles new request submissions.
func (h *RequestHandler) Create(c echo.Context) error {
	var input usecase.CreateRequestInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid request input")
	}
	if err := c.Validate(&input); err != nil {
		return errors.WithStack(err)
	}

	req, err := h.uc.CreateRequest(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, req, "Request created")
}

// Get returns one request.
func (h *RequestHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid request id")
	}

	req, err := h.uc.GetRequest(c.Request().Context(), id)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, req, "")
}

// statusInput carries a lifecycle transition.
type statusInput struct {
	ActorID uuid.UUID            `json:"actorId" validate:"required"`
	Status  entity.RequestStatus `json:"status" validate:"required"`
}

// UpdateStatus moves a request through its lifecycle.
func (h *RequestHandler) UpdateStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid request id")
	}

	var input statusInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid status input")
	}
	if err := c.Validate(&input); err != nil {
		return errors.WithStack(err)
	}

	req, err := h.uc.UpdateStatus(c.Request().Context(), id, input.ActorID, input.Status)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, req, "Request updated")
}

// cancelInput identifies the cancelling user.
type cancelInput struct {
	UserID uuid.UUID `json:"userId" validate:"required"`
}

// Cancel hard-deletes a pending request.
func (h *RequestHandler) Cancel(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid request id")
	}

	var input cancelInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid cancel input")
	}
	if err := c.Validate(&input); err != nil {
		return errors.WithStack(err)
	}

	if err := h.uc.CancelRequest(c.Request().Context(), id, input.UserID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Request cancelled")
}

// ListForUser returns the user's requests in dashboard order.
func (h *RequestHandler) ListForUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid user id")
	}

	list, err := h.uc.UserRequests(c.Request().Context(), id)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, list, "")
}

// ListForWorker returns assigned requests plus open work for the worker's
// role.
func (h *RequestHandler) ListForWorker(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid worker id")
	}

	list, err := h.uc.WorkerRequests(c.Request().Context(), id)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, list, "")
}
