package handler

import (
	"net/http"

	"dispatch/internal/delivery/http/response"
	"dispatch/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// NotificationHandler holds dependencies for notification ledger handlers.
type NotificationHandler struct {
	uc usecase.NotificationUsecase
}

// NewNotificationHandler is the constructor for NotificationHandler,
// injected by Fx.
func NewNotificationHandler(uc usecase.NotificationUsecase) *NotificationHandler {
	return &NotificationHandler{uc: uc}
}

// ListForWorker returns the worker's ledger, newest first.
func (h *NotificationHandler) ListForWorker(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid worker id")
	}

	list, err := h.uc.WorkerNotifications(c.Request().Context(), id)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, list, "")
}

// ListForUser returns the user's ledger, newest first.
func (h *NotificationHandler) ListForUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid user id")
	}

	list, err := h.uc.UserNotifications(c.Request().Context(), id)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, list, "")
}

// MarkWorkerRead acknowledges one worker ledger entry.
func (h *NotificationHandler) MarkWorkerRead(c echo.Context) error {
	workerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid worker id")
	}
	notificationID, err := uuid.Parse(c.Param("notificationId"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid notification id")
	}

	if err := h.uc.MarkWorkerNotificationRead(c.Request().Context(), workerID, notificationID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Notification marked read")
}

// MarkUserRead acknowledges one user ledger entry.
func (h *NotificationHandler) MarkUserRead(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid user id")
	}
	notificationID, err := uuid.Parse(c.Param("notificationId"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid notification id")
	}

	if err := h.uc.MarkUserNotificationRead(c.Request().Context(), userID, notificationID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Notification marked read")
}
