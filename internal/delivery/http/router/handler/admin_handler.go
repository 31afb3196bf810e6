package handler

import (
	"net/http"

	"dispatch/internal/delivery/http/response"
	"dispatch/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// AdminHandler holds dependencies for the maintenance handlers.
type AdminHandler struct {
	uc usecase.AdminUsecase
}

// NewAdminHandler is the constructor for AdminHandler, injected by Fx.
func NewAdminHandler(uc usecase.AdminUsecase) *AdminHandler {
	return &AdminHandler{uc: uc}
}

type adminLoginInput struct {
	Password string `json:"password" validate:"required"`
}

// Login checks the administrator password under the lockout policy.
func (h *AdminHandler) Login(c echo.Context) error {
	var input adminLoginInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid login input")
	}
	if err := c.Validate(&input); err != nil {
		return errors.WithStack(err)
	}

	if err := h.uc.Login(c.Request().Context(), input.Password); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Login successful")
}

// Reset empties every collection.
func (h *AdminHandler) Reset(c echo.Context) error {
	if err := h.uc.ResetAllData(c.Request().Context()); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "All data reset")
}

// Prune removes completed requests older than the manual retention window.
func (h *AdminHandler) Prune(c echo.Context) error {
	removed, err := h.uc.PruneCompleted(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]int{"removed": removed}, "Prune complete")
}
