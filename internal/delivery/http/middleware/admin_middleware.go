package middleware

import (
	"crypto/subtle"
	"log/slog"

	"dispatch/config"
	deliverycontext "dispatch/internal/delivery/context"
	domainerrors "dispatch/internal/domain/errors"

	"github.com/labstack/echo/v4"
)

// HeaderAdminToken carries the shared admin secret.
const HeaderAdminToken = "X-Admin-Token"

// AdminMiddleware guards the maintenance routes with a shared token and
// marks passing requests as administrator-authenticated.
type AdminMiddleware struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewAdminMiddleware is the constructor for AdminMiddleware.
func NewAdminMiddleware(cfg *config.Config, logger *slog.Logger) *AdminMiddleware {
	return &AdminMiddleware{cfg: cfg, logger: logger}
}

// RequireAdmin rejects requests without the configured token. A missing
// token configuration rejects everything rather than opening the surface.
func (m *AdminMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		configured := ""
		if m.cfg.Admin != nil {
			configured = m.cfg.Admin.Token
		}
		supplied := c.Request().Header.Get(HeaderAdminToken)

		if configured == "" || subtle.ConstantTimeCompare([]byte(supplied), []byte(configured)) != 1 {
			m.logger.Warn("admin route rejected",
				slog.String("path", c.Request().URL.Path),
				slog.String("request_id", deliverycontext.GetRequestID(c)),
			)

			return domainerrors.ErrUnauthorized
		}

		ctx := deliverycontext.WithAdmin(c.Request().Context())
		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}
