package auth

import (
	"log/slog"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mesa-hq/mesa-server/pkg/apperror"
	"github.com/mesa-hq/mesa-server/pkg/logger"
)

type contextKey string

// AccountContextKey stores the resolved account id in the Echo context.
const AccountContextKey contextKey = "auth_account"

// GetAccountID retrieves the authenticated account id from the Echo context.
// Returns "" if the request was not authenticated.
func GetAccountID(c echo.Context) string {
	if id, ok := c.Get(string(AccountContextKey)).(string); ok {
		return id
	}
	return ""
}

// Middleware handles authentication for routes
type Middleware struct {
	svc *Service
	log *slog.Logger
}

// NewMiddleware creates a new auth middleware
func NewMiddleware(svc *Service, log *slog.Logger) *Middleware {
	return &Middleware{
		svc: svc,
		log: log.With(logger.Scope("auth.middleware")),
	}
}

// RequireAuth returns middleware that requires a valid bearer token.
// Rejections are plain JSON 401 responses; SSE framing is never used for
// authentication failures.
func (m *Middleware) RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				return apperror.ErrUnauthorized
			}

			accountID, err := m.svc.ResolveAccountID(token)
			if err != nil {
				m.log.Warn("authentication failed", logger.Error(err))
				return apperror.ErrInvalidToken
			}

			c.Set(string(AccountContextKey), accountID)
			return next(c)
		}
	}
}
