package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/model"
	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/repository"
)

// RequireRole aborts with 403 unless the role stored by JWTAuth is one
// of roles.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !allowed[ActorRole(c)] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

// RequireAdmin guards the admin panel.
func RequireAdmin() echo.MiddlewareFunc { return RequireRole(model.RoleAdmin) }

// RoleSource looks up the stored user behind a token.
type RoleSource interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// CurrentRole replaces the role claim with the user's stored role, so
// granting or revoking admin applies on the next request rather than
// when the access token expires.  It must run after JWTAuth.  Tokens
// of deleted users are rejected with 401.
func CurrentRole(users RoleSource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := ActorID(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			u, err := users.GetByID(c.Request().Context(), id)
			if errors.Is(err, repository.ErrUserNotFound) {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			if err != nil {
				c.Logger().Errorf("current role for user %d: %v", id, err)
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
			}
			c.Set(ctxRole, u.Role())
			c.Set(ctxName, u.Username)
			return next(c)
		}
	}
}
