package middleware

// identity.go holds the context keys JWTAuth fills in and the helpers
// handlers use to read them back.

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/model"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
	ctxName   = "name"
)

// ActorID returns the authenticated user's ID.
func ActorID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(ctxUserID).(uint64)
	return id, ok && id != 0
}

// ActorRole returns the role claim, or "" for anonymous requests.
func ActorRole(c echo.Context) string {
	role, _ := c.Get(ctxRole).(string)
	return role
}

// ActorName returns the username carried in the token.
func ActorName(c echo.Context) string {
	name, _ := c.Get(ctxName).(string)
	return name
}

// IsAdmin is the single capability check used by every admin-only path.
func IsAdmin(c echo.Context) bool { return ActorRole(c) == model.RoleAdmin }

// userID returns the actor ID as a string for rate-limit keys, or
// "anon" when no user is authenticated.
func userID(c echo.Context) string {
	if id, ok := ActorID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
