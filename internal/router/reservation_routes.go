package router

import (
	"github.com/labstack/echo/v4"

	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/handler"
	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/middleware"
	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/model"
)

// RegisterReservations registers the endpoints of any signed-in user.
// Ownership is checked by the engine, so admins can use them too.  When
// users is non-nil the caller's role is re-read on every request.
func RegisterReservations(e *echo.Echo, h *handler.ReservationHandler, jwtSecret string, users middleware.RoleSource) {
	g := e.Group("/v1", authChain(jwtSecret, users, middleware.RequireRole(model.RoleUser, model.RoleAdmin))...)
	g.POST("/reservations", h.Create)
	g.GET("/my-reservations", h.Mine)
	g.GET("/reservations/:id", h.Get)
	g.POST("/reservations/:id/cancel", h.Cancel)
	g.DELETE("/reservations/:id", h.Cancel)
	g.GET("/reservations/:id/qr", h.QR)
}

func authChain(jwtSecret string, users middleware.RoleSource, guard echo.MiddlewareFunc) []echo.MiddlewareFunc {
	chain := []echo.MiddlewareFunc{middleware.JWTAuth(jwtSecret)}
	if users != nil {
		chain = append(chain, middleware.CurrentRole(users))
	}
	return append(chain, guard)
}
