package router

import (
	"github.com/labstack/echo/v4"

	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/handler"
	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/middleware"
)

// RegisterAdmin registers the administration panel under /v1/admin.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string, users middleware.RoleSource) {
	g := e.Group("/v1/admin", authChain(jwtSecret, users, middleware.RequireAdmin())...)
	g.GET("/dashboard", h.Dashboard)

	g.GET("/rooms", h.ListRooms)
	g.POST("/rooms", h.CreateRoom)
	g.GET("/rooms/:id", h.GetRoom)
	g.PATCH("/rooms/:id", h.UpdateRoom)

	g.GET("/users", h.ListUsers)
	g.PATCH("/users/:id/admin", h.SetAdmin)

	g.POST("/reservations/:id/cancel", h.CancelReservation)
	g.GET("/reports/daily", h.Report)
}
