// Package router wires handlers and middleware onto an Echo instance.
package router

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/config"
	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/handler"
	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/middleware"
)

// Use installs the process-wide middleware: panic recovery, request IDs,
// request logging, CORS and rate limiting.
func Use(e *echo.Echo, cfg config.Config, rl echo.MiddlewareFunc) {
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			if v.Error != nil {
				c.Logger().Errorf("%s %s %d %s id=%s err=%v", v.Method, v.URI, v.Status, v.Latency, v.RequestID, v.Error)
				return nil
			}
			c.Logger().Infof("%s %s %d %s id=%s", v.Method, v.URI, v.Status, v.Latency, v.RequestID)
			return nil
		},
	}))
	e.Use(middleware.CORS(cfg.CORSOrigins))
	if rl != nil {
		e.Use(rl)
	}
}

// RegisterRoutes registers the unauthenticated probes.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health)
	if db != nil {
		e.GET("/readyz", handler.Ready(db))
	}
}

// RegisterAuth registers token issuance under /v1/auth and the
// authenticated profile endpoint.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)              // rotates the refresh token
	g.POST("/refresh-access", a.RefreshAccess) // keeps the refresh token
	g.POST("/logout", a.Logout)                // refresh_token in body, or bearer for all sessions

	e.GET("/v1/me", a.Me, middleware.JWTAuth(jwtSecret))
	e.POST("/v1/logout", a.Logout)
}

// RegisterRooms registers the public room catalog.  Responses for an
// explicit ?at= are cached in Redis when cache is non-nil.
func RegisterRooms(e *echo.Echo, h *handler.RoomHandler, cache echo.MiddlewareFunc) {
	var mw []echo.MiddlewareFunc
	if cache != nil {
		mw = append(mw, cacheOnlyWithInstant(cache))
	}
	e.GET("/v1/rooms", h.ListRooms, mw...)
	e.GET("/v1/rooms/:id/availability", h.Availability, mw...)
}

// cacheOnlyWithInstant bypasses cache for requests without ?at=: those
// answer for the current time, which the cache key does not carry.
func cacheOnlyWithInstant(cache echo.MiddlewareFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		cached := cache(next)
		return func(c echo.Context) error {
			if c.QueryParam("at") == "" {
				return next(c)
			}
			return cached(c)
		}
	}
}
