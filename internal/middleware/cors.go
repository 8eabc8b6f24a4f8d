package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/cors"
)

// CORS adapts rs/cors to echo.  origins is a comma separated list; an
// empty list or "*" allows any origin without credentials.
func CORS(origins string) echo.MiddlewareFunc {
	var allowed []string
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			allowed = append(allowed, o)
		}
	}
	anyOrigin := len(allowed) == 0 || (len(allowed) == 1 && allowed[0] == "*")
	if anyOrigin {
		allowed = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   allowed,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", echo.HeaderXRequestID},
		ExposedHeaders:   []string{echo.HeaderXRequestID, "X-Cache", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: !anyOrigin,
		MaxAge:           600,
	})
	return echo.WrapMiddleware(c.Handler)
}
