package middleware

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/model"
	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/repository"
)

type roleSource map[uint64]model.User

func (r roleSource) GetByID(ctx context.Context, id uint64) (model.User, error) {
	if id == 99 {
		return model.User{}, errors.New("db down")
	}
	u, ok := r[id]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func TestCurrentRoleOverridesTokenClaim(t *testing.T) {
	users := roleSource{
		1: {ID: 1, Username: "demoted", IsAdmin: false},
		2: {ID: 2, Username: "promoted", IsAdmin: true},
	}
	e := echo.New()
	g := e.Group("/admin", JWTAuth(secret), CurrentRole(users), RequireAdmin())
	g.GET("/who", func(c echo.Context) error {
		return c.String(http.StatusOK, ActorName(c))
	})

	if rec := do(e, http.MethodGet, "/admin/who", token(t, 1, model.RoleAdmin)); rec.Code != http.StatusForbidden {
		t.Fatalf("stale admin claim: %d", rec.Code)
	}
	rec := do(e, http.MethodGet, "/admin/who", token(t, 2, model.RoleUser))
	if rec.Code != http.StatusOK || rec.Body.String() != "promoted" {
		t.Fatalf("stored admin with user claim: %d %q", rec.Code, rec.Body.String())
	}
	if rec := do(e, http.MethodGet, "/admin/who", token(t, 7, model.RoleAdmin)); rec.Code != http.StatusUnauthorized {
		t.Fatalf("unknown user: %d", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/admin/who", token(t, 99, model.RoleAdmin)); rec.Code != http.StatusInternalServerError {
		t.Fatalf("lookup failure: %d", rec.Code)
	}
}
