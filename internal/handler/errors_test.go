package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/repository"
	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/service"
)

func TestStatusForKind(t *testing.T) {
	want := map[service.Kind]int{
		service.KindNotFound:          http.StatusNotFound,
		service.KindRoomInactive:      http.StatusConflict,
		service.KindInvalidTimeRange:  http.StatusBadRequest,
		service.KindSlotConflict:      http.StatusConflict,
		service.KindForbidden:         http.StatusForbidden,
		service.KindInvalidTransition: http.StatusConflict,
		service.KindUniqueViolation:   http.StatusConflict,
		service.KindUnauthenticated:   http.StatusUnauthorized,
	}
	for k, code := range want {
		if got := statusForKind(k); got != code {
			t.Errorf("%s -> %d, want %d", k, got, code)
		}
	}
}

func TestRespondErrorWrapped(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("booking: %w", service.ErrSlotConflict), http.StatusConflict},
		{fmt.Errorf("lookup: %w", repository.ErrRoomNotFound), http.StatusNotFound},
		{repository.ErrUsernameExists, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	e := echo.New()
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		_ = respondError(c, tc.err)
		if rec.Code != tc.code {
			t.Errorf("%v -> %d, want %d", tc.err, rec.Code, tc.code)
		}
	}
}

func TestParseDate(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?d=2024-05-10", nil), httptest.NewRecorder())
	d, ok := parseDate(c, "d")
	if !ok || d == nil || d.Format("2006-01-02") != "2024-05-10" || d.Location().String() != "UTC" {
		t.Fatalf("parseDate = %v %v", d, ok)
	}
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if d, ok := parseDate(c, "d"); !ok || d != nil {
		t.Fatal("absent date should be nil and ok")
	}
	rec := httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/?d=10/05/2024", nil), rec)
	if _, ok := parseDate(c, "d"); ok || rec.Code != http.StatusBadRequest {
		t.Fatalf("bad date accepted, code %d", rec.Code)
	}
}
