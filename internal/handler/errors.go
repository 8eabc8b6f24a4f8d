package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/middleware"
	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/repository"
	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/service"
)

// statusForKind maps engine error kinds to HTTP status codes.
func statusForKind(k service.Kind) int {
	switch k {
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindInvalidTimeRange:
		return http.StatusBadRequest
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindUnauthenticated:
		return http.StatusUnauthorized
	case service.KindRoomInactive, service.KindSlotConflict,
		service.KindInvalidTransition, service.KindUniqueViolation:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// respondError writes err as {"error": ..., "kind": ...}.  Typed engine
// errors carry their context fields; anything unknown becomes a 500
// with the detail kept in the server log.
func respondError(c echo.Context, err error) error {
	var se *service.Error
	if errors.As(err, &se) {
		body := echo.Map{"error": se.Message, "kind": se.Kind}
		if se.RoomID != 0 {
			body["room_id"] = se.RoomID
		}
		if se.ReservationID != 0 {
			body["reservation_id"] = se.ReservationID
		}
		if se.ConflictID != 0 {
			body["conflicting_reservation_id"] = se.ConflictID
		}
		if !se.Start.IsZero() {
			body["start_time"] = se.Start.Format(time.RFC3339)
			body["end_time"] = se.End.Format(time.RFC3339)
		}
		return c.JSON(statusForKind(se.Kind), body)
	}

	switch {
	case errors.Is(err, repository.ErrRoomNotFound),
		errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrReservationNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error(), "kind": service.KindNotFound})
	case errors.Is(err, repository.ErrRoomNameExists),
		errors.Is(err, repository.ErrEmailExists),
		errors.Is(err, repository.ErrUsernameExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error(), "kind": service.KindUniqueViolation})
	}
	log.Printf("handler: %s %s: %v", c.Request().Method, c.Path(), err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// actor returns the authenticated caller or writes a 401.
func actor(c echo.Context) (id uint64, isAdmin bool, ok bool) {
	id, ok = middleware.ActorID(c)
	if !ok {
		_ = respondError(c, service.ErrUnauthenticated)
		return 0, false, false
	}
	return id, middleware.IsAdmin(c), true
}

func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// parseInstant reads an RFC 3339 query parameter, defaulting to now.
func parseInstant(c echo.Context, name string, now time.Time) (time.Time, bool) {
	v := c.QueryParam(name)
	if v == "" {
		return now, true
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": name + " must be RFC 3339"})
		return time.Time{}, false
	}
	return t.UTC(), true
}

// parseDate reads an optional YYYY-MM-DD query parameter.
func parseDate(c echo.Context, name string) (*time.Time, bool) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, true
	}
	t, err := time.ParseInLocation("2006-01-02", v, time.UTC)
	if err != nil {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": name + " must be YYYY-MM-DD"})
		return nil, false
	}
	return &t, true
}
