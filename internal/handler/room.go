package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/model"
	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/service"
)

// RoomStore is the part of repository.RoomRepo the handlers use.
type RoomStore interface {
	Create(ctx context.Context, room *model.Room) error
	Update(ctx context.Context, room *model.Room) error
	GetByID(ctx context.Context, id uint64) (*model.Room, error)
	ListAll(ctx context.Context) ([]model.Room, error)
	ListActive(ctx context.Context) ([]model.Room, error)
}

// CachePurger drops cached catalog responses after a write that
// changes them.  A nil CachePurger does nothing.
type CachePurger func(ctx context.Context)

func (p CachePurger) purge(ctx context.Context) {
	if p != nil {
		p(ctx)
	}
}

// RoomHandler serves the public room catalog.
type RoomHandler struct {
	Svc *service.ReservationService
	Now func() time.Time
}

func NewRoomHandler(svc *service.ReservationService) *RoomHandler {
	return &RoomHandler{Svc: svc, Now: func() time.Time { return time.Now().UTC() }}
}

// ListRooms returns the active rooms with their status at ?at= (RFC
// 3339, default now).
func (h *RoomHandler) ListRooms(c echo.Context) error {
	at, ok := parseInstant(c, "at", h.Now())
	if !ok {
		return nil
	}
	rooms, err := h.Svc.ListRoomsWithStatus(c.Request().Context(), at)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]roomResp, len(rooms))
	for i, r := range rooms {
		out[i] = toRoomResp(r.Room)
		out[i].Status = string(r.Status)
	}
	return c.JSON(http.StatusOK, echo.Map{"at": at.Format(time.RFC3339), "rooms": out})
}

// Availability returns Occupied or Free for one room at ?at=.
func (h *RoomHandler) Availability(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}
	at, ok := parseInstant(c, "at", h.Now())
	if !ok {
		return nil
	}
	st, err := h.Svc.ListAvailability(c.Request().Context(), id, at)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"room_id": id, "at": at.Format(time.RFC3339), "status": st})
}
