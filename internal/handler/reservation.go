package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/service"
)

// ReservationHandler serves the user-facing reservation endpoints.
type ReservationHandler struct {
	Svc   *service.ReservationService
	Rooms RoomStore
	Pass  service.PassSigner
	Purge CachePurger
}

func NewReservationHandler(svc *service.ReservationService, rooms RoomStore, pass service.PassSigner, purge CachePurger) *ReservationHandler {
	return &ReservationHandler{Svc: svc, Rooms: rooms, Pass: pass, Purge: purge}
}

type createReservationReq struct {
	RoomID        uint64 `json:"room_id"`
	StartTime     string `json:"start_time"`
	DurationHours int    `json:"duration_hours"`
}

// Create books a room for the caller.
func (h *ReservationHandler) Create(c echo.Context) error {
	uid, _, ok := actor(c)
	if !ok {
		return nil
	}
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.RoomID == 0 || req.StartTime == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "room_id and start_time required"})
	}
	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_time must be RFC 3339"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	r, err := h.Svc.RequestBooking(ctx, req.RoomID, uid, start, req.DurationHours)
	if err != nil {
		return respondError(c, err)
	}
	h.Purge.purge(ctx)
	return c.JSON(http.StatusCreated, toReservationResp(*r, h.roomNames(ctx)))
}

// Mine lists the caller's reservations ordered by start time.
func (h *ReservationHandler) Mine(c echo.Context) error {
	uid, _, ok := actor(c)
	if !ok {
		return nil
	}
	ctx := c.Request().Context()
	rs, err := h.Svc.ListUserReservations(ctx, uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": toReservationList(rs, h.roomNames(ctx))})
}

// Get returns one reservation owned by the caller (any, for admins).
func (h *ReservationHandler) Get(c echo.Context) error {
	uid, admin, ok := actor(c)
	if !ok {
		return nil
	}
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}
	ctx := c.Request().Context()
	r, err := h.Svc.GetReservation(ctx, id, uid, admin)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toReservationResp(*r, h.roomNames(ctx)))
}

// Cancel cancels a reservation as its owner, or as an administrator.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	uid, admin, ok := actor(c)
	if !ok {
		return nil
	}
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	r, err := h.Svc.CancelBooking(ctx, id, uid, admin)
	if err != nil {
		return respondError(c, err)
	}
	h.Purge.purge(ctx)
	return c.JSON(http.StatusOK, toReservationResp(*r, h.roomNames(ctx)))
}

// QR returns a PNG QR code carrying the signed reservation pass.
func (h *ReservationHandler) QR(c echo.Context) error {
	uid, admin, ok := actor(c)
	if !ok {
		return nil
	}
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}
	r, err := h.Svc.GetReservation(c.Request().Context(), id, uid, admin)
	if err != nil {
		return respondError(c, err)
	}
	if !r.Active() {
		return respondError(c, &service.Error{Kind: service.KindInvalidTransition, Message: "reservation is cancelled", ReservationID: id})
	}
	size, _ := strconv.Atoi(c.QueryParam("size"))
	if size < 64 || size > 1024 {
		size = 256
	}
	png, err := h.Pass.PNG(*r, size)
	if err != nil {
		return respondError(c, err)
	}
	c.Response().Header().Set("Content-Disposition", "inline; filename=reserva-"+strconv.FormatUint(id, 10)+".png")
	return c.Blob(http.StatusOK, "image/png", png)
}

// roomNames maps room IDs to names for display.  Failures only cost
// the names.
func (h *ReservationHandler) roomNames(ctx context.Context) map[uint64]string {
	return roomNameIndex(ctx, h.Rooms)
}

func roomNameIndex(ctx context.Context, rooms RoomStore) map[uint64]string {
	if rooms == nil {
		return nil
	}
	all, err := rooms.ListAll(ctx)
	if err != nil {
		return nil
	}
	names := make(map[uint64]string, len(all))
	for _, r := range all {
		names[r.ID] = r.Name
	}
	return names
}
