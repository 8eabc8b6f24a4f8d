package handler

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/model"
	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/service"
)

// AdminHandler serves the administration panel.  Every route is behind
// JWTAuth and RequireAdmin.
type AdminHandler struct {
	Svc   *service.ReservationService
	Rooms RoomStore
	Users UserStore
	Purge CachePurger
}

func NewAdminHandler(svc *service.ReservationService, rooms RoomStore, users UserStore, purge CachePurger) *AdminHandler {
	return &AdminHandler{Svc: svc, Rooms: rooms, Users: users, Purge: purge}
}

// Dashboard returns every reservation by start time plus all rooms.
func (h *AdminHandler) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()
	rooms, err := h.Rooms.ListAll(ctx)
	if err != nil {
		return respondError(c, err)
	}
	rs, err := h.Svc.ListAllReservations(ctx)
	if err != nil {
		return respondError(c, err)
	}
	names := make(map[uint64]string, len(rooms))
	roomList := make([]roomResp, len(rooms))
	for i, r := range rooms {
		names[r.ID] = r.Name
		roomList[i] = toRoomResp(r)
	}
	active := 0
	for _, r := range rs {
		if r.Active() {
			active++
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"rooms":        roomList,
		"reservations": toReservationList(rs, names),
		"totals": echo.Map{
			"rooms":               len(rooms),
			"reservations":        len(rs),
			"active_reservations": active,
		},
	})
}

// ----- rooms -----

type roomReq struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Capacity    *uint32 `json:"capacity"`
	IsActive    *bool   `json:"is_active"`
}

// apply copies the set fields onto room and validates the result.
func (req roomReq) apply(room *model.Room) string {
	if req.Name != nil {
		room.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		d := strings.TrimSpace(*req.Description)
		if d == "" {
			room.Description = nil
		} else {
			room.Description = &d
		}
	}
	if req.Capacity != nil {
		room.Capacity = *req.Capacity
	}
	if req.IsActive != nil {
		room.IsActive = *req.IsActive
	}
	switch {
	case room.Name == "" || utf8.RuneCountInString(room.Name) > 100:
		return "name must be 1-100 characters"
	case room.Description != nil && utf8.RuneCountInString(*room.Description) > 200:
		return "description must be at most 200 characters"
	case room.Capacity == 0:
		return "capacity must be positive"
	}
	return ""
}

func (h *AdminHandler) ListRooms(c echo.Context) error {
	rooms, err := h.Rooms.ListAll(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	out := make([]roomResp, len(rooms))
	for i, r := range rooms {
		out[i] = toRoomResp(r)
	}
	return c.JSON(http.StatusOK, echo.Map{"rooms": out})
}

func (h *AdminHandler) GetRoom(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}
	room, err := h.Rooms.GetByID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toRoomResp(*room))
}

// CreateRoom adds a room; it is active unless is_active=false is sent.
func (h *AdminHandler) CreateRoom(c echo.Context) error {
	var req roomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	room := model.Room{IsActive: true}
	if msg := req.apply(&room); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	ctx := c.Request().Context()
	if err := h.Rooms.Create(ctx, &room); err != nil {
		return respondError(c, err)
	}
	h.Purge.purge(ctx)
	return c.JSON(http.StatusCreated, toRoomResp(room))
}

// UpdateRoom changes the fields present in the body.  Deactivating a
// room keeps its reservations but blocks new bookings.
func (h *AdminHandler) UpdateRoom(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}
	var req roomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx := c.Request().Context()
	room, err := h.Rooms.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	if msg := req.apply(room); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	if err := h.Rooms.Update(ctx, room); err != nil {
		return respondError(c, err)
	}
	h.Purge.purge(ctx)
	return c.JSON(http.StatusOK, toRoomResp(*room))
}

// ----- users -----

func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.Users.List(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	out := make([]userResp, len(users))
	for i, u := range users {
		out[i] = toUserResp(u)
	}
	return c.JSON(http.StatusOK, echo.Map{"users": out})
}

// SetAdmin grants or revokes the administrator flag.  Admins cannot
// demote themselves.
func (h *AdminHandler) SetAdmin(c echo.Context) error {
	self, _, ok := actor(c)
	if !ok {
		return nil
	}
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}
	var req struct {
		IsAdmin *bool `json:"is_admin"`
	}
	if err := c.Bind(&req); err != nil || req.IsAdmin == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "is_admin required"})
	}
	if id == self && !*req.IsAdmin {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot revoke your own admin flag"})
	}
	ctx := c.Request().Context()
	if err := h.Users.SetAdmin(ctx, id, *req.IsAdmin); err != nil {
		return respondError(c, err)
	}
	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}

// ----- reservations -----

// CancelReservation cancels any reservation.
func (h *AdminHandler) CancelReservation(c echo.Context) error {
	self, _, ok := actor(c)
	if !ok {
		return nil
	}
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()
	r, err := h.Svc.CancelBooking(ctx, id, self, true)
	if err != nil {
		return respondError(c, err)
	}
	h.Purge.purge(ctx)
	return c.JSON(http.StatusOK, toReservationResp(*r, roomNameIndex(ctx, h.Rooms)))
}

// Report returns reservations per day.  Query: start_date, end_date
// (YYYY-MM-DD), include_cancelled (bool) and format (json, csv, pdf).
func (h *AdminHandler) Report(c echo.Context) error {
	start, ok := parseDate(c, "start_date")
	if !ok {
		return nil
	}
	end, ok := parseDate(c, "end_date")
	if !ok {
		return nil
	}
	f := model.ReportFilter{StartDate: start, EndDate: end}
	switch strings.ToLower(c.QueryParam("include_cancelled")) {
	case "1", "true", "yes":
		f.IncludeCancelled = true
	}
	rows, err := h.Svc.DailyReport(c.Request().Context(), f)
	if err != nil {
		return respondError(c, err)
	}

	var buf bytes.Buffer
	switch strings.ToLower(c.QueryParam("format")) {
	case "csv":
		if err := service.WriteDailyReportCSV(&buf, rows); err != nil {
			return respondError(c, err)
		}
		c.Response().Header().Set("Content-Disposition", "attachment; filename=relatorio_reservas.csv")
		return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
	case "pdf":
		if err := service.WriteDailyReportPDF(&buf, "Relatório de Reservas por Dia", rows); err != nil {
			return respondError(c, err)
		}
		c.Response().Header().Set("Content-Disposition", "attachment; filename=relatorio_reservas.pdf")
		return c.Blob(http.StatusOK, "application/pdf", buf.Bytes())
	case "", "json":
		out := make([]dailyCountResp, len(rows))
		for i, r := range rows {
			out[i] = dailyCountResp{Date: r.Date.UTC().Format("2006-01-02"), Count: r.Count}
		}
		return c.JSON(http.StatusOK, echo.Map{"days": out})
	}
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "format must be json, csv or pdf"})
}
