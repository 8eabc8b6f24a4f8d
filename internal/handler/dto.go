package handler

import (
	"time"

	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/model"
)

type roomResp struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Capacity    uint32  `json:"capacity"`
	IsActive    bool    `json:"is_active"`
	Status      string  `json:"status,omitempty"`
}

func toRoomResp(r model.Room) roomResp {
	return roomResp{ID: r.ID, Name: r.Name, Description: r.Description, Capacity: r.Capacity, IsActive: r.IsActive}
}

type reservationResp struct {
	ID          uint64     `json:"id"`
	RoomID      uint64     `json:"room_id"`
	RoomName    string     `json:"room_name,omitempty"`
	UserID      uint64     `json:"user_id"`
	ClientName  string     `json:"client_name"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     time.Time  `json:"end_time"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

func toReservationResp(r model.Reservation, roomNames map[uint64]string) reservationResp {
	return reservationResp{
		ID:          r.ID,
		RoomID:      r.RoomID,
		RoomName:    roomNames[r.RoomID],
		UserID:      r.UserID,
		ClientName:  r.ClientName,
		StartTime:   r.StartTime.UTC(),
		EndTime:     r.EndTime.UTC(),
		Status:      string(r.Status),
		CreatedAt:   r.CreatedAt.UTC(),
		CancelledAt: r.CancelledAt,
	}
}

func toReservationList(rs []model.Reservation, roomNames map[uint64]string) []reservationResp {
	out := make([]reservationResp, len(rs))
	for i, r := range rs {
		out[i] = toReservationResp(r, roomNames)
	}
	return out
}

type userResp struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
	Role     string `json:"role"`
}

func toUserResp(u model.User) userResp {
	return userResp{ID: u.ID, Username: u.Username, Email: u.Email, IsAdmin: u.IsAdmin, Role: u.Role()}
}

type dailyCountResp struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}
