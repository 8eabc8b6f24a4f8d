package repository

import (
	"context"
	"time"

	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/model"
)

// ReservationTx is the set of row-locking operations available inside
// a booking transaction.  Everything done through one ReservationTx
// commits or rolls back together.
type ReservationTx interface {
	// LockRoom reads the room row with an exclusive lock held until the
	// transaction ends.  Concurrent bookings for the same room queue up
	// behind it.
	LockRoom(ctx context.Context, roomID uint64) (model.Room, error)
	GetUser(ctx context.Context, userID uint64) (model.User, error)
	// FindOverlapping returns a reserved reservation in roomID whose
	// interval overlaps [start, end), or nil.
	FindOverlapping(ctx context.Context, roomID uint64, start, end time.Time) (*model.Reservation, error)
	InsertReservation(ctx context.Context, r *model.Reservation) error
	LockReservation(ctx context.Context, id uint64) (model.Reservation, error)
	// MarkCancelled flips a reserved row to cancelled and reports
	// whether a row changed.
	MarkCancelled(ctx context.Context, id uint64, at time.Time) (bool, error)
}

// BookingStore is the persistence boundary of the reservation engine.
type BookingStore interface {
	// InTx runs fn in a transaction, committing when fn returns nil.
	InTx(ctx context.Context, fn func(tx ReservationTx) error) error

	GetRoom(ctx context.Context, roomID uint64) (model.Room, error)
	ListActiveRooms(ctx context.Context) ([]model.Room, error)
	// OccupiedRooms returns the IDs of rooms holding a reserved
	// reservation with start_time <= at <= end_time.
	OccupiedRooms(ctx context.Context, at time.Time, roomIDs ...uint64) (map[uint64]bool, error)

	GetReservation(ctx context.Context, id uint64) (model.Reservation, error)
	ListReservationsByUser(ctx context.Context, userID uint64) ([]model.Reservation, error)
	ListReservations(ctx context.Context) ([]model.Reservation, error)

	// DailyCounts groups reservations by the UTC date of start_time,
	// ascending, keeping start_time in [from, to).
	DailyCounts(ctx context.Context, from, to *time.Time, includeCancelled bool) ([]model.DailyCount, error)
}
