package model

import "time"

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	StatusReserved  ReservationStatus = "reserved"
	StatusCancelled ReservationStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s ReservationStatus) Valid() bool {
	return s == StatusReserved || s == StatusCancelled
}

// Reservation records a user's booking of a room for a time interval.
// StartTime and EndTime are UTC instants and EndTime is always after
// StartTime.  CancelledAt is set exactly when Status is cancelled, and
// cancelled is terminal.
//
// Fields:
//
//	ID          – primary key identifier.
//	RoomID      – booked room.
//	UserID      – user who made the reservation.
//	ClientName  – the user's username at booking time.
//	StartTime   – inclusive start of the interval.
//	EndTime     – exclusive end of the interval for conflict purposes.
//	Status      – reserved or cancelled.
//	CreatedAt   – creation timestamp.
//	CancelledAt – cancellation timestamp (nil while reserved).
type Reservation struct {
	ID          uint64            // reservations.id
	RoomID      uint64            // reservations.room_id
	UserID      uint64            // reservations.user_id
	ClientName  string            // reservations.client_name
	StartTime   time.Time         // reservations.start_time
	EndTime     time.Time         // reservations.end_time
	Status      ReservationStatus // reservations.status
	CreatedAt   time.Time         // reservations.created_at
	CancelledAt *time.Time        // reservations.cancelled_at (nullable)
}

// Active reports whether the reservation still holds its slot.
func (r Reservation) Active() bool { return r.Status == StatusReserved }

// CanCancel reports whether the reservation may move to cancelled.
func (r Reservation) CanCancel() bool { return r.Status == StatusReserved }

// Overlaps reports whether r's interval conflicts with [start, end).
func (r Reservation) Overlaps(start, end time.Time) bool {
	return Overlaps(r.StartTime, r.EndTime, start, end)
}

// CoversInstant reports whether t falls inside r's interval, both ends
// included.  This is the "is the room in use right now" test and is
// intentionally wider than Overlaps.
func (r Reservation) CoversInstant(t time.Time) bool {
	return !t.Before(r.StartTime) && !t.After(r.EndTime)
}

// Overlaps is the half-open interval conflict test: [aStart, aEnd) and
// [bStart, bEnd) overlap iff aStart < bEnd and aEnd > bStart.  Touching
// intervals do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}
