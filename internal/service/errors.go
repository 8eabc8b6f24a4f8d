package service

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies a reservation failure.  Callers branch on the kind
// rather than on message text.
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindRoomInactive      Kind = "room_inactive"
	KindInvalidTimeRange  Kind = "invalid_time_range"
	KindSlotConflict      Kind = "slot_conflict"
	KindForbidden         Kind = "forbidden"
	KindInvalidTransition Kind = "invalid_transition"
	KindUniqueViolation   Kind = "unique_violation"
	KindUnauthenticated   Kind = "unauthenticated"
)

// Error is the typed failure returned by ReservationService.  The ID
// and time fields are filled in when they are relevant to the kind.
type Error struct {
	Kind          Kind
	Message       string
	RoomID        uint64
	ReservationID uint64
	// ConflictID is the reservation already holding the slot.
	ConflictID uint64
	Start, End time.Time
	Err        error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err,
// ErrSlotConflict) holds for every conflict regardless of details.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrNotFound         = &Error{Kind: KindNotFound, Message: "not found"}
	ErrRoomInactive     = &Error{Kind: KindRoomInactive, Message: "room is not active"}
	ErrInvalidTimeRange = &Error{Kind: KindInvalidTimeRange, Message: "invalid time range"}
	ErrSlotConflict     = &Error{Kind: KindSlotConflict, Message: "time slot already booked"}
	ErrForbidden        = &Error{Kind: KindForbidden, Message: "permission denied"}
	// ErrAlreadyCancelled is the cancellation flavour of an invalid transition.
	ErrAlreadyCancelled = &Error{Kind: KindInvalidTransition, Message: "reservation already cancelled"}
	ErrUniqueViolation  = &Error{Kind: KindUniqueViolation, Message: "already exists"}
	ErrUnauthenticated  = &Error{Kind: KindUnauthenticated, Message: "authentication required"}
)

// KindOf returns the kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
