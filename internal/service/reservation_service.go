// Package service contains the reservation engine.  It owns the booking
// rules and delegates persistence to a repository.BookingStore so the
// same rules run against MySQL in production and an in-memory store in
// tests.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/model"
	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/queue"
	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/repository"
)

// EventPublisher receives reservation events after commit.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.ReservationEvent) error
}

// Options tunes the engine.
type Options struct {
	// MaxDurationHours is the longest booking accepted, in whole hours.
	MaxDurationHours int
	// ReportIncludeCancelled makes DailyReport count cancelled
	// reservations too.
	ReportIncludeCancelled bool
}

// DefaultMaxDurationHours is used when Options.MaxDurationHours is unset.
const DefaultMaxDurationHours = 4

// ReservationService implements booking, cancellation, availability and
// reporting on top of a BookingStore.
type ReservationService struct {
	store  repository.BookingStore
	events EventPublisher
	now    func() time.Time
	opts   Options
}

// NewReservationService wires the engine.  events may be nil.
func NewReservationService(store repository.BookingStore, events EventPublisher, opts Options) *ReservationService {
	if opts.MaxDurationHours < 1 {
		opts.MaxDurationHours = DefaultMaxDurationHours
	}
	return &ReservationService{
		store:  store,
		events: events,
		now:    func() time.Time { return time.Now().UTC() },
		opts:   opts,
	}
}

// WithClock replaces the time source.  Used by tests and the seeder.
func (s *ReservationService) WithClock(now func() time.Time) *ReservationService {
	s.now = func() time.Time { return now().UTC() }
	return s
}

// Options returns the effective options.
func (s *ReservationService) Options() Options { return s.opts }

// RequestBooking reserves roomID for userID over [startTime,
// startTime+durationHours).  The room row lock, the conflict query and
// the insert share one transaction, so two requests for the same slot
// cannot both succeed.
func (s *ReservationService) RequestBooking(ctx context.Context, roomID, userID uint64, startTime time.Time, durationHours int) (*model.Reservation, error) {
	start := startTime.UTC()
	end := start.Add(time.Duration(durationHours) * time.Hour)
	now := s.now()

	var created model.Reservation
	err := s.store.InTx(ctx, func(tx repository.ReservationTx) error {
		room, err := tx.LockRoom(ctx, roomID)
		if err != nil {
			return err
		}
		if !room.IsActive {
			return &Error{Kind: KindRoomInactive, Message: fmt.Sprintf("room %q is not active", room.Name), RoomID: roomID}
		}

		if start.Before(now) {
			return &Error{Kind: KindInvalidTimeRange, Message: "start time is in the past", RoomID: roomID, Start: start, End: end}
		}
		if durationHours < 1 || durationHours > s.opts.MaxDurationHours {
			return &Error{
				Kind:    KindInvalidTimeRange,
				Message: fmt.Sprintf("duration must be between 1 and %d hours", s.opts.MaxDurationHours),
				RoomID:  roomID, Start: start, End: end,
			}
		}

		existing, err := tx.FindOverlapping(ctx, roomID, start, end)
		if err != nil {
			return err
		}
		if existing != nil {
			return conflictError(roomID, start, end, existing.ID, nil)
		}

		user, err := tx.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		created = model.Reservation{
			RoomID:     roomID,
			UserID:     user.ID,
			ClientName: user.Username,
			StartTime:  start,
			EndTime:    end,
			Status:     model.StatusReserved,
			CreatedAt:  now,
		}
		return tx.InsertReservation(ctx, &created)
	})
	if err != nil {
		if repository.IsDuplicate(err) || repository.IsRetryable(err) {
			return nil, conflictError(roomID, start, end, 0, err)
		}
		return nil, translate(err, roomID, 0)
	}

	s.publish(ctx, queue.ReservationCreated, created, userID)
	return &created, nil
}

// CancelBooking moves a reserved reservation to cancelled.  The owner
// and administrators may cancel; anyone else gets ErrForbidden and the
// row is left untouched.
func (s *ReservationService) CancelBooking(ctx context.Context, reservationID, actorID uint64, actorIsAdmin bool) (*model.Reservation, error) {
	var res model.Reservation
	err := s.store.InTx(ctx, func(tx repository.ReservationTx) error {
		r, err := tx.LockReservation(ctx, reservationID)
		if err != nil {
			return err
		}
		if !actorIsAdmin && r.UserID != actorID {
			return &Error{Kind: KindForbidden, Message: "only the owner or an administrator may cancel", ReservationID: reservationID}
		}
		if !r.CanCancel() {
			return alreadyCancelled(reservationID)
		}
		at := s.now()
		ok, err := tx.MarkCancelled(ctx, reservationID, at)
		if err != nil {
			return err
		}
		if !ok {
			return alreadyCancelled(reservationID)
		}
		r.Status = model.StatusCancelled
		r.CancelledAt = &at
		res = r
		return nil
	})
	if err != nil {
		return nil, translate(err, 0, reservationID)
	}

	s.publish(ctx, queue.ReservationCancelled, res, actorID)
	return &res, nil
}

// ListAvailability reports whether roomID is in use at asOf.  Both
// ends of a reservation count as occupied.
func (s *ReservationService) ListAvailability(ctx context.Context, roomID uint64, asOf time.Time) (model.RoomStatus, error) {
	if _, err := s.store.GetRoom(ctx, roomID); err != nil {
		return "", translate(err, roomID, 0)
	}
	busy, err := s.store.OccupiedRooms(ctx, asOf.UTC(), roomID)
	if err != nil {
		return "", err
	}
	if busy[roomID] {
		return model.RoomOccupied, nil
	}
	return model.RoomFree, nil
}

// ListRoomsWithStatus returns every active room with its status at asOf.
func (s *ReservationService) ListRoomsWithStatus(ctx context.Context, asOf time.Time) ([]model.RoomWithStatus, error) {
	rooms, err := s.store.ListActiveRooms(ctx)
	if err != nil {
		return nil, err
	}
	if len(rooms) == 0 {
		return []model.RoomWithStatus{}, nil
	}
	ids := make([]uint64, len(rooms))
	for i, r := range rooms {
		ids[i] = r.ID
	}
	busy, err := s.store.OccupiedRooms(ctx, asOf.UTC(), ids...)
	if err != nil {
		return nil, err
	}
	out := make([]model.RoomWithStatus, len(rooms))
	for i, r := range rooms {
		st := model.RoomFree
		if busy[r.ID] {
			st = model.RoomOccupied
		}
		out[i] = model.RoomWithStatus{Room: r, Status: st}
	}
	return out, nil
}

// DailyReport counts reservations per UTC start date, ascending.
// StartDate is inclusive from midnight and EndDate covers its whole day.
func (s *ReservationService) DailyReport(ctx context.Context, f model.ReportFilter) ([]model.DailyCount, error) {
	var from, to *time.Time
	if f.StartDate != nil {
		d := truncateDay(*f.StartDate)
		from = &d
	}
	if f.EndDate != nil {
		d := truncateDay(*f.EndDate).Add(24 * time.Hour)
		to = &d
	}
	if from != nil && to != nil && !from.Before(*to) {
		return nil, &Error{Kind: KindInvalidTimeRange, Message: "start date is after end date", Start: *from, End: *to}
	}
	rows, err := s.store.DailyCounts(ctx, from, to, f.IncludeCancelled || s.opts.ReportIncludeCancelled)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []model.DailyCount{}
	}
	return rows, nil
}

// GetReservation returns a reservation visible to the actor: its owner
// or any administrator.
func (s *ReservationService) GetReservation(ctx context.Context, id, actorID uint64, actorIsAdmin bool) (*model.Reservation, error) {
	r, err := s.store.GetReservation(ctx, id)
	if err != nil {
		return nil, translate(err, 0, id)
	}
	if !actorIsAdmin && r.UserID != actorID {
		// Hide the existence of other users' reservations.
		return nil, &Error{Kind: KindNotFound, Message: "reservation not found", ReservationID: id}
	}
	return &r, nil
}

// ListUserReservations returns the user's reservations by start time.
func (s *ReservationService) ListUserReservations(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	out, err := s.store.ListReservationsByUser(ctx, userID)
	if out == nil && err == nil {
		out = []model.Reservation{}
	}
	return out, err
}

// ListAllReservations returns every reservation by start time.
func (s *ReservationService) ListAllReservations(ctx context.Context) ([]model.Reservation, error) {
	out, err := s.store.ListReservations(ctx)
	if out == nil && err == nil {
		out = []model.Reservation{}
	}
	return out, err
}

func (s *ReservationService) publish(ctx context.Context, typ string, r model.Reservation, actorID uint64) {
	if s.events == nil {
		return
	}
	ev := queue.NewReservationEvent(typ, s.now())
	ev.ReservationID = r.ID
	ev.RoomID = r.RoomID
	ev.UserID = r.UserID
	ev.ClientName = r.ClientName
	ev.StartTime = r.StartTime.Format(time.RFC3339)
	ev.EndTime = r.EndTime.Format(time.RFC3339)
	ev.Status = string(r.Status)
	ev.ActorID = actorID
	// The reservation is committed; a lost event must not fail the call.
	if err := s.events.Publish(context.WithoutCancel(ctx), ev); err != nil {
		log.Printf("service: publish %s for reservation %d failed: %v", typ, r.ID, err)
	}
}

func conflictError(roomID uint64, start, end time.Time, conflictID uint64, cause error) *Error {
	return &Error{
		Kind:       KindSlotConflict,
		Message:    "room already booked for an overlapping interval",
		RoomID:     roomID,
		ConflictID: conflictID,
		Start:      start,
		End:        end,
		Err:        cause,
	}
}

func alreadyCancelled(id uint64) *Error {
	return &Error{Kind: KindInvalidTransition, Message: "reservation already cancelled", ReservationID: id}
}

// translate maps repository sentinels onto engine errors.  Errors that
// are already typed pass through.
func translate(err error, roomID, reservationID uint64) error {
	var e *Error
	switch {
	case errors.As(err, &e):
		return e
	case errors.Is(err, repository.ErrRoomNotFound):
		return &Error{Kind: KindNotFound, Message: "room not found", RoomID: roomID, Err: err}
	case errors.Is(err, repository.ErrReservationNotFound):
		return &Error{Kind: KindNotFound, Message: "reservation not found", ReservationID: reservationID, Err: err}
	case errors.Is(err, repository.ErrUserNotFound):
		return &Error{Kind: KindNotFound, Message: "user not found", Err: err}
	}
	return err
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
