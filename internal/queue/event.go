// Package queue defines the reservation events exchanged over RabbitMQ
// together with their publisher and the log-writing consumer.
package queue

import (
	"time"

	"github.com/google/uuid"
)

// Routing keys, which double as queue names on the default exchange.
const (
	ReservationCreated   = "reservation.created"
	ReservationCancelled = "reservation.cancelled"
)

// ReservationEvent is published after a reservation is created or
// cancelled.  It carries enough data for consumers to log or notify
// without querying the database.
type ReservationEvent struct {
	EventID       string `json:"event_id"`
	Type          string `json:"type"`
	ReservationID uint64 `json:"reservation_id"`
	RoomID        uint64 `json:"room_id"`
	UserID        uint64 `json:"user_id"`
	ClientName    string `json:"client_name"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	Status        string `json:"status"`
	// ActorID is who triggered the event; for cancellations it may be
	// an administrator rather than the owner.
	ActorID    uint64 `json:"actor_id"`
	OccurredAt string `json:"occurred_at"`
}

// NewReservationEvent stamps a fresh event ID and occurrence time.
func NewReservationEvent(typ string, at time.Time) ReservationEvent {
	return ReservationEvent{
		EventID:    uuid.NewString(),
		Type:       typ,
		OccurredAt: at.UTC().Format(time.RFC3339),
	}
}
