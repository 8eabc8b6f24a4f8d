package main

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/model"
	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/repository"
)

const (
	seedAdminName     = "admin_teste"
	seedAdminEmail    = "teste@sistema.com"
	seedAdminPassword = "senha123"

	seedFirstHour = 8
	seedLastHour  = 19
)

var demoRooms = []model.Room{
	{Name: "Sala 101", Capacity: 10, IsActive: true},
	{Name: "Sala 102", Capacity: 15, IsActive: true},
	{Name: "Quarto Deluxe", Capacity: 2, IsActive: true},
}

var seedDurations = []time.Duration{time.Hour, 90 * time.Minute, 2 * time.Hour}

type roomCreator interface {
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, room *model.Room) error
}

// seedRooms creates the demo rooms when the table is empty.
func seedRooms(ctx context.Context, rooms roomCreator) error {
	n, err := rooms.Count(ctx)
	if err != nil || n > 0 {
		return err
	}
	for _, demo := range demoRooms {
		r := demo
		if err := rooms.Create(ctx, &r); err != nil {
			return err
		}
	}
	return nil
}

// seeder writes random past reservations through the booking store.
// Every candidate takes the same room lock and overlap check as a live
// booking, so seeded data never double-books a room.
type seeder struct {
	Store repository.BookingStore
	Rand  *rand.Rand
	Now   time.Time
}

var errSkip = errors.New("seed: slot taken")

// Reservations attempts n reservations spread over the daysBack days
// before Now, starting on the hour or half hour between 08:00 and
// 19:00 UTC.  It returns how many were written.
func (s seeder) Reservations(ctx context.Context, rooms []model.Room, users []model.User, n, daysBack int) (int, error) {
	if len(rooms) == 0 || len(users) == 0 || n <= 0 {
		return 0, nil
	}
	if daysBack < 1 {
		daysBack = 1
	}
	today := time.Date(s.Now.Year(), s.Now.Month(), s.Now.Day(), 0, 0, 0, 0, time.UTC)
	created := 0
	for i := 0; i < n; i++ {
		room := rooms[s.Rand.Intn(len(rooms))]
		user := users[s.Rand.Intn(len(users))]
		day := today.AddDate(0, 0, -(1 + s.Rand.Intn(daysBack)))
		slots := (seedLastHour - seedFirstHour) * 2
		start := day.Add(seedFirstHour*time.Hour + time.Duration(s.Rand.Intn(slots+1))*30*time.Minute)
		end := start.Add(seedDurations[s.Rand.Intn(len(seedDurations))])

		err := s.Store.InTx(ctx, func(tx repository.ReservationTx) error {
			if _, err := tx.LockRoom(ctx, room.ID); err != nil {
				return err
			}
			hit, err := tx.FindOverlapping(ctx, room.ID, start, end)
			if err != nil {
				return err
			}
			if hit != nil {
				return errSkip
			}
			return tx.InsertReservation(ctx, &model.Reservation{
				RoomID:     room.ID,
				UserID:     user.ID,
				ClientName: user.Username,
				StartTime:  start,
				EndTime:    end,
				Status:     model.StatusReserved,
				CreatedAt:  s.Now,
			})
		})
		switch {
		case err == nil:
			created++
		case errors.Is(err, errSkip), repository.IsDuplicate(err):
		default:
			return created, err
		}
	}
	return created, nil
}
