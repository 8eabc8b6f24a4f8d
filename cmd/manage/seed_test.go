package main

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/model"
	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/repository/repotest"
)

type fakeRooms struct {
	rooms []model.Room
}

func (f *fakeRooms) Count(ctx context.Context) (int, error) { return len(f.rooms), nil }

func (f *fakeRooms) Create(ctx context.Context, r *model.Room) error {
	r.ID = uint64(len(f.rooms) + 1)
	f.rooms = append(f.rooms, *r)
	return nil
}

func TestSeedRoomsOnlyWhenEmpty(t *testing.T) {
	f := &fakeRooms{}
	if err := seedRooms(context.Background(), f); err != nil {
		t.Fatal(err)
	}
	if len(f.rooms) != 3 || f.rooms[2].Name != "Quarto Deluxe" || f.rooms[2].Capacity != 2 {
		t.Fatalf("rooms = %+v", f.rooms)
	}
	if err := seedRooms(context.Background(), f); err != nil {
		t.Fatal(err)
	}
	if len(f.rooms) != 3 {
		t.Fatalf("second run created rooms: %d", len(f.rooms))
	}
}

func TestSeedReservationsNeverOverlap(t *testing.T) {
	st := repotest.NewStore()
	rooms := []model.Room{
		{ID: 1, Name: "Sala 101", Capacity: 10, IsActive: true},
		{ID: 2, Name: "Quarto Deluxe", Capacity: 2, IsActive: true},
	}
	for _, r := range rooms {
		st.AddRoom(r)
	}
	admin := model.User{ID: 1, Username: "admin_teste", IsAdmin: true}
	st.AddUser(admin)

	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	s := seeder{Store: st, Rand: rand.New(rand.NewSource(42)), Now: now}
	created, err := s.Reservations(context.Background(), rooms, []model.User{admin}, 300, 3)
	if err != nil {
		t.Fatal(err)
	}
	all := st.All()
	if created != len(all) || created == 0 || created >= 300 {
		t.Fatalf("created = %d, stored = %d", created, len(all))
	}

	earliest := time.Date(2024, 6, 12, 8, 0, 0, 0, time.UTC)
	for i, a := range all {
		if a.StartTime.Before(earliest) || !a.StartTime.Before(now) {
			t.Fatalf("start %s outside the seeded window", a.StartTime)
		}
		if h := a.StartTime.Hour(); h < 8 || h > 19 {
			t.Fatalf("start hour %d outside 08..19", h)
		}
		for _, b := range all[i+1:] {
			if a.RoomID == b.RoomID && model.Overlaps(a.StartTime, a.EndTime, b.StartTime, b.EndTime) {
				t.Fatalf("overlap in room %d: %d and %d", a.RoomID, a.ID, b.ID)
			}
		}
	}
}

func TestSeedReservationsNoRooms(t *testing.T) {
	s := seeder{Store: repotest.NewStore(), Rand: rand.New(rand.NewSource(1)), Now: time.Now().UTC()}
	n, err := s.Reservations(context.Background(), nil, []model.User{{ID: 1}}, 10, 14)
	if err != nil || n != 0 {
		t.Fatalf("n=%d err=%v", n, err)
	}
}
