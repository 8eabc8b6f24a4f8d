// Package repotest provides an in-memory repository.BookingStore for
// tests of the layers above the database.
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/model"
	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/repository"
)

// Store is an in-memory BookingStore.  InTx holds mu for the whole
// transaction, which gives the same serialisation per room that the
// MySQL row lock does, and stages writes so a failing fn leaves no
// trace.
type Store struct {
	mu     sync.Mutex
	rooms  map[uint64]model.Room
	users  map[uint64]model.User
	res    []model.Reservation
	nextID uint64

	// InsertErr, when set, is returned by InsertReservation after the
	// row has been staged, like a unique index firing at insert time.
	InsertErr error
	// Yield is called between the conflict query and the insert so
	// concurrent callers get a chance to interleave.
	Yield func()
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{rooms: map[uint64]model.Room{}, users: map[uint64]model.User{}}
}

// AddRoom stores or replaces a room.
func (m *Store) AddRoom(r model.Room) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[r.ID] = r
}

// AddUser stores or replaces a user.
func (m *Store) AddUser(u model.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
}

// Put stores a reservation directly, bypassing every rule, and returns
// it with its assigned ID.
func (m *Store) Put(r model.Reservation) model.Reservation {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	r.ID = m.nextID
	m.res = append(m.res, r)
	return r
}

// All returns a snapshot of every stored reservation.
func (m *Store) All() []model.Reservation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Reservation(nil), m.res...)
}

func (m *Store) InTx(ctx context.Context, fn func(tx repository.ReservationTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &memTx{m: m, res: append([]model.Reservation(nil), m.res...), nextID: m.nextID}
	if err := fn(tx); err != nil {
		return err
	}
	m.res = tx.res
	m.nextID = tx.nextID
	return nil
}

func (m *Store) GetRoom(ctx context.Context, id uint64) (model.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[id]
	if !ok {
		return model.Room{}, repository.ErrRoomNotFound
	}
	return r, nil
}

func (m *Store) ListActiveRooms(ctx context.Context) ([]model.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Room
	for _, r := range m.rooms {
		if r.IsActive {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Store) OccupiedRooms(ctx context.Context, at time.Time, roomIDs ...uint64) (map[uint64]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := map[uint64]bool{}
	for _, id := range roomIDs {
		want[id] = true
	}
	out := map[uint64]bool{}
	for _, r := range m.res {
		if len(want) > 0 && !want[r.RoomID] {
			continue
		}
		if r.Active() && r.CoversInstant(at) {
			out[r.RoomID] = true
		}
	}
	return out, nil
}

func (m *Store) GetReservation(ctx context.Context, id uint64) (model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.res {
		if r.ID == id {
			return r, nil
		}
	}
	return model.Reservation{}, repository.ErrReservationNotFound
}

func (m *Store) ListReservationsByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	var out []model.Reservation
	for _, r := range m.sorted() {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *Store) ListReservations(ctx context.Context) ([]model.Reservation, error) {
	return m.sorted(), nil
}

func (m *Store) sorted() []model.Reservation {
	out := m.All()
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out
}

func (m *Store) DailyCounts(ctx context.Context, from, to *time.Time, includeCancelled bool) ([]model.DailyCount, error) {
	counts := map[time.Time]int{}
	for _, r := range m.All() {
		if !includeCancelled && !r.Active() {
			continue
		}
		if from != nil && r.StartTime.Before(*from) {
			continue
		}
		if to != nil && !r.StartTime.Before(*to) {
			continue
		}
		s := r.StartTime.UTC()
		counts[time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, time.UTC)]++
	}
	var out []model.DailyCount
	for d, n := range counts {
		out = append(out, model.DailyCount{Date: d, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

type memTx struct {
	m      *Store
	res    []model.Reservation
	nextID uint64
}

func (t *memTx) LockRoom(ctx context.Context, id uint64) (model.Room, error) {
	r, ok := t.m.rooms[id]
	if !ok {
		return model.Room{}, repository.ErrRoomNotFound
	}
	return r, nil
}

func (t *memTx) GetUser(ctx context.Context, id uint64) (model.User, error) {
	u, ok := t.m.users[id]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (t *memTx) FindOverlapping(ctx context.Context, roomID uint64, start, end time.Time) (*model.Reservation, error) {
	for _, r := range t.res {
		if r.RoomID == roomID && r.Active() && r.Overlaps(start, end) {
			found := r
			return &found, nil
		}
	}
	return nil, nil
}

func (t *memTx) InsertReservation(ctx context.Context, r *model.Reservation) error {
	if t.m.Yield != nil {
		t.m.Yield()
	}
	t.nextID++
	r.ID = t.nextID
	t.res = append(t.res, *r)
	return t.m.InsertErr
}

func (t *memTx) LockReservation(ctx context.Context, id uint64) (model.Reservation, error) {
	for _, r := range t.res {
		if r.ID == id {
			return r, nil
		}
	}
	return model.Reservation{}, repository.ErrReservationNotFound
}

func (t *memTx) MarkCancelled(ctx context.Context, id uint64, at time.Time) (bool, error) {
	for i := range t.res {
		if t.res[i].ID == id && t.res[i].Status == model.StatusReserved {
			t.res[i].Status = model.StatusCancelled
			when := at
			t.res[i].CancelledAt = &when
			return true, nil
		}
	}
	return false, nil
}

var _ repository.BookingStore = (*Store)(nil)
