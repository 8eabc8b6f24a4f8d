package router

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/model"
	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/repository"
	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/repository/repotest"
)

// fakeRooms keeps the room catalog in sync with the booking store so
// the admin handlers and the engine see the same rooms.
type fakeRooms struct {
	mu    sync.Mutex
	store *repotest.Store
	rooms map[uint64]model.Room
	next  uint64
}

func newFakeRooms(st *repotest.Store) *fakeRooms {
	return &fakeRooms{store: st, rooms: map[uint64]model.Room{}}
}

func (f *fakeRooms) Create(ctx context.Context, r *model.Room) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ex := range f.rooms {
		if ex.Name == r.Name {
			return repository.ErrRoomNameExists
		}
	}
	f.next++
	r.ID = f.next
	f.rooms[r.ID] = *r
	f.store.AddRoom(*r)
	return nil
}

func (f *fakeRooms) Update(ctx context.Context, r *model.Room) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rooms[r.ID]; !ok {
		return repository.ErrRoomNotFound
	}
	f.rooms[r.ID] = *r
	f.store.AddRoom(*r)
	return nil
}

func (f *fakeRooms) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rooms[id]
	if !ok {
		return nil, repository.ErrRoomNotFound
	}
	return &r, nil
}

func (f *fakeRooms) ListAll(ctx context.Context) ([]model.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Room, 0, len(f.rooms))
	for _, r := range f.rooms {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeRooms) ListActive(ctx context.Context) ([]model.Room, error) {
	all, _ := f.ListAll(ctx)
	out := all[:0]
	for _, r := range all {
		if r.IsActive {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeUsers struct {
	mu    sync.Mutex
	store *repotest.Store
	users map[uint64]model.User
	next  uint64
}

func newFakeUsers(st *repotest.Store) *fakeUsers {
	return &fakeUsers{store: st, users: map[uint64]model.User{}}
}

// add stores u with an already hashed password.
func (f *fakeUsers) add(u model.User) model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	u.ID = f.next
	f.users[u.ID] = u
	f.store.AddUser(u)
	return u
}

func (f *fakeUsers) Create(ctx context.Context, username, email, password string, isAdmin bool, cost int) (uint64, error) {
	f.mu.Lock()
	for _, u := range f.users {
		if u.Username == username {
			f.mu.Unlock()
			return 0, repository.ErrUsernameExists
		}
		if u.Email == email {
			f.mu.Unlock()
			return 0, repository.ErrEmailExists
		}
	}
	f.mu.Unlock()
	u := f.add(model.User{Username: username, Email: email, PasswordHash: "x", IsAdmin: isAdmin})
	return u.ID, nil
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrUserNotFound
}

func (f *fakeUsers) GetByID(ctx context.Context, id uint64) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUsers) List(ctx context.Context) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeUsers) SetAdmin(ctx context.Context, id uint64, isAdmin bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.IsAdmin = isAdmin
	f.users[id] = u
	return nil
}

type fakeTokens struct {
	mu     sync.Mutex
	tokens map[string]uint64 // hash -> user, removed on revoke
}

func newFakeTokens() *fakeTokens { return &fakeTokens{tokens: map[string]uint64{}} }

func (f *fakeTokens) StoreRefresh(ctx context.Context, userID uint64, hash string, exp time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[hash] = userID
	return nil
}

func (f *fakeTokens) ValidateRefresh(ctx context.Context, hash string) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	uid, ok := f.tokens[hash]
	if !ok {
		return 0, repository.ErrTokenInvalid
	}
	return uid, nil
}

func (f *fakeTokens) Rotate(ctx context.Context, oldHash, newHash string, exp time.Time) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	uid, ok := f.tokens[oldHash]
	if !ok {
		return 0, repository.ErrTokenInvalid
	}
	delete(f.tokens, oldHash)
	f.tokens[newHash] = uid
	return uid, nil
}

func (f *fakeTokens) RevokeByHash(ctx context.Context, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, hash)
	return nil
}

func (f *fakeTokens) RevokeAllForUser(ctx context.Context, userID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for h, uid := range f.tokens {
		if uid == userID {
			delete(f.tokens, h)
		}
	}
	return nil
}
