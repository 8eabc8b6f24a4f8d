package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/model"
)

// RoomRepo encapsulates the queries administrators use to manage
// rooms.  Rooms are never deleted; Update with IsActive=false is the
// soft delete.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo constructs a RoomRepo with the provided DB handle.
func NewRoomRepo(db *sql.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

const roomColumns = "id, name, description, capacity, is_active"

// Create inserts a new room and populates its ID.
func (r *RoomRepo) Create(ctx context.Context, room *model.Room) error {
	const q = "INSERT INTO rooms (name, description, capacity, is_active) VALUES (?, ?, ?, ?)"
	res, err := r.db.ExecContext(ctx, q, room.Name, room.Description, room.Capacity, room.IsActive)
	if err != nil {
		if IsDuplicate(err) {
			return ErrRoomNameExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	room.ID = uint64(id)
	return nil
}

// Update overwrites every mutable column of the room.
func (r *RoomRepo) Update(ctx context.Context, room *model.Room) error {
	const q = "UPDATE rooms SET name = ?, description = ?, capacity = ?, is_active = ? WHERE id = ?"
	res, err := r.db.ExecContext(ctx, q, room.Name, room.Description, room.Capacity, room.IsActive, room.ID)
	if err != nil {
		if IsDuplicate(err) {
			return ErrRoomNameExists
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// unchanged rows report 0 as well
		if _, err := r.GetByID(ctx, room.ID); err != nil {
			return err
		}
	}
	return nil
}

// GetByID fetches a room by its ID.  It returns ErrRoomNotFound if no
// row is found.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+roomColumns+" FROM rooms WHERE id = ?", id)
	room, err := scanRoom(row)
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// ListAll returns all rooms ordered by name.
func (r *RoomRepo) ListAll(ctx context.Context) ([]model.Room, error) {
	return queryRooms(ctx, r.db, "SELECT "+roomColumns+" FROM rooms ORDER BY name")
}

// ListActive returns the rooms that accept bookings, ordered by name.
func (r *RoomRepo) ListActive(ctx context.Context) ([]model.Room, error) {
	return queryRooms(ctx, r.db, "SELECT "+roomColumns+" FROM rooms WHERE is_active = 1 ORDER BY name")
}

// Count returns the number of rooms.
func (r *RoomRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM rooms").Scan(&n)
	return n, err
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryRooms(ctx context.Context, q queryer, query string, args ...any) ([]model.Room, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, room)
	}
	return out, rows.Err()
}

func scanRoom(s rowScanner) (model.Room, error) {
	var (
		room model.Room
		desc sql.NullString
	)
	if err := s.Scan(&room.ID, &room.Name, &desc, &room.Capacity, &room.IsActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Room{}, ErrRoomNotFound
		}
		return model.Room{}, err
	}
	if desc.Valid {
		d := desc.String
		room.Description = &d
	}
	return room, nil
}
