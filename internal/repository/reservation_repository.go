package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/model"
)

// Store is the MySQL implementation of BookingStore.  Reservation
// timestamps are stored as UTC DATETIME values.
type Store struct {
	db *sql.DB
	// MaxAttempts bounds how often InTx reruns a transaction that hit
	// a deadlock or lock wait timeout.
	MaxAttempts int
}

// NewStore returns a Store bound to db.
func NewStore(db *sql.DB) *Store { return &Store{db: db, MaxAttempts: 3} }

var _ BookingStore = (*Store)(nil)

const reservationColumns = "id, room_id, user_id, client_name, start_time, end_time, status, created_at, cancelled_at"

// InTx runs fn under READ COMMITTED so every read after LockRoom sees
// the rows committed by the transaction that held the lock before.
func (s *Store) InTx(ctx context.Context, fn func(tx ReservationTx) error) error {
	attempts := s.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 1; i <= attempts; i++ {
		err = s.runTx(ctx, fn)
		if err == nil || !IsRetryable(err) || ctx.Err() != nil {
			return err
		}
		log.Printf("repository: transaction attempt %d/%d aborted: %v", i, attempts, err)
		time.Sleep(time.Duration(i*20) * time.Millisecond)
	}
	return err
}

func (s *Store) runTx(ctx context.Context, fn func(tx ReservationTx) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(&mysqlTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetRoom fetches a room without locking it.
func (s *Store) GetRoom(ctx context.Context, roomID uint64) (model.Room, error) {
	return scanRoom(s.db.QueryRowContext(ctx, "SELECT "+roomColumns+" FROM rooms WHERE id = ?", roomID))
}

// ListActiveRooms returns active rooms ordered by name.
func (s *Store) ListActiveRooms(ctx context.Context) ([]model.Room, error) {
	return queryRooms(ctx, s.db, "SELECT "+roomColumns+" FROM rooms WHERE is_active = 1 ORDER BY name")
}

// OccupiedRooms uses a closed interval on both ends.  With no roomIDs
// every room is considered.
func (s *Store) OccupiedRooms(ctx context.Context, at time.Time, roomIDs ...uint64) (map[uint64]bool, error) {
	q := "SELECT DISTINCT room_id FROM reservations WHERE status = ? AND start_time <= ? AND end_time >= ?"
	args := []any{model.StatusReserved, at.UTC(), at.UTC()}
	if len(roomIDs) > 0 {
		q += " AND room_id IN (?" + strings.Repeat(",?", len(roomIDs)-1) + ")"
		for _, id := range roomIDs {
			args = append(args, id)
		}
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[uint64]bool)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}

// GetReservation fetches one reservation.
func (s *Store) GetReservation(ctx context.Context, id uint64) (model.Reservation, error) {
	return scanReservation(s.db.QueryRowContext(ctx,
		"SELECT "+reservationColumns+" FROM reservations WHERE id = ?", id))
}

// ListReservationsByUser returns the user's reservations ordered by
// start time.
func (s *Store) ListReservationsByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	return s.queryReservations(ctx,
		"SELECT "+reservationColumns+" FROM reservations WHERE user_id = ? ORDER BY start_time, id", userID)
}

// ListReservations returns every reservation ordered by start time.
func (s *Store) ListReservations(ctx context.Context) ([]model.Reservation, error) {
	return s.queryReservations(ctx,
		"SELECT "+reservationColumns+" FROM reservations ORDER BY start_time, id")
}

// DailyCounts builds the report query.  Bounds are passed through as
// given; callers widen the end date to cover the whole day.
func (s *Store) DailyCounts(ctx context.Context, from, to *time.Time, includeCancelled bool) ([]model.DailyCount, error) {
	var (
		where []string
		args  []any
	)
	if !includeCancelled {
		where = append(where, "status = ?")
		args = append(args, model.StatusReserved)
	}
	if from != nil {
		where = append(where, "start_time >= ?")
		args = append(args, from.UTC())
	}
	if to != nil {
		where = append(where, "start_time < ?")
		args = append(args, to.UTC())
	}
	q := "SELECT DATE(start_time) AS day, COUNT(*) FROM reservations"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " GROUP BY day ORDER BY day"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("daily counts: %w", err)
	}
	defer rows.Close()
	var out []model.DailyCount
	for rows.Next() {
		var dc model.DailyCount
		if err := rows.Scan(&dc.Date, &dc.Count); err != nil {
			return nil, err
		}
		dc.Date = dc.Date.UTC()
		out = append(out, dc)
	}
	return out, rows.Err()
}

func (s *Store) queryReservations(ctx context.Context, q string, args ...any) ([]model.Reservation, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// mysqlTx implements ReservationTx on a *sql.Tx.
type mysqlTx struct{ tx *sql.Tx }

func (t *mysqlTx) LockRoom(ctx context.Context, roomID uint64) (model.Room, error) {
	return scanRoom(t.tx.QueryRowContext(ctx,
		"SELECT "+roomColumns+" FROM rooms WHERE id = ? FOR UPDATE", roomID))
}

func (t *mysqlTx) GetUser(ctx context.Context, userID uint64) (model.User, error) {
	return scanUser(t.tx.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM usuario WHERE id = ?", userID))
}

func (t *mysqlTx) FindOverlapping(ctx context.Context, roomID uint64, start, end time.Time) (*model.Reservation, error) {
	const q = "SELECT " + reservationColumns + ` FROM reservations
		WHERE room_id = ? AND status = ? AND start_time < ? AND end_time > ?
		ORDER BY start_time LIMIT 1`
	r, err := scanReservation(t.tx.QueryRowContext(ctx, q, roomID, model.StatusReserved, end.UTC(), start.UTC()))
	if errors.Is(err, ErrReservationNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (t *mysqlTx) InsertReservation(ctx context.Context, r *model.Reservation) error {
	const q = `INSERT INTO reservations (room_id, user_id, client_name, start_time, end_time, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := t.tx.ExecContext(ctx, q, r.RoomID, r.UserID, r.ClientName,
		r.StartTime.UTC(), r.EndTime.UTC(), r.Status, r.CreatedAt.UTC())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	r.ID = uint64(id)
	return nil
}

func (t *mysqlTx) LockReservation(ctx context.Context, id uint64) (model.Reservation, error) {
	return scanReservation(t.tx.QueryRowContext(ctx,
		"SELECT "+reservationColumns+" FROM reservations WHERE id = ? FOR UPDATE", id))
}

func (t *mysqlTx) MarkCancelled(ctx context.Context, id uint64, at time.Time) (bool, error) {
	res, err := t.tx.ExecContext(ctx,
		"UPDATE reservations SET status = ?, cancelled_at = ? WHERE id = ? AND status = ?",
		model.StatusCancelled, at.UTC(), id, model.StatusReserved)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func scanReservation(s rowScanner) (model.Reservation, error) {
	var (
		r         model.Reservation
		status    string
		cancelled sql.NullTime
	)
	err := s.Scan(&r.ID, &r.RoomID, &r.UserID, &r.ClientName, &r.StartTime, &r.EndTime,
		&status, &r.CreatedAt, &cancelled)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Reservation{}, ErrReservationNotFound
	}
	if err != nil {
		return model.Reservation{}, err
	}
	r.Status = model.ReservationStatus(status)
	r.StartTime = r.StartTime.UTC()
	r.EndTime = r.EndTime.UTC()
	r.CreatedAt = r.CreatedAt.UTC()
	if cancelled.Valid {
		at := cancelled.Time.UTC()
		r.CancelledAt = &at
	}
	return r, nil
}
