package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"

	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/model"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
		_ = db.Close()
	})
	return NewStore(db), mock
}

func utc(h, m int) time.Time { return time.Date(2024, 6, 1, h, m, 0, 0, time.UTC) }

var resCols = []string{"id", "room_id", "user_id", "client_name", "start_time", "end_time", "status", "created_at", "cancelled_at"}

func roomRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "description", "capacity", "is_active"}).
		AddRow(int64(1), "Sala 101", nil, int64(10), true)
}

func lockRoomQuery() string {
	return regexp.QuoteMeta("SELECT "+roomColumns+" FROM rooms WHERE id = ? FOR UPDATE")
}

func TestFindOverlappingPassesEndThenStart(t *testing.T) {
	s, mock := newMockStore(t)
	start, end := utc(10, 0), utc(12, 0)

	mock.ExpectBegin()
	mock.ExpectQuery(`WHERE room_id = \? AND status = \? AND start_time < \? AND end_time > \?`).
		WithArgs(int64(1), "reserved", end, start).
		WillReturnRows(sqlmock.NewRows(resCols).
			AddRow(int64(9), int64(1), int64(2), "bob", utc(11, 0), utc(13, 0), "reserved", utc(8, 0), nil))
	mock.ExpectQuery(`WHERE room_id = \? AND status = \? AND start_time < \? AND end_time > \?`).
		WithArgs(int64(1), "reserved", utc(14, 0), utc(13, 0)).
		WillReturnRows(sqlmock.NewRows(resCols))
	mock.ExpectCommit()

	err := s.InTx(context.Background(), func(tx ReservationTx) error {
		hit, err := tx.FindOverlapping(context.Background(), 1, start, end)
		if err != nil {
			return err
		}
		if hit == nil || hit.ID != 9 || hit.Status != model.StatusReserved || hit.CancelledAt != nil {
			t.Errorf("overlap = %+v", hit)
		}
		hit, err = tx.FindOverlapping(context.Background(), 1, utc(13, 0), utc(14, 0))
		if err != nil {
			return err
		}
		if hit != nil {
			t.Errorf("free slot reported overlap %+v", hit)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestBookingTransactionLocksRoomThenInserts(t *testing.T) {
	s, mock := newMockStore(t)
	r := model.Reservation{
		RoomID: 1, UserID: 2, ClientName: "alice",
		StartTime: utc(10, 0), EndTime: utc(11, 0), Status: model.StatusReserved, CreatedAt: utc(8, 0),
	}

	mock.ExpectBegin()
	mock.ExpectQuery(lockRoomQuery()).WithArgs(int64(1)).WillReturnRows(roomRows())
	mock.ExpectExec(`INSERT INTO reservations`).
		WithArgs(int64(1), int64(2), "alice", utc(10, 0), utc(11, 0), "reserved", utc(8, 0)).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectCommit()

	err := s.InTx(context.Background(), func(tx ReservationTx) error {
		room, err := tx.LockRoom(context.Background(), 1)
		if err != nil {
			return err
		}
		if !room.IsActive || room.Name != "Sala 101" {
			t.Errorf("room = %+v", room)
		}
		return tx.InsertReservation(context.Background(), &r)
	})
	if err != nil {
		t.Fatal(err)
	}
	if r.ID != 42 {
		t.Fatalf("inserted id = %d", r.ID)
	}
}

func TestLockRoomMissing(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery(lockRoomQuery()).WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "capacity", "is_active"}))
	mock.ExpectRollback()

	err := s.InTx(context.Background(), func(tx ReservationTx) error {
		_, err := tx.LockRoom(context.Background(), 7)
		return err
	})
	if !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("err = %v, want ErrRoomNotFound", err)
	}
}

func TestMarkCancelledGuardsOnReserved(t *testing.T) {
	s, mock := newMockStore(t)
	at := utc(9, 30)
	const q = `UPDATE reservations SET status = \?, cancelled_at = \? WHERE id = \? AND status = \?`

	mock.ExpectBegin()
	mock.ExpectExec(q).WithArgs("cancelled", at, int64(5), "reserved").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("cancelled", at, int64(5), "reserved").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := s.InTx(context.Background(), func(tx ReservationTx) error {
		ok, err := tx.MarkCancelled(context.Background(), 5, at)
		if err != nil || !ok {
			t.Errorf("first cancel = %v, %v", ok, err)
		}
		ok, err = tx.MarkCancelled(context.Background(), 5, at)
		if err != nil || ok {
			t.Errorf("second cancel = %v, %v; want no row changed", ok, err)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestOccupiedRoomsClosedIntervalAndIDs(t *testing.T) {
	s, mock := newMockStore(t)
	at := utc(10, 0)

	mock.ExpectQuery(`WHERE status = \? AND start_time <= \? AND end_time >= \? AND room_id IN \(\?,\?,\?\)$`).
		WithArgs("reserved", at, at, int64(1), int64(2), int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"room_id"}).AddRow(int64(2)))
	mock.ExpectQuery(`WHERE status = \? AND start_time <= \? AND end_time >= \?$`).
		WithArgs("reserved", at, at).
		WillReturnRows(sqlmock.NewRows([]string{"room_id"}).AddRow(int64(1)).AddRow(int64(4)))

	got, err := s.OccupiedRooms(context.Background(), at, 1, 2, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || !got[2] {
		t.Fatalf("occupied = %v", got)
	}
	got, err = s.OccupiedRooms(context.Background(), at)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || !got[1] || !got[4] {
		t.Fatalf("occupied = %v", got)
	}
}

func TestDailyCountsBoundsAndStatus(t *testing.T) {
	s, mock := newMockStore(t)
	from := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 5, 12, 0, 0, 0, 0, time.UTC)
	day := func(d int) time.Time { return time.Date(2024, 5, d, 0, 0, 0, 0, time.UTC) }

	mock.ExpectQuery(`FROM reservations WHERE status = \? AND start_time >= \? AND start_time < \? GROUP BY day ORDER BY day`).
		WithArgs("reserved", from, to).
		WillReturnRows(sqlmock.NewRows([]string{"day", "count"}).AddRow(day(10), int64(2)).AddRow(day(11), int64(1)))
	mock.ExpectQuery(`FROM reservations GROUP BY day ORDER BY day`).
		WillReturnRows(sqlmock.NewRows([]string{"day", "count"}).AddRow(day(10), int64(3)))

	rows, err := s.DailyCounts(context.Background(), &from, &to, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[0].Count != 2 || !rows[1].Date.Equal(day(11)) {
		t.Fatalf("rows = %+v", rows)
	}
	rows, err = s.DailyCounts(context.Background(), nil, nil, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Count != 3 {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestInTxRetriesDeadlock(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(lockRoomQuery()).WithArgs(int64(1)).WillReturnError(&mysql.MySQLError{Number: 1213, Message: "Deadlock found"})
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectQuery(lockRoomQuery()).WithArgs(int64(1)).WillReturnError(&mysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"})
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectQuery(lockRoomQuery()).WithArgs(int64(1)).WillReturnRows(roomRows())
	mock.ExpectCommit()

	calls := 0
	err := s.InTx(context.Background(), func(tx ReservationTx) error {
		calls++
		_, err := tx.LockRoom(context.Background(), 1)
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 3 {
		t.Fatalf("fn ran %d times, want 3", calls)
	}
}

func TestInTxGivesUpAfterMaxAttempts(t *testing.T) {
	s, mock := newMockStore(t)
	s.MaxAttempts = 2
	for i := 0; i < 2; i++ {
		mock.ExpectBegin()
		mock.ExpectQuery(lockRoomQuery()).WillReturnError(&mysql.MySQLError{Number: 1213})
		mock.ExpectRollback()
	}
	err := s.InTx(context.Background(), func(tx ReservationTx) error {
		_, err := tx.LockRoom(context.Background(), 1)
		return err
	})
	if !IsRetryable(err) {
		t.Fatalf("err = %v, want the deadlock after the last attempt", err)
	}
}

func TestInTxDoesNotRetryOtherErrors(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO reservations`).WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()

	calls := 0
	err := s.InTx(context.Background(), func(tx ReservationTx) error {
		calls++
		return tx.InsertReservation(context.Background(), &model.Reservation{
			RoomID: 1, UserID: 1, StartTime: utc(10, 0), EndTime: utc(11, 0), Status: model.StatusReserved, CreatedAt: utc(8, 0),
		})
	})
	if !IsDuplicate(err) || calls != 1 {
		t.Fatalf("err = %v after %d calls", err, calls)
	}
}
