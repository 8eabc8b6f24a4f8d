// Package repository holds the MySQL-backed data access layer and the
// sentinel errors shared across it.  Handlers and the service layer
// compare against these values with errors.Is instead of inspecting
// driver errors directly.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrReservationNotFound = errors.New("reservation not found")

	ErrEmailExists    = errors.New("email already exists")
	ErrUsernameExists = errors.New("username already exists")
	ErrRoomNameExists = errors.New("room name already exists")

	// ErrTokenInvalid covers unknown, revoked and expired refresh tokens.
	ErrTokenInvalid = errors.New("refresh token invalid")
)

// MySQL server error numbers the repository reacts to.
const (
	mysqlDuplicateEntry  = 1062
	mysqlLockWaitTimeout = 1205
	mysqlDeadlock        = 1213
)

// IsDuplicate reports whether err is a unique-key violation.
func IsDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

// IsRetryable reports whether err is a deadlock or lock wait timeout,
// after which the whole transaction may be run again.
func IsRetryable(err error) bool {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return false
	}
	return me.Number == mysqlDeadlock || me.Number == mysqlLockWaitTimeout
}

// duplicateKey returns the index name from a 1062 message such as
// "Duplicate entry 'x' for key 'usuario.uq_usuario_email'".
func duplicateKey(err error) string {
	var me *mysql.MySQLError
	if !errors.As(err, &me) || me.Number != mysqlDuplicateEntry {
		return ""
	}
	const marker = "for key '"
	i := strings.Index(me.Message, marker)
	if i < 0 {
		return ""
	}
	return strings.TrimSuffix(me.Message[i+len(marker):], "'")
}
