package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
)

func TestIsDuplicate(t *testing.T) {
	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'a' for key 'usuario.uq_usuario_username'"}
	if !IsDuplicate(dup) || !IsDuplicate(fmt.Errorf("insert: %w", dup)) {
		t.Fatal("1062 should be reported as duplicate, also when wrapped")
	}
	if IsDuplicate(&mysql.MySQLError{Number: 1213}) || IsDuplicate(errors.New("1062")) {
		t.Fatal("only a 1062 MySQLError is a duplicate")
	}
	if got := duplicateKey(dup); got != "usuario.uq_usuario_username" {
		t.Fatalf("duplicateKey = %q", got)
	}
}

func TestIsRetryable(t *testing.T) {
	for _, n := range []uint16{1205, 1213} {
		if !IsRetryable(fmt.Errorf("wrapped: %w", &mysql.MySQLError{Number: n})) {
			t.Fatalf("error %d should be retryable", n)
		}
	}
	if IsRetryable(&mysql.MySQLError{Number: 1062}) || IsRetryable(nil) {
		t.Fatal("duplicates and nil are not retryable")
	}
}
