// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services and handlers to distinguish between different failure
// scenarios without inspecting driver errors themselves.
package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a lookup by key matches no row.
var ErrNotFound = errors.New("not found")

// ErrInsufficientStock is returned when a seat class does not have enough
// remaining seats for the requested decrement.  It is a business outcome,
// not a fault.
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrTransientConflict marks lock wait timeouts and deadlocks.  The
// operation may succeed if retried.
var ErrTransientConflict = errors.New("transient conflict")

// ErrDuplicate is returned when a unique index rejects a write, e.g. a
// second seat class with the same label on one event.
var ErrDuplicate = errors.New("duplicate")

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a delete or update cannot be
// performed because of conflicting state, such as deleting a seat
// class that already has purchases. Handlers should translate this
// into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// MySQL server error numbers we react to.
const (
	mysqlDuplicateEntry   = 1062
	mysqlLockWaitTimeout  = 1205
	mysqlDeadlock         = 1213
	mysqlRowIsReferenced  = 1451
	mysqlNoReferencedRow  = 1452
)

// mysqlNumber extracts the server error number, or 0 for non-MySQL errors.
func mysqlNumber(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

// classify wraps driver errors in the matching sentinel so callers can use
// errors.Is.  The original error stays in the chain.
func classify(err error) error {
	if err == nil {
		return nil
	}
	switch mysqlNumber(err) {
	case mysqlLockWaitTimeout, mysqlDeadlock:
		return fmt.Errorf("%w: %w", ErrTransientConflict, err)
	case mysqlDuplicateEntry:
		return fmt.Errorf("%w: %w", ErrDuplicate, err)
	case mysqlRowIsReferenced:
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case mysqlNoReferencedRow:
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}

// IsTransient reports whether err is worth retrying as a whole transaction.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransientConflict)
}

// requireAffected turns a statement that matched no row into ErrNotFound.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
