// Package repository defines typed access to the booking schema.  The
// sentinel values and the driver-error classification below let higher
// layers distinguish failure scenarios without inspecting SQL errors
// themselves: ErrNotFound maps to HTTP 404, ErrTxConflict is the
// retryable commit-time serialization failure, and ErrReferenceMissing
// surfaces a stale foreign key as a missing referenced resource.
package repository

import (
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers should translate this into an
// HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrTxConflict is returned when a transaction loses a serialization
// race (deadlock, lock wait timeout).  The operation did not commit and
// may be retried by the caller.
var ErrTxConflict = errors.New("transaction conflict")

// ErrReferenceMissing is returned when an insert or update names a row
// that no longer exists (foreign key violation).
var ErrReferenceMissing = errors.New("referenced row missing")

// ErrDuplicate is returned when a unique constraint rejects a write,
// such as registering an email twice or reviewing a room twice.
var ErrDuplicate = errors.New("duplicate row")

// ErrInUse is returned when a delete is blocked because other rows
// still reference the target (restrict-on-delete).
var ErrInUse = errors.New("row still referenced")

// MySQL server error numbers the gateway cares about.
const (
	mysqlErrDuplicateEntry  = 1062
	mysqlErrLockWaitTimeout = 1205
	mysqlErrDeadlock        = 1213
	mysqlErrRowIsReferenced = 1451
	mysqlErrNoReferencedRow = 1452
)

// Classify maps driver-level errors onto the repository sentinels.  Any
// error it does not recognize is returned unchanged so unexpected
// failures stay visible to callers.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case mysqlErrDeadlock, mysqlErrLockWaitTimeout:
			return ErrTxConflict
		case mysqlErrRowIsReferenced:
			return ErrInUse
		case mysqlErrNoReferencedRow:
			return ErrReferenceMissing
		case mysqlErrDuplicateEntry:
			return ErrDuplicate
		}
	}
	return err
}
