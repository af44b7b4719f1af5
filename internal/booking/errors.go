package booking

import (
	"errors"
	"fmt"

	"github.com/iliyamo/room-equipment-booking/internal/repository"
)

// ConflictKind names the reason a candidate window is unavailable.
type ConflictKind string

const (
	ConflictInvalidRange    ConflictKind = "InvalidRange"
	ConflictPastTime        ConflictKind = "PastTime"
	ConflictNothingSelected ConflictKind = "NothingSelected"
	ConflictRoomBusy        ConflictKind = "RoomBusy"
	ConflictMaintenance     ConflictKind = "Maintenance"
	ConflictEquipmentBusy   ConflictKind = "EquipmentBusy"
)

// ValidationError reports a rejected input field.  It is raised before
// any state mutation and is never retryable.
type ValidationError struct {
	Field  string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Detail)
}

// ConflictError reports that the requested window collides with
// existing state.  OffendingID identifies the conflicting reservation
// or maintenance window when one exists.
type ConflictError struct {
	Kind        ConflictKind
	OffendingID uint64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("reservation conflict: %s", e.Kind)
}

// NotFoundError reports a missing reservation or referenced resource.
type NotFoundError struct {
	Entity string
	ID     uint64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// TransitionError reports a lifecycle move the state graph forbids,
// such as approving an already-rejected reservation.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}

// UnauthorizedError reports that the actor may not perform the action.
type UnauthorizedError struct {
	Action string
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("not authorized to %s", e.Action)
}

// TransientError wraps a retryable infrastructure failure, typically a
// commit-time serialization conflict.  The operation did not commit;
// the caller may retry it.
type TransientError struct {
	Cause error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient failure: %v", e.Cause)
}

func (e *TransientError) Unwrap() error { return e.Cause }

// fromStore translates gateway sentinels into engine errors.  A lost
// serialization race becomes retryable; a stale foreign key surfaces as
// the missing referenced resource.
func fromStore(err error, entity string, id uint64) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrTxConflict):
		return &TransientError{Cause: err}
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, repository.ErrReferenceMissing):
		return &NotFoundError{Entity: entity, ID: id}
	default:
		return err
	}
}
