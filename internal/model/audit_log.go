package model

import "time"

// Audit actions recorded by the booking engine.
const (
	AuditActionCreate  = "Create"
	AuditActionApprove = "Approve"
	AuditActionReject  = "Reject"
	AuditActionCancel  = "Cancel"
)

// AuditLog is one append-only record of a state-changing action.  Rows
// are written in the same transaction as the mutation they describe and
// are never updated or deleted.
//
// Fields:
//  ID         - primary key identifier.
//  UserID     - acting user, nil for system actions or deleted actors.
//  EntityType - kind of entity acted on, e.g. "Reservation".
//  EntityID   - identifier of the entity, when applicable.
//  Action     - one of the AuditAction constants.
//  Details    - optional human-readable summary.
//  Timestamp  - UTC time the action was recorded, assigned on persist.
type AuditLog struct {
	ID         uint64    // audit_logs.id
	UserID     *uint64   // audit_logs.user_id (nullable)
	EntityType string    // audit_logs.entity_type
	EntityID   *uint64   // audit_logs.entity_id (nullable)
	Action     string    // audit_logs.action
	Details    *string   // audit_logs.details (nullable)
	Timestamp  time.Time // audit_logs.action_timestamp
}
