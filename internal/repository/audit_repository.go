package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/room-equipment-booking/internal/model"
)

// AuditRepo appends immutable audit records.  It deliberately exposes
// no update or delete methods; the table is append-only and every row
// is written in the same transaction as the mutation it describes.
type AuditRepo struct {
	db *sql.DB
}

// NewAuditRepo returns a new AuditRepo bound to the given database.
func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{db: db} }

// AppendTx writes one audit row within the given transaction and
// populates the generated ID on the record.
func (r *AuditRepo) AppendTx(ctx context.Context, tx *sql.Tx, entry *model.AuditLog) error {
	const q = `INSERT INTO audit_logs (user_id, entity_type, entity_id, action, details, action_timestamp)
	           VALUES (?, ?, ?, ?, ?, ?)`
	var userID any
	if entry.UserID != nil {
		userID = *entry.UserID
	}
	var entityID any
	if entry.EntityID != nil {
		entityID = *entry.EntityID
	}
	var details any
	if entry.Details != nil {
		details = *entry.Details
	}
	res, err := tx.ExecContext(ctx, q, userID, entry.EntityType, entityID,
		entry.Action, details, entry.Timestamp.UTC())
	if err != nil {
		return Classify(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	entry.ID = uint64(id)
	return nil
}

// ListForEntity returns the audit trail of one entity, oldest first.
// Administrators use this to inspect how a reservation reached its
// current state.
func (r *AuditRepo) ListForEntity(ctx context.Context, entityType string, entityID uint64) ([]model.AuditLog, error) {
	const q = `SELECT id, user_id, entity_type, entity_id, action, details, action_timestamp
	           FROM audit_logs WHERE entity_type = ? AND entity_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, entityType, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.AuditLog, 0)
	for rows.Next() {
		var (
			entry    model.AuditLog
			userID   sql.NullInt64
			entityN  sql.NullInt64
			details  sql.NullString
		)
		if err := rows.Scan(&entry.ID, &userID, &entry.EntityType, &entityN,
			&entry.Action, &details, &entry.Timestamp); err != nil {
			return nil, err
		}
		if userID.Valid {
			uid := uint64(userID.Int64)
			entry.UserID = &uid
		}
		if entityN.Valid {
			eid := uint64(entityN.Int64)
			entry.EntityID = &eid
		}
		if details.Valid {
			d := details.String
			entry.Details = &d
		}
		entry.Timestamp = entry.Timestamp.UTC()
		out = append(out, entry)
	}
	return out, rows.Err()
}
