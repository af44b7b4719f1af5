package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/room-equipment-booking/internal/model"
)

// MaintenanceRepo provides persistence for maintenance windows.
// Windows are managed by administrators and consumed read-only by the
// availability checker.
type MaintenanceRepo struct {
	db *sql.DB
}

// NewMaintenanceRepo returns a new MaintenanceRepo bound to the given database.
func NewMaintenanceRepo(db *sql.DB) *MaintenanceRepo { return &MaintenanceRepo{db: db} }

// ListForRoom returns all windows of a room, newest start first.
func (r *MaintenanceRepo) ListForRoom(ctx context.Context, roomID uint64) ([]model.MaintenanceWindow, error) {
	const q = `SELECT id, room_id, start_time, end_time, reason, is_active
	           FROM maintenance_windows WHERE room_id = ? ORDER BY start_time DESC`
	rows, err := r.db.QueryContext(ctx, q, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.MaintenanceWindow, 0)
	for rows.Next() {
		var (
			w      model.MaintenanceWindow
			reason sql.NullString
		)
		if err := rows.Scan(&w.ID, &w.RoomID, &w.StartTime, &w.EndTime, &reason, &w.IsActive); err != nil {
			return nil, err
		}
		if reason.Valid {
			re := reason.String
			w.Reason = &re
		}
		w.StartTime = w.StartTime.UTC()
		w.EndTime = w.EndTime.UTC()
		out = append(out, w)
	}
	return out, rows.Err()
}

// Create inserts an active window and populates its generated ID.
func (r *MaintenanceRepo) Create(ctx context.Context, w *model.MaintenanceWindow) error {
	var reason any
	if w.Reason != nil {
		reason = *w.Reason
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO maintenance_windows (room_id, start_time, end_time, reason, is_active) VALUES (?, ?, ?, ?, 1)`,
		w.RoomID, w.StartTime.UTC(), w.EndTime.UTC(), reason)
	if err != nil {
		return Classify(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	w.ID = uint64(id)
	w.IsActive = true
	return nil
}

// Deactivate turns a window off without deleting it, so past blocks
// stay visible in the room's history.
func (r *MaintenanceRepo) Deactivate(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE maintenance_windows SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return Classify(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		var exists int
		if scanErr := r.db.QueryRowContext(ctx,
			`SELECT 1 FROM maintenance_windows WHERE id = ?`, id).Scan(&exists); scanErr != nil {
			return Classify(scanErr)
		}
	}
	return nil
}
