package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/room-equipment-booking/internal/model"
)

// RoomRepo provides CRUD operations for rooms.  Rooms are never
// deleted; deactivation hides them from new reservations while keeping
// history intact.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo returns a new RoomRepo bound to the given database.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

const roomColumns = `id, name, capacity, equipment_description, is_active`

func scanRoom(scan func(...any) error) (model.Room, error) {
	var (
		room model.Room
		desc sql.NullString
	)
	err := scan(&room.ID, &room.Name, &room.Capacity, &desc, &room.IsActive)
	if err != nil {
		return room, err
	}
	if desc.Valid {
		d := desc.String
		room.EquipmentDescription = &d
	}
	return room, nil
}

// List returns all rooms, optionally including deactivated ones.
func (r *RoomRepo) List(ctx context.Context, includeInactive bool) ([]model.Room, error) {
	q := `SELECT ` + roomColumns + ` FROM rooms`
	if !includeInactive {
		q += ` WHERE is_active = 1`
	}
	q += ` ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Room, 0)
	for rows.Next() {
		room, err := scanRoom(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, room)
	}
	return out, rows.Err()
}

// GetByID fetches one room.  Returns ErrNotFound when it does not exist.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (model.Room, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = ?`, id)
	room, err := scanRoom(row.Scan)
	return room, Classify(err)
}

// GetTx fetches one room inside a transaction so the booking engine can
// verify that the room is active before inserting a reservation.
func (r *RoomRepo) GetTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Room, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = ?`, id)
	room, err := scanRoom(row.Scan)
	return room, Classify(err)
}

// Create inserts a room and populates its generated ID.  New rooms are
// always active.
func (r *RoomRepo) Create(ctx context.Context, room *model.Room) error {
	var desc any
	if room.EquipmentDescription != nil {
		desc = *room.EquipmentDescription
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO rooms (name, capacity, equipment_description, is_active) VALUES (?, ?, ?, 1)`,
		room.Name, room.Capacity, desc)
	if err != nil {
		return Classify(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	room.ID = uint64(id)
	room.IsActive = true
	return nil
}

// Update rewrites a room's mutable fields.  Returns ErrNotFound when
// the room does not exist.
func (r *RoomRepo) Update(ctx context.Context, room *model.Room) error {
	var desc any
	if room.EquipmentDescription != nil {
		desc = *room.EquipmentDescription
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE rooms SET name = ?, capacity = ?, equipment_description = ?, is_active = ? WHERE id = ?`,
		room.Name, room.Capacity, desc, room.IsActive, room.ID)
	if err != nil {
		return Classify(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if _, getErr := r.GetByID(ctx, room.ID); getErr != nil {
			return getErr
		}
	}
	return nil
}

// Deactivate soft-deletes a room.  Existing reservations keep
// referencing it; only new ones are blocked.
func (r *RoomRepo) Deactivate(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE rooms SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return Classify(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
	}
	return nil
}
