package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/room-equipment-booking/internal/model"
)

// EquipmentRepo provides CRUD operations for loanable equipment items.
type EquipmentRepo struct {
	db *sql.DB
}

// NewEquipmentRepo returns a new EquipmentRepo bound to the given database.
func NewEquipmentRepo(db *sql.DB) *EquipmentRepo { return &EquipmentRepo{db: db} }

// List returns all equipment items ordered by id.
func (r *EquipmentRepo) List(ctx context.Context) ([]model.Equipment, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, room_id FROM equipment ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Equipment, 0)
	for rows.Next() {
		var e model.Equipment
		if err := rows.Scan(&e.ID, &e.Name, &e.RoomID); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetByID fetches one equipment item.  Returns ErrNotFound when absent.
func (r *EquipmentRepo) GetByID(ctx context.Context, id uint64) (model.Equipment, error) {
	var e model.Equipment
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, room_id FROM equipment WHERE id = ?`, id).
		Scan(&e.ID, &e.Name, &e.RoomID)
	return e, Classify(err)
}

// CountExistingTx counts how many of the given ids exist, inside a
// transaction.  The booking engine uses it to reject requests that name
// unknown equipment before any write happens.
func (r *EquipmentRepo) CountExistingTx(ctx context.Context, tx *sql.Tx, ids []uint64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	q := `SELECT COUNT(*) FROM equipment WHERE id IN (` + strings.Join(placeholders, ",") + `)`
	var n int
	if err := tx.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Create inserts an equipment item and populates its generated ID.
func (r *EquipmentRepo) Create(ctx context.Context, e *model.Equipment) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO equipment (name, room_id) VALUES (?, ?)`, e.Name, e.RoomID)
	if err != nil {
		return Classify(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return nil
}

// Update rewrites an equipment item.  Returns ErrNotFound when absent.
func (r *EquipmentRepo) Update(ctx context.Context, e *model.Equipment) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE equipment SET name = ?, room_id = ? WHERE id = ?`, e.Name, e.RoomID, e.ID)
	if err != nil {
		return Classify(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if _, getErr := r.GetByID(ctx, e.ID); getErr != nil {
			return getErr
		}
	}
	return nil
}

// Delete removes an equipment item.  Returns ErrNotFound when absent.
func (r *EquipmentRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM equipment WHERE id = ?`, id)
	if err != nil {
		return Classify(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
