package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/room-equipment-booking/internal/model"
	"github.com/iliyamo/room-equipment-booking/internal/utils"
)

// Seed inserts a starter data set on an empty database: one
// administrator, one regular user and two rooms with a projector each.
// It is a no-op when any user already exists, so restarts never
// duplicate rows.  Intended for dev and test environments.
func Seed(ctx context.Context, db *sql.DB, bcryptCost int) error {
	var userCount int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&userCount); err != nil {
		return fmt.Errorf("seed: count users: %w", err)
	}
	if userCount > 0 {
		return nil
	}

	adminHash, err := utils.HashPassword("Admin123!", bcryptCost)
	if err != nil {
		return fmt.Errorf("seed: hash admin password: %w", err)
	}
	userHash, err := utils.HashPassword("User123!", bcryptCost)
	if err != nil {
		return fmt.Errorf("seed: hash user password: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed: begin: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const insertUser = `INSERT INTO users (email, password_hash, display_name, role) VALUES (?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, insertUser, "admin@example.com", adminHash, "Administrator", model.RoleAdmin); err != nil {
		return fmt.Errorf("seed: insert admin: %w", err)
	}
	if _, err := tx.ExecContext(ctx, insertUser, "user@example.com", userHash, "Demo User", model.RoleUser); err != nil {
		return fmt.Errorf("seed: insert user: %w", err)
	}

	const insertRoom = `INSERT INTO rooms (name, capacity, equipment_description, is_active) VALUES (?, ?, ?, 1)`
	res, err := tx.ExecContext(ctx, insertRoom, "Conference Room A", 12, "Whiteboard, video conferencing")
	if err != nil {
		return fmt.Errorf("seed: insert room A: %w", err)
	}
	roomA, err := res.LastInsertId()
	if err != nil {
		return err
	}
	res, err = tx.ExecContext(ctx, insertRoom, "Meeting Room B", 6, "Whiteboard")
	if err != nil {
		return fmt.Errorf("seed: insert room B: %w", err)
	}
	roomB, err := res.LastInsertId()
	if err != nil {
		return err
	}

	const insertEquipment = `INSERT INTO equipment (name, room_id) VALUES (?, ?)`
	if _, err := tx.ExecContext(ctx, insertEquipment, "Projector A", roomA); err != nil {
		return fmt.Errorf("seed: insert equipment A: %w", err)
	}
	if _, err := tx.ExecContext(ctx, insertEquipment, "Projector B", roomB); err != nil {
		return fmt.Errorf("seed: insert equipment B: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed: commit: %w", err)
	}
	committed = true
	return nil
}
