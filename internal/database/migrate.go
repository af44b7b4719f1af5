package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema holds the CREATE TABLE statements in dependency order.  Every
// statement is idempotent so Migrate can run at each startup.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id                   BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		email                VARCHAR(255)    NOT NULL,
		password_hash        VARCHAR(255)    NOT NULL,
		display_name         VARCHAR(100)    NOT NULL,
		role                 ENUM('ADMIN','USER') NOT NULL DEFAULT 'USER',
		google_access_token  TEXT            NULL,
		google_refresh_token TEXT            NULL,
		google_token_expiry  DATETIME        NULL,
		created_at           DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id    BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64)        NOT NULL,
		expires_at DATETIME        NOT NULL,
		revoked_at DATETIME        NULL,
		created_at DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_refresh_tokens_hash (token_hash),
		KEY idx_refresh_tokens_user (user_id),
		CONSTRAINT fk_refresh_tokens_user FOREIGN KEY (user_id)
			REFERENCES users (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS rooms (
		id                    BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		name                  VARCHAR(100)    NOT NULL,
		capacity              INT UNSIGNED    NOT NULL,
		equipment_description VARCHAR(255)    NULL,
		is_active             TINYINT(1)      NOT NULL DEFAULT 1,
		created_at            DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_rooms_name (name)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS equipment (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		name       VARCHAR(100)    NOT NULL,
		room_id    BIGINT UNSIGNED NOT NULL,
		created_at DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_equipment_room (room_id),
		CONSTRAINT fk_equipment_room FOREIGN KEY (room_id)
			REFERENCES rooms (id) ON DELETE RESTRICT
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS reservations (
		id               BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		room_id          BIGINT UNSIGNED NULL,
		user_id          BIGINT UNSIGNED NOT NULL,
		approved_by      BIGINT UNSIGNED NULL,
		start_time       DATETIME        NOT NULL,
		end_time         DATETIME        NOT NULL,
		purpose          VARCHAR(200)    NOT NULL,
		status           ENUM('Pending','Approved','Rejected','Cancelled') NOT NULL DEFAULT 'Pending',
		rejection_reason VARCHAR(500)    NULL,
		created_at       DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_reservations_room_window (room_id, start_time, end_time),
		KEY idx_reservations_user (user_id),
		KEY idx_reservations_status (status),
		CONSTRAINT fk_reservations_room FOREIGN KEY (room_id)
			REFERENCES rooms (id) ON DELETE RESTRICT,
		CONSTRAINT fk_reservations_user FOREIGN KEY (user_id)
			REFERENCES users (id) ON DELETE RESTRICT,
		CONSTRAINT fk_reservations_approver FOREIGN KEY (approved_by)
			REFERENCES users (id) ON DELETE SET NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS reservation_equipment (
		reservation_id BIGINT UNSIGNED NOT NULL,
		equipment_id   BIGINT UNSIGNED NOT NULL,
		PRIMARY KEY (reservation_id, equipment_id),
		KEY idx_reservation_equipment_item (equipment_id),
		CONSTRAINT fk_resv_equipment_reservation FOREIGN KEY (reservation_id)
			REFERENCES reservations (id) ON DELETE CASCADE,
		CONSTRAINT fk_resv_equipment_item FOREIGN KEY (equipment_id)
			REFERENCES equipment (id) ON DELETE RESTRICT
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS maintenance_windows (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		room_id    BIGINT UNSIGNED NOT NULL,
		start_time DATETIME        NOT NULL,
		end_time   DATETIME        NOT NULL,
		reason     VARCHAR(255)    NULL,
		is_active  TINYINT(1)      NOT NULL DEFAULT 1,
		created_at DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_maintenance_room_window (room_id, start_time, end_time),
		CONSTRAINT fk_maintenance_room FOREIGN KEY (room_id)
			REFERENCES rooms (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS audit_logs (
		id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id     BIGINT UNSIGNED NULL,
		entity_type VARCHAR(50)     NOT NULL,
		entity_id   BIGINT UNSIGNED NULL,
		action           VARCHAR(50)     NOT NULL,
		details          VARCHAR(1000)   NULL,
		action_timestamp DATETIME        NOT NULL,
		PRIMARY KEY (id),
		KEY idx_audit_entity (entity_type, entity_id),
		CONSTRAINT fk_audit_user FOREIGN KEY (user_id)
			REFERENCES users (id) ON DELETE SET NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS reviews (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		room_id    BIGINT UNSIGNED NOT NULL,
		user_id    BIGINT UNSIGNED NOT NULL,
		rating     TINYINT UNSIGNED NOT NULL,
		comment    VARCHAR(1000)   NULL,
		created_at DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_reviews_room_user (room_id, user_id),
		CONSTRAINT fk_reviews_room FOREIGN KEY (room_id)
			REFERENCES rooms (id) ON DELETE CASCADE,
		CONSTRAINT fk_reviews_user FOREIGN KEY (user_id)
			REFERENCES users (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates every table the server needs.  Statements are
// idempotent, so a restart against an existing schema is a no-op.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
