package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/room-equipment-booking/internal/model"
	"github.com/iliyamo/room-equipment-booking/internal/utils"
)

// UserRepo provides persistence for user accounts and their linked
// Google calendar credentials.
type UserRepo struct{ DB *sql.DB }

// NewUserRepo returns a new UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = `id, email, password_hash, display_name, role,
	google_access_token, google_refresh_token, google_token_expiry, created_at`

func scanUser(scan func(...any) error) (model.User, error) {
	var (
		u       model.User
		access  sql.NullString
		refresh sql.NullString
		expiry  sql.NullTime
	)
	err := scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.Role,
		&access, &refresh, &expiry, &u.CreatedAt)
	if err != nil {
		return u, err
	}
	if access.Valid {
		a := access.String
		u.GoogleAccessToken = &a
	}
	if refresh.Valid {
		r := refresh.String
		u.GoogleRefreshToken = &r
	}
	if expiry.Valid {
		e := expiry.Time.UTC()
		u.GoogleTokenExpiry = &e
	}
	return u, nil
}

// Create inserts a user and returns its ID.  Returns ErrDuplicate when
// the email is already registered.
func (r *UserRepo) Create(ctx context.Context, email, password, displayName, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, display_name, role) VALUES (?, ?, ?, ?)`,
		email, hash, displayName, role)
	if err != nil {
		return 0, Classify(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ? LIMIT 1`, email)
	u, err := scanUser(row.Scan)
	return u, Classify(err)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ? LIMIT 1`, id)
	u, err := scanUser(row.Scan)
	return u, Classify(err)
}

// StoreGoogleTokens saves the calendar credentials obtained from the
// OAuth flow so the mirror hook can act on the user's behalf.
func (r *UserRepo) StoreGoogleTokens(ctx context.Context, userID uint64, access, refresh string, expiry time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET google_access_token = ?, google_refresh_token = ?, google_token_expiry = ? WHERE id = ?`,
		access, refresh, expiry.UTC(), userID)
	if err != nil {
		return Classify(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if _, getErr := r.GetByID(ctx, userID); getErr != nil {
			return getErr
		}
	}
	return nil
}

// ClearGoogleTokens unlinks the user's external calendar.
func (r *UserRepo) ClearGoogleTokens(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users SET google_access_token = NULL, google_refresh_token = NULL, google_token_expiry = NULL WHERE id = ?`,
		userID)
	return Classify(err)
}
