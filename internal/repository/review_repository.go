package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/room-equipment-booking/internal/model"
)

// ReviewRepo provides persistence for room reviews.  One review per
// user per room is enforced by a unique index; eligibility (a completed
// stay) is checked against the reservations table.
type ReviewRepo struct {
	db *sql.DB
}

// NewReviewRepo returns a new ReviewRepo bound to the given database.
func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{db: db} }

// ReviewDetail is a review joined with its reviewer's display name.
type ReviewDetail struct {
	ID          uint64    `json:"id"`
	RoomID      uint64    `json:"room_id"`
	UserID      uint64    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Rating      uint8     `json:"rating"`
	Comment     *string   `json:"comment,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	IsMine      bool      `json:"is_mine"`
}

// ListForRoom returns all reviews of a room, newest first, flagging the
// rows written by the calling user.
func (r *ReviewRepo) ListForRoom(ctx context.Context, roomID, currentUserID uint64) ([]ReviewDetail, error) {
	const q = `SELECT rv.id, rv.room_id, rv.user_id, u.display_name, rv.rating, rv.comment, rv.created_at
	           FROM reviews rv
	           JOIN users u ON u.id = rv.user_id
	           WHERE rv.room_id = ?
	           ORDER BY rv.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ReviewDetail, 0)
	for rows.Next() {
		var (
			d       ReviewDetail
			comment sql.NullString
		)
		if err := rows.Scan(&d.ID, &d.RoomID, &d.UserID, &d.DisplayName, &d.Rating, &comment, &d.CreatedAt); err != nil {
			return nil, err
		}
		if comment.Valid {
			c := comment.String
			d.Comment = &c
		}
		d.CreatedAt = d.CreatedAt.UTC()
		d.IsMine = d.UserID == currentUserID
		out = append(out, d)
	}
	return out, rows.Err()
}

// HasCompletedStay reports whether the user has a reservation of the
// room that already ended and was neither cancelled nor rejected.
func (r *ReviewRepo) HasCompletedStay(ctx context.Context, roomID, userID uint64, now time.Time) (bool, error) {
	const q = `SELECT EXISTS(
	             SELECT 1 FROM reservations
	             WHERE room_id = ? AND user_id = ?
	               AND end_time < ?
	               AND status NOT IN ('Cancelled', 'Rejected'))`
	var ok bool
	err := r.db.QueryRowContext(ctx, q, roomID, userID, now.UTC()).Scan(&ok)
	return ok, err
}

// Create inserts a review and populates its generated ID.  Returns
// ErrDuplicate when the user already reviewed the room.
func (r *ReviewRepo) Create(ctx context.Context, rv *model.Review) error {
	var comment any
	if rv.Comment != nil {
		comment = *rv.Comment
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO reviews (room_id, user_id, rating, comment, created_at) VALUES (?, ?, ?, ?, ?)`,
		rv.RoomID, rv.UserID, rv.Rating, comment, rv.CreatedAt.UTC())
	if err != nil {
		return Classify(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rv.ID = uint64(id)
	return nil
}

// Update rewrites the rating and comment of a review.  Only the author
// may edit; ErrForbidden is returned otherwise.
func (r *ReviewRepo) Update(ctx context.Context, id, userID uint64, rating uint8, comment *string) error {
	var ownerID uint64
	err := r.db.QueryRowContext(ctx, `SELECT user_id FROM reviews WHERE id = ?`, id).Scan(&ownerID)
	if err != nil {
		return Classify(err)
	}
	if ownerID != userID {
		return ErrForbidden
	}
	var c any
	if comment != nil {
		c = *comment
	}
	_, err = r.db.ExecContext(ctx,
		`UPDATE reviews SET rating = ?, comment = ? WHERE id = ?`,
		rating, c, id)
	return Classify(err)
}
