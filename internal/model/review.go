package model

import "time"

// Review is a star rating a past renter leaves for a room.  A user may
// review a room only once and only after a completed, non-terminated
// reservation of that room.
type Review struct {
	ID        uint64    // reviews.id
	RoomID    uint64    // reviews.room_id
	UserID    uint64    // reviews.user_id
	Rating    uint8     // reviews.rating (1-5)
	Comment   *string   // reviews.comment (nullable)
	CreatedAt time.Time // reviews.created_at
}
