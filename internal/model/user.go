package model

import "time"

// User roles accepted in the JWT "role" claim.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// User is an account able to request reservations.  The optional Google
// token fields back the calendar mirror; they are empty until the user
// links an external calendar.
type User struct {
	ID                 uint64     // users.id
	Email              string     // users.email (unique, lowercased)
	PasswordHash       string     // users.password_hash
	DisplayName        string     // users.display_name
	Role               string     // users.role
	GoogleAccessToken  *string    // users.google_access_token (nullable)
	GoogleRefreshToken *string    // users.google_refresh_token (nullable)
	GoogleTokenExpiry  *time.Time // users.google_token_expiry (nullable)
	CreatedAt          time.Time  // users.created_at
}
