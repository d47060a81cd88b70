package model

import "time"

// User represents an application user record as stored in the
// `users` table.  The Version field is the optimistic concurrency
// stamp: it advances by one on every successful write to the row,
// and clients must echo back the value they last observed for an
// update to be accepted.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  FullName     – display name.
//  Phone        – contact phone number.
//  Role         – USER or ADMIN.
//  Version      – concurrency stamp, starts at 1 and increments on write.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	FullName     string    // users.full_name
	Phone        string    // users.phone
	Role         string    // users.role
	Version      uint64    // users.version
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// Roles accepted in users.role and in the JWT "role" claim.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user; only the SHA-256 hash of the raw
// token value is stored.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (null if active)
	CreatedAt time.Time  // refresh_tokens.created_at
}
