package model

import "time"

// Role names carried in the access token's "role" claim.  They are
// derived from the is_admin flag and never stored.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// User represents an application user record as stored in the
// `usuario` table.  A user owns zero or more reservations.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Username     – unique display name, copied onto reservations as client_name.
//	Email        – unique, lower-cased email address used to log in.
//	PasswordHash – bcrypt hashed password.
//	IsAdmin      – administrator flag.
type User struct {
	ID           uint64 // usuario.id
	Username     string // usuario.username
	Email        string // usuario.email
	PasswordHash string // usuario.password_hash
	IsAdmin      bool   // usuario.is_admin
}

// Role returns the role name used in access tokens for u.
func (u User) Role() string {
	if u.IsAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// RefreshToken models an entry in the `refresh_tokens` table.  The
// plain token is never stored, only its SHA-256 hash.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
