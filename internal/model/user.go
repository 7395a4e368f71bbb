package model

import "time"

// User represents an application user record as stored in the
// `users` table.  Each field corresponds to a column in the
// database.  Handlers define separate response types so that the
// password hash never leaves the repository layer.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Name         – display name printed on receipts.
//	Email        – unique, lower-cased email address.
//	Phone        – optional contact number.
//	PasswordHash – bcrypt hashed password.
//	Role         – owner or seeker.
//	IsActive     – whether the account is active.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Name         string    // users.name
	Email        string    // users.email
	Phone        *string   // users.phone (nullable)
	PasswordHash string    // users.password_hash
	Role         Role      // users.role
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
