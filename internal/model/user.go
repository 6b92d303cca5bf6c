package model

import "time"

// User mirrors the 'users' table.  Email and username are stored
// lowercased and carry unique keys, so the insert itself is the
// uniqueness check.  PasswordHash holds a bcrypt digest and must
// never be serialized to API responses.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email (lowercase, unique)
	Username     string    // users.username (lowercase, unique, 3-30 alphanumeric)
	PasswordHash string    // users.password_hash (bcrypt)
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// UserRef is the resolved form of a reference to a user embedded in
// API responses.  Listing queries JOIN the users table, so a reference
// is either fully resolved or absent; there is no raw-identifier shape.
type UserRef struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
