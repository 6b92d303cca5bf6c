package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/room-reservation/internal/model"
	"github.com/iliyamo/room-reservation/internal/utils"
)

// ErrEmailExists is returned when an insert trips the unique key on
// users.email.
var ErrEmailExists = errors.New("email already taken")

// ErrUsernameExists is returned when an insert trips the unique key on
// users.username.
var ErrUsernameExists = errors.New("username already taken")

// ErrUserNotFound is returned when a user lookup matches no row.
var ErrUserNotFound = errors.New("user not found")

// UserRepo encapsulates all database queries related to users.  Both
// email and username are normalized to lowercase before any read or
// write, so uniqueness is case-insensitive by construction.  There is
// no pre-insert existence check: the unique keys decide, and the MySQL
// duplicate-key error (1062) is translated to a sentinel.
type UserRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewUserRepo constructs a UserRepo with the provided DB handle.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// Create hashes the password and inserts the user, returning the new
// row's ID.  Duplicate email or username surfaces as ErrEmailExists or
// ErrUsernameExists depending on which unique key rejected the write.
func (r *UserRepo) Create(ctx context.Context, email, username, password string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.ToLower(strings.TrimSpace(username))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO users (email, username, password_hash) VALUES (?,?,?)",
		email, username, hash)
	if err != nil {
		return 0, dupKeyError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// dupKeyError maps a MySQL duplicate-key failure (error 1062) onto the
// sentinel matching the violated key.  Other errors pass through.
func dupKeyError(err error) error {
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "1062") {
		return err
	}
	if strings.Contains(msg, "uq_users_username") {
		return ErrUsernameExists
	}
	return ErrEmailExists
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getWhere(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

// GetByUsername fetches a user by normalized username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	return r.getWhere(ctx, "username = ?", strings.ToLower(strings.TrimSpace(username)))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.getWhere(ctx, "id = ?", id)
}

func (r *UserRepo) getWhere(ctx context.Context, cond string, arg any) (model.User, error) {
	var u model.User
	err := r.db.QueryRowContext(ctx,
		"SELECT id, email, username, password_hash, created_at, updated_at FROM users WHERE "+cond+" LIMIT 1",
		arg).Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrUserNotFound
	}
	return u, err
}

// EmailTaken reports whether a user with the given email exists.  This
// backs the advisory availability-check endpoint only; registration
// relies on the unique key, not on this read.
func (r *UserRepo) EmailTaken(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

// UsernameTaken reports whether a user with the given username exists.
func (r *UserRepo) UsernameTaken(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "username = ?", strings.ToLower(strings.TrimSpace(username)))
}

func (r *UserRepo) exists(ctx context.Context, cond string, arg any) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM users WHERE "+cond+")", arg).Scan(&n)
	return n == 1, err
}
