package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ErrAdminNotFound is returned when no admin account matches the given
// email.  Handlers must answer with the same message as a bad password
// so login probing cannot enumerate accounts.
var ErrAdminNotFound = errors.New("admin not found")

// Admin mirrors the admins table.  Only back-office accounts live
// here; visitors never authenticate.
type Admin struct {
	ID           uint64
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// AdminRepo provides access to admin accounts.
type AdminRepo struct {
	db *sql.DB
}

// NewAdminRepo returns an AdminRepo bound to the given database.
func NewAdminRepo(db *sql.DB) *AdminRepo { return &AdminRepo{db: db} }

// Ensure inserts the admin account when the email is not yet present.
// The startup bootstrap calls it so a fresh deployment gets its
// back-office account from the environment; an existing account keeps
// its stored hash.
func (r *AdminRepo) Ensure(ctx context.Context, email, passwordHash string) error {
	const q = `INSERT INTO admins (email, password_hash) VALUES (?, ?)
	           ON DUPLICATE KEY UPDATE id = id`
	_, err := r.db.ExecContext(ctx, q, email, passwordHash)
	return err
}

// GetByEmail returns the admin account for the given (lowercased)
// email address.
func (r *AdminRepo) GetByEmail(ctx context.Context, email string) (*Admin, error) {
	const q = `SELECT id, email, password_hash, created_at FROM admins WHERE email = ?`
	var a Admin
	err := r.db.QueryRowContext(ctx, q, email).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrAdminNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
