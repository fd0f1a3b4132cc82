package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

// UsersRepository reads user records. Account management lives in the
// identity service; the closure engine only needs email lookup for
// notifications.
type UsersRepository struct {
	db *sql.DB
}

// NewUsersRepository creates a new users repository.
func NewUsersRepository(db *sql.DB) *UsersRepository {
	return &UsersRepository{db: db}
}

// GetEmailByID returns the user's email address, or "" if the user does
// not exist.
func (r *UsersRepository) GetEmailByID(ctx context.Context, id uuid.UUID) (string, error) {
	query := `SELECT email FROM users WHERE id = $1 AND deleted_at IS NULL`

	var email string
	err := r.db.QueryRowContext(ctx, query, id).Scan(&email)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return email, nil
}
