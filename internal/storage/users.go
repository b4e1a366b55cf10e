package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/insightdelivered/statement-pipeline/internal/models"
)

var ErrUserNotFound = errors.New("storage: no such user")

// FindUserByEmail resolves the recipient a staged statement belongs to.
func (t *TaskConn) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := t.conn.QueryRow(ctx, `
		SELECT id, email, is_active FROM users WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.Email, &u.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
