package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"lifeos/internal/domain/user"
	lifeos_errors "lifeos/pkg/errors"
)

type userRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO users (id, email, password_hash, display_name, is_admin, created_at)
        VALUES ($1,$2,$3,$4,$5,$6)
    `, u.ID, u.Email, u.PasswordHash, u.DisplayName, u.IsAdmin, u.CreatedAt)
	if isUniqueViolation(err) {
		return lifeos_errors.ErrAlreadyExists
	}
	return err
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	return r.getBy(ctx, "id = $1", id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getBy(ctx, "email = $1", email)
}

func (r *userRepository) getBy(ctx context.Context, where string, arg interface{}) (user.User, error) {
	var u user.User
	err := r.db.QueryRowContext(ctx, `
        SELECT id, email, password_hash, display_name, is_admin, created_at
        FROM users WHERE `+where+`
    `, arg).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.IsAdmin, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return user.User{}, lifeos_errors.ErrNotFound
	}
	return u, err
}
