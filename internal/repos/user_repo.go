package repos

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"albumshop/internal/domain"
)

type UserRepo struct{ db sqlx.ExtContext }

func NewUserRepo(db sqlx.ExtContext) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) WithTx(tx *sqlx.Tx) *UserRepo { return &UserRepo{db: tx} }

const userCols = `id, email, first_name, last_name, password_hash, is_admin, created_at`

// Create inserts the user and reports false when the email is already taken.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) (bool, error) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.CreatedAt == "" {
		u.CreatedAt = now()
	}
	n, err := affected(ctx, r.db, `
		INSERT INTO users(id, email, first_name, last_name, password_hash, is_admin, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(email) DO NOTHING
	`, u.ID, u.Email, u.FirstName, u.LastName, u.Hash, u.IsAdmin, u.CreatedAt)
	return n > 0, err
}

func (r *UserRepo) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := get(ctx, r.db, &u, `SELECT `+userCols+` FROM users WHERE LOWER(email) = LOWER(?)`, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := get(ctx, r.db, &u, `SELECT `+userCols+` FROM users WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) UpdateName(ctx context.Context, id, first, last string) (bool, error) {
	n, err := affected(ctx, r.db, `UPDATE users SET first_name = ?, last_name = ? WHERE id = ?`, first, last, id)
	return n > 0, err
}
