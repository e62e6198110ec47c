package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"albumshop/internal/domain"
)

type AddressRepo struct{ db sqlx.ExtContext }

func NewAddressRepo(db sqlx.ExtContext) *AddressRepo { return &AddressRepo{db: db} }

func (r *AddressRepo) WithTx(tx *sqlx.Tx) *AddressRepo { return &AddressRepo{db: tx} }

const addressCols = `id, user_id, label, line1, line2, city, postal_code, country, is_default`

func (r *AddressRepo) Create(ctx context.Context, a *domain.Address) error {
	_, err := exec(ctx, r.db, `
		INSERT INTO addresses(`+addressCols+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.UserID, a.Label, a.Line1, a.Line2, a.City, a.PostalCode, a.Country, a.IsDefault)
	return err
}

// ClearDefault unsets the default flag on every address of the user.
func (r *AddressRepo) ClearDefault(ctx context.Context, userID string) error {
	_, err := exec(ctx, r.db, `UPDATE addresses SET is_default = ? WHERE user_id = ?`, false, userID)
	return err
}

func (r *AddressRepo) ListByUser(ctx context.Context, userID string) ([]domain.Address, error) {
	out := []domain.Address{}
	err := sel(ctx, r.db, &out, `
		SELECT `+addressCols+`
		FROM addresses
		WHERE user_id = ?
		ORDER BY is_default DESC, label, id
	`, userID)
	return out, err
}

// GetOwned returns sql.ErrNoRows when the address does not exist or belongs
// to someone else.
func (r *AddressRepo) GetOwned(ctx context.Context, userID, id string) (domain.Address, error) {
	var a domain.Address
	err := get(ctx, r.db, &a, `SELECT `+addressCols+` FROM addresses WHERE id = ? AND user_id = ?`, id, userID)
	return a, err
}

func (r *AddressRepo) Delete(ctx context.Context, userID, id string) (bool, error) {
	n, err := affected(ctx, r.db, `DELETE FROM addresses WHERE id = ? AND user_id = ?`, id, userID)
	return n > 0, err
}
