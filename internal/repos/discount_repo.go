package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"albumshop/internal/domain"
)

type DiscountRepo struct{ db sqlx.ExtContext }

func NewDiscountRepo(db sqlx.ExtContext) *DiscountRepo { return &DiscountRepo{db: db} }

func (r *DiscountRepo) WithTx(tx *sqlx.Tx) *DiscountRepo { return &DiscountRepo{db: tx} }

func (r *DiscountRepo) Create(ctx context.Context, d *domain.Discount) error {
	_, err := exec(ctx, r.db, `
		INSERT INTO discounts(id, name, discount_percent, start_date, end_date, is_active)
		VALUES (?, ?, ?, ?, ?, ?)
	`, d.ID, d.Name, d.Percent, d.StartDate, d.EndDate, d.IsActive)
	return err
}

func (r *DiscountRepo) Get(ctx context.Context, id string) (domain.Discount, error) {
	var d domain.Discount
	err := get(ctx, r.db, &d, `
		SELECT id, name, discount_percent, start_date, end_date, is_active
		FROM discounts WHERE id = ?
	`, id)
	return d, err
}

// Link attaches a discount to an album. Linking twice is a no-op.
func (r *DiscountRepo) Link(ctx context.Context, discountID, albumID string) error {
	_, err := exec(ctx, r.db, `
		INSERT INTO album_discounts(album_id, discount_id)
		VALUES (?, ?)
		ON CONFLICT(album_id, discount_id) DO NOTHING
	`, albumID, discountID)
	return err
}

// Unlink reports whether a link existed.
func (r *DiscountRepo) Unlink(ctx context.Context, discountID, albumID string) (bool, error) {
	n, err := affected(ctx, r.db, `DELETE FROM album_discounts WHERE album_id = ? AND discount_id = ?`, albumID, discountID)
	return n > 0, err
}

// ForAlbums loads every discount linked to the given albums. Active and date
// filtering is left to the pricing engine.
func (r *DiscountRepo) ForAlbums(ctx context.Context, albumIDs []string) ([]domain.AlbumDiscount, error) {
	out := []domain.AlbumDiscount{}
	if len(albumIDs) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(`
		SELECT ad.album_id, d.id, d.name, d.discount_percent, d.start_date, d.end_date, d.is_active
		FROM album_discounts ad
		JOIN discounts d ON d.id = ad.discount_id
		WHERE ad.album_id IN (?)
	`, albumIDs)
	if err != nil {
		return nil, err
	}
	err = sel(ctx, r.db, &out, query, args...)
	return out, err
}
