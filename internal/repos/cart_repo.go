package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// ErrCartChanged reports that cart lines were added, changed or removed
// after they were read inside a checkout.
var ErrCartChanged = errors.New("cart changed during checkout")

type CartRepo struct{ db sqlx.ExtContext }

func NewCartRepo(db sqlx.ExtContext) *CartRepo { return &CartRepo{db: db} }

func (r *CartRepo) WithTx(tx *sqlx.Tx) *CartRepo { return &CartRepo{db: tx} }

// EnsureCart returns the user's cart id, creating the cart if needed.
// Concurrent callers converge on the same row through the UNIQUE(user_id)
// constraint.
func (r *CartRepo) EnsureCart(ctx context.Context, userID string) (string, error) {
	ts := now()
	if _, err := exec(ctx, r.db, `
		INSERT INTO carts(id, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO NOTHING
	`, uuid.NewString(), userID, ts, ts); err != nil {
		return "", err
	}
	return r.CartID(ctx, userID)
}

// CartID returns sql.ErrNoRows when the user has no cart yet.
func (r *CartRepo) CartID(ctx context.Context, userID string) (string, error) {
	var cartID string
	err := get(ctx, r.db, &cartID, `SELECT id FROM carts WHERE user_id = ?`, userID)
	return cartID, err
}

// UpsertItem adds qty units of a version, incrementing an existing line in
// the same statement.
func (r *CartRepo) UpsertItem(ctx context.Context, cartID, versionID string, qty int) error {
	ts := now()
	if _, err := exec(ctx, r.db, `
		INSERT INTO cart_items(id, cart_id, album_version_id, quantity, added_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(cart_id, album_version_id) DO UPDATE
		SET quantity = cart_items.quantity + excluded.quantity
	`, uuid.NewString(), cartID, versionID, qty, ts); err != nil {
		return err
	}
	_, err := exec(ctx, r.db, `UPDATE carts SET updated_at = ? WHERE id = ?`, ts, cartID)
	return err
}

// CartLine is a cart item joined with the catalog fields needed to price it.
type CartLine struct {
	ItemID        string          `db:"item_id"`
	VersionID     string          `db:"version_id"`
	AlbumID       string          `db:"album_id"`
	AlbumTitle    string          `db:"album_title"`
	VersionName   string          `db:"version_name"`
	MainImageURL  string          `db:"main_image_url"`
	Quantity      int             `db:"quantity"`
	BasePrice     decimal.Decimal `db:"base_price"`
	PriceDiff     decimal.Decimal `db:"price_diff"`
	StockQuantity int             `db:"stock_quantity"`
}

func (r *CartRepo) Lines(ctx context.Context, cartID string) ([]CartLine, error) {
	out := []CartLine{}
	err := sel(ctx, r.db, &out, `
	  SELECT ci.id AS item_id, v.id AS version_id, a.id AS album_id, a.title AS album_title,
	         v.version_name, a.main_image_url, ci.quantity, a.base_price, v.price_diff, v.stock_quantity
	  FROM cart_items ci
	  JOIN album_versions v ON v.id = ci.album_version_id
	  JOIN albums a ON a.id = v.album_id
	  WHERE ci.cart_id = ?
	  ORDER BY ci.added_at, ci.id
	`, cartID)
	return out, err
}

// RemoveItem deletes the item only when it belongs to cartID and reports
// whether a row was removed.
func (r *CartRepo) RemoveItem(ctx context.Context, cartID, itemID string) (bool, error) {
	n, err := affected(ctx, r.db, `DELETE FROM cart_items WHERE id = ? AND cart_id = ?`, itemID, cartID)
	return n > 0, err
}

// Lock takes the cart row's write lock for the rest of the transaction.
// Inside a tx, a second checkout of the same cart waits here until the
// first one commits and then reads the cart it left behind.
func (r *CartRepo) Lock(ctx context.Context, cartID string) error {
	n, err := affected(ctx, r.db, `UPDATE carts SET updated_at = ? WHERE id = ?`, now(), cartID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCartChanged
	}
	return nil
}

// RemoveLines deletes exactly the lines that were read, each at the quantity
// it was read with. Any line that is gone or was topped up in the meantime
// yields ErrCartChanged so the caller can roll back.
func (r *CartRepo) RemoveLines(ctx context.Context, cartID string, lines []CartLine) error {
	for _, l := range lines {
		n, err := affected(ctx, r.db,
			`DELETE FROM cart_items WHERE id = ? AND cart_id = ? AND quantity = ?`,
			l.ItemID, cartID, l.Quantity)
		if err != nil {
			return err
		}
		if n != 1 {
			return ErrCartChanged
		}
	}
	return nil
}
