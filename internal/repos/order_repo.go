package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"albumshop/internal/domain"
)

type OrderRepo struct{ db sqlx.ExtContext }

func NewOrderRepo(db sqlx.ExtContext) *OrderRepo { return &OrderRepo{db: db} }

func (r *OrderRepo) WithTx(tx *sqlx.Tx) *OrderRepo { return &OrderRepo{db: tx} }

const orderCols = `id, user_id, total_amount, status, shipping_address_id, created_at, paid_at, tracking_number, updated_at`

// Create inserts a new order header.
func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) error {
	if o.CreatedAt == "" {
		o.CreatedAt = now()
	}
	if o.UpdatedAt == "" {
		o.UpdatedAt = o.CreatedAt
	}
	_, err := exec(ctx, r.db, `
	  INSERT INTO orders
	    (id, user_id, total_amount, status, shipping_address_id, created_at, updated_at)
	  VALUES
	    (?,  ?,       ?,            ?,      ?,                   ?,          ?)
	`, o.ID, o.UserID, o.TotalAmount, o.Status, o.ShippingAddressID, o.CreatedAt, o.UpdatedAt)
	return err
}

// InsertItem inserts a single line item.
func (r *OrderRepo) InsertItem(ctx context.Context, it *domain.OrderItem) error {
	_, err := exec(ctx, r.db, `
	  INSERT INTO order_items(id, order_id, album_version_id, album_title, version_name, quantity, price_per_unit, discount_percent)
	  VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, it.ID, it.OrderID, it.AlbumVersionID, it.AlbumTitle, it.VersionName, it.Quantity, it.PricePerUnit, it.DiscountPercent)
	return err
}

// Get loads the header and its lines.
func (r *OrderRepo) Get(ctx context.Context, orderID string) (domain.Order, error) {
	var o domain.Order
	if err := get(ctx, r.db, &o, `SELECT `+orderCols+` FROM orders WHERE id = ?`, orderID); err != nil {
		return domain.Order{}, err
	}
	items, err := r.Items(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	o.Items = items
	return o, nil
}

func (r *OrderRepo) Items(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	items := []domain.OrderItem{}
	err := sel(ctx, r.db, &items, `
		SELECT id, order_id, album_version_id, album_title, version_name, quantity, price_per_unit, discount_percent
		FROM order_items
		WHERE order_id = ?
		ORDER BY album_title, version_name, id
	`, orderID)
	return items, err
}

// ListByUser returns a user's orders, newest first, without lines.
func (r *OrderRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	out := []domain.Order{}
	err := sel(ctx, r.db, &out, `
		SELECT `+orderCols+`
		FROM orders
		WHERE user_id = ?
		ORDER BY created_at DESC, id
	`, userID)
	return out, err
}

func (r *OrderRepo) ListLatest(ctx context.Context, limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	out := []domain.Order{}
	err := sel(ctx, r.db, &out, `
		SELECT `+orderCols+`
		FROM orders
		ORDER BY created_at DESC, id
		LIMIT ?
	`, limit)
	return out, err
}

// UpdateStatus moves an order from one status to another. The WHERE clause
// on the current status makes concurrent transitions from the same state
// race-free: only one caller sees a row updated.
func (r *OrderRepo) UpdateStatus(ctx context.Context, o *domain.Order, from domain.OrderStatus) (bool, error) {
	n, err := affected(ctx, r.db, `
		UPDATE orders
		SET status = ?, paid_at = ?, tracking_number = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`, o.Status, o.PaidAt, o.TrackingNumber, o.UpdatedAt, o.ID, from)
	return n > 0, err
}

// Count is used by tests and the admin overview.
func (r *OrderRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := get(ctx, r.db, &n, `SELECT COUNT(*) FROM orders`)
	return n, err
}
