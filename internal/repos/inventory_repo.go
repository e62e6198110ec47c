package repos

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
)

// ErrInsufficientStock is returned by Decrement when the version has fewer
// units than requested.
var ErrInsufficientStock = errors.New("insufficient stock")

type InventoryRepo struct{ db sqlx.ExtContext }

func NewInventoryRepo(db sqlx.ExtContext) *InventoryRepo { return &InventoryRepo{db: db} }

func (r *InventoryRepo) WithTx(tx *sqlx.Tx) *InventoryRepo { return &InventoryRepo{db: tx} }

// Row used by the admin stock listing
type InventoryRow struct {
	VersionID   string `db:"version_id"`
	AlbumTitle  string `db:"album_title"`
	VersionName string `db:"version_name"`
	Qty         int    `db:"stock_quantity"`
}

func (r *InventoryRepo) ListAll(ctx context.Context) ([]InventoryRow, error) {
	rows := []InventoryRow{}
	err := sel(ctx, r.db, &rows, `
		SELECT v.id AS version_id, a.title AS album_title, v.version_name, v.stock_quantity
		FROM album_versions v
		JOIN albums a ON a.id = v.album_id
		ORDER BY a.title, v.version_name
	`)
	return rows, err
}

// Qty returns current stock for a version, or sql.ErrNoRows if it does not exist.
func (r *InventoryRepo) Qty(ctx context.Context, versionID string) (int, error) {
	var qty int
	err := get(ctx, r.db, &qty, `SELECT stock_quantity FROM album_versions WHERE id = ?`, versionID)
	if err != nil {
		return 0, err
	}
	return qty, nil
}

// Decrement atomically subtracts "by" units if enough stock exists.
func (r *InventoryRepo) Decrement(ctx context.Context, versionID string, by int) error {
	n, err := affected(ctx, r.db, `
		UPDATE album_versions
		SET stock_quantity = stock_quantity - ?
		WHERE id = ? AND stock_quantity >= ?
	`, by, versionID, by)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// Restock adds units back, used when an order is cancelled.
func (r *InventoryRepo) Restock(ctx context.Context, versionID string, by int) error {
	_, err := exec(ctx, r.db, `
		UPDATE album_versions SET stock_quantity = stock_quantity + ? WHERE id = ?
	`, by, versionID)
	return err
}

// SetQty overwrites the stock of a version and reports whether it exists.
func (r *InventoryRepo) SetQty(ctx context.Context, versionID string, qty int) (bool, error) {
	n, err := affected(ctx, r.db, `UPDATE album_versions SET stock_quantity = ? WHERE id = ?`, qty, versionID)
	return n > 0, err
}
