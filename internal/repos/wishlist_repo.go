package repos

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"albumshop/internal/domain"
)

type WishlistRepo struct{ db sqlx.ExtContext }

func NewWishlistRepo(db sqlx.ExtContext) *WishlistRepo { return &WishlistRepo{db: db} }

// Add reports false when the album is already on the user's wishlist.
func (r *WishlistRepo) Add(ctx context.Context, userID, albumID string) (bool, error) {
	n, err := affected(ctx, r.db, `
	  INSERT INTO wishlist_items(id, user_id, album_id, created_at)
	  VALUES (?, ?, ?, ?)
	  ON CONFLICT(user_id, album_id) DO NOTHING
	`, uuid.NewString(), userID, albumID, now())
	return n > 0, err
}

func (r *WishlistRepo) Remove(ctx context.Context, userID, albumID string) (bool, error) {
	n, err := affected(ctx, r.db, `DELETE FROM wishlist_items WHERE user_id = ? AND album_id = ?`, userID, albumID)
	return n > 0, err
}

type WishlistRow struct {
	AlbumID      string       `db:"album_id" json:"album_id"`
	Title        string       `db:"title" json:"title"`
	ArtistName   string       `db:"artist_name" json:"artist_name"`
	BasePrice    domain.Money `db:"base_price" json:"base_price"`
	Status       string       `db:"status" json:"status"`
	MainImageURL string       `db:"main_image_url" json:"main_image_url,omitempty"`
	AddedAt      string       `db:"created_at" json:"added_at"`
}

func (r *WishlistRepo) List(ctx context.Context, userID string) ([]WishlistRow, error) {
	out := []WishlistRow{}
	err := sel(ctx, r.db, &out, `
	  SELECT a.id AS album_id, a.title, ar.name AS artist_name, a.base_price, a.status,
	         a.main_image_url, wi.created_at
	  FROM wishlist_items wi
	  JOIN albums a ON a.id = wi.album_id
	  JOIN artists ar ON ar.id = a.artist_id
	  WHERE wi.user_id = ?
	  ORDER BY wi.created_at DESC, a.title
	`, userID)
	return out, err
}
