package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"albumshop/internal/domain"
)

type ArtistRepo struct{ db sqlx.ExtContext }

func NewArtistRepo(db sqlx.ExtContext) *ArtistRepo { return &ArtistRepo{db: db} }

const artistCols = `id, name, category, image_url, created_at`

func (r *ArtistRepo) List(ctx context.Context) ([]domain.Artist, error) {
	out := []domain.Artist{}
	err := sel(ctx, r.db, &out, `SELECT `+artistCols+` FROM artists ORDER BY name`)
	return out, err
}

func (r *ArtistRepo) ListByCategory(ctx context.Context, category string) ([]domain.Artist, error) {
	out := []domain.Artist{}
	err := sel(ctx, r.db, &out, `
		SELECT `+artistCols+`
		FROM artists
		WHERE category = ?
		ORDER BY name
	`, category)
	return out, err
}

func (r *ArtistRepo) Get(ctx context.Context, id string) (domain.Artist, error) {
	var a domain.Artist
	err := get(ctx, r.db, &a, `SELECT `+artistCols+` FROM artists WHERE id = ?`, id)
	return a, err
}

func (r *ArtistRepo) Create(ctx context.Context, a *domain.Artist) error {
	if a.CreatedAt == "" {
		a.CreatedAt = now()
	}
	_, err := exec(ctx, r.db, `
		INSERT INTO artists(id, name, category, image_url, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, a.ID, a.Name, a.Category, a.ImageURL, a.CreatedAt)
	return err
}
