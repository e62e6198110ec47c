package repos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"albumshop/internal/domain"
)

type AlbumRepo struct{ db sqlx.ExtContext }

func NewAlbumRepo(db sqlx.ExtContext) *AlbumRepo { return &AlbumRepo{db: db} }

func (r *AlbumRepo) WithTx(tx *sqlx.Tx) *AlbumRepo { return &AlbumRepo{db: tx} }

const albumSelect = `
  SELECT
    a.id, a.artist_id, ar.name AS artist_name, a.title, a.description,
    a.base_price, a.status, a.release_date, a.main_image_url, a.created_at
  FROM albums a
  JOIN artists ar ON ar.id = a.artist_id`

// ListAvailable returns albums that are not out of stock, newest release first.
func (r *AlbumRepo) ListAvailable(ctx context.Context, limit, offset int) ([]domain.Album, error) {
	out := []domain.Album{}
	err := sel(ctx, r.db, &out, albumSelect+`
  WHERE a.status <> 'out_of_stock'
  ORDER BY a.release_date DESC, a.title
  LIMIT ? OFFSET ?`, limit, offset)
	return out, err
}

func (r *AlbumRepo) ListByArtist(ctx context.Context, artistID string) ([]domain.Album, error) {
	out := []domain.Album{}
	err := sel(ctx, r.db, &out, albumSelect+`
  WHERE a.artist_id = ?
  ORDER BY a.release_date DESC, a.title`, artistID)
	return out, err
}

func (r *AlbumRepo) Get(ctx context.Context, id string) (domain.Album, error) {
	var a domain.Album
	err := get(ctx, r.db, &a, albumSelect+` WHERE a.id = ?`, id)
	return a, err
}

// Search matches q against album titles and artist names. q must already be
// lower-cased and validated.
func (r *AlbumRepo) Search(ctx context.Context, q string, limit, offset int) ([]domain.Album, error) {
	like := "%" + q + "%"
	out := []domain.Album{}
	err := sel(ctx, r.db, &out, albumSelect+`
  WHERE LOWER(a.title) LIKE ? OR LOWER(ar.name) LIKE ?
  ORDER BY a.release_date DESC, a.title
  LIMIT ? OFFSET ?`, like, like, limit, offset)
	return out, err
}

func (r *AlbumRepo) Create(ctx context.Context, a *domain.Album) error {
	if a.CreatedAt == "" {
		a.CreatedAt = now()
	}
	_, err := exec(ctx, r.db, `
		INSERT INTO albums(id, artist_id, title, description, base_price, status, release_date, main_image_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.ArtistID, a.Title, a.Description, a.BasePrice, a.Status, a.ReleaseDate, a.MainImageURL, a.CreatedAt)
	return err
}

func (r *AlbumRepo) CreateVersion(ctx context.Context, v *domain.AlbumVersion) error {
	_, err := exec(ctx, r.db, `
		INSERT INTO album_versions(id, album_id, version_name, price_diff, packaging_details, stock_quantity, is_limited)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, v.ID, v.AlbumID, v.VersionName, v.PriceDiff, v.PackagingDetails, v.StockQuantity, v.IsLimited)
	return err
}

// Versions returns the versions of the given albums ordered by album and
// price.
func (r *AlbumRepo) Versions(ctx context.Context, albumIDs []string) ([]domain.AlbumVersion, error) {
	out := []domain.AlbumVersion{}
	if len(albumIDs) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(`
		SELECT id, album_id, version_name, price_diff, packaging_details, stock_quantity, is_limited
		FROM album_versions
		WHERE album_id IN (?)
		ORDER BY album_id, price_diff, version_name
	`, albumIDs)
	if err != nil {
		return nil, err
	}
	err = sel(ctx, r.db, &out, query, args...)
	return out, err
}

// PricedVersion is a version joined with the album fields pricing and
// order snapshots need.
type PricedVersion struct {
	VersionID     string          `db:"version_id"`
	AlbumID       string          `db:"album_id"`
	AlbumTitle    string          `db:"album_title"`
	VersionName   string          `db:"version_name"`
	BasePrice     decimal.Decimal `db:"base_price"`
	PriceDiff     decimal.Decimal `db:"price_diff"`
	StockQuantity int             `db:"stock_quantity"`
}

func (r *AlbumRepo) PricedVersion(ctx context.Context, versionID string) (PricedVersion, error) {
	var pv PricedVersion
	err := get(ctx, r.db, &pv, `
		SELECT v.id AS version_id, a.id AS album_id, a.title AS album_title, v.version_name,
		       a.base_price, v.price_diff, v.stock_quantity
		FROM album_versions v
		JOIN albums a ON a.id = v.album_id
		WHERE v.id = ?
	`, versionID)
	return pv, err
}
