package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"albumshop/internal/apperr"
	"albumshop/internal/domain"
	"albumshop/internal/pricing"
	"albumshop/internal/repos"
)

// AdminService manages the catalog and discounts.
type AdminService struct {
	DB        *sqlx.DB
	Artists   *repos.ArtistRepo
	Albums    *repos.AlbumRepo
	Discounts *repos.DiscountRepo
}

func NewAdminService(db *sqlx.DB) *AdminService {
	return &AdminService{
		DB:        db,
		Artists:   repos.NewArtistRepo(db),
		Albums:    repos.NewAlbumRepo(db),
		Discounts: repos.NewDiscountRepo(db),
	}
}

type ArtistInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Category string `json:"category" validate:"required,category"`
	ImageURL string `json:"image_url" validate:"omitempty,url,max=255"`
}

func (s *AdminService) CreateArtist(ctx context.Context, in ArtistInput) (domain.Artist, error) {
	a := domain.Artist{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(in.Name),
		Category: strings.ToLower(strings.TrimSpace(in.Category)),
		ImageURL: in.ImageURL,
	}
	if err := s.Artists.Create(ctx, &a); err != nil {
		return domain.Artist{}, apperr.Transient(err, "create artist")
	}
	return a, nil
}

type VersionInput struct {
	VersionName      string          `json:"version_name" validate:"required,max=50"`
	PriceDiff        decimal.Decimal `json:"price_diff"`
	PackagingDetails string          `json:"packaging_details" validate:"max=255"`
	StockQuantity    int             `json:"stock_quantity" validate:"gte=0"`
	IsLimited        bool            `json:"is_limited"`
}

type AlbumInput struct {
	ArtistID     string          `json:"artist_id" validate:"required,resid"`
	Title        string          `json:"title" validate:"required,max=100"`
	Description  string          `json:"description" validate:"max=2000"`
	BasePrice    decimal.Decimal `json:"base_price"`
	Status       string          `json:"status" validate:"required,oneof=in_stock preorder out_of_stock"`
	ReleaseDate  string          `json:"release_date" validate:"omitempty,isodate"`
	MainImageURL string          `json:"main_image_url" validate:"omitempty,url,max=255"`
	Versions     []VersionInput  `json:"versions" validate:"required,min=1,dive"`
}

// CreateAlbum inserts the album and its versions in one transaction.
func (s *AdminService) CreateAlbum(ctx context.Context, in AlbumInput) (AlbumView, error) {
	if !in.BasePrice.IsPositive() {
		return AlbumView{}, apperr.InvalidInput("validation failed").
			WithDetails(map[string]string{"base_price": "must be greater than 0"})
	}
	for _, v := range in.Versions {
		if in.BasePrice.Add(v.PriceDiff).IsNegative() {
			return AlbumView{}, apperr.InvalidInput("validation failed").
				WithDetails(map[string]string{"price_diff": "base_price + price_diff must not be negative"})
		}
	}
	if _, err := s.Artists.Get(ctx, in.ArtistID); err != nil {
		return AlbumView{}, storageErr(err, "artist not found", "load artist")
	}

	album := domain.Album{
		ID:           uuid.NewString(),
		ArtistID:     in.ArtistID,
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		BasePrice:    domain.NewMoney(in.BasePrice.Round(2)),
		Status:       in.Status,
		ReleaseDate:  in.ReleaseDate,
		MainImageURL: in.MainImageURL,
	}
	view := AlbumView{Album: album, Versions: make([]VersionView, 0, len(in.Versions))}
	err := repos.WithTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		albums := s.Albums.WithTx(tx)
		if err := albums.Create(ctx, &view.Album); err != nil {
			return err
		}
		for _, vin := range in.Versions {
			v := domain.AlbumVersion{
				ID:               uuid.NewString(),
				AlbumID:          view.ID,
				VersionName:      strings.TrimSpace(vin.VersionName),
				PriceDiff:        domain.NewMoney(vin.PriceDiff.Round(2)),
				PackagingDetails: vin.PackagingDetails,
				StockQuantity:    vin.StockQuantity,
				IsLimited:        vin.IsLimited,
			}
			if err := albums.CreateVersion(ctx, &v); err != nil {
				return err
			}
			view.Versions = append(view.Versions, VersionView{
				AlbumVersion: v,
				Quote:        pricing.Price(view.BasePrice.Decimal, v.PriceDiff.Decimal, nil, time.Time{}),
			})
		}
		return nil
	})
	if err != nil {
		return AlbumView{}, apperr.Transient(err, "create album")
	}
	return view, nil
}

type DiscountInput struct {
	Name      string          `json:"name" validate:"required,max=100"`
	Percent   decimal.Decimal `json:"discount_percent"`
	StartDate string          `json:"start_date" validate:"required,isodate"`
	EndDate   string          `json:"end_date" validate:"required,isodate"`
	IsActive  *bool           `json:"is_active"`
}

func (s *AdminService) CreateDiscount(ctx context.Context, in DiscountInput) (domain.Discount, error) {
	if in.Percent.LessThan(decimal.Zero) || in.Percent.GreaterThan(decimal.NewFromInt(100)) {
		return domain.Discount{}, apperr.InvalidInput("validation failed").
			WithDetails(map[string]string{"discount_percent": "must be between 0 and 100"})
	}
	start, _ := pricing.ParseDate(in.StartDate)
	end, _ := pricing.ParseDate(in.EndDate)
	if end.Before(start) {
		return domain.Discount{}, apperr.InvalidInput("validation failed").
			WithDetails(map[string]string{"end_date": "must not be before start_date"})
	}
	d := domain.Discount{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		Percent:   in.Percent.Round(2),
		StartDate: start.Format(pricing.DateLayout),
		EndDate:   end.Format(pricing.DateLayout),
		IsActive:  in.IsActive == nil || *in.IsActive,
	}
	if err := s.Discounts.Create(ctx, &d); err != nil {
		return domain.Discount{}, apperr.Transient(err, "create discount")
	}
	return d, nil
}

func (s *AdminService) LinkDiscount(ctx context.Context, discountID, albumID string) error {
	if err := s.checkLinkTargets(ctx, discountID, albumID); err != nil {
		return err
	}
	if err := s.Discounts.Link(ctx, discountID, albumID); err != nil {
		return apperr.Transient(err, "link discount")
	}
	return nil
}

func (s *AdminService) UnlinkDiscount(ctx context.Context, discountID, albumID string) error {
	if err := s.checkLinkTargets(ctx, discountID, albumID); err != nil {
		return err
	}
	removed, err := s.Discounts.Unlink(ctx, discountID, albumID)
	if err != nil {
		return apperr.Transient(err, "unlink discount")
	}
	if !removed {
		return apperr.NotFound("discount is not linked to album")
	}
	return nil
}

func (s *AdminService) checkLinkTargets(ctx context.Context, discountID, albumID string) error {
	if _, err := s.Discounts.Get(ctx, discountID); err != nil {
		return storageErr(err, "discount not found", "load discount")
	}
	if _, err := s.Albums.Get(ctx, albumID); err != nil {
		return storageErr(err, "album not found", "load album")
	}
	return nil
}
