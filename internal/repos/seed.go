package repos

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"albumshop/internal/domain"
	applog "albumshop/internal/log"
)

// Demo accounts created by SeedDemo.
const (
	DemoUserEmail  = "alice@albumshop.test"
	DemoAdminEmail = "admin@albumshop.test"
	DemoPassword   = "Passw0rd!"
)

// SeedDemo inserts a small catalog, one discount, a customer and an admin
// when the catalog is empty. Running it again is a no-op.
func SeedDemo(ctx context.Context, db *sqlx.DB, bcryptCost int) error {
	var n int
	if err := get(ctx, db, &n, `SELECT COUNT(*) FROM artists`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}

	artists := []domain.Artist{
		{ID: "artist-aurora-girls", Name: "Aurora Girls", Category: domain.CategoryFemaleGroup},
		{ID: "artist-north-seven", Name: "North Seven", Category: domain.CategoryMaleGroup},
		{ID: "artist-mina-seo", Name: "Mina Seo", Category: domain.CategorySolo},
	}
	albums := []domain.Album{
		{ID: "album-first-light", ArtistID: "artist-aurora-girls", Title: "First Light", Description: "Debut mini album",
			BasePrice: domain.MustMoney("20.00"), Status: domain.AlbumInStock, ReleaseDate: "2023-09-15"},
		{ID: "album-compass", ArtistID: "artist-north-seven", Title: "Compass", Description: "Second full-length album",
			BasePrice: domain.MustMoney("30.00"), Status: domain.AlbumInStock, ReleaseDate: "2024-03-02"},
		{ID: "album-lilac-hour", ArtistID: "artist-mina-seo", Title: "Lilac Hour", Description: "Solo single album",
			BasePrice: domain.MustMoney("18.50"), Status: domain.AlbumPreorder, ReleaseDate: "2024-11-20"},
		{ID: "album-paper-moon", ArtistID: "artist-mina-seo", Title: "Paper Moon", Description: "Out of print",
			BasePrice: domain.MustMoney("15.00"), Status: domain.AlbumOutOfStock, ReleaseDate: "2019-05-10"},
	}
	versions := []domain.AlbumVersion{
		{ID: "v-first-light-std", AlbumID: "album-first-light", VersionName: "Standard", PriceDiff: domain.Money{}, StockQuantity: 50},
		{ID: "v-first-light-kit", AlbumID: "album-first-light", VersionName: "Photobook Kit", PriceDiff: domain.MustMoney("5.00"),
			PackagingDetails: "Photobook, 2 photocards", StockQuantity: 10, IsLimited: true},
		{ID: "v-compass-std", AlbumID: "album-compass", VersionName: "Standard", PriceDiff: domain.Money{}, StockQuantity: 40},
		{ID: "v-compass-collector", AlbumID: "album-compass", VersionName: "Collector", PriceDiff: domain.MustMoney("15.00"),
			PackagingDetails: "Box set with poster", StockQuantity: 3, IsLimited: true},
		{ID: "v-lilac-hour-std", AlbumID: "album-lilac-hour", VersionName: "Standard", PriceDiff: domain.Money{}, StockQuantity: 25},
		{ID: "v-paper-moon-std", AlbumID: "album-paper-moon", VersionName: "Standard", PriceDiff: domain.Money{}, StockQuantity: 0},
	}
	welcome := domain.Discount{ID: "disc-welcome", Name: "Welcome 10%", Percent: decimal.NewFromInt(10),
		StartDate: "2000-01-01", EndDate: "2099-12-31", IsActive: true}
	users := []domain.User{
		{ID: "u-alice", Email: DemoUserEmail, FirstName: "Alice", LastName: "Kim", Hash: string(hash)},
		{ID: "u-admin", Email: DemoAdminEmail, FirstName: "Admin", LastName: "Shop", Hash: string(hash), IsAdmin: true},
	}

	err = WithTx(ctx, db, func(tx *sqlx.Tx) error {
		artistRepo := NewArtistRepo(tx)
		albumRepo := NewAlbumRepo(tx)
		discountRepo := NewDiscountRepo(tx)
		userRepo := NewUserRepo(tx)
		cartRepo := NewCartRepo(tx)

		for i := range artists {
			if err := artistRepo.Create(ctx, &artists[i]); err != nil {
				return err
			}
		}
		for i := range albums {
			if err := albumRepo.Create(ctx, &albums[i]); err != nil {
				return err
			}
		}
		for i := range versions {
			if err := albumRepo.CreateVersion(ctx, &versions[i]); err != nil {
				return err
			}
		}
		if err := discountRepo.Create(ctx, &welcome); err != nil {
			return err
		}
		if err := discountRepo.Link(ctx, welcome.ID, "album-first-light"); err != nil {
			return err
		}
		for i := range users {
			if _, err := userRepo.Create(ctx, &users[i]); err != nil {
				return err
			}
			if _, err := cartRepo.EnsureCart(ctx, users[i].ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	applog.Base().Info().
		Str("action", "seed.demo").
		Int("artists", len(artists)).
		Int("albums", len(albums)).
		Int("versions", len(versions)).
		Send()
	return nil
}
