package handlers

import (
	"github.com/jmoiron/sqlx"

	"albumshop/internal/auth"
	"albumshop/internal/config"
	"albumshop/internal/metrics"
	"albumshop/internal/repos"
	"albumshop/internal/services"
)

type Deps struct {
	Auth *services.AuthService

	AuthHandler      *AuthHandler
	CatalogHandler   *CatalogHandler
	InventoryHandler *InventoryHandler
	CartHandler      *CartHandler
	OrderHandler     *OrderHandler
	WishlistHandler  *WishlistHandler
	ProfileHandler   *ProfileHandler
	AdminHandler     *AdminHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, m *metrics.ShopMetrics) *Deps {
	artistRepo := repos.NewArtistRepo(db)
	albumRepo := repos.NewAlbumRepo(db)
	discountRepo := repos.NewDiscountRepo(db)
	invRepo := repos.NewInventoryRepo(db)
	cartRepo := repos.NewCartRepo(db)
	wishRepo := repos.NewWishlistRepo(db)

	authSvc := services.NewAuthService(db, auth.Config{
		Secret: cfg.JWTSecret,
		Issuer: cfg.JWTIssuer,
		TTL:    cfg.JWTTTL,
	}, cfg.BcryptCost)
	catalogSvc := services.NewCatalogService(artistRepo, albumRepo, discountRepo)
	invSvc := services.NewInventoryService(invRepo)
	cartSvc := services.NewCartService(cartRepo, albumRepo, discountRepo, m)
	orderSvc := services.NewOrderService(db, m)
	wishSvc := services.NewWishlistService(wishRepo, albumRepo)

	return &Deps{
		Auth:             authSvc,
		AuthHandler:      &AuthHandler{Auth: authSvc},
		CatalogHandler:   &CatalogHandler{Catalog: catalogSvc},
		InventoryHandler: &InventoryHandler{Inv: invSvc},
		CartHandler:      &CartHandler{Cart: cartSvc},
		OrderHandler:     &OrderHandler{Order: orderSvc},
		WishlistHandler:  &WishlistHandler{Wish: wishSvc},
		ProfileHandler:   &ProfileHandler{Profile: services.NewProfileService(db)},
		AdminHandler:     &AdminHandler{Admin: services.NewAdminService(db)},
	}
}
