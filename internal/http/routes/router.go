package routes

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"albumshop/internal/apperr"
	"albumshop/internal/config"
	"albumshop/internal/http/handlers"
	applog "albumshop/internal/log"
	"albumshop/internal/metrics"
)

// NewApp builds the fiber app with middleware and every route. reg receives
// the shop collectors and backs GET /metrics; nil gets a private registry.
func NewApp(db *sqlx.DB, cfg config.Config, reg *prometheus.Registry) *fiber.App {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	app := fiber.New(fiber.Config{
		AppName:      "albumshop",
		BodyLimit:    cfg.BodyLimit,
		ErrorHandler: handlers.ErrorHandler,
	})

	// ---------- Middlewares ----------
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(applog.Access())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.CORSOrigins, ","),
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Authorization,Content-Type",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        rateMax(cfg.RateLimitMax, 120),
		Expiration: rateWindow(cfg.RateLimitWindow),
		Next: func(c *fiber.Ctx) bool {
			p := c.Path()
			return p == "/healthz" || p == "/metrics"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return apperr.New(apperr.KindRateLimit, "rate limit exceeded, retry soon")
		},
	}))

	deps := handlers.NewDeps(db, cfg, metrics.New(reg))

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	api := app.Group("/api")

	// Public
	api.Post("/register", deps.AuthHandler.Register)
	api.Post("/login", limiter.New(limiter.Config{
		Max:        rateMax(cfg.LoginRateMax, 5),
		Expiration: 10 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|login"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return apperr.New(apperr.KindRateLimit, "too many login attempts, try again later")
		},
	}), deps.AuthHandler.Login)
	api.Get("/albums", deps.CatalogHandler.Albums)
	api.Get("/albums/:id", deps.CatalogHandler.Album)
	api.Get("/search", deps.CatalogHandler.Search)
	api.Get("/artist_categories", deps.CatalogHandler.Categories)
	api.Get("/artists/category/:category", deps.CatalogHandler.ArtistsByCategory)
	api.Get("/artists/:id", deps.CatalogHandler.Artist)
	api.Get("/versions/:id/availability", deps.InventoryHandler.Check)

	// Signed-in users
	user := handlers.RequireUser(deps.Auth)
	api.Get("/me", user, deps.ProfileHandler.Me)
	api.Put("/me", user, deps.ProfileHandler.Update)
	api.Get("/addresses", user, deps.ProfileHandler.Addresses)
	api.Post("/addresses", user, deps.ProfileHandler.AddAddress)
	api.Delete("/addresses/:id", user, deps.ProfileHandler.DeleteAddress)
	api.Get("/cart", user, deps.CartHandler.View)
	api.Post("/cart", user, deps.CartHandler.Add)
	api.Delete("/cart/:item_id", user, deps.CartHandler.Remove)
	api.Post("/orders", user, deps.OrderHandler.Place)
	api.Get("/orders", user, deps.OrderHandler.History)
	api.Get("/orders/:id", user, deps.OrderHandler.View)
	api.Get("/wishlist", user, deps.WishlistHandler.List)
	api.Post("/wishlist", user, deps.WishlistHandler.Save)
	api.Delete("/wishlist/:album_id", user, deps.WishlistHandler.Unsave)

	// Admin
	admin := api.Group("/admin", user, handlers.RequireAdmin())
	admin.Post("/artists", deps.AdminHandler.CreateArtist)
	admin.Post("/albums", deps.AdminHandler.CreateAlbum)
	admin.Post("/discounts", deps.AdminHandler.CreateDiscount)
	admin.Post("/discounts/:id/albums/:album_id", deps.AdminHandler.LinkDiscount)
	admin.Delete("/discounts/:id/albums/:album_id", deps.AdminHandler.UnlinkDiscount)
	admin.Get("/inventory", deps.InventoryHandler.List)
	admin.Put("/versions/:id/stock", deps.InventoryHandler.SetStock)
	admin.Get("/orders", deps.OrderHandler.ListAll)
	admin.Patch("/orders/:id/status", deps.OrderHandler.UpdateStatus)

	app.Use(func(c *fiber.Ctx) error {
		return apperr.NotFound("route not found")
	})
	return app
}

func rateMax(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func rateWindow(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Minute
	}
	return d
}
