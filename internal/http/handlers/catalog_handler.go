package handlers

import (
	"github.com/gofiber/fiber/v2"

	"albumshop/internal/services"
)

type CatalogHandler struct {
	Catalog *services.CatalogService
}

// GET /api/albums?page=&page_size=
func (h *CatalogHandler) Albums(c *fiber.Ctx) error {
	out, err := h.Catalog.ListAlbums(c.UserContext(), c.QueryInt("page", 1), c.QueryInt("page_size", 0))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// GET /api/albums/:id
func (h *CatalogHandler) Album(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	a, err := h.Catalog.GetAlbum(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(a)
}

// GET /api/search?q=
func (h *CatalogHandler) Search(c *fiber.Ctx) error {
	out, err := h.Catalog.Search(c.UserContext(), c.Query("q"), c.QueryInt("page", 1), c.QueryInt("page_size", 0))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

func (h *CatalogHandler) Categories(c *fiber.Ctx) error {
	return c.JSON(h.Catalog.ListCategories())
}

// GET /api/artists/category/:category
func (h *CatalogHandler) ArtistsByCategory(c *fiber.Ctx) error {
	out, err := h.Catalog.ArtistsByCategory(c.UserContext(), c.Params("category"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// GET /api/artists/:id
func (h *CatalogHandler) Artist(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	a, err := h.Catalog.GetArtist(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(a)
}
