package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "albumshop/internal/log"
	"albumshop/internal/services"
)

type AdminHandler struct {
	Admin *services.AdminService
}

// POST /api/admin/artists
func (h *AdminHandler) CreateArtist(c *fiber.Ctx) error {
	var in services.ArtistInput
	if err := bind(c, &in); err != nil {
		return err
	}
	a, err := h.Admin.CreateArtist(c.UserContext(), in)
	if err != nil {
		return err
	}
	applog.Audit(c, "admin.artist.create", map[string]any{"artist_id": a.ID})
	return created(c, a)
}

// POST /api/admin/albums
func (h *AdminHandler) CreateAlbum(c *fiber.Ctx) error {
	var in services.AlbumInput
	if err := bind(c, &in); err != nil {
		return err
	}
	a, err := h.Admin.CreateAlbum(c.UserContext(), in)
	if err != nil {
		return err
	}
	applog.Audit(c, "admin.album.create", map[string]any{"album_id": a.ID, "versions": len(a.Versions)})
	return created(c, a)
}

// POST /api/admin/discounts
func (h *AdminHandler) CreateDiscount(c *fiber.Ctx) error {
	var in services.DiscountInput
	if err := bind(c, &in); err != nil {
		return err
	}
	d, err := h.Admin.CreateDiscount(c.UserContext(), in)
	if err != nil {
		return err
	}
	applog.Audit(c, "admin.discount.create", map[string]any{"discount_id": d.ID, "percent": d.Percent.String()})
	return created(c, d)
}

func linkParams(c *fiber.Ctx) (discountID, albumID string, err error) {
	if discountID, err = idParam(c, "id"); err != nil {
		return "", "", err
	}
	if albumID, err = idParam(c, "album_id"); err != nil {
		return "", "", err
	}
	return discountID, albumID, nil
}

// POST /api/admin/discounts/:id/albums/:album_id
func (h *AdminHandler) LinkDiscount(c *fiber.Ctx) error {
	discountID, albumID, err := linkParams(c)
	if err != nil {
		return err
	}
	if err := h.Admin.LinkDiscount(c.UserContext(), discountID, albumID); err != nil {
		return err
	}
	applog.Audit(c, "admin.discount.link", map[string]any{"discount_id": discountID, "album_id": albumID})
	return noContent(c)
}

// DELETE /api/admin/discounts/:id/albums/:album_id
func (h *AdminHandler) UnlinkDiscount(c *fiber.Ctx) error {
	discountID, albumID, err := linkParams(c)
	if err != nil {
		return err
	}
	if err := h.Admin.UnlinkDiscount(c.UserContext(), discountID, albumID); err != nil {
		return err
	}
	applog.Audit(c, "admin.discount.unlink", map[string]any{"discount_id": discountID, "album_id": albumID})
	return noContent(c)
}
