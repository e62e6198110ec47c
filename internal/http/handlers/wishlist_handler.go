package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "albumshop/internal/log"
	"albumshop/internal/services"
)

type WishlistHandler struct {
	Wish *services.WishlistService
}

type wishlistInput struct {
	AlbumID string `json:"album_id" validate:"required,resid"`
}

func (h *WishlistHandler) List(c *fiber.Ctx) error {
	rows, err := h.Wish.List(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(rows)
}

func (h *WishlistHandler) Save(c *fiber.Ctx) error {
	var in wishlistInput
	if err := bind(c, &in); err != nil {
		return err
	}
	if err := h.Wish.Save(c.UserContext(), currentUser(c).ID, in.AlbumID); err != nil {
		return err
	}
	applog.Info(c, "wishlist.save", map[string]any{"album_id": in.AlbumID})
	return created(c, fiber.Map{"album_id": in.AlbumID})
}

func (h *WishlistHandler) Unsave(c *fiber.Ctx) error {
	id, err := idParam(c, "album_id")
	if err != nil {
		return err
	}
	if err := h.Wish.Unsave(c.UserContext(), currentUser(c).ID, id); err != nil {
		return err
	}
	applog.Info(c, "wishlist.remove", map[string]any{"album_id": id})
	return noContent(c)
}
