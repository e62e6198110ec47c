package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "albumshop/internal/log"
	"albumshop/internal/services"
)

type CartHandler struct {
	Cart *services.CartService
}

type addItemInput struct {
	VersionID string `json:"version_id" validate:"required,resid"`
	Quantity  int    `json:"quantity" validate:"omitempty,min=1,max=99"`
}

// POST /api/cart
func (h *CartHandler) Add(c *fiber.Ctx) error {
	var in addItemInput
	if err := bind(c, &in); err != nil {
		return err
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	u := currentUser(c)
	if err := h.Cart.AddItem(c.UserContext(), u.ID, in.VersionID, in.Quantity); err != nil {
		return err
	}
	applog.Info(c, "cart.add", map[string]any{"version_id": in.VersionID, "qty": in.Quantity})
	cv, err := h.Cart.GetCart(c.UserContext(), u.ID)
	if err != nil {
		return err
	}
	return created(c, cv)
}

// GET /api/cart
func (h *CartHandler) View(c *fiber.Ctx) error {
	cv, err := h.Cart.GetCart(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(cv)
}

// DELETE /api/cart/:item_id
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	id, err := idParam(c, "item_id")
	if err != nil {
		return err
	}
	if err := h.Cart.RemoveItem(c.UserContext(), currentUser(c).ID, id); err != nil {
		return err
	}
	applog.Info(c, "cart.remove", map[string]any{"item_id": id})
	return noContent(c)
}
