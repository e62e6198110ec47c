package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "albumshop/internal/log"
	"albumshop/internal/services"
)

type InventoryHandler struct {
	Inv *services.InventoryService
}

// GET /api/versions/:id/availability
func (h *InventoryHandler) Check(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	av, err := h.Inv.CheckAvailability(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(av)
}

type stockInput struct {
	StockQuantity *int `json:"stock_quantity" validate:"required,gte=0,lte=100000"`
}

// PUT /api/admin/versions/:id/stock
func (h *InventoryHandler) SetStock(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var in stockInput
	if err := bind(c, &in); err != nil {
		return err
	}
	if err := h.Inv.SetStock(c.UserContext(), id, *in.StockQuantity); err != nil {
		return err
	}
	applog.Audit(c, "admin.inventory.save", map[string]any{"version_id": id, "qty": *in.StockQuantity})
	return c.JSON(fiber.Map{"version_id": id, "stock_quantity": *in.StockQuantity})
}

// GET /api/admin/inventory
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	rows, err := h.Inv.ListAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(rows)
}
