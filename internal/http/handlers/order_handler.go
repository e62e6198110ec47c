package handlers

import (
	"github.com/gofiber/fiber/v2"

	"albumshop/internal/apperr"
	"albumshop/internal/domain"
	applog "albumshop/internal/log"
	"albumshop/internal/services"
)

type OrderHandler struct {
	Order *services.OrderService
}

// Totals or prices sent by the client are not part of the input; the order
// is always priced from the stored cart.
type placeOrderInput struct {
	ShippingAddressID string `json:"shipping_address_id" validate:"omitempty,resid"`
}

// POST /api/orders
func (h *OrderHandler) Place(c *fiber.Ctx) error {
	var in placeOrderInput
	if err := bind(c, &in); err != nil {
		return err
	}
	o, err := h.Order.Checkout(c.UserContext(), currentUser(c).ID, in.ShippingAddressID)
	if err != nil {
		switch apperr.KindOf(err) {
		case apperr.KindOutOfStock, apperr.KindInvalidState:
			applog.Info(c, "order.place.reject", map[string]any{"reason": string(apperr.KindOf(err))})
		}
		return err
	}
	applog.Audit(c, "order.place", map[string]any{
		"order_id": o.ID,
		"total":    o.TotalAmount.StringFixed(2),
		"lines":    len(o.Items),
	})
	return created(c, o)
}

// GET /api/orders
func (h *OrderHandler) History(c *fiber.Ctx) error {
	orders, err := h.Order.ListOrders(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(orders)
}

// GET /api/orders/:id
func (h *OrderHandler) View(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	o, err := h.Order.GetOrder(c.UserContext(), currentUser(c).ID, id)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			applog.Security(c, "access.denied.order", map[string]any{"order_id": id})
		}
		return err
	}
	return c.JSON(o)
}

// GET /api/admin/orders
func (h *OrderHandler) ListAll(c *fiber.Ctx) error {
	orders, err := h.Order.ListAllOrders(c.UserContext(), c.QueryInt("limit", 100))
	if err != nil {
		return err
	}
	return c.JSON(orders)
}

type statusInput struct {
	Status         string `json:"status" validate:"required"`
	TrackingNumber string `json:"tracking_number" validate:"max=64"`
}

// PATCH /api/admin/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var in statusInput
	if err := bind(c, &in); err != nil {
		return err
	}
	next, err := domain.ParseOrderStatus(in.Status)
	if err != nil {
		return apperr.Wrap(apperr.KindInvalidInput, err, "unknown order status").
			WithDetails(map[string]string{"status": "must be one of created, paid, shipped, delivered, cancelled"})
	}
	o, err := h.Order.UpdateStatus(c.UserContext(), id, next, in.TrackingNumber)
	if err != nil {
		return err
	}
	applog.Audit(c, "admin.orders.update", map[string]any{"order_id": id, "status": string(next)})
	return c.JSON(o)
}
