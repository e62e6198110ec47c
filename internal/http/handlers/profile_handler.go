package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "albumshop/internal/log"
	"albumshop/internal/services"
)

type ProfileHandler struct {
	Profile *services.ProfileService
}

// GET /api/me
func (h *ProfileHandler) Me(c *fiber.Ctx) error {
	return c.JSON(currentUser(c))
}

// PUT /api/me
func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	var in services.NameInput
	if err := bind(c, &in); err != nil {
		return err
	}
	u, err := h.Profile.UpdateName(c.UserContext(), currentUser(c).ID, in)
	if err != nil {
		return err
	}
	applog.Audit(c, "profile.update", nil)
	return c.JSON(u)
}

func (h *ProfileHandler) Addresses(c *fiber.Ctx) error {
	out, err := h.Profile.ListAddresses(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

func (h *ProfileHandler) AddAddress(c *fiber.Ctx) error {
	var in services.AddressInput
	if err := bind(c, &in); err != nil {
		return err
	}
	a, err := h.Profile.AddAddress(c.UserContext(), currentUser(c).ID, in)
	if err != nil {
		return err
	}
	applog.Audit(c, "address.add", map[string]any{"address_id": a.ID})
	return created(c, a)
}

func (h *ProfileHandler) DeleteAddress(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.Profile.DeleteAddress(c.UserContext(), currentUser(c).ID, id); err != nil {
		return err
	}
	applog.Audit(c, "address.delete", map[string]any{"address_id": id})
	return noContent(c)
}
