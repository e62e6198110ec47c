package handlers

import (
	"github.com/gofiber/fiber/v2"

	"albumshop/internal/apperr"
	applog "albumshop/internal/log"
	"albumshop/internal/services"
	"albumshop/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService
}

// POST /api/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in services.RegisterInput
	if err := bind(c, &in); err != nil {
		return err
	}
	reg, err := h.Auth.Register(c.UserContext(), in)
	if err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			applog.Security(c, "auth.register.fail", map[string]any{"reason": "duplicate_email"})
		}
		return err
	}
	c.Locals(applog.LocalUserID, reg.UserID)
	applog.Audit(c, "auth.register", map[string]any{"cart_id": reg.CartID})
	return created(c, reg)
}

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in loginInput
	if err := bind(c, &in); err != nil {
		return err
	}
	email, ok := validate.Email(in.Email)
	if !ok || in.Password == "" || len(in.Password) > 72 {
		applog.Security(c, "auth.login.fail", map[string]any{"reason": "bad_format"})
		return services.ErrBadCreds
	}
	res, err := h.Auth.Login(c.UserContext(), email, in.Password)
	if err != nil {
		if apperr.Is(err, apperr.KindUnauthorized) {
			applog.Security(c, "auth.login.fail", map[string]any{"email": email})
		}
		return err
	}
	c.Locals(applog.LocalUserID, res.UserID)
	applog.Audit(c, "auth.login.success", map[string]any{"is_admin": res.IsAdmin})
	return c.JSON(res)
}
