package handlers

import (
	"github.com/gofiber/fiber/v2"

	"albumshop/internal/apperr"
	"albumshop/internal/auth"
	applog "albumshop/internal/log"
	"albumshop/internal/services"
)

// RequireUser authenticates the bearer token and stores the user in Locals.
func RequireUser(authSvc *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := auth.BearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return apperr.New(apperr.KindUnauthorized, "missing bearer token")
		}
		u, err := authSvc.Authenticate(c.UserContext(), token)
		if err != nil {
			if apperr.Is(err, apperr.KindUnauthorized) {
				applog.Security(c, "auth.token.reject", nil)
			}
			return err
		}
		c.Locals("user", u)
		c.Locals(applog.LocalUserID, u.ID)
		return c.Next()
	}
}

// RequireAdmin must run after RequireUser.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := currentUser(c)
		if u == nil || !u.IsAdmin {
			applog.Security(c, "access.denied.admin", nil)
			return apperr.New(apperr.KindForbidden, "admin access required")
		}
		return c.Next()
	}
}
