package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "carebook/internal/log"
	"carebook/internal/services"
)

// RequireRole rejects the request before the handler body runs unless the
// session resolves to an active user holding exactly the given role.
func RequireRole(auth *services.AuthService, role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies("sid")
		if sid == "" {
			return c.Redirect("/login?return=" + c.Path())
		}
		u, err := auth.CurrentUser(sid)
		if err != nil || u == nil {
			return c.Redirect("/login?return=" + c.Path())
		}
		if u.Role != role {
			applog.Security(c, "access.denied", map[string]any{"need": role, "have": u.Role})
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Access denied"})
		}
		c.Locals("user", u)
		return c.Next()
	}
}

// RequireUser enforces any signed-in user; otherwise redirect to login.
func RequireUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies("sid")
		if sid == "" {
			return c.Redirect("/login")
		}
		u, err := auth.CurrentUser(sid)
		if err != nil || u == nil {
			return c.Redirect("/login")
		}
		c.Locals("user", u)
		return c.Next()
	}
}
