package handlers

import (
	"github.com/gofiber/fiber/v2"

	"carebook/internal/domain"
)

// DashboardHandler serves the read-only role-scoped landing and profile
// pages. The route guard has already placed the user in Locals.
type DashboardHandler struct{}

func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}

// GET /doctor and /patient
func (h *DashboardHandler) Home(c *fiber.Ctx) error {
	u := currentUser(c)
	if u == nil {
		return c.Redirect("/login")
	}
	return render(c, "dashboard", fiber.Map{
		"UserName": u.FullName, "UserRole": u.Role, "UserEmail": u.Email,
	})
}

// GET /doctor/profile and /patient/profile
func (h *DashboardHandler) Profile(c *fiber.Ctx) error {
	u := currentUser(c)
	if u == nil {
		return c.Redirect("/login")
	}
	return render(c, "profile", fiber.Map{"Profile": u})
}
