package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"carebook/internal/domain"
	applog "carebook/internal/log"
	"carebook/internal/repos"
	"carebook/internal/services"
	"carebook/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService
}

type registerForm struct {
	Email    string `validate:"required,email,max=150"`
	Password string `validate:"required,password"`
	FullName string `validate:"required,max=150"`
}

func ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   false,
		})
	}
	return sid
}

// isLocalURL accepts only same-site paths: a single leading slash, no
// scheme/host smuggling via "//" or "/\".
func isLocalURL(u string) bool {
	if u == "" || u[0] != '/' {
		return false
	}
	if strings.HasPrefix(u, "//") || strings.HasPrefix(u, "/\\") {
		return false
	}
	return true
}

// redirectByRole maps the stored role onto its landing page; unknown roles
// fall through to a validated local return URL or home.
func redirectByRole(c *fiber.Ctx, role, returnURL string) error {
	switch role {
	case domain.RoleAdmin:
		return c.Redirect("/admin")
	case domain.RoleDoctor:
		return c.Redirect("/doctor")
	case domain.RolePatient:
		return c.Redirect("/patient")
	}
	if isLocalURL(returnURL) {
		return c.Redirect(returnURL)
	}
	return c.Redirect("/")
}

// GET /register
func (h *AuthHandler) RegisterForm(c *fiber.Ctx) error {
	return render(c, "register", fiber.Map{})
}

// POST /register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	f := registerForm{
		Email:    strings.TrimSpace(c.FormValue("email")),
		Password: c.FormValue("password"),
		FullName: strings.TrimSpace(c.FormValue("full_name")),
	}
	// Any submitted role field is ignored: self-registration is Patient only.
	if errs := validate.Struct(f); len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).Render("register", fiber.Map{
			"Errors": errs, "Email": f.Email, "FullName": f.FullName,
			"CSRFToken": c.Cookies("csrf_"),
		})
	}

	u, err := h.Auth.Register(f.Email, f.FullName, f.Password)
	if err != nil {
		msg := "Could not create the account. Please try again."
		if errors.Is(err, repos.ErrDuplicateEmail) {
			msg = "That email address is already registered."
		}
		applog.Info(c, "account.register.fail", map[string]any{"email": f.Email})
		return c.Status(fiber.StatusBadRequest).Render("register", fiber.Map{
			"Errors": []string{msg}, "Email": f.Email, "FullName": f.FullName,
			"CSRFToken": c.Cookies("csrf_"),
		})
	}

	// Auto-login the fresh account.
	sid := ensureSID(c)
	if err := h.Auth.SignIn(sid, u, false); err != nil {
		return err
	}
	applog.Audit(c, "account.register", map[string]any{"email": u.Email})
	return c.Redirect("/patient")
}

// GET /login
func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	tok, _ := c.Locals("CSRFToken").(string)
	if tok == "" {
		tok = c.Cookies("csrf_")
	}
	return render(c, "login", fiber.Map{
		"Err": "", "CSRFToken": tok, "ReturnURL": c.Query("return"),
	})
}

// POST /login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sid := ensureSID(c)
	email := c.FormValue("email")
	pass := c.FormValue("password")
	remember := c.FormValue("remember") != ""
	returnURL := c.FormValue("return_url")

	fail := func(reason string) error {
		applog.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": reason})
		return c.Status(fiber.StatusUnauthorized).Render("login", fiber.Map{
			"Err": "Invalid email or password", "CSRFToken": c.Cookies("csrf_"),
			"ReturnURL": returnURL,
		})
	}

	// Same generic response for malformed input, unknown email and wrong
	// password: no account enumeration.
	email, ok := validate.Email(email)
	if !ok {
		return fail("bad_format")
	}
	u, err := h.Auth.Login(sid, email, pass, remember)
	if err != nil {
		return fail("bad_creds")
	}

	if remember {
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   false,
			Expires:  time.Now().Add(30 * 24 * time.Hour),
		})
	}
	applog.Audit(c, "auth.login.success", map[string]any{"email": email, "role": u.Role})
	return redirectByRole(c, u.Role, returnURL)
}

// POST /logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := ensureSID(c)
	_ = h.Auth.Logout(sid)
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   false,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	applog.Audit(c, "auth.logout", nil)
	return c.Redirect("/")
}
