package main

import (
	"io"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"carebook/internal/config"
	"carebook/internal/domain"
	"carebook/internal/http/handlers"
	applog "carebook/internal/log"
	"carebook/internal/repos"
	"carebook/internal/services"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	if err := repos.SeedAdmin(db, cfg.AdminEmail, cfg.AdminName, cfg.AdminPassword); err != nil {
		log.Fatal(err)
	}

	// Auth wiring
	userRepo := repos.NewUserRepo(db)
	authSvc := &services.AuthService{Users: userRepo}

	// Templates & app
	engine := html.New("./web/templates", ".html")
	engine.Reload(true)

	app := fiber.New(fiber.Config{
		Views: engine,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			// Friendly page; never leak internals
			if rerr := c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{
				"Message": "Something went wrong. Please try again.",
			}); rerr != nil {
				return c.Status(fiber.StatusInternalServerError).SendString("Something went wrong. Please try again.")
			}
			return nil
		},
	})
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	// Attach user to context if logged in (for templates/logging)
	app.Use(func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if u, err := authSvc.CurrentUser(sid); err == nil && u != nil {
				c.Locals("user", u)
			}
		}
		return c.Next()
	})
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   false, // set true behind HTTPS
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", map[string]any{"form": c.FormValue("csrf")})
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Security check failed. Please refresh and try again."})
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok := c.Locals("csrf"); tok != nil {
			c.Locals("CSRFToken", tok.(string))
		}
		return c.Next()
	})

	// ---------- App handlers ----------
	deps := handlers.NewDeps(db, authSvc)
	authH := deps.AuthHandler
	adminH := deps.AdminHandler
	dashH := deps.DashboardHandler

	// Public pages
	app.Get("/", func(c *fiber.Ctx) error {
		tok, _ := c.Locals("CSRFToken").(string)
		return c.Render("home", fiber.Map{"User": c.Locals("user"), "CSRFToken": tok})
	})

	// Account
	app.Get("/register", authH.RegisterForm)
	app.Post("/register", authH.Register)
	app.Get("/login", authH.LoginForm)
	app.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).Render("login", fiber.Map{"Err": "Too many attempts. Please try again later."})
		},
	}), authH.Login)
	app.Post("/logout", authH.Logout)

	// Role-scoped dashboards
	doctor := app.Group("/doctor", handlers.RequireRole(authSvc, domain.RoleDoctor))
	doctor.Get("/", dashH.Home)
	doctor.Get("/profile", dashH.Profile)

	patient := app.Group("/patient", handlers.RequireRole(authSvc, domain.RolePatient))
	patient.Get("/", dashH.Home)
	patient.Get("/profile", dashH.Profile)

	// Admin panel
	admin := app.Group("/admin", handlers.RequireRole(authSvc, domain.RoleAdmin))
	admin.Get("/", adminH.Dashboard)
	admin.Get("/specialties", adminH.SpecialtiesPage)
	admin.Get("/specialties/new", adminH.NewSpecialtyForm)
	admin.Post("/specialties", adminH.CreateSpecialty)
	admin.Get("/specialties/:id/edit", adminH.EditSpecialtyForm)
	admin.Post("/specialties/:id", adminH.UpdateSpecialty)
	admin.Post("/specialties/:id/delete", adminH.DeleteSpecialty)
	admin.Get("/doctors", adminH.DoctorsPage)
	admin.Get("/doctors/new", adminH.NewDoctorForm)
	admin.Post("/doctors", adminH.CreateDoctor)
	admin.Get("/doctors/:id/edit", adminH.EditDoctorForm)
	admin.Post("/doctors/:id", adminH.UpdateDoctor)
	admin.Post("/doctors/:id/delete", adminH.DeleteDoctor)
	admin.Get("/users", adminH.ManageUsers)
	admin.Get("/users/patients", adminH.PatientsPage)
	admin.Get("/users/doctors", adminH.DoctorUsersPage)
	admin.Post("/users/role", adminH.ChangeUserRole)
	admin.Get("/reports", adminH.ReportsPage)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Page not found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
