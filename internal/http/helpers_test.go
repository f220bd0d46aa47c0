package handlers_test

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"carebook/internal/domain"
	"carebook/internal/http/handlers"
	"carebook/internal/repos"
	"carebook/internal/services"
)

const testPassword = "Passw0rd!"

// newApp builds a minimal app with the real handlers, an in-memory store and
// the CSRF middleware, mirroring the production wiring.
func newApp(t *testing.T) (*fiber.App, *sqlx.DB, *repos.UserRepo) {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	userRepo := repos.NewUserRepo(db)
	authSvc := &services.AuthService{Users: userRepo}

	engine := html.New("../../web/templates", ".html")
	app := fiber.New(fiber.Config{Views: engine})
	app.Use(requestid.New())
	app.Use(func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if u, err := authSvc.CurrentUser(sid); err == nil && u != nil {
				c.Locals("user", u)
			}
		}
		return c.Next()
	})
	app.Use(csrf.New(csrf.Config{KeyLookup: "form:csrf", CookieName: "csrf_", CookieSameSite: "Lax"}))

	deps := handlers.NewDeps(db, authSvc)
	authH := deps.AuthHandler
	adminH := deps.AdminHandler
	dashH := deps.DashboardHandler

	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })
	app.Get("/register", authH.RegisterForm)
	app.Post("/register", authH.Register)
	app.Get("/login", authH.LoginForm)
	app.Post("/login", authH.Login)
	app.Post("/logout", authH.Logout)

	doctor := app.Group("/doctor", handlers.RequireRole(authSvc, domain.RoleDoctor))
	doctor.Get("/", dashH.Home)
	patient := app.Group("/patient", handlers.RequireRole(authSvc, domain.RolePatient))
	patient.Get("/", dashH.Home)

	admin := app.Group("/admin", handlers.RequireRole(authSvc, domain.RoleAdmin))
	admin.Get("/", adminH.Dashboard)
	admin.Get("/specialties", adminH.SpecialtiesPage)
	admin.Post("/specialties", adminH.CreateSpecialty)
	admin.Post("/specialties/:id/delete", adminH.DeleteSpecialty)
	admin.Get("/doctors", adminH.DoctorsPage)
	admin.Post("/doctors", adminH.CreateDoctor)
	admin.Post("/doctors/:id/delete", adminH.DeleteDoctor)
	admin.Get("/users", adminH.ManageUsers)
	admin.Post("/users/role", adminH.ChangeUserRole)
	admin.Get("/reports", adminH.ReportsPage)

	return app, db, userRepo
}

// seedUser inserts a user with the shared test password and its role
// membership, bypassing registration.
func seedUser(t *testing.T, db *sqlx.DB, id, email, name, role string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), 12)
	if err != nil {
		t.Fatal(err)
	}
	db.MustExec(`INSERT INTO users(id,email,full_name,password_hash,role,active)
	  VALUES(?,?,?,?,?,1)`, id, email, name, string(hash), role)
	db.MustExec(`INSERT INTO user_roles(user_id,role) VALUES(?,?)`, id, role)
}

func extractCookie(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}
