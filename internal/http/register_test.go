package handlers_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"carebook/internal/domain"
)

func postForm(t *testing.T, path, csrfTok string, vals url.Values, cookies ...*http.Cookie) *http.Request {
	t.Helper()
	vals.Set("csrf", csrfTok)
	req := httptest.NewRequest("POST", path, strings.NewReader(vals.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "csrf_", Value: csrfTok})
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func fetchCSRF(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", "/login", nil))
	if err != nil {
		t.Fatal(err)
	}
	tok := extractCookie(resp, "csrf_")
	if tok == "" {
		t.Fatal("csrf token missing")
	}
	return tok
}

// Registration always stores the Patient role, even when the submission
// smuggles a role field, and signs the new account in.
func TestRegisterForcesPatientRoleAndSignsIn(t *testing.T) {
	app, _, userRepo := newApp(t)
	tok := fetchCSRF(t, app)

	resp, err := app.Test(postForm(t, "/register", tok, url.Values{
		"email":     {"a@x.com"},
		"password":  {"Aa1!aaaa"},
		"full_name": {"A B"},
		"role":      {"Admin"}, // ignored
	}))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected redirect, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/patient" {
		t.Fatalf("expected /patient landing, got %q", loc)
	}

	u, err := userRepo.ByEmail("a@x.com")
	if err != nil {
		t.Fatal(err)
	}
	if u.Role != domain.RolePatient {
		t.Fatalf("stored role = %q, want Patient", u.Role)
	}

	// Auto-login: the sid cookie resolves to the new account.
	sid := extractCookie(resp, "sid")
	if sid == "" {
		t.Fatal("no session cookie set")
	}
	cur, err := userRepo.SessionUser(sid)
	if err != nil || cur.ID != u.ID {
		t.Fatalf("session not bound to new account: %v", err)
	}
}

func TestRegisterInvalidInputRedisplaysForm(t *testing.T) {
	app, _, userRepo := newApp(t)
	tok := fetchCSRF(t, app)

	resp, err := app.Test(postForm(t, "/register", tok, url.Values{
		"email":     {"not-an-email"},
		"password":  {"short"},
		"full_name": {""},
	}))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 redisplay, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "Password must be") {
		t.Fatalf("validation messages missing from redisplay")
	}
	if _, err := userRepo.ByEmail("not-an-email"); err == nil {
		t.Fatal("invalid submission must not create a user")
	}
}

func TestRegisterDuplicateEmailRedisplays(t *testing.T) {
	app, db, _ := newApp(t)
	seedUser(t, db, "u-1", "taken@x.com", "Taken", domain.RolePatient)
	tok := fetchCSRF(t, app)

	resp, err := app.Test(postForm(t, "/register", tok, url.Values{
		"email":     {"taken@x.com"},
		"password":  {"Aa1!aaaa"},
		"full_name": {"Dup"},
	}))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "already registered") {
		t.Fatal("duplicate-email message missing")
	}
}
