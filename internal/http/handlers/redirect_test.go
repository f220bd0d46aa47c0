package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestIsLocalURL(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"/", true},
		{"/admin/users", true},
		{"/profile?tab=1", true},
		{"", false},
		{"https://evil.example", false},
		{"http://evil.example/x", false},
		{"//evil.example", false},
		{"/\\evil.example", false},
		{"javascript:alert(1)", false},
		{"relative/path", false},
	}
	for _, tc := range cases {
		if got := isLocalURL(tc.in); got != tc.ok {
			t.Errorf("isLocalURL(%q) = %v, want %v", tc.in, got, tc.ok)
		}
	}
}

// An unrecognized role falls through to the return URL only when it is
// same-site local; otherwise home.
func TestRedirectByRoleFallthrough(t *testing.T) {
	run := func(role, returnURL string) string {
		app := fiber.New()
		app.Get("/go", func(c *fiber.Ctx) error {
			return redirectByRole(c, role, returnURL)
		})
		resp, err := app.Test(httptest.NewRequest("GET", "/go", nil))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusFound {
			t.Fatalf("expected 302, got %d", resp.StatusCode)
		}
		return resp.Header.Get("Location")
	}

	if loc := run("Admin", "/elsewhere"); loc != "/admin" {
		t.Fatalf("Admin -> %q", loc)
	}
	if loc := run("Doctor", ""); loc != "/doctor" {
		t.Fatalf("Doctor -> %q", loc)
	}
	if loc := run("Patient", ""); loc != "/patient" {
		t.Fatalf("Patient -> %q", loc)
	}
	if loc := run("Ghost", "/somewhere/local"); loc != "/somewhere/local" {
		t.Fatalf("unknown role with local url -> %q", loc)
	}
	if loc := run("Ghost", "https://evil.example"); loc != "/" {
		t.Fatalf("unknown role with external url -> %q, want home", loc)
	}
	if loc := run("", ""); loc != "/" {
		t.Fatalf("empty role -> %q, want home", loc)
	}
}
