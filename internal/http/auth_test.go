package handlers_test

import (
	"io"
	"net/http"
	"net/url"
	"testing"

	"carebook/internal/domain"
)

// Post-login redirection is a pure function of the stored role.
func TestLoginRedirectsByRole(t *testing.T) {
	app, db, _ := newApp(t)
	seedUser(t, db, "u-adm", "adm@x.com", "Adm", domain.RoleAdmin)
	seedUser(t, db, "u-doc", "doc@x.com", "Doc", domain.RoleDoctor)
	seedUser(t, db, "u-pat", "pat@x.com", "Pat", domain.RolePatient)

	cases := []struct{ email, want string }{
		{"adm@x.com", "/admin"},
		{"doc@x.com", "/doctor"},
		{"pat@x.com", "/patient"},
	}
	for _, tc := range cases {
		tok := fetchCSRF(t, app)
		resp, err := app.Test(postForm(t, "/login", tok, url.Values{
			"email":    {tc.email},
			"password": {testPassword},
		}))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusFound {
			t.Fatalf("%s: expected redirect, got %d", tc.email, resp.StatusCode)
		}
		if loc := resp.Header.Get("Location"); loc != tc.want {
			t.Fatalf("%s: redirected to %q, want %q", tc.email, loc, tc.want)
		}
	}
}

// Unknown email and wrong password must be indistinguishable: same status,
// same page.
func TestLoginFailureShapeIsUniform(t *testing.T) {
	app, db, _ := newApp(t)
	seedUser(t, db, "u-k", "known@x.com", "Known", domain.RolePatient)

	// One token for both attempts so the rendered pages are byte-comparable.
	tok := fetchCSRF(t, app)
	attempt := func(email, pass string) (int, string) {
		resp, err := app.Test(postForm(t, "/login", tok, url.Values{
			"email": {email}, "password": {pass},
		}))
		if err != nil {
			t.Fatal(err)
		}
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, string(body)
	}

	stUnknown, bodyUnknown := attempt("nobody@x.com", "Whatever1!")
	stWrong, bodyWrong := attempt("known@x.com", "Whatever1!")

	if stUnknown != http.StatusUnauthorized || stWrong != http.StatusUnauthorized {
		t.Fatalf("expected 401/401, got %d/%d", stUnknown, stWrong)
	}
	if bodyUnknown != bodyWrong {
		t.Fatal("failure responses differ; enumeration signal leaked")
	}
}

// A hostile return_url must never be followed, even when the role routing
// would not normally consult it.
func TestLoginIgnoresExternalReturnURL(t *testing.T) {
	app, db, _ := newApp(t)
	seedUser(t, db, "u-p", "p@x.com", "P", domain.RolePatient)

	for _, evil := range []string{"https://evil.example", "//evil.example", "/\\evil.example"} {
		tok := fetchCSRF(t, app)
		resp, err := app.Test(postForm(t, "/login", tok, url.Values{
			"email":      {"p@x.com"},
			"password":   {testPassword},
			"return_url": {evil},
		}))
		if err != nil {
			t.Fatal(err)
		}
		loc := resp.Header.Get("Location")
		if loc != "/patient" {
			t.Fatalf("return_url %q: redirected to %q", evil, loc)
		}
	}
}

func TestLogoutDestroysSession(t *testing.T) {
	app, db, userRepo := newApp(t)
	seedUser(t, db, "u-x", "x@x.com", "X", domain.RolePatient)
	if err := userRepo.BindSession("sid-x", "u-x", false); err != nil {
		t.Fatal(err)
	}

	tok := fetchCSRF(t, app)
	resp, err := app.Test(postForm(t, "/logout", tok, url.Values{},
		&http.Cookie{Name: "sid", Value: "sid-x"}))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected redirect home, got %d", resp.StatusCode)
	}
	if _, err := userRepo.SessionUser("sid-x"); err == nil {
		t.Fatal("session should be gone after logout")
	}
}
