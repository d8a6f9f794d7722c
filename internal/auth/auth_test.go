package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"curia-backend/internal/config"
	"curia-backend/internal/engine"
	"curia-backend/internal/store"
)

const testSecret = "test-secret"

func TestAccessToken_RoundTrip(t *testing.T) {
	tok, err := GenerateAccessToken("u1", "editor@curia.org", []string{"editor"}, testSecret)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := ParseAccessToken(tok, testSecret)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "u1" || claims.Email != "editor@curia.org" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != "editor" {
		t.Fatalf("unexpected roles: %v", claims.Roles)
	}

	if _, err := ParseAccessToken(tok, "other-secret"); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestPassword_HashAndCheck(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword("s3cret", hash) {
		t.Fatal("expected password to match")
	}
	if CheckPassword("wrong", hash) {
		t.Fatal("expected mismatch")
	}
}

func newAuthApp(t *testing.T) *fiber.App {
	t.Helper()
	ctx := context.Background()
	s, err := store.New(ctx, config.DatabaseConfig{Driver: "sqlite", Name: ":memory:"})
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	t.Cleanup(s.Close)
	if err := s.Bootstrap(ctx); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	app := fiber.New(fiber.Config{ErrorHandler: engine.ErrorHandler})
	RegisterAuthRoutes(app, NewAuthHandler(s, testSecret))
	app.Get("/api/me", AuthMiddleware(testSecret), func(c *fiber.Ctx) error {
		return c.JSON(GetUser(c))
	})
	app.Get("/api/admin-only", AuthMiddleware(testSecret), RequireAdmin(), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})
	return app
}

func login(t *testing.T, app *fiber.App, email, password string) (*http.Response, TokenPair) {
	t.Helper()
	body := `{"email":"` + email + `","password":"` + password + `"}`
	req, _ := http.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	var out struct {
		Data TokenPair `json:"data"`
	}
	raw, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(raw, &out)
	return resp, out.Data
}

func TestLogin_DefaultAdmin(t *testing.T) {
	app := newAuthApp(t)

	resp, pair := login(t, app, "admin@localhost", "changeme")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected token pair, got %+v", pair)
	}

	req, _ := http.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("me request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var me struct {
		Email string   `json:"email"`
		Roles []string `json:"roles"`
	}
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &me); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if me.Email != "admin@localhost" {
		t.Fatalf("expected admin email in context, got %q", me.Email)
	}

	req, _ = http.NewRequest(http.MethodGet, "/api/admin-only", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	resp, _ = app.Test(req, -1)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected admin access, got %d", resp.StatusCode)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	app := newAuthApp(t)
	resp, _ := login(t, app, "admin@localhost", "nope")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestMiddleware_Rejects(t *testing.T) {
	app := newAuthApp(t)

	editorTok, _ := GenerateAccessToken("u2", "ed@curia.org", []string{"editor"}, testSecret)

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"missing header", "/api/me", "", http.StatusUnauthorized},
		{"bad scheme", "/api/me", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "/api/me", "Bearer abc", http.StatusUnauthorized},
		{"editor on admin route", "/api/admin-only", "Bearer " + editorTok, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req, -1)
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			if resp.StatusCode != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, resp.StatusCode)
			}
		})
	}
}
