package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"curia-backend/internal/engine"
	"curia-backend/internal/store"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	store     *store.Store
	jwtSecret string
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(s *store.Store, jwtSecret string) *AuthHandler {
	return &AuthHandler{store: s, jwtSecret: jwtSecret}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return engine.MalformedInputError("", "Invalid request body")
	}
	if body.Email == "" || body.Password == "" {
		return engine.UnauthorizedError("Email and password are required")
	}

	ctx := c.Context()

	user, err := h.findUserByEmail(ctx, body.Email)
	if err != nil {
		return engine.UnauthorizedError("Invalid email or password")
	}

	if !isActive(user["active"]) {
		return engine.UnauthorizedError("Account is disabled")
	}

	passwordHash, _ := user["password_hash"].(string)
	if !CheckPassword(body.Password, passwordHash) {
		return engine.UnauthorizedError("Invalid email or password")
	}

	userID := fmt.Sprint(user["id"])
	email, _ := user["email"].(string)
	roles, _ := h.store.Dialect.ScanArray(user["roles"])

	pair, err := h.generateTokenPair(ctx, userID, email, roles)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": pair})
}

// Refresh handles POST /api/auth/refresh.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.BodyParser(&body); err != nil {
		return engine.MalformedInputError("", "Invalid request body")
	}
	if body.RefreshToken == "" {
		return engine.UnauthorizedError("Refresh token is required")
	}

	ctx := c.Context()
	d := h.store.Dialect

	row, err := store.QueryRow(ctx, h.store.DB, fmt.Sprintf(
		`SELECT rt.id, rt.user_id, rt.expires_at, u.email, u.roles, u.active
		 FROM _refresh_tokens rt
		 JOIN _users u ON u.id = rt.user_id
		 WHERE rt.token = %s`, d.Placeholder(1)), body.RefreshToken)
	if err != nil {
		return engine.UnauthorizedError("Invalid refresh token")
	}

	expiresAt, _ := row["expires_at"].(time.Time)
	if time.Now().After(expiresAt) {
		_, _ = store.Exec(ctx, h.store.DB,
			fmt.Sprintf("DELETE FROM _refresh_tokens WHERE token = %s", d.Placeholder(1)), body.RefreshToken)
		return engine.UnauthorizedError("Refresh token expired")
	}

	if !isActive(row["active"]) {
		return engine.UnauthorizedError("Account is disabled")
	}

	// Rotation: a refresh token is good for one use
	_, _ = store.Exec(ctx, h.store.DB,
		fmt.Sprintf("DELETE FROM _refresh_tokens WHERE id = %s", d.Placeholder(1)), row["id"])

	userID := fmt.Sprint(row["user_id"])
	email, _ := row["email"].(string)
	roles, _ := d.ScanArray(row["roles"])

	pair, err := h.generateTokenPair(ctx, userID, email, roles)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": pair})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.BodyParser(&body); err != nil {
		return engine.MalformedInputError("", "Invalid request body")
	}
	if body.RefreshToken == "" {
		return engine.UnauthorizedError("Refresh token is required")
	}

	_, _ = store.Exec(c.Context(), h.store.DB,
		fmt.Sprintf("DELETE FROM _refresh_tokens WHERE token = %s", h.store.Dialect.Placeholder(1)), body.RefreshToken)

	return c.JSON(fiber.Map{"message": "Logged out"})
}

// RegisterAuthRoutes registers auth routes on the given Fiber app. They must
// be registered before any /api group carrying the auth middleware.
func RegisterAuthRoutes(app *fiber.App, h *AuthHandler) {
	auth := app.Group("/api/auth")
	auth.Post("/login", h.Login)
	auth.Post("/refresh", h.Refresh)
	auth.Post("/logout", h.Logout)
}

// --- helpers ---

func (h *AuthHandler) findUserByEmail(ctx context.Context, email string) (map[string]any, error) {
	return store.QueryRow(ctx, h.store.DB, fmt.Sprintf(
		"SELECT id, email, password_hash, roles, active FROM _users WHERE email = %s",
		h.store.Dialect.Placeholder(1)), email)
}

func (h *AuthHandler) generateTokenPair(ctx context.Context, userID, email string, roles []string) (*TokenPair, error) {
	accessToken, err := GenerateAccessToken(userID, email, roles, h.jwtSecret)
	if err != nil {
		return nil, engine.NewAppError("INTERNAL_ERROR", 500, "Failed to generate access token")
	}

	refreshToken := GenerateRefreshToken()
	expiresAt := time.Now().UTC().Add(RefreshTokenTTL)

	pb := h.store.Dialect.NewParamBuilder()
	sql := fmt.Sprintf("INSERT INTO _refresh_tokens (id, user_id, token, expires_at) VALUES (%s, %s, %s, %s)",
		pb.Add(uuid.New().String()), pb.Add(userID), pb.Add(refreshToken), pb.Add(expiresAt))
	if _, err := store.Exec(ctx, h.store.DB, sql, pb.Params()...); err != nil {
		return nil, engine.NewAppError("INTERNAL_ERROR", 500, "Failed to store refresh token")
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// isActive reads the active flag as stored by either dialect.
func isActive(v any) bool {
	switch a := v.(type) {
	case bool:
		return a
	case int64:
		return a != 0
	case int:
		return a != 0
	default:
		return false
	}
}
