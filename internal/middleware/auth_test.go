package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/dukan/internal/config"
	"github.com/example/dukan/internal/middleware"
	"github.com/example/dukan/internal/utils"
)

func newProtectedApp(cfg *config.Config) *fiber.App {
	app := fiber.New()
	app.Get("/private", middleware.AuthMiddleware(cfg), func(c *fiber.Ctx) error {
		session, _ := middleware.GetSession(c)
		return c.JSON(fiber.Map{"phone": session.Phone, "is_admin": session.IsAdmin})
	})
	app.Get("/admin", middleware.AuthMiddleware(cfg), middleware.AdminRequired(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	return app
}

func mintToken(t *testing.T, cfg *config.Config, isAdmin bool) string {
	t.Helper()

	token, err := utils.GenerateToken(cfg.JWTSecret, utils.SessionPayload{
		UserID:  uuid.New(),
		Phone:   "+970599123456",
		IsAdmin: isAdmin,
	}, time.Hour)
	require.NoError(t, err)
	return token
}

func TestAuthMiddleware_CookieAndBearer(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret"}
	app := newProtectedApp(cfg)
	token := mintToken(t, cfg, false)

	req := httptest.NewRequest("GET", "/private", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: token})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req = httptest.NewRequest("GET", "/private", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthMiddleware_RejectsMissingAndInvalid(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret"}
	app := newProtectedApp(cfg)

	resp, err := app.Test(httptest.NewRequest("GET", "/private", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest("GET", "/private", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "garbage"})
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// A token signed with a different secret must not pass.
	foreign, err := utils.GenerateToken("other-secret", utils.SessionPayload{
		UserID: uuid.New(), Phone: "+970599123456",
	}, time.Hour)
	require.NoError(t, err)

	req = httptest.NewRequest("GET", "/private", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: foreign})
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminRequired(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret"}
	app := newProtectedApp(cfg)

	req := httptest.NewRequest("GET", "/admin", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: mintToken(t, cfg, false)})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest("GET", "/admin", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: mintToken(t, cfg, true)})
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
