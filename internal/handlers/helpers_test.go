package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/example/dukan/internal/config"
	"github.com/example/dukan/internal/database"
	"github.com/example/dukan/internal/models"
	"github.com/example/dukan/internal/routes"
	"github.com/example/dukan/internal/utils"
)

const testSecret = "test-secret"

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:             "test",
		JWTSecret:          testSecret,
		SessionTTL:         90 * 24 * time.Hour,
		DeviceTrustTTL:     90 * 24 * time.Hour,
		CodeTTL:            30 * time.Minute,
		EditWindow:         2 * time.Hour,
		DefaultCountryCode: "+970",
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// In-memory sqlite lives per connection; keep the pool at one so every
	// query sees the migrated schema.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB, *config.Config) {
	t.Helper()

	db := newTestDB(t)
	cfg := testConfig()

	app := fiber.New()
	routes.Register(app, db, cfg, nil)

	return app, db, cfg
}

func seedUser(t *testing.T, db *gorm.DB, phone, email string, active bool) *models.User {
	t.Helper()

	user := &models.User{
		Phone:    phone,
		Name:     "Test Customer",
		Email:    email,
		IsActive: active,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price float64) *models.Product {
	t.Helper()

	product := &models.Product{
		Name:      name,
		SKU:       "sku-" + name,
		Unit:      "pc",
		UnitPrice: price,
		Currency:  "ILS",
		IsActive:  true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

// sessionCookie mints a valid session token for direct handler tests that
// don't exercise the login flow itself.
func sessionCookie(t *testing.T, cfg *config.Config, user *models.User) *http.Cookie {
	t.Helper()

	token, err := utils.GenerateToken(cfg.JWTSecret, utils.SessionPayload{
		UserID:  user.ID,
		Phone:   user.Phone,
		IsAdmin: user.IsAdmin,
	}, cfg.SessionTTL)
	require.NoError(t, err)

	return &http.Cookie{Name: "auth-token", Value: token}
}

func jsonRequest(t *testing.T, method, target string, body interface{}, cookies ...*http.Cookie) *http.Request {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		if cookie != nil {
			req.AddCookie(cookie)
		}
	}
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NoError(t, resp.Body.Close())
	return body
}

func responseCookie(resp *http.Response, name string) *http.Cookie {
	for _, cookie := range resp.Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

// storedCode fetches the latest verification code row for a phone, the way a
// user would read it from their inbox.
func storedCode(t *testing.T, db *gorm.DB, phone, codeType string) string {
	t.Helper()

	var record models.VerificationCode
	require.NoError(t, db.Where("phone = ? AND type = ?", phone, codeType).
		Order("created_at desc").First(&record).Error)
	return record.Code
}
