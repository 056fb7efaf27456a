package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/example/dukan/internal/models"
)

func placeOrder(t *testing.T, app *fiber.App, cookie *http.Cookie, items []fiber.Map) map[string]interface{} {
	t.Helper()

	resp, err := app.Test(jsonRequest(t, "POST", "/api/orders", fiber.Map{"items": items}, cookie))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	return data
}

func latestOrder(t *testing.T, db *gorm.DB) *models.Order {
	t.Helper()

	var order models.Order
	require.NoError(t, db.Preload("Items").Order("created_at desc").First(&order).Error)
	return &order
}

func TestCreateOrder_SnapshotsCatalogAndOpensWindow(t *testing.T) {
	app, db, cfg := newTestApp(t)
	user := seedUser(t, db, "+970599123456", "user@example.com", true)
	cookie := sessionCookie(t, cfg, user)
	olive := seedProduct(t, db, "olive oil", 30)
	zaatar := seedProduct(t, db, "zaatar", 12.5)

	before := time.Now()
	placeOrder(t, app, cookie, []fiber.Map{
		{"product_id": olive.ID.String(), "quantity": 2},
		{"product_id": zaatar.ID.String(), "quantity": 1},
	})

	order := latestOrder(t, db)
	assert.Equal(t, models.OrderStatusNew, order.Status)
	assert.InDelta(t, 72.5, order.TotalAmount, 0.001)
	require.Len(t, order.Items, 2)

	require.NotNil(t, order.EditableUntil)
	expected := before.Add(cfg.EditWindow)
	assert.WithinDuration(t, expected, *order.EditableUntil, 5*time.Second)
	assert.True(t, order.IsEditableNow())
}

func TestCreateOrder_RejectsUnknownProduct(t *testing.T) {
	app, db, cfg := newTestApp(t)
	user := seedUser(t, db, "+970599123456", "user@example.com", true)
	cookie := sessionCookie(t, cfg, user)

	inactive := seedProduct(t, db, "discontinued", 5)
	require.NoError(t, db.Model(inactive).Update("is_active", false).Error)

	resp, err := app.Test(jsonRequest(t, "POST", "/api/orders", fiber.Map{
		"items": []fiber.Map{{"product_id": inactive.ID.String(), "quantity": 1}},
	}, cookie))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateOrder_RequiresAuth(t *testing.T) {
	app, _, _ := newTestApp(t)

	resp, err := app.Test(jsonRequest(t, "POST", "/api/orders", fiber.Map{"items": []fiber.Map{}}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUpdateOrder_InsideWindowResetsDeadline(t *testing.T) {
	app, db, cfg := newTestApp(t)
	user := seedUser(t, db, "+970599123456", "user@example.com", true)
	cookie := sessionCookie(t, cfg, user)
	olive := seedProduct(t, db, "olive oil", 30)

	data := placeOrder(t, app, cookie, []fiber.Map{
		{"product_id": olive.ID.String(), "quantity": 1},
	})
	orderID := data["id"].(string)

	// Age the deadline so the reset is observable.
	aged := time.Now().Add(10 * time.Minute)
	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", orderID).
		Update("editable_until", &aged).Error)

	resp, err := app.Test(jsonRequest(t, "PUT", "/api/orders/"+orderID, fiber.Map{
		"items": []fiber.Map{{"product_id": olive.ID.String(), "quantity": 3}},
	}, cookie))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	order := latestOrder(t, db)
	assert.InDelta(t, 90, order.TotalAmount, 0.001)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 3, order.Items[0].Quantity)

	require.NotNil(t, order.EditableUntil)
	assert.True(t, order.EditableUntil.After(aged), "edit must restart the window")
}

func TestUpdateOrder_AfterWindowRejected(t *testing.T) {
	app, db, cfg := newTestApp(t)
	user := seedUser(t, db, "+970599123456", "user@example.com", true)
	cookie := sessionCookie(t, cfg, user)
	olive := seedProduct(t, db, "olive oil", 30)

	data := placeOrder(t, app, cookie, []fiber.Map{
		{"product_id": olive.ID.String(), "quantity": 1},
	})
	orderID := data["id"].(string)

	past := time.Now().Add(-time.Hour)
	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", orderID).
		Update("editable_until", &past).Error)

	resp, err := app.Test(jsonRequest(t, "PUT", "/api/orders/"+orderID, fiber.Map{
		"notes": "too late",
	}, cookie))
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestUpdateOrder_ReceivedStatusRejected(t *testing.T) {
	app, db, cfg := newTestApp(t)
	user := seedUser(t, db, "+970599123456", "user@example.com", true)
	cookie := sessionCookie(t, cfg, user)
	olive := seedProduct(t, db, "olive oil", 30)

	data := placeOrder(t, app, cookie, []fiber.Map{
		{"product_id": olive.ID.String(), "quantity": 1},
	})
	orderID := data["id"].(string)

	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", orderID).
		Update("status", models.OrderStatusReceived).Error)

	resp, err := app.Test(jsonRequest(t, "PUT", "/api/orders/"+orderID, fiber.Map{
		"notes": "change please",
	}, cookie))
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCancelOrder_InsideWindow(t *testing.T) {
	app, db, cfg := newTestApp(t)
	user := seedUser(t, db, "+970599123456", "user@example.com", true)
	cookie := sessionCookie(t, cfg, user)
	olive := seedProduct(t, db, "olive oil", 30)

	data := placeOrder(t, app, cookie, []fiber.Map{
		{"product_id": olive.ID.String(), "quantity": 1},
	})
	orderID := data["id"].(string)

	resp, err := app.Test(jsonRequest(t, "POST", "/api/orders/"+orderID+"/cancel", nil, cookie))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	order := latestOrder(t, db)
	assert.Equal(t, models.OrderStatusCancelled, order.Status)
	assert.Nil(t, order.EditableUntil)
	assert.False(t, order.IsEditableNow())
}

func TestGetOrder_ScopedToOwner(t *testing.T) {
	app, db, cfg := newTestApp(t)
	owner := seedUser(t, db, "+970599123456", "a@example.com", true)
	other := seedUser(t, db, "+970599654321", "b@example.com", true)
	olive := seedProduct(t, db, "olive oil", 30)

	data := placeOrder(t, app, sessionCookie(t, cfg, owner), []fiber.Map{
		{"product_id": olive.ID.String(), "quantity": 1},
	})
	orderID := data["id"].(string)

	resp, err := app.Test(jsonRequest(t, "GET", "/api/orders/"+orderID, nil, sessionCookie(t, cfg, other)))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFavorite_SaveAndReorderAtCurrentPrices(t *testing.T) {
	app, db, cfg := newTestApp(t)
	user := seedUser(t, db, "+970599123456", "user@example.com", true)
	cookie := sessionCookie(t, cfg, user)
	olive := seedProduct(t, db, "olive oil", 30)

	data := placeOrder(t, app, cookie, []fiber.Map{
		{"product_id": olive.ID.String(), "quantity": 2},
	})
	orderID := data["id"].(string)

	resp, err := app.Test(jsonRequest(t, "POST", "/api/favorites", fiber.Map{
		"name":     "weekly basket",
		"order_id": orderID,
	}, cookie))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var favorite models.FavoriteOrder
	require.NoError(t, db.Preload("Items").First(&favorite, "user_id = ?", user.ID).Error)
	require.Len(t, favorite.Items, 1)

	// Price change between save and reorder must show in the new order.
	require.NoError(t, db.Model(olive).Update("unit_price", 45.0).Error)

	resp, err = app.Test(jsonRequest(t, "POST", "/api/favorites/"+favorite.ID.String()+"/order", nil, cookie))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	order := latestOrder(t, db)
	assert.InDelta(t, 90, order.TotalAmount, 0.001)
}

func TestFavorite_DeleteRemovesItems(t *testing.T) {
	app, db, cfg := newTestApp(t)
	user := seedUser(t, db, "+970599123456", "user@example.com", true)
	cookie := sessionCookie(t, cfg, user)
	olive := seedProduct(t, db, "olive oil", 30)

	resp, err := app.Test(jsonRequest(t, "POST", "/api/favorites", fiber.Map{
		"name":  "basket",
		"items": []fiber.Map{{"product_id": olive.ID.String(), "quantity": 1}},
	}, cookie))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var favorite models.FavoriteOrder
	require.NoError(t, db.First(&favorite, "user_id = ?", user.ID).Error)

	resp, err = app.Test(jsonRequest(t, "DELETE", "/api/favorites/"+favorite.ID.String(), nil, cookie))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&models.FavoriteOrderItem{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}
