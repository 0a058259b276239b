package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/restaurant-ordering/database"
	"github.com/yeremiapane/restaurant-ordering/events"
	"github.com/yeremiapane/restaurant-ordering/models"
	"github.com/yeremiapane/restaurant-ordering/services"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

type capture struct{ types []string }

func (c *capture) Publish(_ context.Context, evt events.Event) error {
	c.types = append(c.types, evt.Type)
	return nil
}

func call(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w.Code, out
}

// TestEndToEndIntegration walks an order from cart to completion:
// customer checkout, staff confirms, kitchen prepares, waiter serves,
// cashier settles, and the order completes.
func TestEndToEndIntegration(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	defer sqlDB.Close()
	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.SeedAdmin(db, "admin@example.com", "admin-password"))

	pub := &capture{}
	r := SetupRouter(Deps{
		DB:         db,
		Tokens:     utils.NewTokenManager("test-secret", time.Hour),
		Sessions:   services.NewMemorySessionStore(),
		Publisher:  pub,
		CORSOrigin: "http://localhost:3000",
	})

	login := func(email, password string) string {
		code, body := call(t, r, http.MethodPost, "/auth/login", "", map[string]interface{}{"email": email, "password": password})
		require.Equal(t, http.StatusOK, code, body)
		return body["token"].(string)
	}
	admin := login("admin@example.com", "admin-password")

	code, body := call(t, r, http.MethodPost, "/admin/users", admin, map[string]interface{}{
		"name": "Wes", "email": "wes@example.com", "password": "waiter-password", "role": "WAITER",
	})
	require.Equal(t, http.StatusCreated, code, body)
	code, body = call(t, r, http.MethodPost, "/auth/register", "", map[string]interface{}{
		"name": "Cam", "email": "cam@example.com", "password": "customer-password",
	})
	require.Equal(t, http.StatusCreated, code, body)
	waiter := login("wes@example.com", "waiter-password")
	customer := login("cam@example.com", "customer-password")

	code, body = call(t, r, http.MethodPost, "/admin/categories", admin, map[string]interface{}{"name": "Mains"})
	require.Equal(t, http.StatusCreated, code, body)
	code, body = call(t, r, http.MethodPost, "/admin/menu-items", admin, map[string]interface{}{
		"categoryId": body["category"].(map[string]interface{})["id"], "name": "Ramen", "price": 11.99,
	})
	require.Equal(t, http.StatusCreated, code, body)
	menuID := body["menuItem"].(map[string]interface{})["id"]
	code, body = call(t, r, http.MethodPost, "/admin/tables", admin, map[string]interface{}{"number": 1, "capacity": 4})
	require.Equal(t, http.StatusCreated, code, body)
	tableID := body["table"].(map[string]interface{})["id"]

	code, body = call(t, r, http.MethodPost, "/cart/items", customer, map[string]interface{}{"menuItemId": menuID, "quantity": 3})
	require.Equal(t, http.StatusCreated, code, body)
	code, body = call(t, r, http.MethodPost, "/orders/checkout", customer, map[string]interface{}{
		"tableId": tableID, "paymentMethod": "CARD",
	})
	require.Equal(t, http.StatusCreated, code, body)
	order := body["order"].(map[string]interface{})
	orderID := order["id"]
	// 3 x 11.99 = 35.97, VAT 4.6761 rounds to 4.68
	assert.Equal(t, 35.97, order["totalAmount"])
	assert.Equal(t, 4.68, order["taxAmount"])
	assert.Equal(t, 40.65, order["finalAmount"])

	setStatus := func(status string) map[string]interface{} {
		code, body := call(t, r, http.MethodPatch, "/orders/status", waiter, map[string]interface{}{"id": orderID, "status": status})
		require.Equal(t, http.StatusOK, code, body)
		return body["order"].(map[string]interface{})
	}
	setStatus("CONFIRMED")
	setStatus("PREPARING")

	code, body = call(t, r, http.MethodGet, "/admin/kitchen/stations/KITCHEN/items", waiter, nil)
	require.Equal(t, http.StatusOK, code, body)
	items := body["items"].([]interface{})
	require.Len(t, items, 1)
	code, body = call(t, r, http.MethodPatch, fmt.Sprintf("/admin/order-items/%v/ready", items[0].(map[string]interface{})["id"]), waiter, nil)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "READY", body["order"].(map[string]interface{})["status"])

	served := setStatus("SERVED")
	assert.NotNil(t, served["servedAt"])

	code, body = call(t, r, http.MethodPatch, "/orders/payment", admin, map[string]interface{}{"id": orderID, "paymentMethod": "CARD"})
	require.Equal(t, http.StatusOK, code, body)

	completed := setStatus("COMPLETED")
	assert.Equal(t, true, completed["isTerminal"])
	assert.Equal(t, "PAID", completed["paymentStatus"])
	assert.NotNil(t, completed["completedAt"])

	code, body = call(t, r, http.MethodGet, fmt.Sprintf("/orders/%v", orderID), customer, nil)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "COMPLETED", body["order"].(map[string]interface{})["status"])

	var stored models.Order
	require.NoError(t, db.First(&stored, uint(orderID.(float64))).Error)
	assert.Equal(t, 7, stored.Version)

	assert.Equal(t, []string{
		events.OrderPlaced,
		events.OrderStatusChanged,
		events.OrderStatusChanged,
		events.OrderItemReady,
		events.OrderStatusChanged,
		events.OrderStatusChanged,
		events.OrderPaymentSettled,
		events.OrderStatusChanged,
	}, pub.types[len(pub.types)-8:])
}

func TestCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := SetupRouter(Deps{
		Tokens:     utils.NewTokenManager("test-secret", time.Hour),
		Sessions:   services.NewMemorySessionStore(),
		CORSOrigin: "http://localhost:3000",
	})

	req := httptest.NewRequest(http.MethodOptions, "/orders/status", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
