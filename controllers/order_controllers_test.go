package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-ordering/models"
)

func TestUpdateOrderStatus(t *testing.T) {
	env := newTestEnv(t)
	customer, customerToken := env.signIn(t, models.RoleCustomer)
	_, waiterToken := env.signIn(t, models.RoleWaiter)
	order := env.seedOrder(t, customer.ID, models.OrderStatusConfirmed)

	resp := env.do(t, http.MethodPatch, "/orders/status", waiterToken, map[string]interface{}{
		"id": order.ID, "status": "PREPARING",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body)
	assert.Equal(t, true, resp.Body["success"])
	assert.Equal(t, "Order status updated to PREPARING", resp.Body["message"])
	updated := resp.object("order")
	assert.Equal(t, "PREPARING", updated["status"])
	assert.Equal(t, float64(2), updated["version"])
	assert.NotNil(t, updated["estimatedReadyTime"])
	assert.Equal(t, false, updated["isTerminal"])

	t.Run("same status is a no-op", func(t *testing.T) {
		resp := env.do(t, http.MethodPatch, "/orders/status", waiterToken, map[string]interface{}{
			"id": order.ID, "status": "PREPARING",
		})
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, false, resp.Body["success"])
	})

	t.Run("unknown status", func(t *testing.T) {
		resp := env.do(t, http.MethodPatch, "/orders/status", waiterToken, map[string]interface{}{
			"id": order.ID, "status": "EATEN",
		})
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("unknown order", func(t *testing.T) {
		resp := env.do(t, http.MethodPatch, "/orders/status", waiterToken, map[string]interface{}{
			"id": 9999, "status": "READY",
		})
		assert.Equal(t, http.StatusNotFound, resp.Code)
		assert.Equal(t, "Order not found", resp.Body["message"])
	})

	t.Run("customers may not change status", func(t *testing.T) {
		resp := env.do(t, http.MethodPatch, "/orders/status", customerToken, map[string]interface{}{
			"id": order.ID, "status": "READY",
		})
		assert.Equal(t, http.StatusForbidden, resp.Code)
	})

	t.Run("anonymous", func(t *testing.T) {
		resp := env.do(t, http.MethodPatch, "/orders/status", "", map[string]interface{}{
			"id": order.ID, "status": "READY",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	})
}

func TestUpdateOrderStatus_CancelRecordsReason(t *testing.T) {
	env := newTestEnv(t)
	customer, _ := env.signIn(t, models.RoleCustomer)
	_, adminToken := env.signIn(t, models.RoleAdmin)
	order := env.seedOrder(t, customer.ID, models.OrderStatusPending)

	resp := env.do(t, http.MethodPatch, "/orders/status", adminToken, map[string]interface{}{
		"id": order.ID, "status": "CANCELLED", "cancellationReason": "Kitchen closed",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body)
	updated := resp.object("order")
	assert.Equal(t, "Kitchen closed", updated["cancellationReason"])
	assert.NotNil(t, updated["cancelledAt"])
	assert.Equal(t, true, updated["isTerminal"])
}

func TestUpdateOrderPayment(t *testing.T) {
	env := newTestEnv(t)
	customer, _ := env.signIn(t, models.RoleCustomer)
	_, cashierToken := env.signIn(t, models.RoleCashier)
	_, waiterToken := env.signIn(t, models.RoleWaiter)
	order := env.seedOrder(t, customer.ID, models.OrderStatusServed)

	resp := env.do(t, http.MethodPatch, "/orders/payment", waiterToken, map[string]interface{}{
		"id": order.ID, "paymentMethod": "CARD",
	})
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = env.do(t, http.MethodPatch, "/orders/payment", cashierToken, map[string]interface{}{
		"id": order.ID, "paymentMethod": "CARD",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body)
	assert.Equal(t, "Payment recorded", resp.Body["message"])
	assert.Equal(t, "PAID", resp.object("order")["paymentStatus"])
	assert.Equal(t, "CARD", resp.object("order")["paymentMethod"])

	resp = env.do(t, http.MethodPatch, "/orders/payment", cashierToken, map[string]interface{}{
		"id": order.ID, "paymentMethod": "CASH",
	})
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Equal(t, "Order is already paid", resp.Body["message"])

	resp = env.do(t, http.MethodPatch, "/orders/payment", cashierToken, map[string]interface{}{
		"id": order.ID, "paymentMethod": "BITCOIN",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestGetOrderByID_HiddenFromOtherCustomers(t *testing.T) {
	env := newTestEnv(t)
	owner, ownerToken := env.signIn(t, models.RoleCustomer)
	_, otherToken := env.signIn(t, models.RoleCustomer)
	_, staffToken := env.signIn(t, models.RoleWaiter)
	order := env.seedOrder(t, owner.ID, models.OrderStatusPending)
	path := fmt.Sprintf("/orders/%d", order.ID)

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, path, ownerToken, nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, path, staffToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, path, otherToken, nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/orders/abc", ownerToken, nil).Code)
}

func TestCheckoutAndListMine(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.signIn(t, models.RoleCustomer)
	soup := env.seedMenuItem(t, "Soup", 10, true)
	gone := env.seedMenuItem(t, "Gone", 5, true)

	for _, line := range []map[string]interface{}{
		{"menuItemId": soup.ID, "quantity": 2},
		{"menuItemId": gone.ID, "quantity": 1},
	} {
		resp := env.do(t, http.MethodPost, "/cart/items", token, line)
		require.Equal(t, http.StatusCreated, resp.Code, resp.Body)
	}
	require.NoError(t, env.db.Model(&gone).Update("is_available", false).Error)

	resp := env.do(t, http.MethodPost, "/orders/checkout", token, map[string]interface{}{
		"paymentMethod": "CASH",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body)
	order := resp.object("order")
	assert.Equal(t, 20.0, order["totalAmount"])
	assert.Equal(t, 2.6, order["taxAmount"])
	assert.Equal(t, 22.6, order["finalAmount"])
	assert.Equal(t, "PENDING", order["status"])
	assert.Len(t, order["items"], 1)

	resp = env.do(t, http.MethodGet, "/orders/mine", token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, resp.Body["orders"], 1)

	// The unavailable line stays behind.
	resp = env.do(t, http.MethodGet, "/cart/summary", token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	summary := resp.object("summary")
	assert.Equal(t, 0.0, summary["totalAmount"])
	assert.Len(t, summary["unavailableItems"], 1)

	resp = env.do(t, http.MethodPost, "/orders/checkout", token, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "Cart is empty", resp.Body["message"])
}

func TestMarkItemReadyAndStationQueue(t *testing.T) {
	env := newTestEnv(t)
	_, customerToken := env.signIn(t, models.RoleCustomer)
	_, waiterToken := env.signIn(t, models.RoleWaiter)
	item := env.seedMenuItem(t, "Steak", 25, true)

	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/cart/items", customerToken,
		map[string]interface{}{"menuItemId": item.ID, "quantity": 1}).Code)
	resp := env.do(t, http.MethodPost, "/orders/checkout", customerToken, map[string]interface{}{})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body)
	orderID := resp.object("order")["id"]

	resp = env.do(t, http.MethodPatch, "/orders/status", waiterToken, map[string]interface{}{
		"id": orderID, "status": "PREPARING",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body)

	resp = env.do(t, http.MethodGet, "/admin/kitchen/stations/kitchen/items", waiterToken, nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body)
	queue, _ := resp.Body["items"].([]interface{})
	require.Len(t, queue, 1)
	lineID := queue[0].(map[string]interface{})["id"]

	resp = env.do(t, http.MethodPatch, fmt.Sprintf("/admin/order-items/%v/ready", lineID), waiterToken, nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body)
	assert.Equal(t, "READY", resp.object("order")["status"])

	resp = env.do(t, http.MethodGet, "/admin/kitchen/stations/kitchen/items", customerToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.Code)
}
