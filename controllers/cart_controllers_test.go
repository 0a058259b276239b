package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-ordering/middlewares"
	"github.com/yeremiapane/restaurant-ordering/services"
)

func TestGuestCart(t *testing.T) {
	env := newTestEnv(t)
	burger := env.seedMenuItem(t, "Burger", 12.5, true)

	resp := env.do(t, http.MethodGet, "/cart/summary", "", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, services.CartNotFoundMessage, resp.Body["message"])
	assert.Equal(t, 0.0, resp.object("summary")["totalAmount"])

	resp = env.do(t, http.MethodPost, "/cart/items", "", map[string]interface{}{
		"menuItemId": burger.ID, "quantity": 2,
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body)
	guest := findCookie(resp.Cookies, middlewares.GuestCookieName)
	require.NotNil(t, guest)

	resp = env.do(t, http.MethodGet, "/cart/summary", "", nil, guest)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, services.CartSummaryMessage, resp.Body["message"])
	summary := resp.object("summary")
	assert.Equal(t, 25.0, summary["subtotal"])
	assert.Equal(t, 3.25, summary["taxAmount"])
	assert.Equal(t, 28.25, summary["totalAmount"])
	assert.Equal(t, 2.0, summary["itemCount"])

	cart := resp.object("cart")
	lines, _ := cart["items"].([]interface{})
	require.Len(t, lines, 1)
	lineID := lines[0].(map[string]interface{})["id"]

	resp = env.do(t, http.MethodPatch, fmt.Sprintf("/cart/items/%v", lineID), "", map[string]interface{}{"quantity": 3}, guest)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body)

	resp = env.do(t, http.MethodDelete, fmt.Sprintf("/cart/items/%v", lineID), "", nil, guest)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body)

	resp = env.do(t, http.MethodGet, "/cart/summary", "", nil, guest)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, services.CartEmptyMessage, resp.Body["message"])
}

func TestAddCartItem_Validation(t *testing.T) {
	env := newTestEnv(t)
	off := env.seedMenuItem(t, "Seasonal", 8, false)

	tests := []struct {
		name string
		body map[string]interface{}
		code int
	}{
		{"zero quantity", map[string]interface{}{"menuItemId": off.ID, "quantity": 0}, http.StatusBadRequest},
		{"unknown field", map[string]interface{}{"menuItemId": off.ID, "quantity": 1, "price": 1}, http.StatusBadRequest},
		{"unavailable item", map[string]interface{}{"menuItemId": off.ID, "quantity": 1}, http.StatusBadRequest},
		{"missing item", map[string]interface{}{"menuItemId": 999, "quantity": 1}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, http.MethodPost, "/cart/items", "", tt.body)
			assert.Equal(t, tt.code, resp.Code, resp.Body)
			assert.Equal(t, false, resp.Body["success"])
		})
	}
}
