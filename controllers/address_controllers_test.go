package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-ordering/models"
)

func countDefaults(t *testing.T, resp response) int {
	t.Helper()
	list, _ := resp.Body["addresses"].([]interface{})
	n := 0
	for _, a := range list {
		if a.(map[string]interface{})["isDefault"] == true {
			n++
		}
	}
	return n
}

func TestAddresses_SingleDefault(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.signIn(t, models.RoleCustomer)

	resp := env.do(t, http.MethodPost, "/addresses", token, map[string]interface{}{
		"label": "Home", "line1": "1 Main St", "city": "Springfield",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body)
	home := resp.object("address")
	assert.Equal(t, true, home["isDefault"])

	resp = env.do(t, http.MethodPost, "/addresses", token, map[string]interface{}{
		"label": "Work", "line1": "9 Office Rd", "city": "Springfield", "isDefault": true,
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body)
	work := resp.object("address")
	assert.Equal(t, true, work["isDefault"])

	resp = env.do(t, http.MethodGet, "/addresses", token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 1, countDefaults(t, resp))
	first := resp.Body["addresses"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, work["id"], first["id"])

	resp = env.do(t, http.MethodPatch, fmt.Sprintf("/addresses/%v/default", home["id"]), token, nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body)
	resp = env.do(t, http.MethodGet, "/addresses", token, nil)
	assert.Equal(t, 1, countDefaults(t, resp))

	resp = env.do(t, http.MethodPost, "/addresses", token, map[string]interface{}{
		"line1": "1 MAIN ST", "city": "springfield",
	})
	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestAddresses_OwnedByUser(t *testing.T) {
	env := newTestEnv(t)
	_, owner := env.signIn(t, models.RoleCustomer)
	_, other := env.signIn(t, models.RoleCustomer)

	resp := env.do(t, http.MethodPost, "/addresses", owner, map[string]interface{}{
		"line1": "5 Elm St", "city": "Shelbyville",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body)
	path := fmt.Sprintf("/addresses/%v", resp.object("address")["id"])

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, path, other, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPatch, path+"/default", other, nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodDelete, path, owner, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/addresses", "", nil).Code)
}
