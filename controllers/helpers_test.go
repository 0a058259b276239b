package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/restaurant-ordering/database"
	"github.com/yeremiapane/restaurant-ordering/kds"
	"github.com/yeremiapane/restaurant-ordering/models"
	"github.com/yeremiapane/restaurant-ordering/router"
	"github.com/yeremiapane/restaurant-ordering/services"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

type testEnv struct {
	db       *gorm.DB
	sessions *services.MemorySessionStore
	tokens   *utils.TokenManager
	engine   *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	env := &testEnv{
		db:       db,
		sessions: services.NewMemorySessionStore(),
		tokens:   utils.NewTokenManager("test-secret", time.Hour),
	}
	env.engine = router.SetupRouter(router.Deps{
		DB:         db,
		Tokens:     env.tokens,
		Sessions:   env.sessions,
		Hub:        kds.NewHub(),
		CORSOrigin: "*",
	})
	return env
}

// signIn creates a user with the given role and returns a token for a fresh
// session, bypassing the rate-limited login endpoint.
func (e *testEnv) signIn(t *testing.T, role models.Role) (models.User, string) {
	t.Helper()
	user := models.User{
		Name:     string(role),
		Email:    uuid.NewString() + "@example.com",
		Password: "unused",
		Role:     role,
	}
	require.NoError(t, e.db.Create(&user).Error)

	session, err := e.sessions.Create(context.Background(), user.ID, role, time.Hour)
	require.NoError(t, err)
	token, _, err := e.tokens.GenerateToken(user.ID, string(role), session.ID, time.Now())
	require.NoError(t, err)
	return user, token
}

type response struct {
	Code    int
	Body    map[string]interface{}
	Cookies []*http.Cookie
}

func (r response) object(key string) map[string]interface{} {
	v, _ := r.Body[key].(map[string]interface{})
	return v
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}, cookies ...*http.Cookie) response {
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
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)

	resp := response{Code: w.Code, Cookies: w.Result().Cookies()}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp.Body), w.Body.String())
	}
	return resp
}

func (e *testEnv) seedMenuItem(t *testing.T, name string, price float64, available bool) models.MenuItem {
	t.Helper()
	var category models.MenuCategory
	require.NoError(t, e.db.FirstOrCreate(&category, models.MenuCategory{Name: "Mains"}).Error)
	item := models.MenuItem{CategoryID: category.ID, Name: name, Price: price, IsAvailable: available, Station: models.StationKitchen}
	require.NoError(t, e.db.Create(&item).Error)
	return item
}

func (e *testEnv) seedOrder(t *testing.T, userID uint, status models.OrderStatus) models.Order {
	t.Helper()
	order := models.Order{
		OrderNumber:   services.NewOrderNumber(),
		UserID:        userID,
		Status:        status,
		PaymentStatus: models.PaymentStatusPending,
		PaymentMethod: models.PaymentMethodCash,
		TotalAmount:   20,
		TaxAmount:     2.6,
		FinalAmount:   22.6,
		Version:       1,
	}
	require.NoError(t, e.db.Create(&order).Error)
	return order
}

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}
