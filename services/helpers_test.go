package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/restaurant-ordering/database"
	"github.com/yeremiapane/restaurant-ordering/events"
	"github.com/yeremiapane/restaurant-ordering/models"
)

// setupTestDB opens a private in-memory SQLite database with the full schema.
// A single connection serializes concurrent transactions the way a real
// server would through row locks.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, evt events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func seedUser(t *testing.T, db *gorm.DB, email string, role models.Role) models.User {
	t.Helper()
	user := models.User{Name: email, Email: email, Password: "hash", Role: role}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedMenuItem(t *testing.T, db *gorm.DB, name string, price float64, available bool) models.MenuItem {
	t.Helper()
	var category models.MenuCategory
	require.NoError(t, db.FirstOrCreate(&category, models.MenuCategory{Name: "Mains"}).Error)

	item := models.MenuItem{
		CategoryID:  category.ID,
		Name:        name,
		Price:       price,
		IsAvailable: available,
		Station:     models.StationKitchen,
	}
	require.NoError(t, db.Create(&item).Error)
	return item
}

func seedOrder(t *testing.T, db *gorm.DB, userID uint, status models.OrderStatus, payment models.PaymentStatus) models.Order {
	t.Helper()
	order := models.Order{
		OrderNumber:   "ORD-" + uuid.NewString()[:8],
		UserID:        userID,
		Status:        status,
		PaymentStatus: payment,
		PaymentMethod: models.PaymentMethodCash,
		TotalAmount:   20,
		TaxAmount:     2.6,
		FinalAmount:   22.6,
		Version:       1,
		CreatedAt:     time.Now().Add(-time.Hour),
		UpdatedAt:     time.Now().Add(-time.Hour),
	}
	require.NoError(t, db.Create(&order).Error)
	return order
}
