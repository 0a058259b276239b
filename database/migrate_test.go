package database

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/restaurant-ordering/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return db
}

func TestMigrateInstallsDefaultAddressIndex(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db))
	// idempotent
	require.NoError(t, Migrate(db))

	user := models.User{Name: "A", Email: "a@example.com", Password: "x", Role: models.RoleCustomer}
	require.NoError(t, db.Create(&user).Error)

	first := models.Address{UserID: user.ID, Line1: "1 Main St", City: "Town", IsDefault: true}
	require.NoError(t, db.Create(&first).Error)

	second := models.Address{UserID: user.ID, Line1: "2 Main St", City: "Town", IsDefault: true}
	assert.Error(t, db.Create(&second).Error, "a second default address must violate the partial index")

	third := models.Address{UserID: user.ID, Line1: "3 Main St", City: "Town"}
	assert.NoError(t, db.Create(&third).Error)
}

func TestSeedAdmin(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db))

	require.NoError(t, SeedAdmin(db, "admin@example.com", "secret123"))
	require.NoError(t, SeedAdmin(db, "admin@example.com", "other"))

	var users []models.User
	require.NoError(t, db.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, models.RoleAdmin, users[0].Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users[0].Password), []byte("secret123")))
}

func TestSeedAdminSkipsWithoutCredentials(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db))
	require.NoError(t, SeedAdmin(db, "", ""))

	var count int64
	db.Model(&models.User{}).Count(&count)
	assert.Zero(t, count)
}
