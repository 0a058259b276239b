package database

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-ordering/models"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

// Models lists every persisted model in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Address{},
		&models.MenuCategory{},
		&models.MenuItem{},
		&models.Table{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	}
}

// dialectStatements holds raw DDL that gorm tags cannot express. MySQL has no
// partial indexes, so default-address exclusivity there relies on the
// transaction in the address service alone.
var dialectStatements = map[string][]string{
	"sqlite": {
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_addresses_one_default ON addresses (user_id) WHERE is_default`,
	},
	"postgres": {
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_addresses_one_default ON addresses (user_id) WHERE is_default`,
	},
}

// Migrate creates or updates the schema and installs dialect-specific indexes.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	dialect := db.Dialector.Name()
	for _, stmt := range dialectStatements[dialect] {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("execute %s statement %q: %w", dialect, firstLine(stmt), err)
		}
	}

	utils.InfoLogger.WithField("dialect", dialect).Info("migration completed")
	return nil
}

// SeedAdmin creates the initial admin account when no user with email exists.
func SeedAdmin(db *gorm.DB, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("lookup admin: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin := models.User{
		Name:     "Administrator",
		Email:    email,
		Password: string(hashed),
		Role:     models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	utils.InfoLogger.WithField("email", email).Info("seeded admin user")
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
