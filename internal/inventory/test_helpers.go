package inventory

import (
	"fmt"
	"testing"

	"github.com/PurushorthamanMR/ArulTex-BA/pkg/db/models"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:inventory_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(
		&models.User{},
		&models.ProductCategory{},
		&models.Supplier{},
		&models.Product{},
		&models.StockMovement{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func mustCreateTestUser(t *testing.T, tx *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{
		Email:        fmt.Sprintf("atx_test_%s@example.com", uuid.NewString()),
		PasswordHash: "hash",
		FirstName:    "Ledger",
		LastName:     "Tester",
		Role:         enums.UserRoleManager,
		IsActive:     true,
	}
	if err := tx.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func mustCreateTestCategory(t *testing.T, tx *gorm.DB, name string) *models.ProductCategory {
	t.Helper()
	category := &models.ProductCategory{
		Name:     name,
		IsActive: true,
	}
	if err := tx.Create(category).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	return category
}

func mustCreateTestProduct(t *testing.T, tx *gorm.DB, categoryID int64, stockQty int) *models.Product {
	t.Helper()
	barcode := fmt.Sprintf("BC-%s", uuid.NewString())
	product := &models.Product{
		Name:              "Test Product",
		Barcode:           &barcode,
		CategoryID:        categoryID,
		UnitPrice:         decimal.NewFromInt(100),
		CostPrice:         decimal.NewFromInt(60),
		StockQty:          stockQty,
		LowStockThreshold: 2,
		IsActive:          true,
	}
	if err := tx.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}
