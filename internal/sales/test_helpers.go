package sales

import (
	"fmt"
	"testing"

	"github.com/PurushorthamanMR/ArulTex-BA/internal/inventory"
	"github.com/PurushorthamanMR/ArulTex-BA/internal/users"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/db"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/db/models"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/enums"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	conn *gorm.DB
	svc  Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := "file:sales_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(
		&models.User{},
		&models.ProductCategory{},
		&models.Supplier{},
		&models.Customer{},
		&models.Product{},
		&models.StockMovement{},
		&models.Sale{},
		&models.SaleItem{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	logg := logger.New(logger.Options{ServiceName: "sales-test"})
	client := db.NewWithConn(conn)
	invSvc, err := inventory.NewService(inventory.NewRepository(conn), client, logg)
	if err != nil {
		t.Fatalf("inventory service: %v", err)
	}
	svc, err := NewService(NewRepository(conn), invSvc, users.NewRepository(conn), client, logg)
	if err != nil {
		t.Fatalf("sales service: %v", err)
	}
	return &testEnv{conn: conn, svc: svc}
}

func (e *testEnv) mustCreateUser(t *testing.T) *models.User {
	t.Helper()
	user := &models.User{
		Email:        fmt.Sprintf("atx_test_%s@example.com", uuid.NewString()),
		PasswordHash: "hash",
		FirstName:    "Sales",
		LastName:     "Tester",
		Role:         enums.UserRoleCashier,
		IsActive:     true,
	}
	if err := e.conn.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func (e *testEnv) mustCreateSupplier(t *testing.T, name string) *models.Supplier {
	t.Helper()
	supplier := &models.Supplier{Name: name, IsActive: true}
	if err := e.conn.Create(supplier).Error; err != nil {
		t.Fatalf("create supplier: %v", err)
	}
	return supplier
}

func (e *testEnv) mustCreateProduct(t *testing.T, categoryName string, supplierID *int64, stockQty int) *models.Product {
	t.Helper()
	category := &models.ProductCategory{Name: categoryName, IsActive: true}
	if err := e.conn.FirstOrCreate(category, models.ProductCategory{Name: categoryName}).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	barcode := fmt.Sprintf("BC-%s", uuid.NewString())
	product := &models.Product{
		Name:       fmt.Sprintf("Product %s", uuid.NewString()[:8]),
		Barcode:    &barcode,
		CategoryID: category.ID,
		SupplierID: supplierID,
		UnitPrice:  decimal.NewFromInt(100),
		CostPrice:  decimal.NewFromInt(60),
		StockQty:   stockQty,
		IsActive:   true,
	}
	if err := e.conn.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

func (e *testEnv) mustStock(t *testing.T, productID int64) int {
	t.Helper()
	var product models.Product
	if err := e.conn.First(&product, "id = ?", productID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	return product.StockQty
}
