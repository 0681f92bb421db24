package register

import (
	"fmt"
	"testing"

	"github.com/PurushorthamanMR/ArulTex-BA/internal/catalog"
	"github.com/PurushorthamanMR/ArulTex-BA/internal/inventory"
	"github.com/PurushorthamanMR/ArulTex-BA/internal/products"
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
	dsn := "file:register_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(
		&models.User{},
		&models.ProductCategory{},
		&models.Supplier{},
		&models.Customer{},
		&models.PaymentMethod{},
		&models.Product{},
		&models.StockMovement{},
		&models.RegisterTransaction{},
		&models.TransactionLine{},
		&models.TransactionPayment{},
		&models.VoidRecord{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	logg := logger.New(logger.Options{ServiceName: "register-test"})
	client := db.NewWithConn(conn)
	invSvc, err := inventory.NewService(inventory.NewRepository(conn), client, logg)
	if err != nil {
		t.Fatalf("inventory service: %v", err)
	}
	svc, err := NewService(
		NewRepository(conn),
		invSvc,
		products.NewRepository(conn),
		catalog.NewCustomerRepository(conn),
		catalog.NewPaymentMethodRepository(conn),
		users.NewRepository(conn),
		client,
		logg,
	)
	if err != nil {
		t.Fatalf("register service: %v", err)
	}
	return &testEnv{conn: conn, svc: svc}
}

func (e *testEnv) mustCreateUser(t *testing.T) *models.User {
	t.Helper()
	user := &models.User{
		Email:        fmt.Sprintf("atx_test_%s@example.com", uuid.NewString()),
		PasswordHash: "hash",
		FirstName:    "Register",
		LastName:     "Tester",
		Role:         enums.UserRoleCashier,
		IsActive:     true,
	}
	if err := e.conn.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func (e *testEnv) mustCreateCustomer(t *testing.T) *models.Customer {
	t.Helper()
	customer := &models.Customer{Name: "Walk In", IsActive: true}
	if err := e.conn.Create(customer).Error; err != nil {
		t.Fatalf("create customer: %v", err)
	}
	return customer
}

func (e *testEnv) mustCreatePaymentMethod(t *testing.T, name string) *models.PaymentMethod {
	t.Helper()
	method := &models.PaymentMethod{Name: name, IsActive: true}
	if err := e.conn.Create(method).Error; err != nil {
		t.Fatalf("create payment method: %v", err)
	}
	return method
}

func (e *testEnv) mustCreateCategory(t *testing.T, name string) *models.ProductCategory {
	t.Helper()
	category := &models.ProductCategory{Name: name, IsActive: true}
	if err := e.conn.Create(category).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	return category
}

func (e *testEnv) mustCreateProduct(t *testing.T, categoryID int64, stockQty int, threshold int) *models.Product {
	t.Helper()
	barcode := fmt.Sprintf("BC-%s", uuid.NewString())
	product := &models.Product{
		Name:              fmt.Sprintf("Product %s", uuid.NewString()[:8]),
		Barcode:           &barcode,
		CategoryID:        categoryID,
		UnitPrice:         decimal.NewFromInt(150),
		CostPrice:         decimal.NewFromInt(90),
		StockQty:          stockQty,
		LowStockThreshold: threshold,
		IsActive:          true,
	}
	if err := e.conn.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}
