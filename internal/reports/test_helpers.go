package reports

import (
	"fmt"
	"testing"
	"time"

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
	svc  *service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := "file:reports_" + uuid.NewString() + "?mode=memory&cache=shared"
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
		&models.RegisterTransaction{},
		&models.TransactionLine{},
		&models.TransactionPayment{},
		&models.ReconciliationCheckpoint{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	logg := logger.New(logger.Options{ServiceName: "reports-test"})
	svc, err := NewService(NewRepository(conn), users.NewRepository(conn), db.NewWithConn(conn), logg)
	if err != nil {
		t.Fatalf("reports service: %v", err)
	}
	return &testEnv{conn: conn, svc: svc.(*service)}
}

// freezeNow pins the service clock so window resolution is deterministic.
func (e *testEnv) freezeNow(at time.Time) {
	e.svc.now = func() time.Time { return at }
}

func (e *testEnv) mustCreateUser(t *testing.T, first, last string) *models.User {
	t.Helper()
	user := &models.User{
		Email:        fmt.Sprintf("atx_test_%s@example.com", uuid.NewString()),
		PasswordHash: "hash",
		FirstName:    first,
		LastName:     last,
		Role:         enums.UserRoleManager,
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

func (e *testEnv) mustCreateProduct(t *testing.T, categoryName string) *models.Product {
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
		UnitPrice:  decimal.NewFromInt(100),
		CostPrice:  decimal.NewFromInt(60),
		StockQty:   1000,
		IsActive:   true,
	}
	if err := e.conn.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

type txSpec struct {
	user     *models.User
	dateTime time.Time
	balance  decimal.Decimal
	lines    []models.TransactionLine
	payments []models.TransactionPayment
}

func (e *testEnv) mustCreateTransaction(t *testing.T, spec txSpec) *models.RegisterTransaction {
	t.Helper()
	customer := e.mustCreateCustomer(t)
	total := decimal.Zero
	for _, line := range spec.lines {
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))).Sub(line.Discount))
	}
	transaction := &models.RegisterTransaction{
		CustomerID:    customer.ID,
		UserID:        spec.user.ID,
		DateTime:      spec.dateTime,
		TotalAmount:   total,
		BalanceAmount: spec.balance,
		IsActive:      true,
		Lines:         spec.lines,
		Payments:      spec.payments,
	}
	if err := e.conn.Create(transaction).Error; err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	return transaction
}
