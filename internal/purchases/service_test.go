package purchases

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/PurushorthamanMR/ArulTex-BA/internal/catalog"
	"github.com/PurushorthamanMR/ArulTex-BA/internal/inventory"
	"github.com/PurushorthamanMR/ArulTex-BA/internal/users"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/db"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/db/models"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/enums"
	pkgerrors "github.com/PurushorthamanMR/ArulTex-BA/pkg/errors"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/logger"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/pagination"
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
	dsn := "file:purchases_" + uuid.NewString() + "?mode=memory&cache=shared"
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
		&models.Purchase{},
		&models.PurchaseItem{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	logg := logger.New(logger.Options{ServiceName: "purchases-test"})
	client := db.NewWithConn(conn)
	invSvc, err := inventory.NewService(inventory.NewRepository(conn), client, logg)
	if err != nil {
		t.Fatalf("inventory service: %v", err)
	}
	svc, err := NewService(
		NewRepository(conn),
		invSvc,
		catalog.NewSupplierRepository(conn),
		users.NewRepository(conn),
		client,
		logg,
	)
	if err != nil {
		t.Fatalf("purchases service: %v", err)
	}
	return &testEnv{conn: conn, svc: svc}
}

func (e *testEnv) mustCreateUser(t *testing.T) *models.User {
	t.Helper()
	user := &models.User{
		Email:        fmt.Sprintf("atx_test_%s@example.com", uuid.NewString()),
		PasswordHash: "hash",
		FirstName:    "Purchase",
		LastName:     "Tester",
		Role:         enums.UserRoleManager,
		IsActive:     true,
	}
	if err := e.conn.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func (e *testEnv) mustCreateSupplier(t *testing.T) *models.Supplier {
	t.Helper()
	supplier := &models.Supplier{Name: "Mill " + uuid.NewString()[:8], IsActive: true}
	if err := e.conn.Create(supplier).Error; err != nil {
		t.Fatalf("create supplier: %v", err)
	}
	return supplier
}

func (e *testEnv) mustCreateProduct(t *testing.T, stockQty int) *models.Product {
	t.Helper()
	category := &models.ProductCategory{Name: "Fabric", IsActive: true}
	if err := e.conn.FirstOrCreate(category, models.ProductCategory{Name: "Fabric"}).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	barcode := fmt.Sprintf("BC-%s", uuid.NewString())
	product := &models.Product{
		Name:       fmt.Sprintf("Product %s", uuid.NewString()[:8]),
		Barcode:    &barcode,
		CategoryID: category.ID,
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

func TestCreateCompletedPurchaseReceivesStock(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.mustCreateUser(t)
	supplier := env.mustCreateSupplier(t)
	product := env.mustCreateProduct(t, 5)

	purchase, err := env.svc.Create(ctx, CreatePurchaseInput{
		SupplierID: supplier.ID,
		UserID:     user.ID,
		Items: []PurchaseItemInput{
			{ProductID: product.ID, Quantity: 10, CostPrice: decimal.NewFromInt(60)},
		},
	})
	if err != nil {
		t.Fatalf("create purchase: %v", err)
	}

	if !strings.HasPrefix(purchase.PurchaseNumber, "PUR-") {
		t.Fatalf("purchase number = %q", purchase.PurchaseNumber)
	}
	if purchase.Status != enums.PurchaseStatusCompleted {
		t.Fatalf("status = %q", purchase.Status)
	}
	if !purchase.TotalAmount.Equal(decimal.NewFromInt(600)) {
		t.Fatalf("total = %s, want 600", purchase.TotalAmount)
	}
	if got := env.mustStock(t, product.ID); got != 15 {
		t.Fatalf("stock = %d, want 15", got)
	}

	var movement models.StockMovement
	if err := env.conn.First(&movement, "product_id = ?", product.ID).Error; err != nil {
		t.Fatalf("load movement: %v", err)
	}
	if movement.Kind != enums.MovementKindPurchase || movement.Quantity != 10 {
		t.Fatalf("movement = %s %d", movement.Kind, movement.Quantity)
	}
	if movement.ReferenceID == nil || *movement.ReferenceID != purchase.ID {
		t.Fatalf("movement reference = %v, want %d", movement.ReferenceID, purchase.ID)
	}
}

func TestPendingPurchaseDefersStockUntilCompletion(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.mustCreateUser(t)
	supplier := env.mustCreateSupplier(t)
	product := env.mustCreateProduct(t, 5)

	pending := enums.PurchaseStatusPending
	purchase, err := env.svc.Create(ctx, CreatePurchaseInput{
		SupplierID: supplier.ID,
		UserID:     user.ID,
		Status:     &pending,
		Items: []PurchaseItemInput{
			{ProductID: product.ID, Quantity: 10, CostPrice: decimal.NewFromInt(60)},
		},
	})
	if err != nil {
		t.Fatalf("create purchase: %v", err)
	}
	if got := env.mustStock(t, product.ID); got != 5 {
		t.Fatalf("stock = %d, want 5 while pending", got)
	}

	completed := enums.PurchaseStatusCompleted
	updated, err := env.svc.Update(ctx, UpdatePurchaseInput{
		PurchaseID:  purchase.ID,
		ActorUserID: user.ID,
		Status:      &completed,
	})
	if err != nil {
		t.Fatalf("complete purchase: %v", err)
	}
	if updated.Status != enums.PurchaseStatusCompleted {
		t.Fatalf("status = %q", updated.Status)
	}
	if got := env.mustStock(t, product.ID); got != 15 {
		t.Fatalf("stock = %d, want 15 after completion", got)
	}

	// A completed purchase is frozen: no path back to double-receiving.
	_, err = env.svc.Update(ctx, UpdatePurchaseInput{
		PurchaseID:  purchase.ID,
		ActorUserID: user.ID,
		Status:      &completed,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeDomainInvariant {
		t.Fatalf("expected domain invariant error, got %v", err)
	}
	if got := env.mustStock(t, product.ID); got != 15 {
		t.Fatalf("stock = %d, want 15 after rejected update", got)
	}
}

func TestUpdateReplacesItemsBeforeCompletion(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.mustCreateUser(t)
	supplier := env.mustCreateSupplier(t)
	original := env.mustCreateProduct(t, 0)
	replacement := env.mustCreateProduct(t, 0)

	pending := enums.PurchaseStatusPending
	purchase, err := env.svc.Create(ctx, CreatePurchaseInput{
		SupplierID: supplier.ID,
		UserID:     user.ID,
		Status:     &pending,
		Items: []PurchaseItemInput{
			{ProductID: original.ID, Quantity: 4, CostPrice: decimal.NewFromInt(50)},
		},
	})
	if err != nil {
		t.Fatalf("create purchase: %v", err)
	}

	completed := enums.PurchaseStatusCompleted
	updated, err := env.svc.Update(ctx, UpdatePurchaseInput{
		PurchaseID:  purchase.ID,
		ActorUserID: user.ID,
		Status:      &completed,
		Items: []PurchaseItemInput{
			{ProductID: replacement.ID, Quantity: 7, CostPrice: decimal.NewFromInt(80)},
		},
	})
	if err != nil {
		t.Fatalf("update purchase: %v", err)
	}

	if len(updated.Items) != 1 || updated.Items[0].ProductID != replacement.ID {
		t.Fatalf("items not replaced: %+v", updated.Items)
	}
	if !updated.TotalAmount.Equal(decimal.NewFromInt(560)) {
		t.Fatalf("total = %s, want 560", updated.TotalAmount)
	}
	// The original item was swapped out before completion, so only the
	// replacement is received.
	if got := env.mustStock(t, original.ID); got != 0 {
		t.Fatalf("original stock = %d, want 0", got)
	}
	if got := env.mustStock(t, replacement.ID); got != 7 {
		t.Fatalf("replacement stock = %d, want 7", got)
	}
}

func TestSearchAndItemsByProduct(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.mustCreateUser(t)
	supplier := env.mustCreateSupplier(t)
	other := env.mustCreateSupplier(t)
	product := env.mustCreateProduct(t, 0)

	number := "PUR-SEARCH-1"
	if _, err := env.svc.Create(ctx, CreatePurchaseInput{
		SupplierID:     supplier.ID,
		UserID:         user.ID,
		PurchaseNumber: &number,
		Items:          []PurchaseItemInput{{ProductID: product.ID, Quantity: 2, CostPrice: decimal.NewFromInt(50)}},
	}); err != nil {
		t.Fatalf("create purchase: %v", err)
	}
	if _, err := env.svc.Create(ctx, CreatePurchaseInput{
		SupplierID: other.ID,
		UserID:     user.ID,
		Items:      []PurchaseItemInput{{ProductID: product.ID, Quantity: 3, CostPrice: decimal.NewFromInt(50)}},
	}); err != nil {
		t.Fatalf("create purchase: %v", err)
	}

	page, err := env.svc.Search(ctx, Filter{SupplierID: &supplier.ID}, pagination.Params{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if page.TotalCount != 1 || page.Items[0].PurchaseNumber != number {
		t.Fatalf("supplier filter matched %d purchases", page.TotalCount)
	}

	fragment := "SEARCH"
	page, err = env.svc.Search(ctx, Filter{PurchaseNumber: &fragment}, pagination.Params{})
	if err != nil {
		t.Fatalf("search by number: %v", err)
	}
	if page.TotalCount != 1 {
		t.Fatalf("number filter matched %d purchases", page.TotalCount)
	}

	items, err := env.svc.ListItemsByProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("items by product: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items by product = %d, want 2", len(items))
	}
}

func TestCreatePurchaseValidation(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.mustCreateUser(t)
	supplier := env.mustCreateSupplier(t)
	product := env.mustCreateProduct(t, 0)

	cases := []struct {
		name  string
		input CreatePurchaseInput
	}{
		{
			name:  "no items",
			input: CreatePurchaseInput{SupplierID: supplier.ID, UserID: user.ID},
		},
		{
			name: "zero quantity",
			input: CreatePurchaseInput{
				SupplierID: supplier.ID,
				UserID:     user.ID,
				Items:      []PurchaseItemInput{{ProductID: product.ID, Quantity: 0, CostPrice: decimal.NewFromInt(50)}},
			},
		},
		{
			name: "unknown supplier",
			input: CreatePurchaseInput{
				SupplierID: supplier.ID + 100,
				UserID:     user.ID,
				Items:      []PurchaseItemInput{{ProductID: product.ID, Quantity: 1, CostPrice: decimal.NewFromInt(50)}},
			},
		},
		{
			name: "unknown user",
			input: CreatePurchaseInput{
				SupplierID: supplier.ID,
				UserID:     user.ID + 100,
				Items:      []PurchaseItemInput{{ProductID: product.ID, Quantity: 1, CostPrice: decimal.NewFromInt(50)}},
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.svc.Create(ctx, tc.input)
			if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}
