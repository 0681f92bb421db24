package sales

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/PurushorthamanMR/ArulTex-BA/pkg/db/models"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/enums"
	pkgerrors "github.com/PurushorthamanMR/ArulTex-BA/pkg/errors"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/pagination"
	"github.com/shopspring/decimal"
)

func TestCreateSaleDeductsStockAndTotals(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.mustCreateUser(t)
	product := env.mustCreateProduct(t, "Fabric", nil, 10)

	sale, err := env.svc.Create(ctx, CreateSaleInput{
		UserID: user.ID,
		Items: []SaleItemInput{
			{ProductID: product.ID, Quantity: 3, UnitPrice: decimal.NewFromInt(100), Discount: decimal.NewFromInt(30)},
		},
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}

	if !strings.HasPrefix(sale.InvoiceNumber, "INV-") {
		t.Fatalf("invoice number = %q", sale.InvoiceNumber)
	}
	if sale.Status != enums.SaleStatusCompleted {
		t.Fatalf("status = %q", sale.Status)
	}
	if !sale.TotalAmount.Equal(decimal.NewFromInt(270)) {
		t.Fatalf("total = %s, want 270", sale.TotalAmount)
	}
	if !sale.DiscountTotal.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("discount total = %s, want 30", sale.DiscountTotal)
	}
	if got := env.mustStock(t, product.ID); got != 7 {
		t.Fatalf("stock = %d, want 7", got)
	}

	var movement models.StockMovement
	if err := env.conn.First(&movement, "product_id = ?", product.ID).Error; err != nil {
		t.Fatalf("load movement: %v", err)
	}
	if movement.Kind != enums.MovementKindSale || movement.Quantity != -3 {
		t.Fatalf("movement = %s %d", movement.Kind, movement.Quantity)
	}
	if movement.ReferenceID == nil || *movement.ReferenceID != sale.ID {
		t.Fatalf("movement reference = %v, want %d", movement.ReferenceID, sale.ID)
	}
}

func TestCreateSaleRollsBackOnInsufficientStock(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.mustCreateUser(t)
	plenty := env.mustCreateProduct(t, "Fabric", nil, 50)
	scarce := env.mustCreateProduct(t, "Thread", nil, 1)

	_, err := env.svc.Create(ctx, CreateSaleInput{
		UserID: user.ID,
		Items: []SaleItemInput{
			{ProductID: plenty.ID, Quantity: 5, UnitPrice: decimal.NewFromInt(100)},
			{ProductID: scarce.ID, Quantity: 2, UnitPrice: decimal.NewFromInt(40)},
		},
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	if got := env.mustStock(t, plenty.ID); got != 50 {
		t.Fatalf("plenty stock = %d, want 50 after rollback", got)
	}
	var saleCount, movementCount int64
	if err := env.conn.Model(&models.Sale{}).Count(&saleCount).Error; err != nil {
		t.Fatalf("count sales: %v", err)
	}
	if err := env.conn.Model(&models.StockMovement{}).Count(&movementCount).Error; err != nil {
		t.Fatalf("count movements: %v", err)
	}
	if saleCount != 0 || movementCount != 0 {
		t.Fatalf("rollback left %d sales, %d movements", saleCount, movementCount)
	}
}

func TestReturnCapsAtOutstandingQuantity(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.mustCreateUser(t)
	product := env.mustCreateProduct(t, "Fabric", nil, 10)

	sale, err := env.svc.Create(ctx, CreateSaleInput{
		UserID: user.ID,
		Items: []SaleItemInput{
			{ProductID: product.ID, Quantity: 4, UnitPrice: decimal.NewFromInt(100)},
		},
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}

	// Ask for more than was sold: only 4 can come back.
	updated, err := env.svc.Return(ctx, ReturnInput{
		SaleID:      sale.ID,
		ActorUserID: user.ID,
		Items:       []ReturnItemInput{{SaleItemID: sale.Items[0].ID, Quantity: 9}},
	})
	if err != nil {
		t.Fatalf("return: %v", err)
	}
	if updated.Status != enums.SaleStatusReturned {
		t.Fatalf("status = %q, want returned", updated.Status)
	}
	if updated.Items[0].ReturnedQty != 4 {
		t.Fatalf("returned qty = %d, want 4", updated.Items[0].ReturnedQty)
	}
	if got := env.mustStock(t, product.ID); got != 10 {
		t.Fatalf("stock = %d, want 10 after full return", got)
	}

	// Nothing is left: a second return is a no-op, not an error.
	again, err := env.svc.Return(ctx, ReturnInput{
		SaleID:      sale.ID,
		ActorUserID: user.ID,
		Items:       []ReturnItemInput{{SaleItemID: sale.Items[0].ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("second return: %v", err)
	}
	if again.Items[0].ReturnedQty != 4 {
		t.Fatalf("returned qty after no-op = %d, want 4", again.Items[0].ReturnedQty)
	}
	if got := env.mustStock(t, product.ID); got != 10 {
		t.Fatalf("stock = %d, want 10 after no-op return", got)
	}
}

func TestPartialReturnTransitionsStatus(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.mustCreateUser(t)
	product := env.mustCreateProduct(t, "Fabric", nil, 10)

	sale, err := env.svc.Create(ctx, CreateSaleInput{
		UserID: user.ID,
		Items: []SaleItemInput{
			{ProductID: product.ID, Quantity: 4, UnitPrice: decimal.NewFromInt(100)},
		},
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}

	updated, err := env.svc.Return(ctx, ReturnInput{
		SaleID:      sale.ID,
		ActorUserID: user.ID,
		Items:       []ReturnItemInput{{SaleItemID: sale.Items[0].ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("return: %v", err)
	}
	if updated.Status != enums.SaleStatusPartiallyReturned {
		t.Fatalf("status = %q, want partially_returned", updated.Status)
	}
	if got := env.mustStock(t, product.ID); got != 7 {
		t.Fatalf("stock = %d, want 7 after partial return", got)
	}

	var movement models.StockMovement
	err = env.conn.
		Where("product_id = ? AND kind = ?", product.ID, enums.MovementKindReturn).
		First(&movement).Error
	if err != nil {
		t.Fatalf("load return movement: %v", err)
	}
	if movement.Quantity != 1 {
		t.Fatalf("return movement quantity = %d, want 1", movement.Quantity)
	}
}

func TestSearchFiltersByInvoiceAndStatus(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.mustCreateUser(t)
	product := env.mustCreateProduct(t, "Fabric", nil, 100)

	invoice := "INV-FILTER-1"
	if _, err := env.svc.Create(ctx, CreateSaleInput{
		UserID:        user.ID,
		InvoiceNumber: &invoice,
		Items:         []SaleItemInput{{ProductID: product.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(100)}},
	}); err != nil {
		t.Fatalf("create sale: %v", err)
	}
	if _, err := env.svc.Create(ctx, CreateSaleInput{
		UserID: user.ID,
		Items:  []SaleItemInput{{ProductID: product.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(100)}},
	}); err != nil {
		t.Fatalf("create sale: %v", err)
	}

	fragment := "FILTER"
	page, err := env.svc.Search(ctx, Filter{InvoiceNumber: &fragment}, pagination.Params{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if page.TotalCount != 1 || len(page.Items) != 1 {
		t.Fatalf("invoice filter matched %d sales, want 1", page.TotalCount)
	}
	if page.Items[0].InvoiceNumber != invoice {
		t.Fatalf("matched invoice = %q", page.Items[0].InvoiceNumber)
	}

	status := enums.SaleStatusCompleted
	page, err = env.svc.Search(ctx, Filter{Status: &status}, pagination.Params{})
	if err != nil {
		t.Fatalf("search by status: %v", err)
	}
	if page.TotalCount != 2 {
		t.Fatalf("status filter matched %d sales, want 2", page.TotalCount)
	}
}

func TestDailyReportExcludesReturnedSalesFromTotal(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.mustCreateUser(t)
	product := env.mustCreateProduct(t, "Fabric", nil, 100)

	day := time.Date(2026, 8, 30, 11, 0, 0, 0, time.UTC)
	kept, err := env.svc.Create(ctx, CreateSaleInput{
		UserID:   user.ID,
		DateTime: &day,
		Items:    []SaleItemInput{{ProductID: product.ID, Quantity: 2, UnitPrice: decimal.NewFromInt(100)}},
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	refunded, err := env.svc.Create(ctx, CreateSaleInput{
		UserID:   user.ID,
		DateTime: &day,
		Items:    []SaleItemInput{{ProductID: product.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(100)}},
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	if _, err := env.svc.Return(ctx, ReturnInput{
		SaleID:      refunded.ID,
		ActorUserID: user.ID,
		Items:       []ReturnItemInput{{SaleItemID: refunded.Items[0].ID, Quantity: 1}},
	}); err != nil {
		t.Fatalf("return: %v", err)
	}

	report, err := env.svc.ReportDaily(ctx, day)
	if err != nil {
		t.Fatalf("daily report: %v", err)
	}
	if report.Date != "2026-08-30" {
		t.Fatalf("report date = %q", report.Date)
	}
	if report.Count != 2 {
		t.Fatalf("count = %d, want 2", report.Count)
	}
	if !report.TotalSales.Equal(kept.TotalAmount) {
		t.Fatalf("total sales = %s, want %s", report.TotalSales, kept.TotalAmount)
	}
}

func TestCategoryAndSupplierReports(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.mustCreateUser(t)
	supplier := env.mustCreateSupplier(t, "Chennai Mills")
	fabric := env.mustCreateProduct(t, "Fabric", &supplier.ID, 100)
	thread := env.mustCreateProduct(t, "Thread", nil, 100)

	day := time.Date(2026, 8, 30, 11, 0, 0, 0, time.UTC)
	if _, err := env.svc.Create(ctx, CreateSaleInput{
		UserID:   user.ID,
		DateTime: &day,
		Items: []SaleItemInput{
			{ProductID: fabric.ID, Quantity: 2, UnitPrice: decimal.NewFromInt(100)},
			{ProductID: thread.ID, Quantity: 5, UnitPrice: decimal.NewFromInt(40)},
		},
	}); err != nil {
		t.Fatalf("create sale: %v", err)
	}

	from := day.Add(-time.Hour)
	to := day.Add(time.Hour)
	byCategory, err := env.svc.ReportByCategory(ctx, &from, &to)
	if err != nil {
		t.Fatalf("category report: %v", err)
	}
	if len(byCategory) != 2 {
		t.Fatalf("category report entries = %d, want 2", len(byCategory))
	}
	if byCategory[0].CategoryName != "Fabric" || !byCategory[0].TotalAmount.Equal(decimal.NewFromInt(200)) || byCategory[0].Quantity != 2 {
		t.Fatalf("fabric entry = %+v", byCategory[0])
	}

	bySupplier, err := env.svc.ReportBySupplier(ctx, &from, &to)
	if err != nil {
		t.Fatalf("supplier report: %v", err)
	}
	if len(bySupplier) != 2 {
		t.Fatalf("supplier report entries = %d, want 2", len(bySupplier))
	}
	if bySupplier[0].SupplierName != "Chennai Mills" || !bySupplier[0].TotalAmount.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("supplier entry = %+v", bySupplier[0])
	}
	if bySupplier[1].SupplierName != noSupplierLabel || bySupplier[1].Quantity != 5 {
		t.Fatalf("no-supplier entry = %+v", bySupplier[1])
	}
}

func TestCreateSaleValidation(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.mustCreateUser(t)
	product := env.mustCreateProduct(t, "Fabric", nil, 10)

	cases := []struct {
		name  string
		input CreateSaleInput
	}{
		{
			name:  "no items",
			input: CreateSaleInput{UserID: user.ID},
		},
		{
			name: "zero quantity",
			input: CreateSaleInput{
				UserID: user.ID,
				Items:  []SaleItemInput{{ProductID: product.ID, Quantity: 0, UnitPrice: decimal.NewFromInt(100)}},
			},
		},
		{
			name: "negative price",
			input: CreateSaleInput{
				UserID: user.ID,
				Items:  []SaleItemInput{{ProductID: product.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(-1)}},
			},
		},
		{
			name: "unknown user",
			input: CreateSaleInput{
				UserID: user.ID + 100,
				Items:  []SaleItemInput{{ProductID: product.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(100)}},
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
