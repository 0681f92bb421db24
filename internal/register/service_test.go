package register

import (
	"context"
	"testing"
	"time"

	"github.com/PurushorthamanMR/ArulTex-BA/pkg/db/models"
	pkgerrors "github.com/PurushorthamanMR/ArulTex-BA/pkg/errors"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/pagination"
	"github.com/shopspring/decimal"
)

func TestCreateTransactionAppliesLedgerMovements(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	user := env.mustCreateUser(t)
	customer := env.mustCreateCustomer(t)
	cash := env.mustCreatePaymentMethod(t, "Cash")
	category := env.mustCreateCategory(t, "Sarees")
	product := env.mustCreateProduct(t, category.ID, 10, 2)

	result, err := env.svc.Create(ctx, CreateTransactionInput{
		CustomerID:    customer.ID,
		UserID:        user.ID,
		TotalAmount:   decimal.NewFromInt(300),
		BalanceAmount: decimal.Zero,
		Lines: []LineInput{
			{ProductID: product.ID, Quantity: 2, UnitPrice: decimal.NewFromInt(150)},
		},
		Payments: []PaymentInput{
			{PaymentMethodID: cash.ID, Amount: decimal.NewFromInt(300)},
		},
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	if result.LowStockNotification != nil {
		t.Fatalf("unexpected low stock notification: %s", *result.LowStockNotification)
	}

	var stored models.Product
	if err := env.conn.First(&stored, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	if stored.StockQty != 8 {
		t.Fatalf("expected stock 8, got %d", stored.StockQty)
	}

	var movement models.StockMovement
	if err := env.conn.First(&movement, "product_id = ?", product.ID).Error; err != nil {
		t.Fatalf("load movement: %v", err)
	}
	if movement.Quantity != -2 || movement.ReferenceID == nil || *movement.ReferenceID != result.Transaction.ID {
		t.Fatalf("unexpected movement: %+v", movement)
	}
}

func TestCreateTransactionAllOrNothing(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	user := env.mustCreateUser(t)
	customer := env.mustCreateCustomer(t)
	cash := env.mustCreatePaymentMethod(t, "Cash")
	category := env.mustCreateCategory(t, "Sarees")
	plenty := env.mustCreateProduct(t, category.ID, 10, 0)
	scarce := env.mustCreateProduct(t, category.ID, 1, 0)

	_, err := env.svc.Create(ctx, CreateTransactionInput{
		CustomerID:    customer.ID,
		UserID:        user.ID,
		TotalAmount:   decimal.NewFromInt(600),
		BalanceAmount: decimal.Zero,
		Lines: []LineInput{
			{ProductID: plenty.ID, Quantity: 2, UnitPrice: decimal.NewFromInt(150)},
			{ProductID: scarce.ID, Quantity: 2, UnitPrice: decimal.NewFromInt(150)},
		},
		Payments: []PaymentInput{
			{PaymentMethodID: cash.ID, Amount: decimal.NewFromInt(600)},
		},
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	// the passing line must have rolled back too
	var stored models.Product
	if err := env.conn.First(&stored, "id = ?", plenty.ID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	if stored.StockQty != 10 {
		t.Fatalf("expected stock 10 after rollback, got %d", stored.StockQty)
	}
	var headers int64
	if err := env.conn.Model(&models.RegisterTransaction{}).Count(&headers).Error; err != nil {
		t.Fatalf("count transactions: %v", err)
	}
	if headers != 0 {
		t.Fatalf("expected no persisted transaction, got %d", headers)
	}
}

func TestCreateTransactionSkipsUntrackedCategories(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	user := env.mustCreateUser(t)
	customer := env.mustCreateCustomer(t)
	cash := env.mustCreatePaymentMethod(t, "Cash")
	custom := env.mustCreateCategory(t, models.CategoryNameCustom)
	product := env.mustCreateProduct(t, custom.ID, 0, 0)

	_, err := env.svc.Create(ctx, CreateTransactionInput{
		CustomerID:    customer.ID,
		UserID:        user.ID,
		TotalAmount:   decimal.NewFromInt(150),
		BalanceAmount: decimal.Zero,
		Lines: []LineInput{
			{ProductID: product.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(150)},
		},
		Payments: []PaymentInput{
			{PaymentMethodID: cash.ID, Amount: decimal.NewFromInt(150)},
		},
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}

	var movements int64
	if err := env.conn.Model(&models.StockMovement{}).Count(&movements).Error; err != nil {
		t.Fatalf("count movements: %v", err)
	}
	if movements != 0 {
		t.Fatalf("expected no movements for custom category, got %d", movements)
	}
}

func TestCreateTransactionLowStockNotification(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	user := env.mustCreateUser(t)
	customer := env.mustCreateCustomer(t)
	cash := env.mustCreatePaymentMethod(t, "Cash")
	category := env.mustCreateCategory(t, "Sarees")
	product := env.mustCreateProduct(t, category.ID, 3, 2)

	result, err := env.svc.Create(ctx, CreateTransactionInput{
		CustomerID:    customer.ID,
		UserID:        user.ID,
		TotalAmount:   decimal.NewFromInt(150),
		BalanceAmount: decimal.Zero,
		Lines: []LineInput{
			{ProductID: product.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(150)},
		},
		Payments: []PaymentInput{
			{PaymentMethodID: cash.ID, Amount: decimal.NewFromInt(150)},
		},
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	if result.LowStockNotification == nil {
		t.Fatal("expected low stock notification")
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	user := env.mustCreateUser(t)
	customer := env.mustCreateCustomer(t)
	cash := env.mustCreatePaymentMethod(t, "Cash")
	category := env.mustCreateCategory(t, "Sarees")
	product := env.mustCreateProduct(t, category.ID, 10, 0)

	valid := CreateTransactionInput{
		CustomerID:    customer.ID,
		UserID:        user.ID,
		TotalAmount:   decimal.NewFromInt(150),
		BalanceAmount: decimal.Zero,
		Lines:         []LineInput{{ProductID: product.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(150)}},
		Payments:      []PaymentInput{{PaymentMethodID: cash.ID, Amount: decimal.NewFromInt(150)}},
	}

	cases := []struct {
		name   string
		mutate func(input CreateTransactionInput) CreateTransactionInput
	}{
		{"no lines", func(in CreateTransactionInput) CreateTransactionInput {
			in.Lines = nil
			return in
		}},
		{"no payments", func(in CreateTransactionInput) CreateTransactionInput {
			in.Payments = nil
			return in
		}},
		{"zero quantity", func(in CreateTransactionInput) CreateTransactionInput {
			in.Lines = []LineInput{{ProductID: product.ID, Quantity: 0, UnitPrice: decimal.NewFromInt(150)}}
			return in
		}},
		{"unknown customer", func(in CreateTransactionInput) CreateTransactionInput {
			in.CustomerID = customer.ID + 999
			return in
		}},
		{"unknown user", func(in CreateTransactionInput) CreateTransactionInput {
			in.UserID = user.ID + 999
			return in
		}},
		{"unknown payment method", func(in CreateTransactionInput) CreateTransactionInput {
			in.Payments = []PaymentInput{{PaymentMethodID: cash.ID + 999, Amount: decimal.NewFromInt(150)}}
			return in
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.svc.Create(ctx, tc.mutate(valid))
			if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestSearchSwapsReversedRangeAndPages(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	user := env.mustCreateUser(t)
	customer := env.mustCreateCustomer(t)
	cash := env.mustCreatePaymentMethod(t, "Cash")
	category := env.mustCreateCategory(t, "Sarees")
	product := env.mustCreateProduct(t, category.ID, 100, 0)

	base := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		at := base.AddDate(0, 0, i)
		if _, err := env.svc.Create(ctx, CreateTransactionInput{
			CustomerID:    customer.ID,
			UserID:        user.ID,
			DateTime:      &at,
			TotalAmount:   decimal.NewFromInt(150),
			BalanceAmount: decimal.Zero,
			Lines:         []LineInput{{ProductID: product.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(150)}},
			Payments:      []PaymentInput{{PaymentMethodID: cash.ID, Amount: decimal.NewFromInt(150)}},
		}); err != nil {
			t.Fatalf("seed transaction: %v", err)
		}
	}

	// reversed range covering the first two days
	from := base.AddDate(0, 0, 1)
	to := base
	page, err := env.svc.Search(ctx, SearchQuery{From: &from, To: &to}, pagination.Params{Page: 1, Size: 10})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if page.TotalCount != 2 {
		t.Fatalf("expected 2 transactions in range, got %d", page.TotalCount)
	}

	// same-day range includes the whole end day
	sameDay := base
	page, err = env.svc.Search(ctx, SearchQuery{From: &sameDay, To: &sameDay}, pagination.Params{})
	if err != nil {
		t.Fatalf("search same day: %v", err)
	}
	if page.TotalCount != 1 {
		t.Fatalf("expected 1 transaction on the day, got %d", page.TotalCount)
	}

	paged, err := env.svc.Search(ctx, SearchQuery{}, pagination.Params{Page: 2, Size: 2})
	if err != nil {
		t.Fatalf("search paged: %v", err)
	}
	if paged.TotalCount != 3 || paged.TotalPages != 2 || len(paged.Items) != 1 {
		t.Fatalf("unexpected page: total=%d pages=%d items=%d", paged.TotalCount, paged.TotalPages, len(paged.Items))
	}
}

func TestVoidKeepsHistory(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	user := env.mustCreateUser(t)
	customer := env.mustCreateCustomer(t)
	cash := env.mustCreatePaymentMethod(t, "Cash")
	category := env.mustCreateCategory(t, "Sarees")
	product := env.mustCreateProduct(t, category.ID, 10, 0)

	result, err := env.svc.Create(ctx, CreateTransactionInput{
		CustomerID:    customer.ID,
		UserID:        user.ID,
		TotalAmount:   decimal.NewFromInt(150),
		BalanceAmount: decimal.Zero,
		Lines:         []LineInput{{ProductID: product.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(150)}},
		Payments:      []PaymentInput{{PaymentMethodID: cash.ID, Amount: decimal.NewFromInt(150)}},
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}

	voided, err := env.svc.Void(ctx, VoidInput{
		TransactionID: result.Transaction.ID,
		Reason:        "cashier error",
		ActorUserID:   user.ID,
	})
	if err != nil {
		t.Fatalf("void: %v", err)
	}
	if voided.IsActive {
		t.Fatal("expected transaction deactivated")
	}

	var record models.VoidRecord
	if err := env.conn.First(&record, "transaction_id = ?", result.Transaction.ID).Error; err != nil {
		t.Fatalf("load void record: %v", err)
	}
	if record.Reason != "cashier error" || record.ActorUserID != user.ID {
		t.Fatalf("unexpected void record: %+v", record)
	}

	_, err = env.svc.Void(ctx, VoidInput{TransactionID: result.Transaction.ID, Reason: "again", ActorUserID: user.ID})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeDomainInvariant {
		t.Fatalf("expected domain invariant error, got %v", err)
	}
}

func TestUpdateTotalsRecomputesFromCurrentPrices(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	user := env.mustCreateUser(t)
	customer := env.mustCreateCustomer(t)
	cash := env.mustCreatePaymentMethod(t, "Cash")
	category := env.mustCreateCategory(t, "Sarees")
	product := env.mustCreateProduct(t, category.ID, 10, 0)

	result, err := env.svc.Create(ctx, CreateTransactionInput{
		CustomerID:    customer.ID,
		UserID:        user.ID,
		TotalAmount:   decimal.NewFromInt(300),
		BalanceAmount: decimal.Zero,
		Lines:         []LineInput{{ProductID: product.ID, Quantity: 2, UnitPrice: decimal.NewFromInt(150)}},
		Payments:      []PaymentInput{{PaymentMethodID: cash.ID, Amount: decimal.NewFromInt(300)}},
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}

	if err := env.conn.Model(&models.Product{}).Where("id = ?", product.ID).
		Update("unit_price", decimal.NewFromInt(200)).Error; err != nil {
		t.Fatalf("reprice product: %v", err)
	}

	updated, err := env.svc.UpdateTotals(ctx, result.Transaction.ID)
	if err != nil {
		t.Fatalf("update totals: %v", err)
	}
	if !updated.TotalAmount.Equal(decimal.NewFromInt(400)) {
		t.Fatalf("expected total 400, got %s", updated.TotalAmount)
	}
	if !updated.BalanceAmount.Equal(decimal.NewFromInt(-100)) {
		t.Fatalf("expected balance -100, got %s", updated.BalanceAmount)
	}
}
