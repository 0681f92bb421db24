package reports

import (
	"context"
	"testing"
	"time"

	"github.com/PurushorthamanMR/ArulTex-BA/pkg/db/models"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/enums"
	pkgerrors "github.com/PurushorthamanMR/ArulTex-BA/pkg/errors"
	"github.com/shopspring/decimal"
)

func TestXReportAggregatesOpenShift(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	manager := env.mustCreateUser(t, "Arul", "Murugan")
	cashier := env.mustCreateUser(t, "Priya", "Selvam")
	cash := env.mustCreatePaymentMethod(t, models.PaymentMethodNameCash)
	card := env.mustCreatePaymentMethod(t, "Card")
	fabric := env.mustCreateProduct(t, "Fabric")
	thread := env.mustCreateProduct(t, "Thread")

	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	env.mustCreateTransaction(t, txSpec{
		user:     manager,
		dateTime: base,
		balance:  decimal.NewFromInt(50),
		lines: []models.TransactionLine{
			{ProductID: fabric.ID, Quantity: 2, UnitPrice: decimal.NewFromInt(100), Discount: decimal.NewFromInt(20)},
		},
		payments: []models.TransactionPayment{
			{PaymentMethodID: cash.ID, Amount: decimal.NewFromInt(230)},
		},
	})
	env.mustCreateTransaction(t, txSpec{
		user:     cashier,
		dateTime: base.Add(30 * time.Minute),
		balance:  decimal.Zero,
		lines: []models.TransactionLine{
			{ProductID: thread.ID, Quantity: 3, UnitPrice: decimal.NewFromInt(40), Discount: decimal.Zero},
		},
		payments: []models.TransactionPayment{
			{PaymentMethodID: card.ID, Amount: decimal.NewFromInt(120)},
		},
	})
	env.freezeNow(base.Add(2 * time.Hour))

	report, err := env.svc.XReport(ctx, manager.ID)
	if err != nil {
		t.Fatalf("x report: %v", err)
	}

	if report.ReportGeneratedBy != "Arul Murugan" {
		t.Fatalf("generated by = %q", report.ReportGeneratedBy)
	}
	// The first transaction anchors the window and is included in it.
	if report.TotalTransactions != 2 {
		t.Fatalf("total transactions = %d, want 2", report.TotalTransactions)
	}
	if got := report.CategoryTotals["Fabric"]; !got.Equal(decimal.NewFromInt(180)) {
		t.Fatalf("fabric total = %s, want 180", got)
	}
	if got := report.CategoryTotals["Thread"]; !got.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("thread total = %s, want 120", got)
	}
	if !report.TotalSales.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("total sales = %s, want 300", report.TotalSales)
	}
	if got := report.OverallPaymentTotals[models.PaymentMethodNameCash]; !got.Equal(decimal.NewFromInt(230)) {
		t.Fatalf("cash payments = %s, want 230", got)
	}
	if !report.CashTotal.Equal(decimal.NewFromInt(230)) {
		t.Fatalf("cash total = %s, want 230", report.CashTotal)
	}
	if !report.TotalBalanceAmount.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("balance = %s, want 50", report.TotalBalanceAmount)
	}
	if !report.Difference.Equal(decimal.NewFromInt(180)) {
		t.Fatalf("difference = %s, want 180", report.Difference)
	}
	if len(report.UserPaymentDetails) != 2 {
		t.Fatalf("user payment details = %d entries, want 2", len(report.UserPaymentDetails))
	}
	if report.UserPaymentDetails[0].UserName != "Arul Murugan" {
		t.Fatalf("user payment details not sorted: first = %q", report.UserPaymentDetails[0].UserName)
	}

	// X is a preview: it must never finalize the shift.
	var checkpoints int64
	if err := env.conn.Model(&models.ReconciliationCheckpoint{}).Count(&checkpoints).Error; err != nil {
		t.Fatalf("count checkpoints: %v", err)
	}
	if checkpoints != 0 {
		t.Fatalf("x report wrote %d checkpoints", checkpoints)
	}
}

func TestXReportWindowSkipsAnchorWhenLaterTransactionsExist(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.mustCreateUser(t, "Arul", "Murugan")
	cash := env.mustCreatePaymentMethod(t, models.PaymentMethodNameCash)
	product := env.mustCreateProduct(t, "Fabric")

	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	env.mustCreateTransaction(t, txSpec{
		user: user, dateTime: base, balance: decimal.Zero,
		lines:    []models.TransactionLine{{ProductID: product.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(100)}},
		payments: []models.TransactionPayment{{PaymentMethodID: cash.ID, Amount: decimal.NewFromInt(100)}},
	})
	second := env.mustCreateTransaction(t, txSpec{
		user: user, dateTime: base.Add(time.Hour), balance: decimal.Zero,
		lines:    []models.TransactionLine{{ProductID: product.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(100)}},
		payments: []models.TransactionPayment{{PaymentMethodID: cash.ID, Amount: decimal.NewFromInt(100)}},
	})
	env.freezeNow(base.Add(2 * time.Hour))

	report, err := env.svc.XReport(ctx, user.ID)
	if err != nil {
		t.Fatalf("x report: %v", err)
	}
	// Without a checkpoint the window anchors on the first transaction and
	// advances to the next one after it.
	if !report.StartDate.Equal(second.DateTime) {
		t.Fatalf("start = %s, want %s", report.StartDate, second.DateTime)
	}
	if report.TotalTransactions != 1 {
		t.Fatalf("total transactions = %d, want 1", report.TotalTransactions)
	}
}

func TestZReportWritesCheckpointAndAdvancesWindow(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.mustCreateUser(t, "Arul", "Murugan")
	cash := env.mustCreatePaymentMethod(t, models.PaymentMethodNameCash)
	product := env.mustCreateProduct(t, "Fabric")

	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	env.mustCreateTransaction(t, txSpec{
		user: user, dateTime: base, balance: decimal.Zero,
		lines:    []models.TransactionLine{{ProductID: product.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(100)}},
		payments: []models.TransactionPayment{{PaymentMethodID: cash.ID, Amount: decimal.NewFromInt(100)}},
	})
	closedAt := base.Add(2 * time.Hour)
	env.freezeNow(closedAt)

	if _, err := env.svc.ZReport(ctx, user.ID); err != nil {
		t.Fatalf("z report: %v", err)
	}

	var checkpoint models.ReconciliationCheckpoint
	if err := env.conn.First(&checkpoint).Error; err != nil {
		t.Fatalf("load checkpoint: %v", err)
	}
	if checkpoint.Kind != enums.ReportKindZ {
		t.Fatalf("checkpoint kind = %q", checkpoint.Kind)
	}
	if checkpoint.GeneratedBy != user.ID {
		t.Fatalf("checkpoint generated by = %d, want %d", checkpoint.GeneratedBy, user.ID)
	}
	if !checkpoint.GeneratedAt.Equal(closedAt) {
		t.Fatalf("checkpoint at = %s, want %s", checkpoint.GeneratedAt, closedAt)
	}

	// The next shift starts where the checkpoint ended.
	late := env.mustCreateTransaction(t, txSpec{
		user: user, dateTime: closedAt.Add(time.Hour), balance: decimal.Zero,
		lines:    []models.TransactionLine{{ProductID: product.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(100)}},
		payments: []models.TransactionPayment{{PaymentMethodID: cash.ID, Amount: decimal.NewFromInt(100)}},
	})
	env.freezeNow(closedAt.Add(3 * time.Hour))

	next, err := env.svc.XReport(ctx, user.ID)
	if err != nil {
		t.Fatalf("x report after checkpoint: %v", err)
	}
	if !next.StartDate.Equal(late.DateTime) {
		t.Fatalf("start = %s, want %s", next.StartDate, late.DateTime)
	}
	if next.TotalTransactions != 1 {
		t.Fatalf("total transactions = %d, want 1", next.TotalTransactions)
	}
}

func TestZReportBucketsByCalendarDay(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.mustCreateUser(t, "Arul", "Murugan")
	cash := env.mustCreatePaymentMethod(t, models.PaymentMethodNameCash)
	card := env.mustCreatePaymentMethod(t, "Card")
	product := env.mustCreateProduct(t, "Fabric")

	dayOne := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	dayTwo := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	env.mustCreateTransaction(t, txSpec{
		user: user, dateTime: dayOne, balance: decimal.NewFromInt(10),
		lines:    []models.TransactionLine{{ProductID: product.ID, Quantity: 2, UnitPrice: decimal.NewFromInt(100)}},
		payments: []models.TransactionPayment{{PaymentMethodID: cash.ID, Amount: decimal.NewFromInt(210)}},
	})
	env.mustCreateTransaction(t, txSpec{
		user: user, dateTime: dayTwo, balance: decimal.Zero,
		lines:    []models.TransactionLine{{ProductID: product.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(100)}},
		payments: []models.TransactionPayment{{PaymentMethodID: card.ID, Amount: decimal.NewFromInt(100)}},
	})
	env.freezeNow(dayTwo.Add(2 * time.Hour))

	report, err := env.svc.ZReport(ctx, user.ID)
	if err != nil {
		t.Fatalf("z report: %v", err)
	}

	if len(report.DateWiseTotals) != 2 {
		t.Fatalf("buckets = %d, want 2", len(report.DateWiseTotals))
	}
	if report.DateWiseTotals[0].Date != "2026-08-29" || report.DateWiseTotals[1].Date != "2026-08-30" {
		t.Fatalf("buckets out of order: %s, %s", report.DateWiseTotals[0].Date, report.DateWiseTotals[1].Date)
	}
	first := report.DateWiseTotals[0].Totals
	if first.TotalTransactions != 1 || !first.TotalSales.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("day one bucket = %d transactions, %s sales", first.TotalTransactions, first.TotalSales)
	}
	if !first.BalanceAmount.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("day one balance = %s, want 10", first.BalanceAmount)
	}
	if !report.FullyTotalSales.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("fully total sales = %s, want 300", report.FullyTotalSales)
	}
	if !report.TotalBalanceAmount.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("total balance = %s, want 10", report.TotalBalanceAmount)
	}
	// Cash across every bucket (210) minus the outstanding balance (10).
	if !report.Difference.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("difference = %s, want 200", report.Difference)
	}
}

func TestWindowClampsToStartOfEndDay(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.mustCreateUser(t, "Arul", "Murugan")
	cash := env.mustCreatePaymentMethod(t, models.PaymentMethodNameCash)
	product := env.mustCreateProduct(t, "Fabric")

	morning := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	env.mustCreateTransaction(t, txSpec{
		user: user, dateTime: morning, balance: decimal.Zero,
		lines:    []models.TransactionLine{{ProductID: product.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(100)}},
		payments: []models.TransactionPayment{{PaymentMethodID: cash.ID, Amount: decimal.NewFromInt(100)}},
	})
	// A checkpoint ahead of the clock can happen after operator clock drift.
	if err := env.conn.Create(&models.ReconciliationCheckpoint{
		GeneratedAt: morning.Add(4 * time.Hour),
		GeneratedBy: user.ID,
		Kind:        enums.ReportKindZ,
	}).Error; err != nil {
		t.Fatalf("create checkpoint: %v", err)
	}
	env.freezeNow(morning.Add(3 * time.Hour))

	report, err := env.svc.XReport(ctx, user.ID)
	if err != nil {
		t.Fatalf("x report: %v", err)
	}
	wantStart := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	if !report.StartDate.Equal(wantStart) {
		t.Fatalf("start = %s, want %s", report.StartDate, wantStart)
	}
	if report.TotalTransactions != 1 {
		t.Fatalf("total transactions = %d, want 1", report.TotalTransactions)
	}
}

func TestReportsRejectEmptyLedgerAndUnknownUser(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.mustCreateUser(t, "Arul", "Murugan")

	_, err := env.svc.XReport(ctx, user.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeDomainInvariant {
		t.Fatalf("expected domain invariant error, got %v", err)
	}
	_, err = env.svc.ZReport(ctx, user.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeDomainInvariant {
		t.Fatalf("expected domain invariant error, got %v", err)
	}

	_, err = env.svc.XReport(ctx, user.ID+100)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}
