package inventory

import (
	"context"
	"testing"

	"github.com/PurushorthamanMR/ArulTex-BA/pkg/db"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/db/models"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/enums"
	pkgerrors "github.com/PurushorthamanMR/ArulTex-BA/pkg/errors"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/logger"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/pagination"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := newTestDB(t)
	svc, err := NewService(NewRepository(conn), db.NewWithConn(conn), logger.New(logger.Options{ServiceName: "inventory-test"}))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, conn
}

func TestRecordMovementPurchaseIncreasesStock(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	category := mustCreateTestCategory(t, conn, "Fabric")
	product := mustCreateTestProduct(t, conn, category.ID, 3)

	var movement *models.StockMovement
	err := conn.Transaction(func(tx *gorm.DB) error {
		var terr error
		movement, terr = svc.RecordMovement(ctx, tx, RecordMovementInput{
			ProductID: product.ID,
			Kind:      enums.MovementKindPurchase,
			Quantity:  7,
		})
		return terr
	})
	if err != nil {
		t.Fatalf("record movement: %v", err)
	}

	if movement.PreviousStock != 3 || movement.NewStock != 10 || movement.Quantity != 7 {
		t.Fatalf("unexpected movement snapshot: %+v", movement)
	}

	var stored models.Product
	if err := conn.First(&stored, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	if stored.StockQty != 10 {
		t.Fatalf("expected stock 10, got %d", stored.StockQty)
	}
}

func TestRecordMovementRejectsOversell(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	category := mustCreateTestCategory(t, conn, "Fabric")
	product := mustCreateTestProduct(t, conn, category.ID, 2)

	err := conn.Transaction(func(tx *gorm.DB) error {
		_, terr := svc.RecordMovement(ctx, tx, RecordMovementInput{
			ProductID: product.ID,
			Kind:      enums.MovementKindSale,
			Quantity:  -3,
		})
		return terr
	})
	if err == nil {
		t.Fatal("expected insufficient stock error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("unexpected error: %v", err)
	}

	// rolled back: counter untouched, no ledger row
	var stored models.Product
	if err := conn.First(&stored, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	if stored.StockQty != 2 {
		t.Fatalf("expected stock 2 after rollback, got %d", stored.StockQty)
	}
	var count int64
	if err := conn.Model(&models.StockMovement{}).Count(&count).Error; err != nil {
		t.Fatalf("count movements: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no movements, got %d", count)
	}
}

func TestRecordMovementExactDepletionSucceeds(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	category := mustCreateTestCategory(t, conn, "Fabric")
	product := mustCreateTestProduct(t, conn, category.ID, 3)

	err := conn.Transaction(func(tx *gorm.DB) error {
		_, terr := svc.RecordMovement(ctx, tx, RecordMovementInput{
			ProductID: product.ID,
			Kind:      enums.MovementKindSale,
			Quantity:  -3,
		})
		return terr
	})
	if err != nil {
		t.Fatalf("record movement: %v", err)
	}

	var stored models.Product
	if err := conn.First(&stored, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	if stored.StockQty != 0 {
		t.Fatalf("expected stock 0, got %d", stored.StockQty)
	}
}

func TestRecordMovementValidation(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	category := mustCreateTestCategory(t, conn, "Fabric")
	product := mustCreateTestProduct(t, conn, category.ID, 5)

	cases := []struct {
		name  string
		input RecordMovementInput
		code  pkgerrors.Code
	}{
		{
			name:  "zero quantity",
			input: RecordMovementInput{ProductID: product.ID, Kind: enums.MovementKindSale, Quantity: 0},
			code:  pkgerrors.CodeValidation,
		},
		{
			name:  "positive sale",
			input: RecordMovementInput{ProductID: product.ID, Kind: enums.MovementKindSale, Quantity: 2},
			code:  pkgerrors.CodeValidation,
		},
		{
			name:  "negative purchase",
			input: RecordMovementInput{ProductID: product.ID, Kind: enums.MovementKindPurchase, Quantity: -2},
			code:  pkgerrors.CodeValidation,
		},
		{
			name:  "invalid kind",
			input: RecordMovementInput{ProductID: product.ID, Kind: enums.MovementKind("bogus"), Quantity: 1},
			code:  pkgerrors.CodeValidation,
		},
		{
			name:  "unknown product",
			input: RecordMovementInput{ProductID: product.ID + 999, Kind: enums.MovementKindPurchase, Quantity: 1},
			code:  pkgerrors.CodeNotFound,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := conn.Transaction(func(tx *gorm.DB) error {
				_, terr := svc.RecordMovement(ctx, tx, tc.input)
				return terr
			})
			if err == nil {
				t.Fatal("expected error")
			}
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != tc.code {
				t.Fatalf("expected code %s, got %v", tc.code, err)
			}
		})
	}
}

func TestRecordMovementReplayDoubleApplies(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	category := mustCreateTestCategory(t, conn, "Fabric")
	product := mustCreateTestProduct(t, conn, category.ID, 10)
	saleID := int64(42)

	for i := 0; i < 2; i++ {
		err := conn.Transaction(func(tx *gorm.DB) error {
			_, terr := svc.RecordMovement(ctx, tx, RecordMovementInput{
				ProductID:   product.ID,
				Kind:        enums.MovementKindSale,
				Quantity:    -2,
				ReferenceID: &saleID,
			})
			return terr
		})
		if err != nil {
			t.Fatalf("record movement %d: %v", i, err)
		}
	}

	var stored models.Product
	if err := conn.First(&stored, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	if stored.StockQty != 6 {
		t.Fatalf("expected stock 6 after replay, got %d", stored.StockQty)
	}
}

func TestMovementHistoryReconstructsCounter(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	category := mustCreateTestCategory(t, conn, "Fabric")
	product := mustCreateTestProduct(t, conn, category.ID, 0)

	steps := []RecordMovementInput{
		{ProductID: product.ID, Kind: enums.MovementKindPurchase, Quantity: 10},
		{ProductID: product.ID, Kind: enums.MovementKindSale, Quantity: -4},
		{ProductID: product.ID, Kind: enums.MovementKindReturn, Quantity: 1},
		{ProductID: product.ID, Kind: enums.MovementKindAdjustment, Quantity: -2},
	}
	for _, step := range steps {
		if err := conn.Transaction(func(tx *gorm.DB) error {
			_, terr := svc.RecordMovement(ctx, tx, step)
			return terr
		}); err != nil {
			t.Fatalf("record movement: %v", err)
		}
	}

	var movements []models.StockMovement
	if err := conn.Order("id ASC").Find(&movements, "product_id = ?", product.ID).Error; err != nil {
		t.Fatalf("load movements: %v", err)
	}
	if len(movements) != len(steps) {
		t.Fatalf("expected %d movements, got %d", len(steps), len(movements))
	}

	running := 0
	for i, movement := range movements {
		if movement.PreviousStock != running {
			t.Fatalf("movement %d previous stock %d, want %d", i, movement.PreviousStock, running)
		}
		running += movement.Quantity
		if movement.NewStock != running {
			t.Fatalf("movement %d new stock %d, want %d", i, movement.NewStock, running)
		}
	}

	var stored models.Product
	if err := conn.First(&stored, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	if stored.StockQty != running {
		t.Fatalf("counter %d does not match replayed history %d", stored.StockQty, running)
	}
}

func TestAdjustRecordsMovement(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	user := mustCreateTestUser(t, conn)
	category := mustCreateTestCategory(t, conn, "Fabric")
	product := mustCreateTestProduct(t, conn, category.ID, 5)

	note := "cycle count correction"
	movement, err := svc.Adjust(ctx, AdjustInput{
		ProductID:   product.ID,
		Quantity:    -2,
		ActorUserID: user.ID,
		Note:        &note,
	})
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if movement.Kind != enums.MovementKindAdjustment || movement.NewStock != 3 {
		t.Fatalf("unexpected movement: %+v", movement)
	}
	if movement.ActorUserID == nil || *movement.ActorUserID != user.ID {
		t.Fatalf("expected actor %d, got %+v", user.ID, movement.ActorUserID)
	}
}

func TestSearchMovementsFilters(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	category := mustCreateTestCategory(t, conn, "Fabric")
	productA := mustCreateTestProduct(t, conn, category.ID, 10)
	productB := mustCreateTestProduct(t, conn, category.ID, 10)

	seed := []RecordMovementInput{
		{ProductID: productA.ID, Kind: enums.MovementKindSale, Quantity: -1},
		{ProductID: productA.ID, Kind: enums.MovementKindPurchase, Quantity: 5},
		{ProductID: productB.ID, Kind: enums.MovementKindSale, Quantity: -2},
	}
	for _, input := range seed {
		if err := conn.Transaction(func(tx *gorm.DB) error {
			_, terr := svc.RecordMovement(ctx, tx, input)
			return terr
		}); err != nil {
			t.Fatalf("seed movement: %v", err)
		}
	}

	kind := enums.MovementKindSale
	page, err := svc.SearchMovements(ctx, MovementFilter{Kind: &kind}, pagination.Params{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if page.TotalCount != 2 || len(page.Items) != 2 {
		t.Fatalf("expected 2 sale movements, got %+v", page)
	}

	page, err = svc.SearchMovements(ctx, MovementFilter{ProductID: &productA.ID}, pagination.Params{})
	if err != nil {
		t.Fatalf("search by product: %v", err)
	}
	if page.TotalCount != 2 {
		t.Fatalf("expected 2 movements for product A, got %d", page.TotalCount)
	}
}

func TestUpdateMovementNote(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	category := mustCreateTestCategory(t, conn, "Fabric")
	product := mustCreateTestProduct(t, conn, category.ID, 5)

	var movement *models.StockMovement
	if err := conn.Transaction(func(tx *gorm.DB) error {
		var terr error
		movement, terr = svc.RecordMovement(ctx, tx, RecordMovementInput{
			ProductID: product.ID,
			Kind:      enums.MovementKindPurchase,
			Quantity:  1,
		})
		return terr
	}); err != nil {
		t.Fatalf("record movement: %v", err)
	}

	note := "late supplier delivery"
	if err := svc.UpdateMovementNote(ctx, movement.ID, &note); err != nil {
		t.Fatalf("update note: %v", err)
	}

	stored, err := svc.GetMovement(ctx, movement.ID)
	if err != nil {
		t.Fatalf("get movement: %v", err)
	}
	if stored.Note == nil || *stored.Note != note {
		t.Fatalf("expected note %q, got %+v", note, stored.Note)
	}

	err = svc.UpdateMovementNote(ctx, movement.ID+999, &note)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
