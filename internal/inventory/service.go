package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/PurushorthamanMR/ArulTex-BA/pkg/db"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/db/models"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/enums"
	pkgerrors "github.com/PurushorthamanMR/ArulTex-BA/pkg/errors"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/logger"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/pagination"
	"gorm.io/gorm"
)

// Service is the single write path for product stock. Every purchase receipt,
// sale deduction, return restock, and manual adjustment flows through
// RecordMovement; nothing else writes products.stock_qty.
type Service interface {
	RecordMovement(ctx context.Context, tx *gorm.DB, input RecordMovementInput) (*models.StockMovement, error)
	Adjust(ctx context.Context, input AdjustInput) (*models.StockMovement, error)
	GetMovement(ctx context.Context, id int64) (*models.StockMovement, error)
	SearchMovements(ctx context.Context, filter MovementFilter, params pagination.Params) (pagination.Page[models.StockMovement], error)
	UpdateMovementNote(ctx context.Context, id int64, note *string) error
}

// RecordMovementInput captures one signed stock delta.
type RecordMovementInput struct {
	ProductID   int64
	Kind        enums.MovementKind
	Quantity    int
	ReferenceID *int64
	ActorUserID *int64
	Note        *string
}

// AdjustInput is a manual correction applied outside any caller transaction.
type AdjustInput struct {
	ProductID   int64
	Quantity    int
	ActorUserID int64
	Note        *string
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	logg     *logger.Logger
}

// NewService wires the inventory ledger service.
func NewService(repo *Repository, dbClient *db.Client, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, dbClient: dbClient, logg: logg}, nil
}

// RecordMovement applies one signed delta to the product's stock counter and
// appends the matching ledger row, both on the supplied transaction. The
// product row is read under a row lock, so two concurrent sales of the last
// unit resolve to one success and one insufficient-stock conflict. Replays
// with the same reference id double-apply; idempotence is the caller's
// concern.
func (s *service) RecordMovement(ctx context.Context, tx *gorm.DB, input RecordMovementInput) (*models.StockMovement, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction is required")
	}
	if err := validateMovementInput(input); err != nil {
		return nil, err
	}

	repo := s.repo.WithTx(tx)

	product, err := repo.FindProductForUpdate(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, err
	}

	newStock := product.StockQty + input.Quantity
	if newStock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
			WithDetails(map[string]any{
				"productId": product.ID,
				"available": product.StockQty,
				"requested": -input.Quantity,
			})
	}

	if err := repo.UpdateProductStock(ctx, product.ID, newStock); err != nil {
		return nil, err
	}

	movement := &models.StockMovement{
		ProductID:     product.ID,
		Kind:          input.Kind,
		Quantity:      input.Quantity,
		PreviousStock: product.StockQty,
		NewStock:      newStock,
		ReferenceID:   input.ReferenceID,
		ActorUserID:   input.ActorUserID,
		Note:          input.Note,
	}
	if err := repo.CreateMovement(ctx, movement); err != nil {
		return nil, err
	}
	return movement, nil
}

// Adjust records a manual adjustment in its own transaction.
func (s *service) Adjust(ctx context.Context, input AdjustInput) (*models.StockMovement, error) {
	if input.ActorUserID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor user id is required")
	}

	var movement *models.StockMovement
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		recorded, err := s.RecordMovement(ctx, tx, RecordMovementInput{
			ProductID:   input.ProductID,
			Kind:        enums.MovementKindAdjustment,
			Quantity:    input.Quantity,
			ActorUserID: &input.ActorUserID,
			Note:        input.Note,
		})
		if err != nil {
			return err
		}
		movement = recorded
		return nil
	})
	if err != nil {
		return nil, err
	}

	meta := map[string]any{
		"product_id": movement.ProductID,
		"quantity":   movement.Quantity,
		"new_stock":  movement.NewStock,
	}
	s.logg.Info(s.logg.WithFields(ctx, meta), "stock adjustment recorded")
	return movement, nil
}

func (s *service) GetMovement(ctx context.Context, id int64) (*models.StockMovement, error) {
	movement, err := s.repo.FindMovementByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "stock movement not found")
		}
		return nil, err
	}
	return movement, nil
}

func (s *service) SearchMovements(ctx context.Context, filter MovementFilter, params pagination.Params) (pagination.Page[models.StockMovement], error) {
	movements, total, err := s.repo.SearchMovements(ctx, filter, params)
	if err != nil {
		return pagination.Page[models.StockMovement]{}, err
	}
	return pagination.NewPage(movements, params, total), nil
}

func (s *service) UpdateMovementNote(ctx context.Context, id int64, note *string) error {
	if err := s.repo.UpdateMovementNote(ctx, id, note); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "stock movement not found")
		}
		return err
	}
	return nil
}

func validateMovementInput(input RecordMovementInput) error {
	if input.ProductID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if !input.Kind.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid movement kind %q", input.Kind))
	}
	if input.Quantity == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be non-zero")
	}
	switch input.Kind {
	case enums.MovementKindSale:
		if input.Quantity > 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "sale movements must carry a negative quantity")
		}
	case enums.MovementKindPurchase, enums.MovementKindReturn:
		if input.Quantity < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s movements must carry a positive quantity", input.Kind))
		}
	}
	return nil
}
