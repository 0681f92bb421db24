package purchases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PurushorthamanMR/ArulTex-BA/internal/catalog"
	"github.com/PurushorthamanMR/ArulTex-BA/internal/inventory"
	"github.com/PurushorthamanMR/ArulTex-BA/internal/users"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/db"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/db/models"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/enums"
	pkgerrors "github.com/PurushorthamanMR/ArulTex-BA/pkg/errors"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/logger"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service handles supplier purchases. Stock is received through the
// inventory ledger exactly once, when a purchase reaches completed.
type Service interface {
	Create(ctx context.Context, input CreatePurchaseInput) (*models.Purchase, error)
	Update(ctx context.Context, input UpdatePurchaseInput) (*models.Purchase, error)
	Get(ctx context.Context, id int64) (*models.Purchase, error)
	Search(ctx context.Context, filter Filter, params pagination.Params) (pagination.Page[models.Purchase], error)
	ListItemsByProduct(ctx context.Context, productID int64) ([]models.PurchaseItem, error)
}

// PurchaseItemInput is one ordered line.
type PurchaseItemInput struct {
	ProductID int64
	Quantity  int
	CostPrice decimal.Decimal
}

// CreatePurchaseInput captures a new supplier order.
type CreatePurchaseInput struct {
	SupplierID     int64
	UserID         int64
	PurchaseNumber *string
	DateTime       *time.Time
	Status         *enums.PurchaseStatus
	Items          []PurchaseItemInput
}

// UpdatePurchaseInput mutates an existing order. A nil Items leaves the item
// set untouched; a non-empty one replaces it.
type UpdatePurchaseInput struct {
	PurchaseID  int64
	ActorUserID int64
	SupplierID  *int64
	Status      *enums.PurchaseStatus
	Items       []PurchaseItemInput
}

type service struct {
	repo         *Repository
	inventory    inventory.Service
	supplierRepo *catalog.SupplierRepository
	userRepo     *users.Repository
	dbClient     *db.Client
	logg         *logger.Logger
	now          func() time.Time
}

// NewService wires the purchases service.
func NewService(repo *Repository, inventorySvc inventory.Service, supplierRepo *catalog.SupplierRepository, userRepo *users.Repository, dbClient *db.Client, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("purchases repository required")
	}
	if inventorySvc == nil {
		return nil, fmt.Errorf("inventory service required")
	}
	if supplierRepo == nil {
		return nil, fmt.Errorf("supplier repository required")
	}
	if userRepo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, inventory: inventorySvc, supplierRepo: supplierRepo, userRepo: userRepo, dbClient: dbClient, logg: logg, now: time.Now}, nil
}

// Create persists the order and, when it arrives already completed, receives
// the stock through the ledger in the same transaction.
func (s *service) Create(ctx context.Context, input CreatePurchaseInput) (*models.Purchase, error) {
	if err := s.validateCreate(ctx, input); err != nil {
		return nil, err
	}

	now := s.now()
	dateTime := now
	if input.DateTime != nil {
		dateTime = *input.DateTime
	}
	purchaseNumber := fmt.Sprintf("PUR-%d", now.UnixMilli())
	if input.PurchaseNumber != nil && *input.PurchaseNumber != "" {
		purchaseNumber = *input.PurchaseNumber
	}
	status := enums.PurchaseStatusCompleted
	if input.Status != nil {
		status = *input.Status
	}

	items, totalAmount := buildItems(input.Items)
	purchase := &models.Purchase{
		PurchaseNumber: purchaseNumber,
		SupplierID:     input.SupplierID,
		UserID:         input.UserID,
		TotalAmount:    totalAmount,
		Status:         status,
		DateTime:       dateTime,
		Items:          items,
	}

	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, purchase); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "purchase number already in use")
			}
			return err
		}
		if purchase.Status != enums.PurchaseStatusCompleted {
			return nil
		}
		note := fmt.Sprintf("Purchase %s", purchase.PurchaseNumber)
		return s.receiveItems(ctx, tx, purchase, note)
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"purchase_id": purchase.ID,
		"number":      purchase.PurchaseNumber,
		"status":      purchase.Status,
	}), "purchase created")
	return s.Get(ctx, purchase.ID)
}

// Update replaces the item set and moves the status. Receipts hit the ledger
// only on the pending-to-completed transition; a completed purchase is
// frozen so stock is never received twice.
func (s *service) Update(ctx context.Context, input UpdatePurchaseInput) (*models.Purchase, error) {
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid purchase status %q", *input.Status))
	}
	if err := validateItems(input.Items); err != nil {
		return nil, err
	}

	purchase, err := s.Get(ctx, input.PurchaseID)
	if err != nil {
		return nil, err
	}
	if purchase.Status != enums.PurchaseStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeDomainInvariant,
			fmt.Sprintf("cannot update a %s purchase", purchase.Status))
	}
	if input.SupplierID != nil {
		if _, err := s.supplierRepo.FindByID(ctx, *input.SupplierID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier not found")
			}
			return nil, err
		}
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		updates := map[string]any{}
		if input.SupplierID != nil {
			updates["supplier_id"] = *input.SupplierID
		}
		if len(input.Items) > 0 {
			items, totalAmount := buildItems(input.Items)
			if err := repo.ReplaceItems(ctx, purchase.ID, items); err != nil {
				return err
			}
			purchase.Items = items
			updates["total_amount"] = totalAmount
		}
		if input.Status != nil {
			updates["status"] = *input.Status
		}
		if len(updates) > 0 {
			if err := repo.UpdateHeader(ctx, purchase.ID, updates); err != nil {
				return err
			}
		}
		if input.Status == nil || *input.Status != enums.PurchaseStatusCompleted {
			return nil
		}
		actor := input.ActorUserID
		if actor <= 0 {
			actor = purchase.UserID
		}
		purchase.UserID = actor
		note := fmt.Sprintf("Purchase update %s", purchase.PurchaseNumber)
		return s.receiveItems(ctx, tx, purchase, note)
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"purchase_id": purchase.ID,
		"number":      purchase.PurchaseNumber,
	}), "purchase updated")
	return s.Get(ctx, purchase.ID)
}

func (s *service) Get(ctx context.Context, id int64) (*models.Purchase, error) {
	purchase, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "purchase not found")
		}
		return nil, err
	}
	return purchase, nil
}

func (s *service) Search(ctx context.Context, filter Filter, params pagination.Params) (pagination.Page[models.Purchase], error) {
	purchases, total, err := s.repo.Search(ctx, filter, params)
	if err != nil {
		return pagination.Page[models.Purchase]{}, err
	}
	return pagination.NewPage(purchases, params, total), nil
}

func (s *service) ListItemsByProduct(ctx context.Context, productID int64) ([]models.PurchaseItem, error) {
	return s.repo.ListItemsByProduct(ctx, productID)
}

func (s *service) receiveItems(ctx context.Context, tx *gorm.DB, purchase *models.Purchase, note string) error {
	for _, item := range purchase.Items {
		_, err := s.inventory.RecordMovement(ctx, tx, inventory.RecordMovementInput{
			ProductID:   item.ProductID,
			Kind:        enums.MovementKindPurchase,
			Quantity:    item.Quantity,
			ReferenceID: &purchase.ID,
			ActorUserID: &purchase.UserID,
			Note:        &note,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *service) validateCreate(ctx context.Context, input CreatePurchaseInput) error {
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "purchase must have at least one item")
	}
	if err := validateItems(input.Items); err != nil {
		return err
	}
	if input.Status != nil && !input.Status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid purchase status %q", *input.Status))
	}
	if _, err := s.supplierRepo.FindByID(ctx, input.SupplierID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "supplier not found")
		}
		return err
	}
	if _, err := s.userRepo.FindByID(ctx, input.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "user not found")
		}
		return err
	}
	return nil
}

func validateItems(items []PurchaseItemInput) error {
	for _, item := range items {
		if item.ProductID <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "item product id is required")
		}
		if item.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
		if item.CostPrice.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "item cost price must be non-negative")
		}
	}
	return nil
}

func buildItems(inputs []PurchaseItemInput) ([]models.PurchaseItem, decimal.Decimal) {
	totalAmount := decimal.Zero
	items := make([]models.PurchaseItem, 0, len(inputs))
	for _, input := range inputs {
		lineTotal := input.CostPrice.Mul(decimal.NewFromInt(int64(input.Quantity)))
		totalAmount = totalAmount.Add(lineTotal)
		items = append(items, models.PurchaseItem{
			ProductID: input.ProductID,
			Quantity:  input.Quantity,
			CostPrice: input.CostPrice,
			Total:     lineTotal,
		})
	}
	return items, totalAmount
}
