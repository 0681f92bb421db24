package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PurushorthamanMR/ArulTex-BA/internal/catalog"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/db"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/db/models"
	pkgerrors "github.com/PurushorthamanMR/ArulTex-BA/pkg/errors"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/logger"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service exposes catalog operations for products.
type Service interface {
	Create(ctx context.Context, input CreateProductInput) (*models.Product, error)
	Update(ctx context.Context, id int64, input UpdateProductInput) (*models.Product, error)
	Deactivate(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*models.Product, error)
	GetByBarcode(ctx context.Context, barcode string) (*models.Product, error)
	Search(ctx context.Context, filter Filter, params pagination.Params) (pagination.Page[models.Product], error)
	ListLowStock(ctx context.Context) ([]models.Product, error)
}

// CreateProductInput carries validated catalog fields for a new product.
type CreateProductInput struct {
	Name              string
	Barcode           *string
	CategoryID        int64
	SupplierID        *int64
	UnitPrice         decimal.Decimal
	CostPrice         decimal.Decimal
	LowStockThreshold int
}

// UpdateProductInput carries the mutable catalog fields.
type UpdateProductInput struct {
	Name              string
	Barcode           *string
	CategoryID        int64
	SupplierID        *int64
	UnitPrice         decimal.Decimal
	CostPrice         decimal.Decimal
	LowStockThreshold int
	IsActive          bool
}

type service struct {
	repo       *Repository
	categories *catalog.CategoryRepository
	suppliers  *catalog.SupplierRepository
	dbClient   *db.Client
	logg       *logger.Logger
}

// NewService wires the product catalog service.
func NewService(repo *Repository, categories *catalog.CategoryRepository, suppliers *catalog.SupplierRepository, dbClient *db.Client, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if categories == nil {
		return nil, fmt.Errorf("category repository required")
	}
	if suppliers == nil {
		return nil, fmt.Errorf("supplier repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, categories: categories, suppliers: suppliers, dbClient: dbClient, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	if err := s.validateCatalogRefs(ctx, input.CategoryID, input.SupplierID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if input.UnitPrice.IsNegative() || input.CostPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "prices must be non-negative")
	}
	if input.LowStockThreshold < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "low stock threshold must be non-negative")
	}

	product := &models.Product{
		Name:              strings.TrimSpace(input.Name),
		Barcode:           normalizeBarcode(input.Barcode),
		CategoryID:        input.CategoryID,
		SupplierID:        input.SupplierID,
		UnitPrice:         input.UnitPrice,
		CostPrice:         input.CostPrice,
		LowStockThreshold: input.LowStockThreshold,
		IsActive:          true,
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "barcode already in use")
		}
		return nil, err
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, id int64, input UpdateProductInput) (*models.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validateCatalogRefs(ctx, input.CategoryID, input.SupplierID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if input.UnitPrice.IsNegative() || input.CostPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "prices must be non-negative")
	}

	product.Name = strings.TrimSpace(input.Name)
	product.Barcode = normalizeBarcode(input.Barcode)
	product.CategoryID = input.CategoryID
	product.SupplierID = input.SupplierID
	product.UnitPrice = input.UnitPrice
	product.CostPrice = input.CostPrice
	product.LowStockThreshold = input.LowStockThreshold
	product.IsActive = input.IsActive

	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "barcode already in use")
		}
		return nil, err
	}
	return updated, nil
}

func (s *service) Deactivate(ctx context.Context, id int64) error {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return err
	}
	return nil
}

func (s *service) Get(ctx context.Context, id int64) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, err
	}
	return product, nil
}

func (s *service) GetByBarcode(ctx context.Context, barcode string) (*models.Product, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "barcode is required")
	}
	product, err := s.repo.FindByBarcode(ctx, barcode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, err
	}
	return product, nil
}

func (s *service) Search(ctx context.Context, filter Filter, params pagination.Params) (pagination.Page[models.Product], error) {
	items, total, err := s.repo.Search(ctx, filter, params)
	if err != nil {
		return pagination.Page[models.Product]{}, err
	}
	return pagination.NewPage(items, params, total), nil
}

func (s *service) ListLowStock(ctx context.Context) ([]models.Product, error) {
	return s.repo.ListLowStock(ctx)
}

func (s *service) validateCatalogRefs(ctx context.Context, categoryID int64, supplierID *int64) error {
	if _, err := s.categories.FindByID(ctx, categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "category not found")
		}
		return err
	}
	if supplierID != nil {
		if _, err := s.suppliers.FindByID(ctx, *supplierID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "supplier not found")
			}
			return err
		}
	}
	return nil
}

func normalizeBarcode(barcode *string) *string {
	if barcode == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*barcode)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
