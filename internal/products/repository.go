package products

import (
	"context"
	"strings"

	"github.com/PurushorthamanMR/ArulTex-BA/pkg/db/models"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/pagination"
	"gorm.io/gorm"
)

// Filter narrows product listings.
type Filter struct {
	CategoryID *int64
	SupplierID *int64
	Query      string
	ActiveOnly bool
}

// Repository wires together product persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByID loads the product with its category and supplier.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Supplier").
		First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByBarcode loads the product matching the scanned barcode.
func (r *Repository) FindByBarcode(ctx context.Context, barcode string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		Preload("Category").
		First(&product, "barcode = ?", barcode).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// Create inserts a new product row.
func (r *Repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Update saves the mutable catalog fields. The stock counter is excluded;
// only the inventory ledger writes it.
func (r *Repository) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).
		Model(product).
		Omit("stock_qty").
		Updates(map[string]any{
			"name":                product.Name,
			"barcode":             product.Barcode,
			"category_id":         product.CategoryID,
			"supplier_id":         product.SupplierID,
			"unit_price":          product.UnitPrice,
			"cost_price":          product.CostPrice,
			"low_stock_threshold": product.LowStockThreshold,
			"is_active":           product.IsActive,
		}).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Deactivate soft-deletes the product from sale surfaces.
func (r *Repository) Deactivate(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Search pages products matching the filter.
func (r *Repository) Search(ctx context.Context, filter Filter, params pagination.Params) ([]models.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})

	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern := "%" + q + "%"
		query = query.Where("name LIKE ? OR barcode LIKE ?", pattern, pattern)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []models.Product
	if err := query.
		Preload("Category").
		Preload("Supplier").
		Order("name ASC").
		Offset(params.Offset()).
		Limit(params.Limit()).
		Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// ListLowStock returns active products at or below their threshold.
func (r *Repository) ListLowStock(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Where("is_active = ? AND stock_qty <= low_stock_threshold", true).
		Order("stock_qty ASC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}
