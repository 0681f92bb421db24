package purchases

import (
	"context"
	"time"

	"github.com/PurushorthamanMR/ArulTex-BA/pkg/db/models"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/enums"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/pagination"
	"gorm.io/gorm"
)

// Filter narrows purchase searches.
type Filter struct {
	PurchaseNumber *string
	SupplierID     *int64
	Status         *enums.PurchaseStatus
	From           *time.Time
	To             *time.Time
}

// Repository manages persistence for supplier purchases.
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

// Create persists the purchase header together with its items.
func (r *Repository) Create(ctx context.Context, purchase *models.Purchase) error {
	return r.db.WithContext(ctx).Create(purchase).Error
}

// FindByID loads a purchase with its supplier, operator, and item products.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Purchase, error) {
	var purchase models.Purchase
	err := r.db.WithContext(ctx).
		Preload("Supplier").
		Preload("User").
		Preload("Items.Product").
		First(&purchase, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

// Search filters purchases and returns one page, newest first.
func (r *Repository) Search(ctx context.Context, filter Filter, params pagination.Params) ([]models.Purchase, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Purchase{})
	if filter.PurchaseNumber != nil {
		query = query.Where("purchase_number LIKE ?", "%"+*filter.PurchaseNumber+"%")
	}
	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.From != nil {
		query = query.Where("date_time >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("date_time <= ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var purchases []models.Purchase
	err := query.
		Preload("Supplier").
		Preload("User").
		Preload("Items.Product").
		Order("date_time DESC, id DESC").
		Offset(params.Offset()).
		Limit(params.Limit()).
		Find(&purchases).Error
	if err != nil {
		return nil, 0, err
	}
	return purchases, total, nil
}

// ListItemsByProduct returns every purchase line for one product, newest
// purchase first.
func (r *Repository) ListItemsByProduct(ctx context.Context, productID int64) ([]models.PurchaseItem, error) {
	var items []models.PurchaseItem
	err := r.db.WithContext(ctx).
		Joins("JOIN purchases ON purchases.id = purchase_items.purchase_id").
		Where("purchase_items.product_id = ?", productID).
		Preload("Product").
		Order("purchases.date_time DESC, purchase_items.id DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ReplaceItems deletes the current item set and inserts the new one.
func (r *Repository) ReplaceItems(ctx context.Context, purchaseID int64, items []models.PurchaseItem) error {
	if err := r.db.WithContext(ctx).
		Where("purchase_id = ?", purchaseID).
		Delete(&models.PurchaseItem{}).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].PurchaseID = purchaseID
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

// UpdateHeader writes the mutable header columns.
func (r *Repository) UpdateHeader(ctx context.Context, id int64, updates map[string]any) error {
	result := r.db.WithContext(ctx).
		Model(&models.Purchase{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
