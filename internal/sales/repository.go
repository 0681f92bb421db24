package sales

import (
	"context"
	"time"

	"github.com/PurushorthamanMR/ArulTex-BA/pkg/db/models"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/enums"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/pagination"
	"gorm.io/gorm"
)

// Filter narrows sale searches.
type Filter struct {
	InvoiceNumber *string
	UserID        *int64
	Status        *enums.SaleStatus
	From          *time.Time
	To            *time.Time
}

// Repository manages persistence for invoiced sales.
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

// Create persists the sale header together with its items.
func (r *Repository) Create(ctx context.Context, sale *models.Sale) error {
	return r.db.WithContext(ctx).Create(sale).Error
}

// FindByID loads a sale with the associations its DTO exposes.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Sale, error) {
	var sale models.Sale
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Customer").
		Preload("Items.Product.Category").
		Preload("Items.Product.Supplier").
		First(&sale, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// Search filters sales and returns one page ordered by date, newest first.
func (r *Repository) Search(ctx context.Context, filter Filter, params pagination.Params) ([]models.Sale, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Sale{})
	if filter.InvoiceNumber != nil {
		query = query.Where("invoice_number LIKE ?", "%"+*filter.InvoiceNumber+"%")
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
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

	var sales []models.Sale
	err := query.
		Preload("User").
		Preload("Items.Product").
		Order("date_time DESC, id DESC").
		Offset(params.Offset()).
		Limit(params.Limit()).
		Find(&sales).Error
	if err != nil {
		return nil, 0, err
	}
	return sales, total, nil
}

// ListInRange loads sales inside [from, to) for report aggregation.
func (r *Repository) ListInRange(ctx context.Context, from, to time.Time, statuses []enums.SaleStatus) ([]models.Sale, error) {
	query := r.db.WithContext(ctx).
		Where("date_time >= ? AND date_time < ?", from, to)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	var sales []models.Sale
	err := query.
		Preload("Items.Product.Category").
		Preload("Items.Product.Supplier").
		Order("date_time ASC, id ASC").
		Find(&sales).Error
	if err != nil {
		return nil, err
	}
	return sales, nil
}

// UpdateItemReturnedQty sets the accumulated returned quantity on one item.
func (r *Repository) UpdateItemReturnedQty(ctx context.Context, itemID int64, returnedQty int) error {
	result := r.db.WithContext(ctx).
		Model(&models.SaleItem{}).
		Where("id = ?", itemID).
		Update("returned_qty", returnedQty)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateStatus moves the sale through its return lifecycle.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status enums.SaleStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
