package register

import (
	"context"
	"time"

	"github.com/PurushorthamanMR/ArulTex-BA/pkg/db/models"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Filter narrows transaction history queries.
type Filter struct {
	From            *time.Time
	To              *time.Time
	UserID          *int64
	CustomerID      *int64
	ProductID       *int64
	PaymentMethodID *int64
	ActiveOnly      bool
}

// Repository manages persistence for register transactions.
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

// Create persists the header with its lines and payment allocations.
func (r *Repository) Create(ctx context.Context, transaction *models.RegisterTransaction) error {
	return r.db.WithContext(ctx).Create(transaction).Error
}

// FindByID loads a transaction with all report-relevant associations.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.RegisterTransaction, error) {
	var transaction models.RegisterTransaction
	if err := r.preloaded(ctx).First(&transaction, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &transaction, nil
}

// Search pages transactions matching the filter, newest first.
func (r *Repository) Search(ctx context.Context, filter Filter, params pagination.Params) ([]models.RegisterTransaction, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.RegisterTransaction{})

	if filter.From != nil {
		query = query.Where("register_transactions.date_time >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("register_transactions.date_time <= ?", *filter.To)
	}
	if filter.UserID != nil {
		query = query.Where("register_transactions.user_id = ?", *filter.UserID)
	}
	if filter.CustomerID != nil {
		query = query.Where("register_transactions.customer_id = ?", *filter.CustomerID)
	}
	if filter.ActiveOnly {
		query = query.Where("register_transactions.is_active = ?", true)
	}
	if filter.ProductID != nil {
		query = query.
			Joins("JOIN transaction_lines ON transaction_lines.transaction_id = register_transactions.id").
			Where("transaction_lines.product_id = ?", *filter.ProductID).
			Distinct("register_transactions.*")
	}
	if filter.PaymentMethodID != nil {
		query = query.
			Joins("JOIN transaction_payments ON transaction_payments.transaction_id = register_transactions.id").
			Where("transaction_payments.payment_method_id = ?", *filter.PaymentMethodID).
			Distinct("register_transactions.*")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var transactions []models.RegisterTransaction
	if err := query.
		Preload("Customer").
		Preload("User").
		Preload("Lines.Product.Category").
		Preload("Payments.PaymentMethod").
		Order("register_transactions.id DESC").
		Offset(params.Offset()).
		Limit(params.Limit()).
		Find(&transactions).Error; err != nil {
		return nil, 0, err
	}
	return transactions, total, nil
}

// UpdateTotals writes the recomputed amounts on the header.
func (r *Repository) UpdateTotals(ctx context.Context, id int64, total, balance decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.RegisterTransaction{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"total_amount":   total,
			"balance_amount": balance,
		}).Error
}

// SetActive toggles the active flag.
func (r *Repository) SetActive(ctx context.Context, id int64, active bool) error {
	result := r.db.WithContext(ctx).
		Model(&models.RegisterTransaction{}).
		Where("id = ?", id).
		Update("is_active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CreateVoidRecord appends the audit row for a voided transaction.
func (r *Repository) CreateVoidRecord(ctx context.Context, record *models.VoidRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *Repository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Customer").
		Preload("User").
		Preload("Lines.Product.Category").
		Preload("Payments.PaymentMethod")
}
