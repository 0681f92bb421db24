package reports

import (
	"context"
	"errors"
	"time"

	"github.com/PurushorthamanMR/ArulTex-BA/pkg/db/models"
	"gorm.io/gorm"
)

// Repository reads the reconciliation window inputs and writes checkpoints.
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

// CountTransactions returns how many register transactions exist at all.
func (r *Repository) CountTransactions(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.RegisterTransaction{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// LatestCheckpoint returns the most recent reconciliation checkpoint, or nil
// when none has ever been written.
func (r *Repository) LatestCheckpoint(ctx context.Context) (*models.ReconciliationCheckpoint, error) {
	var checkpoint models.ReconciliationCheckpoint
	err := r.db.WithContext(ctx).
		Order("generated_at DESC").
		First(&checkpoint).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &checkpoint, nil
}

// TransactionDateTimeByID returns the dateTime of the transaction with the
// given id, or nil when it does not exist.
func (r *Repository) TransactionDateTimeByID(ctx context.Context, id int64) (*time.Time, error) {
	var transaction models.RegisterTransaction
	err := r.db.WithContext(ctx).
		Select("date_time").
		First(&transaction, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &transaction.DateTime, nil
}

// EarliestTransactionDateTime returns the dateTime of the lowest-id
// transaction, or nil when the table is empty.
func (r *Repository) EarliestTransactionDateTime(ctx context.Context) (*time.Time, error) {
	var transaction models.RegisterTransaction
	err := r.db.WithContext(ctx).
		Select("date_time").
		Order("id ASC").
		First(&transaction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &transaction.DateTime, nil
}

// NextTransactionDateTimeAfter returns the dateTime of the first transaction
// strictly after the mark, or nil when none follows.
func (r *Repository) NextTransactionDateTimeAfter(ctx context.Context, mark time.Time) (*time.Time, error) {
	var transaction models.RegisterTransaction
	err := r.db.WithContext(ctx).
		Select("date_time").
		Where("date_time > ?", mark).
		Order("date_time ASC").
		First(&transaction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &transaction.DateTime, nil
}

// ListTransactionsInWindow loads the transactions inside [start, end]
// inclusive with every association the aggregations touch.
func (r *Repository) ListTransactionsInWindow(ctx context.Context, start, end time.Time) ([]models.RegisterTransaction, error) {
	var transactions []models.RegisterTransaction
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Lines.Product.Category").
		Preload("Payments.PaymentMethod").
		Where("date_time >= ? AND date_time <= ?", start, end).
		Order("id ASC").
		Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

// CreateCheckpoint appends one reconciliation checkpoint row.
func (r *Repository) CreateCheckpoint(ctx context.Context, checkpoint *models.ReconciliationCheckpoint) error {
	return r.db.WithContext(ctx).Create(checkpoint).Error
}
