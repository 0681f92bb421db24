package catalog

import (
	"context"

	"github.com/PurushorthamanMR/ArulTex-BA/pkg/db/models"
	"gorm.io/gorm"
)

// PaymentMethodRepository manages persistence for tender types.
type PaymentMethodRepository struct {
	db *gorm.DB
}

// NewPaymentMethodRepository builds a repository tied to the provided GORM DB.
func NewPaymentMethodRepository(db *gorm.DB) *PaymentMethodRepository {
	return &PaymentMethodRepository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *PaymentMethodRepository) WithTx(tx *gorm.DB) *PaymentMethodRepository {
	if tx == nil {
		return r
	}
	return &PaymentMethodRepository{db: tx}
}

func (r *PaymentMethodRepository) FindByID(ctx context.Context, id int64) (*models.PaymentMethod, error) {
	var method models.PaymentMethod
	if err := r.db.WithContext(ctx).First(&method, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &method, nil
}

func (r *PaymentMethodRepository) List(ctx context.Context) ([]models.PaymentMethod, error) {
	var methods []models.PaymentMethod
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&methods).Error; err != nil {
		return nil, err
	}
	return methods, nil
}

func (r *PaymentMethodRepository) Create(ctx context.Context, method *models.PaymentMethod) (*models.PaymentMethod, error) {
	if err := r.db.WithContext(ctx).Create(method).Error; err != nil {
		return nil, err
	}
	return method, nil
}

func (r *PaymentMethodRepository) Update(ctx context.Context, method *models.PaymentMethod) (*models.PaymentMethod, error) {
	if err := r.db.WithContext(ctx).Save(method).Error; err != nil {
		return nil, err
	}
	return method, nil
}

func (r *PaymentMethodRepository) Deactivate(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).
		Model(&models.PaymentMethod{}).
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
