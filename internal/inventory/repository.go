package inventory

import (
	"context"
	"time"

	"github.com/PurushorthamanMR/ArulTex-BA/pkg/db/models"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/enums"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MovementFilter narrows ledger history queries.
type MovementFilter struct {
	ProductID   *int64
	Kind        *enums.MovementKind
	ActorUserID *int64
	From        *time.Time
	To          *time.Time
}

// Repository manages persistence for the stock movement ledger.
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

// FindProductForUpdate loads the product row under a row-level lock so
// concurrent movements against the same product serialize. SQLite (used in
// tests) has no row locks; its writes serialize on the database lock instead.
func (r *Repository) FindProductForUpdate(ctx context.Context, productID int64) (*models.Product, error) {
	query := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var product models.Product
	if err := query.First(&product, "id = ?", productID).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// UpdateProductStock writes the denormalized stock counter.
func (r *Repository) UpdateProductStock(ctx context.Context, productID int64, newStock int) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Update("stock_qty", newStock).Error
}

// CreateMovement appends one immutable ledger row.
func (r *Repository) CreateMovement(ctx context.Context, movement *models.StockMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

// FindMovementByID loads one ledger row with its product.
func (r *Repository) FindMovementByID(ctx context.Context, id int64) (*models.StockMovement, error) {
	var movement models.StockMovement
	if err := r.db.WithContext(ctx).
		Preload("Product").
		First(&movement, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &movement, nil
}

// UpdateMovementNote changes the free-text note. Nothing else on a movement
// is mutable.
func (r *Repository) UpdateMovementNote(ctx context.Context, id int64, note *string) error {
	result := r.db.WithContext(ctx).
		Model(&models.StockMovement{}).
		Where("id = ?", id).
		Update("note", note)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SearchMovements pages ledger history matching the filter, newest first.
func (r *Repository) SearchMovements(ctx context.Context, filter MovementFilter, params pagination.Params) ([]models.StockMovement, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.StockMovement{})

	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.Kind != nil {
		query = query.Where("kind = ?", *filter.Kind)
	}
	if filter.ActorUserID != nil {
		query = query.Where("actor_user_id = ?", *filter.ActorUserID)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var movements []models.StockMovement
	if err := query.
		Preload("Product").
		Order("id DESC").
		Offset(params.Offset()).
		Limit(params.Limit()).
		Find(&movements).Error; err != nil {
		return nil, 0, err
	}
	return movements, total, nil
}
