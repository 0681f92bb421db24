package models

import (
	"time"

	"github.com/PurushorthamanMR/ArulTex-BA/pkg/enums"
)

// StockMovement records an immutable inventory ledger entry. Quantity is the
// signed delta applied to the product's stock counter; PreviousStock and
// NewStock snapshot the counter around the write so the history reconstructs
// without replay.
type StockMovement struct {
	ID            int64              `gorm:"column:id;primaryKey;autoIncrement"`
	ProductID     int64              `gorm:"column:product_id;not null;index"`
	Product       *Product           `gorm:"foreignKey:ProductID"`
	Kind          enums.MovementKind `gorm:"column:kind;type:movement_kind_enum;not null;index"`
	Quantity      int                `gorm:"column:quantity;not null"`
	PreviousStock int                `gorm:"column:previous_stock;not null"`
	NewStock      int                `gorm:"column:new_stock;not null"`
	ReferenceID   *int64             `gorm:"column:reference_id;index"`
	ActorUserID   *int64             `gorm:"column:actor_user_id;index"`
	Note          *string            `gorm:"column:note"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime;index"`
}
