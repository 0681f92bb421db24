package models

import (
	"time"

	"github.com/PurushorthamanMR/ArulTex-BA/pkg/enums"
	"github.com/shopspring/decimal"
)

// Purchase is a supplier order header. Stock is received through the ledger
// only when the purchase reaches the completed status.
type Purchase struct {
	ID             int64                `gorm:"column:id;primaryKey;autoIncrement"`
	PurchaseNumber string               `gorm:"column:purchase_number;not null;uniqueIndex"`
	SupplierID     int64                `gorm:"column:supplier_id;not null;index"`
	Supplier       *Supplier            `gorm:"foreignKey:SupplierID"`
	UserID         int64                `gorm:"column:user_id;not null;index"`
	User           *User                `gorm:"foreignKey:UserID"`
	TotalAmount    decimal.Decimal      `gorm:"column:total_amount;type:numeric(12,2);not null"`
	Status         enums.PurchaseStatus `gorm:"column:status;type:purchase_status_enum;not null"`
	DateTime       time.Time            `gorm:"column:date_time;not null;index"`
	Items          []PurchaseItem       `gorm:"foreignKey:PurchaseID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// PurchaseItem is one received line on a purchase.
type PurchaseItem struct {
	ID         int64           `gorm:"column:id;primaryKey;autoIncrement"`
	PurchaseID int64           `gorm:"column:purchase_id;not null;index"`
	ProductID  int64           `gorm:"column:product_id;not null;index"`
	Product    *Product        `gorm:"foreignKey:ProductID"`
	Quantity   int             `gorm:"column:quantity;not null"`
	CostPrice  decimal.Decimal `gorm:"column:cost_price;type:numeric(12,2);not null"`
	Total      decimal.Decimal `gorm:"column:total;type:numeric(12,2);not null"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
}
