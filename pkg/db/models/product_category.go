package models

import "time"

// ProductCategory groups products for reporting. The "Custom" and "Non Scan"
// categories mark lines the register sells without tracked stock.
type ProductCategory struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string    `gorm:"column:name;not null;uniqueIndex"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Category names whose products bypass the inventory ledger at the register.
const (
	CategoryNameCustom  = "Custom"
	CategoryNameNonScan = "Non Scan"
)

// SkipsStockMovement reports whether register lines in this category bypass
// the inventory ledger.
func (c ProductCategory) SkipsStockMovement() bool {
	return c.Name == CategoryNameCustom || c.Name == CategoryNameNonScan
}
