package models

import "time"

// PaymentMethod is a tender type accepted at the register. The X/Z reports
// single out the method named "Cash" for the drawer difference.
type PaymentMethod struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string    `gorm:"column:name;not null;uniqueIndex"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// PaymentMethodNameCash is the tender the reconciliation difference keys off.
const PaymentMethodNameCash = "Cash"
