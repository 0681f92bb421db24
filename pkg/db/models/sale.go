package models

import (
	"time"

	"github.com/PurushorthamanMR/ArulTex-BA/pkg/enums"
	"github.com/shopspring/decimal"
)

// Sale is the newer-generation invoice header.
type Sale struct {
	ID            int64            `gorm:"column:id;primaryKey;autoIncrement"`
	InvoiceNumber string           `gorm:"column:invoice_number;not null;uniqueIndex"`
	UserID        int64            `gorm:"column:user_id;not null;index"`
	User          *User            `gorm:"foreignKey:UserID"`
	CustomerID    *int64           `gorm:"column:customer_id;index"`
	Customer      *Customer        `gorm:"foreignKey:CustomerID"`
	SubTotal      decimal.Decimal  `gorm:"column:sub_total;type:numeric(12,2);not null"`
	DiscountTotal decimal.Decimal  `gorm:"column:discount_total;type:numeric(12,2);not null;default:0"`
	TotalAmount   decimal.Decimal  `gorm:"column:total_amount;type:numeric(12,2);not null"`
	Status        enums.SaleStatus `gorm:"column:status;type:sale_status_enum;not null"`
	DateTime      time.Time        `gorm:"column:date_time;not null;index"`
	Items         []SaleItem       `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// SaleItem is one invoiced line. ReturnedQty accumulates across partial
// returns and caps further returns at Quantity - ReturnedQty.
type SaleItem struct {
	ID          int64           `gorm:"column:id;primaryKey;autoIncrement"`
	SaleID      int64           `gorm:"column:sale_id;not null;index"`
	ProductID   int64           `gorm:"column:product_id;not null;index"`
	Product     *Product        `gorm:"foreignKey:ProductID"`
	Quantity    int             `gorm:"column:quantity;not null"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Discount    decimal.Decimal `gorm:"column:discount;type:numeric(12,2);not null;default:0"`
	Total       decimal.Decimal `gorm:"column:total;type:numeric(12,2);not null"`
	ReturnedQty int             `gorm:"column:returned_qty;not null;default:0"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}
