package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterTransaction is a legacy-generation checkout header. The X/Z
// reconciliation window is resolved over DateTime, and the id ordering is
// load-bearing: the reporter falls back to transaction id 1 when no
// checkpoint exists yet.
type RegisterTransaction struct {
	ID            int64                `gorm:"column:id;primaryKey;autoIncrement"`
	CustomerID    int64                `gorm:"column:customer_id;not null;index"`
	Customer      *Customer            `gorm:"foreignKey:CustomerID"`
	UserID        int64                `gorm:"column:user_id;not null;index"`
	User          *User                `gorm:"foreignKey:UserID"`
	DateTime      time.Time            `gorm:"column:date_time;not null;index"`
	TotalAmount   decimal.Decimal      `gorm:"column:total_amount;type:numeric(12,2);not null"`
	BalanceAmount decimal.Decimal      `gorm:"column:balance_amount;type:numeric(12,2);not null"`
	IsActive      bool                 `gorm:"column:is_active;not null;default:true"`
	Lines         []TransactionLine    `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE"`
	Payments      []TransactionPayment `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// TransactionLine is one sold item on a register transaction.
type TransactionLine struct {
	ID            int64           `gorm:"column:id;primaryKey;autoIncrement"`
	TransactionID int64           `gorm:"column:transaction_id;not null;index"`
	ProductID     int64           `gorm:"column:product_id;not null;index"`
	Product       *Product        `gorm:"foreignKey:ProductID"`
	Quantity      int             `gorm:"column:quantity;not null"`
	UnitPrice     decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Discount      decimal.Decimal `gorm:"column:discount;type:numeric(12,2);not null;default:0"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// TransactionPayment is one tender allocation on a register transaction.
// A transaction may split its total across several methods.
type TransactionPayment struct {
	ID              int64           `gorm:"column:id;primaryKey;autoIncrement"`
	TransactionID   int64           `gorm:"column:transaction_id;not null;index"`
	PaymentMethodID int64           `gorm:"column:payment_method_id;not null;index"`
	PaymentMethod   *PaymentMethod  `gorm:"foreignKey:PaymentMethodID"`
	Amount          decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// VoidRecord preserves the audit trail when a transaction is voided. The
// transaction row itself is only deactivated, never deleted.
type VoidRecord struct {
	ID            int64     `gorm:"column:id;primaryKey;autoIncrement"`
	TransactionID int64     `gorm:"column:transaction_id;not null;index"`
	Reason        string    `gorm:"column:reason;not null"`
	ActorUserID   int64     `gorm:"column:actor_user_id;not null"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}
