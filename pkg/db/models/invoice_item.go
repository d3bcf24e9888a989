package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceItem is one product line of an invoice. Position preserves the submitted order.
type InvoiceItem struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	InvoiceID      uuid.UUID           `gorm:"column:invoice_id;type:uuid;not null"`
	Position       int                 `gorm:"column:position;not null"`
	Description    string              `gorm:"column:description;not null"`
	ProductName    string              `gorm:"column:product_name;not null;default:''"`
	ProductID      *string             `gorm:"column:product_id"`
	Quantity       decimal.Decimal     `gorm:"column:quantity;type:numeric(14,3);not null;default:0"`
	UnitPrice      decimal.Decimal     `gorm:"column:unit_price;type:numeric(14,2);not null;default:0"`
	Amount         decimal.Decimal     `gorm:"column:amount;type:numeric(14,2);not null;default:0"`
	Discount       decimal.NullDecimal `gorm:"column:discount;type:numeric(14,2)"`
	NetPrice       decimal.NullDecimal `gorm:"column:net_price;type:numeric(14,2)"`
	PromotionPrice decimal.NullDecimal `gorm:"column:promotion_price;type:numeric(14,2)"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
}

func (InvoiceItem) TableName() string {
	return "invoice_items"
}
