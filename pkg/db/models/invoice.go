package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/invoicecapture-backend/pkg/enums"
)

// Invoice is a submitted purchase record. Items are always replaced as a set.
type Invoice struct {
	ID                 uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	UserID             uuid.UUID           `gorm:"column:user_id;type:uuid;not null"`
	InvoiceNumber      string              `gorm:"column:invoice_number;not null;default:''"`
	StoreName          string              `gorm:"column:store_name;not null;default:''"`
	InvoiceDate        *time.Time          `gorm:"column:invoice_date;type:date"`
	TotalAmount        decimal.Decimal     `gorm:"column:total_amount;type:numeric(14,2);not null;default:0"`
	TaxAmount          decimal.Decimal     `gorm:"column:tax_amount;type:numeric(14,2);not null;default:0"`
	DiscountAmount     decimal.Decimal     `gorm:"column:discount_amount;type:numeric(14,2);not null;default:0"`
	FinalPrice         decimal.NullDecimal `gorm:"column:final_price;type:numeric(14,2)"`
	Category           string              `gorm:"column:category;not null;default:''"`
	PromotionMechanism *string             `gorm:"column:promotion_mechanism"`
	OriginalText       *string             `gorm:"column:original_text"`
	ImageURL           string              `gorm:"column:image_url;not null;default:''"`
	Status             enums.InvoiceStatus `gorm:"column:status;type:invoice_status;not null;default:'pending'"`
	CreatedAt          time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time           `gorm:"column:updated_at;autoUpdateTime"`

	User  *User         `gorm:"foreignKey:UserID;references:ID"`
	Items []InvoiceItem `gorm:"foreignKey:InvoiceID;references:ID"`
}

func (Invoice) TableName() string {
	return "invoices"
}
