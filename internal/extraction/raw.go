package extraction

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/invoicecapture-backend/internal/invoices"
)

// RawInvoice is the model's validated but unnormalized guess.
type RawInvoice struct {
	InvoiceNumber      string              `json:"invoice_number"`
	StoreName          string              `json:"store_name"`
	InvoiceDate        *string             `json:"invoice_date"`
	TotalAmount        decimal.NullDecimal `json:"total_amount"`
	TaxAmount          decimal.NullDecimal `json:"tax_amount"`
	DiscountAmount     decimal.NullDecimal `json:"discount_amount"`
	FinalPrice         decimal.NullDecimal `json:"final_price"`
	Category           string              `json:"category"`
	PromotionMechanism *string             `json:"promotion_mechanism"`
	OriginalText       *string             `json:"original_text"`
	LineItems          []RawLineItem       `json:"line_items"`
}

type RawLineItem struct {
	Description    string              `json:"description"`
	ProductName    string              `json:"product_name"`
	ProductID      *string             `json:"product_id"`
	Quantity       decimal.NullDecimal `json:"quantity"`
	UnitPrice      decimal.NullDecimal `json:"unit_price"`
	Amount         decimal.NullDecimal `json:"amount"`
	Discount       decimal.NullDecimal `json:"discount"`
	NetPrice       decimal.NullDecimal `json:"net_price"`
	PromotionPrice decimal.NullDecimal `json:"promotion_price"`
}

// InvoiceData converts the guess into editable invoice data. Missing money
// fields become zero; nullable ones stay null for the normalizer.
func (r RawInvoice) InvoiceData() invoices.InvoiceData {
	items := make([]invoices.LineItem, 0, len(r.LineItems))
	for _, item := range r.LineItems {
		items = append(items, invoices.LineItem{
			Description:    item.Description,
			ProductName:    item.ProductName,
			ProductID:      item.ProductID,
			Quantity:       orZero(item.Quantity),
			UnitPrice:      orZero(item.UnitPrice),
			Amount:         item.Amount,
			Discount:       item.Discount,
			NetPrice:       item.NetPrice,
			PromotionPrice: item.PromotionPrice,
		})
	}
	return invoices.InvoiceData{
		InvoiceNumber:      r.InvoiceNumber,
		StoreName:          r.StoreName,
		InvoiceDate:        r.InvoiceDate,
		TotalAmount:        orZero(r.TotalAmount),
		TaxAmount:          orZero(r.TaxAmount),
		DiscountAmount:     orZero(r.DiscountAmount),
		FinalPrice:         r.FinalPrice,
		Category:           r.Category,
		PromotionMechanism: r.PromotionMechanism,
		OriginalText:       r.OriginalText,
		LineItems:          items,
	}
}

func orZero(v decimal.NullDecimal) decimal.Decimal {
	if !v.Valid {
		return decimal.Zero
	}
	return v.Decimal
}
