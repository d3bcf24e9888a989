package invoices

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/invoicecapture-backend/pkg/db/models"
	"github.com/angelmondragon/invoicecapture-backend/pkg/enums"
)

// DateLayout is the wire format of invoice_date.
const DateLayout = "2006-01-02"

// LineItem is one purchased product line.
type LineItem struct {
	Description    string              `json:"description" validate:"max=500"`
	ProductName    string              `json:"product_name" validate:"max=500"`
	ProductID      *string             `json:"product_id,omitempty"`
	Quantity       decimal.Decimal     `json:"quantity"`
	UnitPrice      decimal.Decimal     `json:"unit_price"`
	Amount         decimal.NullDecimal `json:"amount"`
	Discount       decimal.NullDecimal `json:"discount"`
	NetPrice       decimal.NullDecimal `json:"net_price"`
	PromotionPrice decimal.NullDecimal `json:"promotion_price"`
}

// InvoiceData is the editable part of an invoice, before or after persistence.
type InvoiceData struct {
	InvoiceNumber      string              `json:"invoice_number" validate:"max=120"`
	StoreName          string              `json:"store_name" validate:"max=255"`
	InvoiceDate        *string             `json:"invoice_date"`
	TotalAmount        decimal.Decimal     `json:"total_amount"`
	TaxAmount          decimal.Decimal     `json:"tax_amount"`
	DiscountAmount     decimal.Decimal     `json:"discount_amount"`
	FinalPrice         decimal.NullDecimal `json:"final_price"`
	Category           string              `json:"category" validate:"max=120"`
	PromotionMechanism *string             `json:"promotion_mechanism"`
	OriginalText       *string             `json:"original_text"`
	LineItems          []LineItem          `json:"line_items" validate:"dive"`
}

// Submitter is the read-only profile join attached to persisted invoices.
type Submitter struct {
	Name  string `json:"name"`
	City  string `json:"city"`
	Email string `json:"email"`
}

// Invoice is a persisted invoice with identity and review state.
type Invoice struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`
	InvoiceData
	ImageURL  string              `json:"image_url"`
	Status    enums.InvoiceStatus `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
	User      *Submitter          `json:"user,omitempty"`
}

// CreateInput carries a confirmed invoice from the review screen.
type CreateInput struct {
	InvoiceData
	ImageURL string `json:"image_url" validate:"omitempty,url"`
}

// UpdateInput is a full edit. Status is not part of it.
type UpdateInput struct {
	InvoiceData
}

// Scope restricts which invoices a caller can read.
type Scope struct {
	UserID uuid.UUID
	All    bool
}

// ListParams captures list filters and cursor pagination.
type ListParams struct {
	Scope  Scope
	Limit  int
	Cursor string
	Search string
	Status string
}

// ListResult is one page of invoices.
type ListResult struct {
	Items      []Invoice `json:"items"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

// MutationOp names a single line-item edit.
type MutationOp string

const (
	MutationAdd    MutationOp = "add"
	MutationUpdate MutationOp = "update"
	MutationRemove MutationOp = "remove"
)

// ItemMutation is one add, update or remove applied to the line items.
type ItemMutation struct {
	Op    MutationOp `json:"op" validate:"required,oneof=add update remove"`
	Index int        `json:"index"`
	Item  *LineItem  `json:"item,omitempty"`
}

// ReviewInput is the payload of the preview endpoint.
type ReviewInput struct {
	Data     InvoiceData   `json:"data"`
	Mutation *ItemMutation `json:"mutation,omitempty"`
}

// ParseInvoiceDate converts the wire date to a time. Empty input yields nil.
func ParseInvoiceDate(value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, strings.TrimSpace(*value))
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func formatInvoiceDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(DateLayout)
	return &s
}

// FromModel maps a persisted invoice and its preloaded joins.
func FromModel(m *models.Invoice) Invoice {
	out := Invoice{
		ID:     m.ID,
		UserID: m.UserID,
		InvoiceData: InvoiceData{
			InvoiceNumber:      m.InvoiceNumber,
			StoreName:          m.StoreName,
			InvoiceDate:        formatInvoiceDate(m.InvoiceDate),
			TotalAmount:        m.TotalAmount,
			TaxAmount:          m.TaxAmount,
			DiscountAmount:     m.DiscountAmount,
			FinalPrice:         m.FinalPrice,
			Category:           m.Category,
			PromotionMechanism: m.PromotionMechanism,
			OriginalText:       m.OriginalText,
			LineItems:          make([]LineItem, 0, len(m.Items)),
		},
		ImageURL:  m.ImageURL,
		Status:    m.Status,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	for _, item := range m.Items {
		out.LineItems = append(out.LineItems, LineItem{
			Description:    item.Description,
			ProductName:    item.ProductName,
			ProductID:      item.ProductID,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			Amount:         decimal.NewNullDecimal(item.Amount),
			Discount:       item.Discount,
			NetPrice:       item.NetPrice,
			PromotionPrice: item.PromotionPrice,
		})
	}
	if m.User != nil {
		out.User = &Submitter{
			Name:  m.User.Name,
			City:  m.User.City,
			Email: m.User.Email,
		}
	}
	return out
}

// itemModels maps normalized line items to rows. Position follows slice order.
func itemModels(invoiceID uuid.UUID, items []LineItem) []models.InvoiceItem {
	rows := make([]models.InvoiceItem, 0, len(items))
	for i, item := range items {
		description := item.Description
		if strings.TrimSpace(description) == "" {
			description = DefaultItemDescription
		}
		rows = append(rows, models.InvoiceItem{
			ID:             uuid.New(),
			InvoiceID:      invoiceID,
			Position:       i,
			Description:    description,
			ProductName:    item.ProductName,
			ProductID:      item.ProductID,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			Amount:         item.Amount.Decimal,
			Discount:       item.Discount,
			NetPrice:       item.NetPrice,
			PromotionPrice: item.PromotionPrice,
		})
	}
	return rows
}

// applyData copies the editable fields onto a model. The date must already be parsed.
func applyData(m *models.Invoice, data InvoiceData, date *time.Time) {
	m.InvoiceNumber = strings.TrimSpace(data.InvoiceNumber)
	m.StoreName = strings.TrimSpace(data.StoreName)
	m.InvoiceDate = date
	m.TotalAmount = data.TotalAmount
	m.TaxAmount = data.TaxAmount
	m.DiscountAmount = data.DiscountAmount
	m.FinalPrice = data.FinalPrice
	m.Category = strings.TrimSpace(data.Category)
	m.PromotionMechanism = data.PromotionMechanism
	m.OriginalText = data.OriginalText
}
