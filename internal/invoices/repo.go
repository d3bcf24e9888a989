package invoices

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/invoicecapture-backend/pkg/db/models"
	"github.com/angelmondragon/invoicecapture-backend/pkg/enums"
	"github.com/angelmondragon/invoicecapture-backend/pkg/pagination"
)

// Repository persists invoices and their line items.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an invoices repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository that runs on the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts the invoice row and its items.
func (r *Repository) Create(ctx context.Context, invoice *models.Invoice, items []models.InvoiceItem) error {
	if invoice.ID == uuid.Nil {
		invoice.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Omit("User", "Items").Create(invoice).Error; err != nil {
		return err
	}
	return r.insertItems(ctx, invoice.ID, items)
}

// UpdateFields writes the editable columns. Status is left untouched.
func (r *Repository) UpdateFields(ctx context.Context, invoice *models.Invoice) error {
	return r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("id = ?", invoice.ID).
		Updates(map[string]any{
			"invoice_number":      invoice.InvoiceNumber,
			"store_name":          invoice.StoreName,
			"invoice_date":        invoice.InvoiceDate,
			"total_amount":        invoice.TotalAmount,
			"tax_amount":          invoice.TaxAmount,
			"discount_amount":     invoice.DiscountAmount,
			"final_price":         invoice.FinalPrice,
			"category":            invoice.Category,
			"promotion_mechanism": invoice.PromotionMechanism,
			"original_text":       invoice.OriginalText,
		}).Error
}

// ReplaceItems deletes every item of the invoice and inserts the new set.
func (r *Repository) ReplaceItems(ctx context.Context, invoiceID uuid.UUID, items []models.InvoiceItem) error {
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Delete(&models.InvoiceItem{}).Error; err != nil {
		return err
	}
	return r.insertItems(ctx, invoiceID, items)
}

func (r *Repository) insertItems(ctx context.Context, invoiceID uuid.UUID, items []models.InvoiceItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].InvoiceID = invoiceID
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

// UpdateStatus sets the review status and reports whether a row matched.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.InvoiceStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// FindByID loads an invoice with its submitter and ordered items.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := r.preloaded(ctx).First(&invoice, "invoices.id = ?", id).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

// ListQuery filters a cursor page of invoices.
type ListQuery struct {
	UserID *uuid.UUID
	Search string
	Status *enums.InvoiceStatus
	Cursor *pagination.Cursor
	Limit  int
}

// List returns invoices newest first. It fetches one extra row so callers can
// detect a following page.
func (r *Repository) List(ctx context.Context, q ListQuery) ([]models.Invoice, error) {
	query := r.filtered(r.preloaded(ctx), q.UserID, q.Search, q.Status)
	if q.Cursor != nil {
		query = query.Where("((invoices.created_at < ?) OR (invoices.created_at = ? AND invoices.id < ?))", q.Cursor.CreatedAt, q.Cursor.CreatedAt, q.Cursor.ID)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	var rows []models.Invoice
	if err := query.Order("invoices.created_at DESC").Order("invoices.id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Preload("User").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("invoice_items.position ASC")
		})
}

func (r *Repository) filtered(query *gorm.DB, userID *uuid.UUID, search string, status *enums.InvoiceStatus) *gorm.DB {
	if userID != nil {
		query = query.Where("invoices.user_id = ?", *userID)
	}
	if status != nil {
		query = query.Where("invoices.status = ?", *status)
	}
	if term := strings.ToLower(strings.TrimSpace(search)); term != "" {
		like := "%" + escapeLike(term) + "%"
		query = query.Where(
			`(LOWER(invoices.invoice_number) LIKE ? ESCAPE '\' OR LOWER(invoices.store_name) LIKE ? ESCAPE '\' OR invoices.user_id IN (SELECT id FROM users WHERE LOWER(name) LIKE ? ESCAPE '\'))`,
			like, like, like,
		)
	}
	return query
}

func escapeLike(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(term)
}
