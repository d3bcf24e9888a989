package analytics

import (
	"strings"
	"time"

	"github.com/angelmondragon/invoicecapture-backend/internal/invoices"
)

// EffectiveDate selects the date an invoice is plotted on.
// Order of preference is invoice_date, then created_at.
func EffectiveDate(inv invoices.Invoice) time.Time {
	if inv.InvoiceDate != nil {
		if d, err := time.Parse(invoices.DateLayout, strings.TrimSpace(*inv.InvoiceDate)); err == nil {
			return d.UTC()
		}
	}
	return inv.CreatedAt.UTC()
}
