package invoices

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// RecomputeTotal sums line amounts. Missing amounts count as zero.
func RecomputeTotal(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		if item.Amount.Valid {
			total = total.Add(item.Amount.Decimal)
		}
	}
	return total
}

// InitialTotal keeps a positive extracted total, otherwise it sums the items.
// Only creation uses it; edits that change the items recompute.
func InitialTotal(extracted decimal.Decimal, items []LineItem) decimal.Decimal {
	if extracted.IsPositive() {
		return extracted
	}
	return RecomputeTotal(items)
}

// Apply performs a single line-item mutation and recomputes the total.
func Apply(data *InvoiceData, mutation ItemMutation) error {
	if data == nil {
		return fmt.Errorf("invoice data is required")
	}
	items := append([]LineItem(nil), data.LineItems...)

	switch mutation.Op {
	case MutationAdd:
		item := LineItem{Quantity: decimal.NewFromInt(1)}
		if mutation.Item != nil {
			item = *mutation.Item
		}
		items = append(items, item)
	case MutationUpdate:
		if mutation.Index < 0 || mutation.Index >= len(items) {
			return fmt.Errorf("line item index %d out of range", mutation.Index)
		}
		if mutation.Item == nil {
			return fmt.Errorf("line item is required for update")
		}
		items[mutation.Index] = *mutation.Item
	case MutationRemove:
		if mutation.Index < 0 || mutation.Index >= len(items) {
			return fmt.Errorf("line item index %d out of range", mutation.Index)
		}
		items = append(items[:mutation.Index], items[mutation.Index+1:]...)
	default:
		return fmt.Errorf("unknown line item mutation %q", mutation.Op)
	}

	if items == nil {
		items = []LineItem{}
	}
	data.LineItems = items
	data.TotalAmount = RecomputeTotal(items)
	return nil
}

// sameItems reports whether an edit leaves the line items as persisted.
// Both sides are compared in stored form, position by position.
func sameItems(stored, submitted []LineItem) bool {
	if len(stored) != len(submitted) {
		return false
	}
	for i := range stored {
		if !sameItem(stored[i], submitted[i]) {
			return false
		}
	}
	return true
}

func sameItem(a, b LineItem) bool {
	return storedDescription(a) == storedDescription(b) &&
		a.ProductName == b.ProductName &&
		sameText(a.ProductID, b.ProductID) &&
		a.Quantity.Equal(b.Quantity) &&
		a.UnitPrice.Equal(b.UnitPrice) &&
		a.Amount.Decimal.Equal(b.Amount.Decimal) &&
		sameNullable(a.Discount, b.Discount) &&
		sameNullable(a.NetPrice, b.NetPrice) &&
		sameNullable(a.PromotionPrice, b.PromotionPrice)
}

func storedDescription(item LineItem) string {
	if strings.TrimSpace(item.Description) == "" {
		return DefaultItemDescription
	}
	return item.Description
}

func sameText(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func sameNullable(a, b decimal.NullDecimal) bool {
	if a.Valid != b.Valid {
		return false
	}
	return !a.Valid || a.Decimal.Equal(b.Decimal)
}
