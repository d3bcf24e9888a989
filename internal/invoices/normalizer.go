package invoices

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultItemDescription is stored when a line has neither description nor product name.
const DefaultItemDescription = "Item"

// Normalize fills line-item defaults and drops repeated products.
//
// product_name falls back to description and description to product_name.
// A missing or zero amount becomes quantity * unit_price, and a missing
// discount or net_price becomes zero. Items are then deduplicated on the
// trimmed, lower-cased product_name; the first occurrence wins and items
// without a name are always kept. The result is never nil and
// Normalize(Normalize(x)) equals Normalize(x).
func Normalize(items []LineItem) []LineItem {
	out := make([]LineItem, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		item = fillDefaults(item)
		key := productKey(item.ProductName)
		if key != "" {
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}
		out = append(out, item)
	}
	return out
}

func fillDefaults(item LineItem) LineItem {
	item = fillMissing(item)
	if item.Amount.Decimal.IsZero() {
		item.Amount = decimal.NewNullDecimal(item.Quantity.Mul(item.UnitPrice))
	}
	return item
}

// fillMissing fills only absent values. Explicit values, zero included, are kept.
func fillMissing(item LineItem) LineItem {
	if strings.TrimSpace(item.ProductName) == "" {
		item.ProductName = item.Description
	}
	if strings.TrimSpace(item.Description) == "" {
		item.Description = item.ProductName
	}
	if !item.Amount.Valid {
		item.Amount = decimal.NewNullDecimal(item.Quantity.Mul(item.UnitPrice))
	}
	if !item.Discount.Valid {
		item.Discount = decimal.NewNullDecimal(decimal.Zero)
	}
	if !item.NetPrice.Valid {
		item.NetPrice = decimal.NewNullDecimal(decimal.Zero)
	}
	return item
}

func productKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
