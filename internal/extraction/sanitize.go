package extraction

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type rename struct{ from, to string }

var (
	invoiceRenames = []rename{
		{"total", "total_amount"},
		{"tax", "tax_amount"},
		{"discount", "discount_amount"},
		{"items", "line_items"},
		{"date", "invoice_date"},
		{"store", "store_name"},
		{"merchant_name", "store_name"},
		{"promotion", "promotion_mechanism"},
	}
	itemRenames = []rename{
		{"name", "product_name"},
		{"price", "unit_price"},
		{"qty", "quantity"},
		{"total", "amount"},
	}

	invoiceMoneyFields = []string{"total_amount", "tax_amount", "discount_amount", "final_price"}
	invoiceTextFields  = []string{"invoice_number", "store_name", "category", "promotion_mechanism", "original_text"}
	itemMoneyFields    = []string{"quantity", "unit_price", "amount", "discount", "net_price", "promotion_price"}
	itemTextFields     = []string{"description", "product_name", "product_id"}

	// identifiers where a bare 0 means the model found nothing
	zeroMeansMissing = map[string]bool{"invoice_number": true, "product_id": true}

	// receipts print these with a minus sign; only the magnitude is kept
	unsignedInvoiceFields = []string{"tax_amount", "discount_amount"}

	dateLayouts = []string{
		"2006-01-02",
		"2006/01/02",
		"02/01/2006",
		"2/1/2006",
		"02-01-2006",
		"02.01.2006",
		"02/01/06",
		time.RFC3339,
	}
)

// Sanitize rewrites raw model output into the shape the schema accepts.
// Synonyms are renamed, money strings such as "12,50" or "1 234.50 DH" are
// coerced to decimal strings, dates are normalized to YYYY-MM-DD, nulls and
// unknown keys are dropped. Structural mistakes are left for the schema.
// The second return lists what was changed.
func Sanitize(raw []byte) ([]byte, []string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}
	if m == nil {
		return nil, nil, fmt.Errorf("sanitize: empty document")
	}

	s := &sanitizer{}
	s.invoice(m)

	out, err := json.Marshal(m)
	if err != nil {
		return nil, s.dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	return out, s.dropped, nil
}

type sanitizer struct {
	dropped []string
}

func (s *sanitizer) note(path, reason string) {
	s.dropped = append(s.dropped, fmt.Sprintf("%s(%s)", path, reason))
}

func (s *sanitizer) invoice(m map[string]any) {
	s.renameAll(m, invoiceRenames, "")
	s.dropUnknown(m, "", invoiceMoneyFields, invoiceTextFields, []string{"invoice_date", "line_items"})

	for _, k := range invoiceMoneyFields {
		s.money(m, k, k)
	}
	for _, k := range invoiceTextFields {
		s.text(m, k, k)
	}
	s.date(m, "invoice_date")
	for _, k := range unsignedInvoiceFields {
		s.unsigned(m, k, k)
	}

	switch items := m["line_items"].(type) {
	case nil:
		m["line_items"] = []any{}
	case []any:
		for i, item := range items {
			if obj, ok := item.(map[string]any); ok {
				s.item(obj, fmt.Sprintf("line_items[%d].", i))
			}
		}
	}
}

func (s *sanitizer) item(m map[string]any, prefix string) {
	s.renameAll(m, itemRenames, prefix)
	s.dropUnknown(m, prefix, itemMoneyFields, itemTextFields)

	for _, k := range itemMoneyFields {
		s.money(m, k, prefix+k)
	}
	for _, k := range itemTextFields {
		s.text(m, k, prefix+k)
	}
	s.itemSigns(m, prefix)
}

// itemSigns handles deduction lines such as "Remise 1 x -2". The signed line
// amount is kept, filled from quantity * unit_price when absent, while quantity
// and unit_price are stored as magnitudes.
func (s *sanitizer) itemSigns(m map[string]any, prefix string) {
	qty, hasQty := decimalValue(m, "quantity")
	price, hasPrice := decimalValue(m, "unit_price")
	if !qty.IsNegative() && !price.IsNegative() {
		return
	}
	if _, hasAmount := m["amount"]; !hasAmount && hasQty && hasPrice {
		m["amount"] = qty.Mul(price).String()
		s.note(prefix+"amount", "derived")
	}
	s.unsigned(m, "quantity", prefix+"quantity")
	s.unsigned(m, "unit_price", prefix+"unit_price")
}

func (s *sanitizer) unsigned(m map[string]any, key, path string) {
	d, ok := decimalValue(m, key)
	if !ok || !d.IsNegative() {
		return
	}
	m[key] = d.Abs().String()
	s.note(path, "negative")
}

// decimalValue reads a field already coerced by money. Missing fields are zero.
func decimalValue(m map[string]any, key string) (decimal.Decimal, bool) {
	raw, ok := m[key].(string)
	if !ok {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func (s *sanitizer) renameAll(m map[string]any, renames []rename, prefix string) {
	for _, r := range renames {
		v, ok := m[r.from]
		if !ok {
			continue
		}
		if _, exists := m[r.to]; !exists {
			m[r.to] = v
		}
		delete(m, r.from)
		s.dropped = append(s.dropped, prefix+r.from+"->"+r.to)
	}
}

func (s *sanitizer) dropUnknown(m map[string]any, prefix string, groups ...[]string) {
	allowed := make(map[string]struct{})
	for _, group := range groups {
		for _, k := range group {
			allowed[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, ok := allowed[k]; !ok {
			delete(m, k)
			s.note(prefix+k, "unknown")
		}
	}
}

func (s *sanitizer) money(m map[string]any, key, path string) {
	v, ok := m[key]
	if !ok {
		return
	}
	var (
		out   string
		valid bool
	)
	switch t := v.(type) {
	case json.Number:
		if d, err := decimal.NewFromString(t.String()); err == nil {
			out, valid = d.String(), true
		}
	case string:
		out, valid = ParseMoney(t)
	case nil:
		delete(m, key)
		s.note(path, "null")
		return
	}
	if !valid {
		delete(m, key)
		s.note(path, "invalid")
		return
	}
	m[key] = out
}

func (s *sanitizer) text(m map[string]any, key, path string) {
	v, ok := m[key]
	if !ok {
		return
	}
	switch t := v.(type) {
	case string:
		clean := strings.TrimSpace(t)
		if clean == "" {
			delete(m, key)
			s.note(path, "empty")
			return
		}
		m[key] = clean
	case json.Number:
		if zeroMeansMissing[key] && t.String() == "0" {
			delete(m, key)
			s.note(path, "zero")
			return
		}
		m[key] = t.String()
	case nil:
		delete(m, key)
		s.note(path, "null")
	default:
		delete(m, key)
		s.note(path, "type")
	}
}

func (s *sanitizer) date(m map[string]any, key string) {
	v, ok := m[key]
	if !ok {
		return
	}
	raw, isString := v.(string)
	if !isString {
		delete(m, key)
		s.note(key, "type")
		return
	}
	formatted, valid := ParseDate(raw)
	if !valid {
		delete(m, key)
		s.note(key, "invalid")
		return
	}
	m[key] = formatted
}

// ParseMoney coerces a printed amount into a plain decimal string.
// Currency markers and grouping spaces are ignored. When both separators
// appear the last one is the decimal point. A lone comma followed by exactly
// three digits is read as a thousands separator.
func ParseMoney(value string) (string, bool) {
	var b strings.Builder
	for _, r := range strings.TrimSpace(value) {
		switch {
		case r >= '0' && r <= '9', r == ',', r == '.', r == '-':
			b.WriteRune(r)
		}
	}
	clean := strings.Trim(b.String(), ".,")
	if clean == "" || strings.LastIndex(clean, "-") > 0 {
		return "", false
	}

	commas := strings.Count(clean, ",")
	dots := strings.Count(clean, ".")
	switch {
	case commas > 0 && dots > 0:
		if strings.LastIndex(clean, ",") > strings.LastIndex(clean, ".") {
			clean = strings.ReplaceAll(clean, ".", "")
			clean = strings.Replace(clean, ",", ".", 1)
		} else {
			clean = strings.ReplaceAll(clean, ",", "")
		}
	case commas == 1:
		if len(clean)-strings.Index(clean, ",")-1 == 3 {
			clean = strings.Replace(clean, ",", "", 1)
		} else {
			clean = strings.Replace(clean, ",", ".", 1)
		}
	case commas > 1:
		clean = strings.ReplaceAll(clean, ",", "")
	case dots > 1:
		clean = strings.ReplaceAll(clean, ".", "")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return "", false
	}
	return d.String(), true
}

// ParseDate normalizes the common printed date layouts to YYYY-MM-DD.
func ParseDate(value string) (string, bool) {
	clean := strings.TrimSpace(value)
	if clean == "" {
		return "", false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, clean); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	if len(clean) > 10 {
		if t, err := time.Parse("2006-01-02", clean[:10]); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}
