package export

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/angelmondragon/invoicecapture-backend/internal/analytics"
	"github.com/angelmondragon/invoicecapture-backend/internal/invoices"
	"github.com/angelmondragon/invoicecapture-backend/pkg/enums"
)

// ContentType is the MIME type of the generated workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	invoicesSheet = "Invoices"
	itemsSheet    = "Items"
	trendSheet    = "Price Trend"
	defaultSheet  = "Sheet1"
)

var (
	invoiceHeaders = []string{
		"Invoice ID", "Invoice Number", "Store", "Invoice Date", "Status",
		"Total", "Tax", "Discount", "Final Price", "Category",
		"Submitter", "City", "Email", "Created At", "Image URL",
	}
	itemHeaders = []string{
		"Invoice ID", "Invoice Number", "Line", "Description", "Product Name", "Product ID",
		"Quantity", "Unit Price", "Amount", "Discount", "Net Price", "Promotion Price",
	}
	trendHeaders = []string{"Date", "Price", "Store", "City", "Invoice Number", "Invoice ID"}
)

// InvoicesWorkbook renders one row per invoice plus an Items sheet with one row per line item.
func InvoicesWorkbook(list []invoices.Invoice) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(defaultSheet, invoicesSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(itemsSheet); err != nil {
		return nil, fmt.Errorf("create items sheet: %w", err)
	}
	money, err := moneyStyle(f)
	if err != nil {
		return nil, err
	}

	inv := newSheetWriter(f, invoicesSheet, money)
	inv.header(invoiceHeaders)
	items := newSheetWriter(f, itemsSheet, money)
	items.header(itemHeaders)

	for _, invoice := range list {
		submitter, city, email := "", "", ""
		if invoice.User != nil {
			submitter, city, email = invoice.User.Name, invoice.User.City, invoice.User.Email
		}
		inv.row(
			invoice.ID.String(),
			invoice.InvoiceNumber,
			invoice.StoreName,
			deref(invoice.InvoiceDate),
			invoice.Status.String(),
			moneyCell(invoice.TotalAmount),
			moneyCell(invoice.TaxAmount),
			moneyCell(invoice.DiscountAmount),
			nullMoneyCell(invoice.FinalPrice),
			invoice.Category,
			submitter,
			city,
			email,
			invoice.CreatedAt.UTC().Format("2006-01-02 15:04"),
			invoice.ImageURL,
		)
		for i, item := range invoice.LineItems {
			items.row(
				invoice.ID.String(),
				invoice.InvoiceNumber,
				i+1,
				item.Description,
				item.ProductName,
				deref(item.ProductID),
				moneyCell(item.Quantity),
				moneyCell(item.UnitPrice),
				nullMoneyCell(item.Amount),
				nullMoneyCell(item.Discount),
				nullMoneyCell(item.NetPrice),
				nullMoneyCell(item.PromotionPrice),
			)
		}
	}

	inv.widths(map[string]float64{"A": 38, "B": 16, "C": 28, "D": 12, "J": 16, "K": 24, "M": 28, "N": 18, "O": 48})
	items.widths(map[string]float64{"A": 38, "B": 16, "D": 36, "E": 30})
	if err := firstErr(inv.err, items.err); err != nil {
		return nil, err
	}

	return write(f)
}

// PriceTrendWorkbook renders price-trend points in date order.
func PriceTrendWorkbook(product string, metric enums.PriceMetric, points []analytics.TrendPoint) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(defaultSheet, trendSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	money, err := moneyStyle(f)
	if err != nil {
		return nil, err
	}

	w := newSheetWriter(f, trendSheet, money)
	w.row("Product", strings.TrimSpace(product))
	w.row("Metric", metric.String())
	w.row()
	w.header(trendHeaders)
	for _, p := range points {
		w.row(
			p.Date.UTC().Format("2006-01-02"),
			moneyCell(p.Price),
			p.Store,
			p.City,
			p.InvoiceNumber,
			p.InvoiceID.String(),
		)
	}
	w.widths(map[string]float64{"A": 14, "B": 12, "C": 28, "D": 14, "E": 18, "F": 38})
	if w.err != nil {
		return nil, w.err
	}

	return write(f)
}

func write(f *excelize.File) ([]byte, error) {
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func moneyStyle(f *excelize.File) (int, error) {
	id, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return 0, fmt.Errorf("money style: %w", err)
	}
	return id, nil
}

// moneyCell marks a value for the two-decimal number style.
type moneyCell decimal.Decimal

func nullMoneyCell(v decimal.NullDecimal) any {
	if !v.Valid {
		return ""
	}
	return moneyCell(v.Decimal)
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

type sheetWriter struct {
	f     *excelize.File
	sheet string
	money int
	next  int
	err   error
}

func newSheetWriter(f *excelize.File, sheet string, money int) *sheetWriter {
	return &sheetWriter{f: f, sheet: sheet, money: money, next: 1}
}

func (w *sheetWriter) header(values []string) {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	w.row(cells...)
}

func (w *sheetWriter) row(values ...any) {
	rowIdx := w.next
	w.next++
	for i, v := range values {
		if w.err != nil {
			return
		}
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(i+1, rowIdx)
		if err != nil {
			w.err = err
			return
		}
		if m, ok := v.(moneyCell); ok {
			if err := w.f.SetCellValue(w.sheet, cell, decimal.Decimal(m).InexactFloat64()); err != nil {
				w.err = err
				return
			}
			w.err = w.f.SetCellStyle(w.sheet, cell, cell, w.money)
			continue
		}
		w.err = w.f.SetCellValue(w.sheet, cell, v)
	}
}

func (w *sheetWriter) widths(cols map[string]float64) {
	for col, width := range cols {
		if w.err != nil {
			return
		}
		w.err = w.f.SetColWidth(w.sheet, col, col, width)
	}
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
