package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/angelmondragon/invoicecapture-backend/internal/analytics"
	"github.com/angelmondragon/invoicecapture-backend/internal/invoices"
	"github.com/angelmondragon/invoicecapture-backend/pkg/enums"
)

func readRows(t *testing.T, data []byte, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	return rows
}

func TestInvoicesWorkbook(t *testing.T) {
	date := "2024-03-05"
	id := uuid.MustParse("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa")
	list := []invoices.Invoice{
		{
			ID:     id,
			Status: enums.InvoiceStatusApproved,
			InvoiceData: invoices.InvoiceData{
				InvoiceNumber: "F-1",
				StoreName:     "Marjane",
				InvoiceDate:   &date,
				TotalAmount:   decimal.RequireFromString("25.5"),
				TaxAmount:     decimal.RequireFromString("4.25"),
				Category:      "Bouillon",
				LineItems: []invoices.LineItem{
					{Description: "Knorr Cube", ProductName: "Knorr Cube", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.RequireFromString("6.25"), Amount: decimal.NewNullDecimal(decimal.RequireFromString("12.5"))},
					{Description: "Ideal Mayo", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(13)},
				},
			},
			CreatedAt: time.Date(2024, 3, 6, 9, 30, 0, 0, time.UTC),
			User:      &invoices.Submitter{Name: "Salma", City: "CASA", Email: "salma@madec.co.ma"},
		},
		{
			ID:          uuid.New(),
			Status:      enums.InvoiceStatusPending,
			InvoiceData: invoices.InvoiceData{InvoiceNumber: "F-2", StoreName: "Acima"},
			CreatedAt:   time.Date(2024, 3, 7, 9, 30, 0, 0, time.UTC),
		},
	}

	data, err := InvoicesWorkbook(list)
	require.NoError(t, err)

	rows := readRows(t, data, invoicesSheet)
	require.Len(t, rows, 3)
	assert.Equal(t, invoiceHeaders, rows[0])
	assert.Equal(t, []string{
		id.String(), "F-1", "Marjane", "2024-03-05", "approved",
		"25.5", "4.25", "0", "", "Bouillon",
		"Salma", "CASA", "salma@madec.co.ma", "2024-03-06 09:30",
	}, rows[1])
	assert.Equal(t, "F-2", rows[2][1])

	itemRows := readRows(t, data, itemsSheet)
	require.Len(t, itemRows, 3)
	assert.Equal(t, itemHeaders, itemRows[0])
	assert.Equal(t, []string{id.String(), "F-1", "1", "Knorr Cube", "Knorr Cube", "", "2", "6.25", "12.5"}, itemRows[1])
	assert.Equal(t, "Ideal Mayo", itemRows[2][3])
}

func TestPriceTrendWorkbook(t *testing.T) {
	invoiceID := uuid.New()
	points := []analytics.TrendPoint{
		{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Price: decimal.RequireFromString("6.5"), Store: "Marjane", City: "AGADIR", InvoiceID: invoiceID, InvoiceNumber: "F-9"},
	}

	data, err := PriceTrendWorkbook(" Knorr Cube ", enums.PriceMetricUnitPrice, points)
	require.NoError(t, err)

	rows := readRows(t, data, trendSheet)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"Product", "Knorr Cube"}, rows[0])
	assert.Equal(t, []string{"Metric", "unit_price"}, rows[1])
	assert.Empty(t, rows[2])
	assert.Equal(t, trendHeaders, rows[3])
	assert.Equal(t, []string{"2024-01-02", "6.5", "Marjane", "AGADIR", "F-9", invoiceID.String()}, rows[4])
}

func TestEmptyWorkbooks(t *testing.T) {
	data, err := InvoicesWorkbook(nil)
	require.NoError(t, err)
	assert.Len(t, readRows(t, data, invoicesSheet), 1)

	data, err = PriceTrendWorkbook("x", enums.PriceMetricNetPrice, nil)
	require.NoError(t, err)
	assert.Len(t, readRows(t, data, trendSheet), 4)
}
