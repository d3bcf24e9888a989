package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/angelmondragon/invoicecapture-backend/internal/analytics"
	"github.com/angelmondragon/invoicecapture-backend/internal/export"
	"github.com/angelmondragon/invoicecapture-backend/internal/invoices"
	"github.com/angelmondragon/invoicecapture-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/invoicecapture-backend/pkg/errors"
)

func TestAnalyticsTopUsersLimit(t *testing.T) {
	var gotN int
	svc := fakeAnalyticsService{topUsersFn: func(ctx context.Context, n int) ([]analytics.GroupCount, error) {
		gotN = n
		return []analytics.GroupCount{{Name: "Agent", Count: 3}}, nil
	}}

	rec := httptest.NewRecorder()
	AnalyticsTopUsers(svc, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/users", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, defaultTopUsers, gotN)
	assert.Contains(t, rec.Body.String(), `"name":"Agent"`)

	rec = httptest.NewRecorder()
	AnalyticsTopUsers(svc, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/users?limit=3", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, gotN)

	rec = httptest.NewRecorder()
	AnalyticsTopUsers(svc, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/users?limit=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyticsCompareStoresPassesQuery(t *testing.T) {
	svc := fakeAnalyticsService{compareStoresFn: func(ctx context.Context, a, b string) (analytics.StoreComparison, error) {
		if a == "" || b == "" {
			return analytics.StoreComparison{}, pkgerrors.New(pkgerrors.CodeValidation, "two stores are required")
		}
		return analytics.StoreComparison{A: analytics.StoreSide{Name: a}, B: analytics.StoreSide{Name: b}}, nil
	}}

	rec := httptest.NewRecorder()
	AnalyticsCompareStores(svc, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/compare?store_a=Alice&store_b=Bob", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Alice"`)

	rec = httptest.NewRecorder()
	AnalyticsCompareStores(svc, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/compare?store_a=Alice", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyticsPriceTrendParsesQuery(t *testing.T) {
	var got analytics.TrendQuery
	svc := fakeAnalyticsService{priceTrendFn: func(ctx context.Context, q analytics.TrendQuery) ([]analytics.TrendPoint, error) {
		got = q
		return []analytics.TrendPoint{}, nil
	}}

	rec := httptest.NewRecorder()
	target := "/api/v1/analytics/price-trend?product=Knorr&city=RABAT&category=Bouillon&user=Agent&metric=net_price&hide_zero=true"
	AnalyticsPriceTrend(svc, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, analytics.TrendQuery{
		Product:  "Knorr",
		City:     "RABAT",
		Category: "Bouillon",
		User:     "Agent",
		Metric:   enums.PriceMetricNetPrice,
		HideZero: true,
	}, got)

	rec = httptest.NewRecorder()
	AnalyticsPriceTrend(svc, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/price-trend?product=Knorr&metric=avg", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	AnalyticsPriceTrend(svc, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/price-trend?product=Knorr&hide_zero=maybe", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyticsPriceTrendKeepsLongProduct(t *testing.T) {
	var got analytics.TrendQuery
	svc := fakeAnalyticsService{priceTrendFn: func(ctx context.Context, q analytics.TrendQuery) ([]analytics.TrendPoint, error) {
		got = q
		return []analytics.TrendPoint{}, nil
	}}

	product := strings.Repeat("k", 300)
	rec := httptest.NewRecorder()
	AnalyticsPriceTrend(svc, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/price-trend?product="+product, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, product, got.Product)
}

func TestAnalyticsSummaryAndCatalogs(t *testing.T) {
	svc := fakeAnalyticsService{
		summaryFn: func(context.Context) (analytics.Summary, error) {
			return analytics.Summary{Total: 3, Pending: 1, Approved: 2}, nil
		},
		catalogsFn: func(ctx context.Context, q analytics.CatalogQuery) (analytics.CatalogSet, error) {
			return analytics.CatalogSet{Cities: []string{q.City}, Categories: []string{q.Category}}, nil
		},
	}

	rec := httptest.NewRecorder()
	AnalyticsSummary(svc, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/summary", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"approved":2`)

	rec = httptest.NewRecorder()
	AnalyticsCatalogs(svc, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/catalogs?city=FES&category=Water", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"cities":["FES"]`)
}

func TestExportInvoicesFiltersAndStreamsWorkbook(t *testing.T) {
	exportNow = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { exportNow = func() time.Time { return time.Now().UTC() } })

	source := fakeInvoiceService{allForAnalyticsFn: func(ctx context.Context, scope invoices.Scope) ([]invoices.Invoice, error) {
		assert.True(t, scope.All)
		return []invoices.Invoice{
			{ID: uuid.New(), InvoiceData: invoices.InvoiceData{InvoiceNumber: "F-1", StoreName: "Marjane", TotalAmount: decimal.NewFromInt(10)}, Status: enums.InvoiceStatusApproved},
			{ID: uuid.New(), InvoiceData: invoices.InvoiceData{InvoiceNumber: "F-2", StoreName: "Carrefour", TotalAmount: decimal.NewFromInt(5)}, Status: enums.InvoiceStatusPending},
		}, nil
	}}

	rec := httptest.NewRecorder()
	ExportInvoices(source, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/exports/invoices.xlsx?search=marjane", nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, export.ContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="invoices-20260301.xlsx"`, rec.Header().Get("Content-Disposition"))

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Invoices")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "F-1", rows[1][1])
}

func TestExportPriceTrendRequiresProduct(t *testing.T) {
	svc := fakeAnalyticsService{priceTrendFn: func(ctx context.Context, q analytics.TrendQuery) ([]analytics.TrendPoint, error) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is required")
	}}

	rec := httptest.NewRecorder()
	ExportPriceTrend(svc, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/exports/price-trend.xlsx", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
