package controllers

import (
	"context"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/invoicecapture-backend/api/middleware"
	"github.com/angelmondragon/invoicecapture-backend/internal/access"
	"github.com/angelmondragon/invoicecapture-backend/internal/analytics"
	"github.com/angelmondragon/invoicecapture-backend/internal/extraction"
	"github.com/angelmondragon/invoicecapture-backend/internal/invoices"
	"github.com/angelmondragon/invoicecapture-backend/internal/media"
	"github.com/angelmondragon/invoicecapture-backend/internal/users"
	"github.com/angelmondragon/invoicecapture-backend/pkg/enums"
	"github.com/angelmondragon/invoicecapture-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func withProfile(r *http.Request, role enums.UserRole) (*http.Request, *access.Profile) {
	profile := &access.Profile{ID: uuid.New(), Email: "agent@madec.co.ma", Name: "Agent", City: "CASABLANCA", Role: role}
	return r.WithContext(middleware.WithProfile(r.Context(), profile)), profile
}

type fakeInvoiceService struct {
	createFn          func(ctx context.Context, userID uuid.UUID, input invoices.CreateInput) (*invoices.Invoice, error)
	listFn            func(ctx context.Context, params invoices.ListParams) (*invoices.ListResult, error)
	getFn             func(ctx context.Context, scope invoices.Scope, id uuid.UUID) (*invoices.Invoice, error)
	updateStatusFn    func(ctx context.Context, id uuid.UUID, status enums.InvoiceStatus) (*invoices.Invoice, error)
	updateFn          func(ctx context.Context, id uuid.UUID, input invoices.UpdateInput) (*invoices.Invoice, error)
	allForAnalyticsFn func(ctx context.Context, scope invoices.Scope) ([]invoices.Invoice, error)
	previewFn         func(ctx context.Context, input invoices.ReviewInput) (*invoices.InvoiceData, error)
}

func (f fakeInvoiceService) Create(ctx context.Context, userID uuid.UUID, input invoices.CreateInput) (*invoices.Invoice, error) {
	return f.createFn(ctx, userID, input)
}

func (f fakeInvoiceService) List(ctx context.Context, params invoices.ListParams) (*invoices.ListResult, error) {
	return f.listFn(ctx, params)
}

func (f fakeInvoiceService) Get(ctx context.Context, scope invoices.Scope, id uuid.UUID) (*invoices.Invoice, error) {
	return f.getFn(ctx, scope, id)
}

func (f fakeInvoiceService) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.InvoiceStatus) (*invoices.Invoice, error) {
	return f.updateStatusFn(ctx, id, status)
}

func (f fakeInvoiceService) Update(ctx context.Context, id uuid.UUID, input invoices.UpdateInput) (*invoices.Invoice, error) {
	return f.updateFn(ctx, id, input)
}

func (f fakeInvoiceService) AllForAnalytics(ctx context.Context, scope invoices.Scope) ([]invoices.Invoice, error) {
	return f.allForAnalyticsFn(ctx, scope)
}

func (f fakeInvoiceService) Preview(ctx context.Context, input invoices.ReviewInput) (*invoices.InvoiceData, error) {
	return f.previewFn(ctx, input)
}

type fakeAnalyticsService struct {
	byAgencyFn      func(ctx context.Context) ([]analytics.GroupCount, error)
	topUsersFn      func(ctx context.Context, n int) ([]analytics.GroupCount, error)
	compareStoresFn func(ctx context.Context, a, b string) (analytics.StoreComparison, error)
	priceTrendFn    func(ctx context.Context, q analytics.TrendQuery) ([]analytics.TrendPoint, error)
	catalogsFn      func(ctx context.Context, q analytics.CatalogQuery) (analytics.CatalogSet, error)
	summaryFn       func(ctx context.Context) (analytics.Summary, error)
}

func (f fakeAnalyticsService) ByAgency(ctx context.Context) ([]analytics.GroupCount, error) {
	return f.byAgencyFn(ctx)
}

func (f fakeAnalyticsService) TopUsers(ctx context.Context, n int) ([]analytics.GroupCount, error) {
	return f.topUsersFn(ctx, n)
}

func (f fakeAnalyticsService) CompareStores(ctx context.Context, a, b string) (analytics.StoreComparison, error) {
	return f.compareStoresFn(ctx, a, b)
}

func (f fakeAnalyticsService) PriceTrend(ctx context.Context, q analytics.TrendQuery) ([]analytics.TrendPoint, error) {
	return f.priceTrendFn(ctx, q)
}

func (f fakeAnalyticsService) Catalogs(ctx context.Context, q analytics.CatalogQuery) (analytics.CatalogSet, error) {
	return f.catalogsFn(ctx, q)
}

func (f fakeAnalyticsService) Summary(ctx context.Context) (analytics.Summary, error) {
	return f.summaryFn(ctx)
}

type fakeMediaService struct {
	uploadFn func(ctx context.Context, userID uuid.UUID, filename, contentType string, body io.Reader) (*media.UploadResult, error)
}

func (f fakeMediaService) Upload(ctx context.Context, userID uuid.UUID, filename, contentType string, body io.Reader) (*media.UploadResult, error) {
	return f.uploadFn(ctx, userID, filename, contentType, body)
}

type fakeExtractor struct {
	extractFn func(ctx context.Context, doc extraction.Document) (*extraction.RawInvoice, error)
}

func (f fakeExtractor) Extract(ctx context.Context, doc extraction.Document) (*extraction.RawInvoice, error) {
	return f.extractFn(ctx, doc)
}

type fakeUserService struct {
	profileFn        func(ctx context.Context, id uuid.UUID) (*access.Profile, error)
	validateSignupFn func(input users.SignupInput) (*users.SignupResult, error)
}

func (f fakeUserService) Profile(ctx context.Context, id uuid.UUID) (*access.Profile, error) {
	return f.profileFn(ctx, id)
}

func (f fakeUserService) ValidateSignup(input users.SignupInput) (*users.SignupResult, error) {
	return f.validateSignupFn(input)
}
