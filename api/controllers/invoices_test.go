package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/invoicecapture-backend/internal/invoices"
	"github.com/angelmondragon/invoicecapture-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/invoicecapture-backend/pkg/errors"
)

func withInvoiceID(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("invoiceId", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestCreateInvoiceUsesCallerAndReturnsCreated(t *testing.T) {
	var gotUser uuid.UUID
	var gotInput invoices.CreateInput
	svc := fakeInvoiceService{createFn: func(ctx context.Context, userID uuid.UUID, input invoices.CreateInput) (*invoices.Invoice, error) {
		gotUser = userID
		gotInput = input
		return &invoices.Invoice{ID: uuid.New(), UserID: userID, InvoiceData: input.InvoiceData, Status: enums.InvoiceStatusPending}, nil
	}}

	body := `{"invoice_number":"F-1","store_name":"Marjane","total_amount":"20","line_items":[{"product_name":"Water","quantity":2,"unit_price":"10"}],"image_url":"https://storage.googleapis.com/b/k.jpg"}`
	req, profile := withProfile(httptest.NewRequest(http.MethodPost, "/api/v1/invoices", strings.NewReader(body)), enums.UserRoleUser)
	rec := httptest.NewRecorder()
	CreateInvoice(svc, testLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, profile.ID, gotUser)
	assert.Equal(t, "Marjane", gotInput.StoreName)
	require.Len(t, gotInput.LineItems, 1)
	assert.True(t, gotInput.LineItems[0].Quantity.Equal(decimal.NewFromInt(2)))
	assert.Equal(t, "https://storage.googleapis.com/b/k.jpg", gotInput.ImageURL)
}

func TestCreateInvoiceRequiresProfile(t *testing.T) {
	svc := fakeInvoiceService{createFn: func(context.Context, uuid.UUID, invoices.CreateInput) (*invoices.Invoice, error) {
		t.Fatal("service should not be called")
		return nil, nil
	}}

	rec := httptest.NewRecorder()
	CreateInvoice(svc, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/invoices", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListInvoicesScopesByRole(t *testing.T) {
	var got invoices.ListParams
	svc := fakeInvoiceService{listFn: func(ctx context.Context, params invoices.ListParams) (*invoices.ListResult, error) {
		got = params
		return &invoices.ListResult{Items: []invoices.Invoice{}}, nil
	}}

	t.Run("user sees own", func(t *testing.T) {
		req, profile := withProfile(httptest.NewRequest(http.MethodGet, "/api/v1/invoices?limit=5&search=marjane&status=pending&cursor=abc", nil), enums.UserRoleUser)
		rec := httptest.NewRecorder()
		ListInvoices(svc, testLogger()).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.False(t, got.Scope.All)
		assert.Equal(t, profile.ID, got.Scope.UserID)
		assert.Equal(t, 5, got.Limit)
		assert.Equal(t, "marjane", got.Search)
		assert.Equal(t, "pending", got.Status)
		assert.Equal(t, "abc", got.Cursor)
	})

	t.Run("admin sees all", func(t *testing.T) {
		req, _ := withProfile(httptest.NewRequest(http.MethodGet, "/api/v1/invoices", nil), enums.UserRoleAdmin)
		rec := httptest.NewRecorder()
		ListInvoices(svc, testLogger()).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, got.Scope.All)
		assert.Equal(t, 25, got.Limit)
	})

	t.Run("limit out of range", func(t *testing.T) {
		req, _ := withProfile(httptest.NewRequest(http.MethodGet, "/api/v1/invoices?limit=1000", nil), enums.UserRoleAdmin)
		rec := httptest.NewRecorder()
		ListInvoices(svc, testLogger()).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetInvoice(t *testing.T) {
	id := uuid.New()
	svc := fakeInvoiceService{getFn: func(ctx context.Context, scope invoices.Scope, got uuid.UUID) (*invoices.Invoice, error) {
		if got != id {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
		}
		return &invoices.Invoice{ID: id, Status: enums.InvoiceStatusApproved}, nil
	}}

	t.Run("found", func(t *testing.T) {
		req, _ := withProfile(httptest.NewRequest(http.MethodGet, "/api/v1/invoices/"+id.String(), nil), enums.UserRoleUser)
		rec := httptest.NewRecorder()
		GetInvoice(svc, testLogger()).ServeHTTP(rec, withInvoiceID(req, id.String()))

		require.Equal(t, http.StatusOK, rec.Code)
		var payload struct {
			Data invoices.Invoice `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
		assert.Equal(t, id, payload.Data.ID)
	})

	t.Run("missing", func(t *testing.T) {
		other := uuid.New().String()
		req, _ := withProfile(httptest.NewRequest(http.MethodGet, "/api/v1/invoices/"+other, nil), enums.UserRoleUser)
		rec := httptest.NewRecorder()
		GetInvoice(svc, testLogger()).ServeHTTP(rec, withInvoiceID(req, other))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		req, _ := withProfile(httptest.NewRequest(http.MethodGet, "/api/v1/invoices/nope", nil), enums.UserRoleUser)
		rec := httptest.NewRecorder()
		GetInvoice(svc, testLogger()).ServeHTTP(rec, withInvoiceID(req, "nope"))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUpdateInvoiceStatus(t *testing.T) {
	id := uuid.New()
	var got enums.InvoiceStatus
	svc := fakeInvoiceService{updateStatusFn: func(ctx context.Context, gotID uuid.UUID, status enums.InvoiceStatus) (*invoices.Invoice, error) {
		got = status
		return &invoices.Invoice{ID: gotID, Status: status}, nil
	}}

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/invoices/"+id.String()+"/status", strings.NewReader(`{"status":"approved"}`))
	rec := httptest.NewRecorder()
	UpdateInvoiceStatus(svc, testLogger()).ServeHTTP(rec, withInvoiceID(req, id.String()))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, enums.InvoiceStatusApproved, got)

	bad := httptest.NewRequest(http.MethodPatch, "/api/v1/invoices/"+id.String()+"/status", strings.NewReader(`{"status":"archived"}`))
	rec = httptest.NewRecorder()
	UpdateInvoiceStatus(svc, testLogger()).ServeHTTP(rec, withInvoiceID(bad, id.String()))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateInvoiceMapsLockConflict(t *testing.T) {
	id := uuid.New()
	svc := fakeInvoiceService{updateFn: func(context.Context, uuid.UUID, invoices.UpdateInput) (*invoices.Invoice, error) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "invoice is being edited")
	}}

	req := httptest.NewRequest(http.MethodPut, "/api/v1/invoices/"+id.String(), strings.NewReader(`{"store_name":"Marjane","line_items":[]}`))
	rec := httptest.NewRecorder()
	UpdateInvoice(svc, testLogger()).ServeHTTP(rec, withInvoiceID(req, id.String()))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestPreviewInvoicePassesMutation(t *testing.T) {
	var got invoices.ReviewInput
	svc := fakeInvoiceService{previewFn: func(ctx context.Context, input invoices.ReviewInput) (*invoices.InvoiceData, error) {
		got = input
		return &input.Data, nil
	}}

	body := `{"data":{"store_name":"Marjane","line_items":[{"product_name":"Water","quantity":1,"unit_price":5}]},"mutation":{"op":"remove","index":0}}`
	rec := httptest.NewRecorder()
	PreviewInvoice(svc, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/invoices/preview", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, got.Mutation)
	assert.Equal(t, invoices.MutationRemove, got.Mutation.Op)
}
