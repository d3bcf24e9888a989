package analytics

import (
	"context"
	"strings"

	"github.com/angelmondragon/invoicecapture-backend/internal/invoices"
	pkgerrors "github.com/angelmondragon/invoicecapture-backend/pkg/errors"
)

// InvoiceSource loads the collection the reports are computed over.
type InvoiceSource interface {
	AllForAnalytics(ctx context.Context, scope invoices.Scope) ([]invoices.Invoice, error)
}

// Service provides the admin reporting views.
type Service interface {
	ByAgency(ctx context.Context) ([]GroupCount, error)
	TopUsers(ctx context.Context, n int) ([]GroupCount, error)
	CompareStores(ctx context.Context, a, b string) (StoreComparison, error)
	PriceTrend(ctx context.Context, q TrendQuery) ([]TrendPoint, error)
	Catalogs(ctx context.Context, q CatalogQuery) (CatalogSet, error)
	Summary(ctx context.Context) (Summary, error)
}

type service struct {
	source InvoiceSource
}

// NewService builds an analytics service over the provided invoice source.
func NewService(source InvoiceSource) (Service, error) {
	if source == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "invoice source is required")
	}
	return &service{source: source}, nil
}

func (s *service) load(ctx context.Context) ([]invoices.Invoice, error) {
	return s.source.AllForAnalytics(ctx, invoices.Scope{All: true})
}

func (s *service) ByAgency(ctx context.Context) ([]GroupCount, error) {
	list, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return ByAgency(list), nil
}

func (s *service) TopUsers(ctx context.Context, n int) ([]GroupCount, error) {
	list, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return TopUsers(list, n), nil
}

func (s *service) CompareStores(ctx context.Context, a, b string) (StoreComparison, error) {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return StoreComparison{}, pkgerrors.New(pkgerrors.CodeValidation, "two stores are required").
			WithDetails(map[string]string{"store_a": a, "store_b": b})
	}
	list, err := s.load(ctx)
	if err != nil {
		return StoreComparison{}, err
	}
	return CompareStores(list, a, b), nil
}

func (s *service) PriceTrend(ctx context.Context, q TrendQuery) ([]TrendPoint, error) {
	if strings.TrimSpace(q.Product) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is required")
	}
	list, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return ProductPriceTrend(list, q), nil
}

func (s *service) Catalogs(ctx context.Context, q CatalogQuery) (CatalogSet, error) {
	list, err := s.load(ctx)
	if err != nil {
		return CatalogSet{}, err
	}
	return Catalogs(list, q), nil
}

func (s *service) Summary(ctx context.Context) (Summary, error) {
	list, err := s.load(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(list), nil
}
