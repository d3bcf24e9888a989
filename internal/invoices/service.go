package invoices

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/invoicecapture-backend/internal/classifier"
	"github.com/angelmondragon/invoicecapture-backend/pkg/db/models"
	"github.com/angelmondragon/invoicecapture-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/invoicecapture-backend/pkg/errors"
	"github.com/angelmondragon/invoicecapture-backend/pkg/logger"
	"github.com/angelmondragon/invoicecapture-backend/pkg/metrics"
	"github.com/angelmondragon/invoicecapture-backend/pkg/pagination"
)

// DefaultAnalyticsMaxRows caps the collection handed to the analytics engine.
const DefaultAnalyticsMaxRows = 1000

// TxRunner runs fn inside one database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service orchestrates invoice persistence around the normalization pipeline.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*Invoice, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Get(ctx context.Context, scope Scope, id uuid.UUID) (*Invoice, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.InvoiceStatus) (*Invoice, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*Invoice, error)
	AllForAnalytics(ctx context.Context, scope Scope) ([]Invoice, error)
	Preview(ctx context.Context, input ReviewInput) (*InvoiceData, error)
}

// ServiceParams groups dependencies for the invoices service.
type ServiceParams struct {
	Repo             *Repository
	Tx               TxRunner
	Classifier       *classifier.Classifier
	Cache            ListCache
	Locker           EditLocker
	Publisher        EventPublisher
	Metrics          *metrics.PipelineMetrics
	Logger           *logger.Logger
	AnalyticsMaxRows int
	Now              func() time.Time
}

type service struct {
	repo       *Repository
	tx         TxRunner
	classifier *classifier.Classifier
	cache      ListCache
	locker     EditLocker
	publisher  EventPublisher
	metrics    *metrics.PipelineMetrics
	logg       *logger.Logger
	maxRows    int
	now        func() time.Time
}

// NewService builds an invoices service. Cache, locker and publisher fall back to no-ops.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "invoice repository is required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger is required")
	}
	svc := &service{
		repo:       params.Repo,
		tx:         params.Tx,
		classifier: params.Classifier,
		cache:      params.Cache,
		locker:     params.Locker,
		publisher:  params.Publisher,
		metrics:    params.Metrics,
		logg:       params.Logger,
		maxRows:    params.AnalyticsMaxRows,
		now:        params.Now,
	}
	if svc.classifier == nil {
		svc.classifier = classifier.Default()
	}
	if svc.cache == nil {
		svc.cache = NoopListCache{}
	}
	if svc.locker == nil {
		svc.locker = NoopEditLocker{}
	}
	if svc.publisher == nil {
		svc.publisher = NoopPublisher{}
	}
	if svc.maxRows <= 0 {
		svc.maxRows = DefaultAnalyticsMaxRows
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*Invoice, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	data := input.InvoiceData
	date, err := s.prepareEdit(&data)
	if err != nil {
		return nil, err
	}
	data.TotalAmount = InitialTotal(input.TotalAmount, data.LineItems)

	record := &models.Invoice{
		ID:       uuid.New(),
		UserID:   userID,
		ImageURL: strings.TrimSpace(input.ImageURL),
		Status:   enums.InvoiceStatusPending,
	}
	applyData(record, data, date)
	items := itemModels(record.ID, data.LineItems)

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Create(ctx, record, items)
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist invoice")
	}

	created, err := s.load(ctx, record.ID)
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx, EventInvoiceCreated, created)
	s.metrics.IncCreated()
	return created, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if !params.Scope.All && params.Scope.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "list scope is required")
	}
	status, err := parseStatusFilter(params.Status)
	if err != nil {
		return nil, err
	}
	cursor, err := pagination.ParseCursor(strings.TrimSpace(params.Cursor))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	key, err := s.cache.Key(ctx, params)
	if err != nil {
		s.logg.Warn(ctx, "invoice list cache key unavailable: "+err.Error())
		key = ""
	}
	if key != "" {
		if cached, ok := s.cache.Load(ctx, key); ok {
			s.metrics.ObserveListCache(true)
			return cached, nil
		}
		s.metrics.ObserveListCache(false)
	}

	rows, err := s.repo.List(ctx, ListQuery{
		UserID: scopeUserID(params.Scope),
		Search: params.Search,
		Status: status,
		Cursor: cursor,
		Limit:  pagination.LimitWithBuffer(params.Limit),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list invoices")
	}

	rows, next := pagination.Trim(rows, params.Limit, func(m models.Invoice) pagination.Cursor {
		return pagination.Cursor{CreatedAt: m.CreatedAt, ID: m.ID}
	})
	result := &ListResult{Items: make([]Invoice, 0, len(rows)), NextCursor: next}
	for i := range rows {
		result.Items = append(result.Items, FromModel(&rows[i]))
	}

	if key != "" {
		s.cache.Store(ctx, key, result)
	}
	return result, nil
}

func (s *service) Get(ctx context.Context, scope Scope, id uuid.UUID) (*Invoice, error) {
	invoice, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !scope.All && invoice.UserID != scope.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
	}
	return invoice, nil
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.InvoiceStatus) (*Invoice, error) {
	if !status.IsReviewTarget() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status must be approved, rejected or skipped").
			WithDetails(map[string]string{"status": string(status)})
	}
	found, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update invoice status")
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
	}

	updated, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx, EventInvoiceStatusChanged, updated)
	s.metrics.IncStatusChange(string(status))
	return updated, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*Invoice, error) {
	release, err := s.locker.Lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release(context.WithoutCancel(ctx))

	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "load invoice")
	}

	data := input.InvoiceData
	date, err := s.prepareEdit(&data)
	if err != nil {
		return nil, err
	}
	// header-only saves keep the stored total, which may be a trusted extracted value
	if sameItems(FromModel(record).LineItems, data.LineItems) {
		data.TotalAmount = record.TotalAmount
	} else {
		data.TotalAmount = RecomputeTotal(data.LineItems)
	}
	applyData(record, data, date)
	items := itemModels(record.ID, data.LineItems)

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.UpdateFields(ctx, record); err != nil {
			return err
		}
		return repo.ReplaceItems(ctx, record.ID, items)
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save invoice edit")
	}

	updated, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx, EventInvoiceUpdated, updated)
	s.metrics.IncUpdated()
	return updated, nil
}

func (s *service) AllForAnalytics(ctx context.Context, scope Scope) ([]Invoice, error) {
	rows, err := s.repo.List(ctx, ListQuery{UserID: scopeUserID(scope), Limit: s.maxRows})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoices for analytics")
	}
	out := make([]Invoice, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out, nil
}

// Preview without a mutation prepares freshly extracted data: items are
// normalized and a positive extracted total is kept. With a mutation the items
// are user edits and the total is recomputed from them.
func (s *service) Preview(_ context.Context, input ReviewInput) (*InvoiceData, error) {
	data := input.Data
	if input.Mutation == nil {
		s.prepareExtracted(&data)
		return &data, nil
	}

	if err := Apply(&data, *input.Mutation); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid line item change")
	}
	if _, err := s.prepareEdit(&data); err != nil {
		return nil, err
	}
	data.TotalAmount = RecomputeTotal(data.LineItems)
	return &data, nil
}

// prepareExtracted cleans model output. It never fails: an unparseable date is
// dropped and the reviewer fills it in.
func (s *service) prepareExtracted(data *InvoiceData) {
	if _, err := ParseInvoiceDate(data.InvoiceDate); err != nil {
		data.InvoiceDate = nil
	}
	data.LineItems = Normalize(data.LineItems)
	s.classify(data)
	data.TotalAmount = InitialTotal(data.TotalAmount, data.LineItems)
}

// prepareEdit validates user-submitted data. Items are kept as submitted,
// duplicates and explicit zero amounts included; only absent values are filled.
func (s *service) prepareEdit(data *InvoiceData) (*time.Time, error) {
	if err := validateData(*data); err != nil {
		return nil, err
	}
	date, err := ParseInvoiceDate(data.InvoiceDate)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid invoice date").
			WithDetails(map[string]string{"invoice_date": "must be YYYY-MM-DD"})
	}

	items := make([]LineItem, len(data.LineItems))
	for i, item := range data.LineItems {
		items[i] = fillMissing(item)
	}
	data.LineItems = items
	s.classify(data)
	return date, nil
}

func (s *service) classify(data *InvoiceData) {
	if strings.TrimSpace(data.Category) != "" {
		return
	}
	names := make([]string, 0, len(data.LineItems))
	for _, item := range data.LineItems {
		names = append(names, item.ProductName)
	}
	data.Category = string(s.classifier.ClassifyInvoice(data.StoreName, names))
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "load invoice")
	}
	invoice := FromModel(record)
	return &invoice, nil
}

func (s *service) afterWrite(ctx context.Context, eventType string, invoice *Invoice) {
	s.cache.Invalidate(ctx)
	event := Event{
		Type:        eventType,
		InvoiceID:   invoice.ID,
		UserID:      invoice.UserID,
		Status:      invoice.Status,
		TotalAmount: invoice.TotalAmount,
		OccurredAt:  s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logCtx := s.logg.WithInvoiceID(ctx, invoice.ID.String())
		s.logg.Error(logCtx, "publish "+eventType, err)
	}
}

func validateData(data InvoiceData) error {
	details := map[string]string{}
	if data.TaxAmount.IsNegative() {
		details["tax_amount"] = "must not be negative"
	}
	if data.DiscountAmount.IsNegative() {
		details["discount_amount"] = "must not be negative"
	}
	for i, item := range data.LineItems {
		if item.Quantity.IsNegative() {
			details[lineField(i, "quantity")] = "must not be negative"
		}
		if item.UnitPrice.IsNegative() {
			details[lineField(i, "unit_price")] = "must not be negative"
		}
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid invoice").WithDetails(details)
	}
	return nil
}

func lineField(index int, field string) string {
	return fmt.Sprintf("line_items[%d].%s", index, field)
}

func parseStatusFilter(value string) (*enums.InvoiceStatus, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" || v == "all" {
		return nil, nil
	}
	status, err := enums.ParseInvoiceStatus(v)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
	}
	return &status, nil
}

func scopeUserID(scope Scope) *uuid.UUID {
	if scope.All {
		return nil
	}
	id := scope.UserID
	return &id
}

func notFoundOr(err error, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "invoice not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}
