package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/angelmondragon/invoicecapture-backend/internal/media"
	pkgerrors "github.com/angelmondragon/invoicecapture-backend/pkg/errors"
	"github.com/angelmondragon/invoicecapture-backend/pkg/logger"
	"github.com/angelmondragon/invoicecapture-backend/pkg/metrics"
)

const defaultMaxBytes = 10 << 20

// Model is the vision-language model that reads invoice documents.
type Model interface {
	GenerateJSON(ctx context.Context, prompt, mimeType string, data []byte) (string, error)
}

// Service turns an invoice document into a raw invoice guess.
type Service interface {
	Extract(ctx context.Context, doc Document) (*RawInvoice, error)
}

type ServiceParams struct {
	Model        Model
	Preprocessor *Preprocessor
	Metrics      *metrics.PipelineMetrics
	Logger       *logger.Logger
	MaxBytes     int64
}

type service struct {
	model    Model
	pre      *Preprocessor
	metrics  *metrics.PipelineMetrics
	logg     *logger.Logger
	maxBytes int64
	schema   *jsonschema.Schema
}

func NewService(params ServiceParams) (Service, error) {
	if params.Model == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "extraction model required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	schema, err := compileSchema()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "compile extraction schema")
	}
	maxBytes := params.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	m := params.Metrics
	if m == nil {
		m = metrics.NewPipelineMetrics(nil)
	}
	return &service{
		model:    params.Model,
		pre:      params.Preprocessor,
		metrics:  m,
		logg:     params.Logger,
		maxBytes: maxBytes,
		schema:   schema,
	}, nil
}

func (s *service) Extract(ctx context.Context, doc Document) (*RawInvoice, error) {
	contentType, err := media.ValidateDocument(doc.ContentType, int64(len(doc.Data)), s.maxBytes)
	if err != nil {
		return nil, err
	}
	doc.ContentType = contentType
	ctx = s.logg.WithFields(ctx, map[string]any{"content_type": contentType, "size": len(doc.Data)})

	prepared := s.pre.Prepare(ctx, doc)

	start := time.Now()
	raw, changes, err := s.run(ctx, prepared)
	s.metrics.ObserveExtraction(time.Since(start), err)
	if err != nil {
		stage := "model"
		var se *stageError
		if errors.As(err, &se) {
			stage = se.stage
		}
		s.logg.Error(s.logg.WithField(ctx, "stage", stage), "extraction.failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeExtraction, err, "invoice extraction failed").
			WithDetails(map[string]any{"stage": stage})
	}
	if len(changes) > 0 {
		s.logg.Warn(s.logg.WithField(ctx, "changes", strings.Join(changes, ",")), "extraction.sanitized")
	}

	s.logg.Info(s.logg.WithField(ctx, "line_items", len(raw.LineItems)), "extraction.completed")
	return raw, nil
}

func (s *service) run(ctx context.Context, doc Document) (*RawInvoice, []string, error) {
	text, err := s.model.GenerateJSON(ctx, Prompt, doc.ContentType, doc.Data)
	if err != nil {
		return nil, nil, err
	}
	return parse(s.schema, text)
}

type stageError struct {
	stage string
	err   error
}

func (e *stageError) Error() string { return e.stage + ": " + e.err.Error() }

func (e *stageError) Unwrap() error { return e.err }

// parse runs fence stripping, sanitation, schema validation and decoding.
// It also returns the changes the sanitizer made.
func parse(schema *jsonschema.Schema, text string) (*RawInvoice, []string, error) {
	clean := StripFences(text)
	if clean == "" {
		return nil, nil, &stageError{stage: "decode", err: errors.New("model returned empty output")}
	}

	sanitized, changes, err := Sanitize([]byte(clean))
	if err != nil {
		return nil, nil, &stageError{stage: "decode", err: err}
	}
	if err := validateAgainst(schema, sanitized); err != nil {
		return nil, changes, &stageError{stage: "schema", err: err}
	}

	var raw RawInvoice
	if err := json.Unmarshal(sanitized, &raw); err != nil {
		return nil, changes, &stageError{stage: "decode", err: fmt.Errorf("decode invoice: %w", err)}
	}
	if raw.LineItems == nil {
		raw.LineItems = []RawLineItem{}
	}
	return &raw, changes, nil
}
