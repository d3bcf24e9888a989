package controllers

import (
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/invoicecapture-backend/api/middleware"
	"github.com/angelmondragon/invoicecapture-backend/api/validators"
	"github.com/angelmondragon/invoicecapture-backend/internal/access"
	"github.com/angelmondragon/invoicecapture-backend/internal/analytics"
	"github.com/angelmondragon/invoicecapture-backend/internal/invoices"
	"github.com/angelmondragon/invoicecapture-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/invoicecapture-backend/pkg/errors"
)

const (
	maxQueryLen = 200
	// product filters carry whole line-item descriptions
	maxProductQueryLen = 500
)

func profileFromRequest(r *http.Request) (*access.Profile, error) {
	profile := middleware.ProfileFromContext(r.Context())
	if profile == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return profile, nil
}

// scopeFor lets admins read everything and everybody else only their own invoices.
func scopeFor(profile *access.Profile) invoices.Scope {
	if profile.IsAdmin() {
		return invoices.Scope{All: true}
	}
	return invoices.Scope{UserID: profile.ID}
}

func invoiceIDParam(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "invoiceId"))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid invoice id").
			WithDetails(map[string]string{"invoiceId": raw})
	}
	return id, nil
}

func queryString(r *http.Request, key string) string {
	return validators.SanitizeString(r.URL.Query().Get(key), maxQueryLen)
}

func trendQueryFromRequest(r *http.Request) (analytics.TrendQuery, error) {
	metric, err := enums.ParsePriceMetric(queryString(r, "metric"))
	if err != nil {
		return analytics.TrendQuery{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid metric").
			WithDetails(map[string]any{"field": "metric"})
	}
	hideZero, err := validators.ParseQueryBool(r, "hide_zero")
	if err != nil {
		return analytics.TrendQuery{}, err
	}
	return analytics.TrendQuery{
		Product:  validators.SanitizeString(r.URL.Query().Get("product"), maxProductQueryLen),
		City:     queryString(r, "city"),
		Category: queryString(r, "category"),
		User:     queryString(r, "user"),
		Metric:   metric,
		HideZero: hideZero,
	}, nil
}

func sortedNames(deps map[string]Pinger) []string {
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
