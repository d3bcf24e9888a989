package controllers

import (
	"net/http"

	"github.com/angelmondragon/invoicecapture-backend/api/responses"
	"github.com/angelmondragon/invoicecapture-backend/api/validators"
	"github.com/angelmondragon/invoicecapture-backend/internal/analytics"
	pkgerrors "github.com/angelmondragon/invoicecapture-backend/pkg/errors"
	"github.com/angelmondragon/invoicecapture-backend/pkg/logger"
)

const (
	defaultTopUsers = 10
	maxTopUsers     = 100
)

func AnalyticsByAgency(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}
		groups, err := svc.ByAgency(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, groups)
	}
}

func AnalyticsTopUsers(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", defaultTopUsers, 1, maxTopUsers)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		groups, err := svc.TopUsers(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, groups)
	}
}

func AnalyticsCompareStores(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}
		comparison, err := svc.CompareStores(r.Context(), queryString(r, "store_a"), queryString(r, "store_b"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, comparison)
	}
}

func AnalyticsPriceTrend(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}
		query, err := trendQueryFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		points, err := svc.PriceTrend(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, points)
	}
}

func AnalyticsCatalogs(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}
		set, err := svc.Catalogs(r.Context(), analytics.CatalogQuery{
			Category: queryString(r, "category"),
			City:     queryString(r, "city"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, set)
	}
}

func AnalyticsSummary(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}
		summary, err := svc.Summary(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
