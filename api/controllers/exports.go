package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/angelmondragon/invoicecapture-backend/api/responses"
	"github.com/angelmondragon/invoicecapture-backend/internal/analytics"
	"github.com/angelmondragon/invoicecapture-backend/internal/export"
	"github.com/angelmondragon/invoicecapture-backend/internal/invoices"
	pkgerrors "github.com/angelmondragon/invoicecapture-backend/pkg/errors"
	"github.com/angelmondragon/invoicecapture-backend/pkg/logger"
)

var exportNow = func() time.Time {
	return time.Now().UTC()
}

// ExportInvoices streams every invoice matching ?search&status as an xlsx workbook.
func ExportInvoices(source analytics.InvoiceSource, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if source == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invoice service unavailable"))
			return
		}

		list, err := source.AllForAnalytics(r.Context(), invoices.Scope{All: true})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list = analytics.Search(list, analytics.SearchQuery{
			Term:   queryString(r, "search"),
			Status: queryString(r, "status"),
		})

		payload, err := export.InvoicesWorkbook(list)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build invoices workbook"))
			return
		}
		writeWorkbook(w, "invoices", payload)
	}
}

func ExportPriceTrend(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
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

		payload, err := export.PriceTrendWorkbook(query.Product, query.Metric, points)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build price trend workbook"))
			return
		}
		writeWorkbook(w, "price-trend", payload)
	}
}

func writeWorkbook(w http.ResponseWriter, name string, payload []byte) {
	filename := fmt.Sprintf("%s-%s.xlsx", name, exportNow().Format("20060102"))
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}
