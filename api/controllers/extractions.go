package controllers

import (
	"net/http"

	"github.com/angelmondragon/invoicecapture-backend/api/responses"
	"github.com/angelmondragon/invoicecapture-backend/internal/extraction"
	"github.com/angelmondragon/invoicecapture-backend/internal/invoices"
	pkgerrors "github.com/angelmondragon/invoicecapture-backend/pkg/errors"
	"github.com/angelmondragon/invoicecapture-backend/pkg/logger"
)

// ExtractInvoice runs the document through the model and returns review-ready invoice data.
// Nothing is persisted.
func ExtractInvoice(extractor extraction.Service, invoiceSvc invoices.Service, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if extractor == nil || invoiceSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "extraction service unavailable"))
			return
		}

		doc, err := readDocument(w, r, maxBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		raw, err := extractor.Extract(r.Context(), doc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		data, err := invoiceSvc.Preview(r.Context(), invoices.ReviewInput{Data: raw.InvoiceData()})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, data)
	}
}
