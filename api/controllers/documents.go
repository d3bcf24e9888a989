package controllers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/angelmondragon/invoicecapture-backend/internal/extraction"
	pkgerrors "github.com/angelmondragon/invoicecapture-backend/pkg/errors"
)

const (
	documentField = "file"
	// multipart boundaries and headers on top of the file itself
	multipartOverhead = 1 << 20
)

// readDocument pulls the "file" part of a multipart request into memory.
// Size and type are checked by the services; this only bounds what is read.
func readDocument(w http.ResponseWriter, r *http.Request, maxBytes int64) (extraction.Document, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return extraction.Document{}, pkgerrors.New(pkgerrors.CodeValidation, "file too large").
				WithDetails(map[string]any{"max_bytes": maxBytes})
		}
		return extraction.Document{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile(documentField)
	if err != nil {
		return extraction.Document{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "file is required").
			WithDetails(map[string]string{documentField: "is required"})
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return extraction.Document{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read upload")
	}

	contentType := strings.TrimSpace(header.Header.Get("Content-Type"))
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	return extraction.Document{
		Filename:    header.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}
