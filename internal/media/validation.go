package media

import (
	"fmt"

	pkgerrors "github.com/angelmondragon/invoicecapture-backend/pkg/errors"
)

// ValidateDocument checks the declared content type and size of an invoice document
// and returns the normalized content type.
func ValidateDocument(contentType string, size, maxBytes int64) (string, error) {
	normalized, err := sniffMimeType(contentType)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid content type").
			WithDetails(map[string]any{"content_type": contentType})
	}
	if _, ok := allowedMimeTypes[normalized]; !ok {
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("only %s are accepted", allowedMimeDescription)).
			WithDetails(map[string]any{
				"content_type": normalized,
				"allowed":      AllowedMimeTypes(),
			})
	}
	if size <= 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "file is empty")
	}
	if maxBytes > 0 && size > maxBytes {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "file too large").
			WithDetails(map[string]any{"size": size, "max_bytes": maxBytes})
	}
	return normalized, nil
}
