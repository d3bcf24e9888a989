package media

import (
	"fmt"
	"mime"
	"path"
	"sort"
	"strings"
	"unicode"
)

type mimeGroup string

const (
	mimeGroupImages mimeGroup = "images"
	mimeGroupPDFs   mimeGroup = "pdfs"
)

var mimeGroupNames = map[mimeGroup]string{
	mimeGroupImages: "images",
	mimeGroupPDFs:   "PDFs",
}

var mimeGroupTypes = map[mimeGroup][]string{
	mimeGroupImages: {"image/png", "image/jpeg", "image/webp", "image/gif", "image/heic", "image/heif"},
	mimeGroupPDFs:   {"application/pdf"},
}

// invoice documents are photographs or scanned PDFs
var invoiceDocumentGroups = []mimeGroup{mimeGroupImages, mimeGroupPDFs}

var extensionsByMime = map[string]string{
	"image/png":       "png",
	"image/jpeg":      "jpg",
	"image/webp":      "webp",
	"image/gif":       "gif",
	"image/heic":      "heic",
	"image/heif":      "heif",
	"application/pdf": "pdf",
}

var (
	allowedMimeTypes       = buildAllowedMimeTypes()
	allowedMimeDescription = buildMimeDescription()
)

func buildAllowedMimeTypes() map[string]mimeGroup {
	result := make(map[string]mimeGroup)
	for _, group := range invoiceDocumentGroups {
		for _, value := range mimeGroupTypes[group] {
			result[value] = group
		}
	}
	return result
}

func buildMimeDescription() string {
	var descriptions []string
	for _, group := range invoiceDocumentGroups {
		if name, ok := mimeGroupNames[group]; ok {
			descriptions = append(descriptions, name)
		}
	}
	return humanReadableList(descriptions)
}

// AllowedMimeTypes lists the accepted content types in sorted order.
func AllowedMimeTypes() []string {
	list := make([]string, 0, len(allowedMimeTypes))
	for value := range allowedMimeTypes {
		list = append(list, value)
	}
	sort.Strings(list)
	return list
}

func humanReadableList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return fmt.Sprintf("%s or %s", items[0], items[1])
	default:
		return fmt.Sprintf("%s, or %s", strings.Join(items[:len(items)-1], ", "), items[len(items)-1])
	}
}

func sniffMimeType(value string) (string, error) {
	clean := strings.TrimSpace(value)
	if clean == "" {
		return "", fmt.Errorf("mime type required")
	}
	mediaType, _, err := mime.ParseMediaType(clean)
	if err != nil {
		return "", fmt.Errorf("mime type invalid: %w", err)
	}
	if mediaType == "" {
		return "", fmt.Errorf("mime type missing")
	}
	mediaType = strings.ToLower(mediaType)
	if mediaType == "image/jpg" || mediaType == "image/pjpeg" {
		mediaType = "image/jpeg"
	}
	return mediaType, nil
}

// IsPDF reports whether the normalized content type is a PDF.
func IsPDF(contentType string) bool {
	return allowedMimeTypes[contentType] == mimeGroupPDFs
}

// IsImage reports whether the normalized content type is an accepted image.
func IsImage(contentType string) bool {
	return allowedMimeTypes[contentType] == mimeGroupImages
}

// ObjectExtension picks the extension from the filename, falling back to the content type.
func ObjectExtension(filename, contentType string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(strings.TrimSpace(filename)), "."))
	if ext != "" && len(ext) <= 8 && strings.IndexFunc(ext, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) == -1 {
		return ext
	}
	if fallback, ok := extensionsByMime[contentType]; ok {
		return fallback
	}
	return "bin"
}
