package extraction

import (
	"bytes"
	"context"
	"fmt"

	"github.com/disintegration/imaging"

	"github.com/angelmondragon/invoicecapture-backend/internal/media"
	"github.com/angelmondragon/invoicecapture-backend/pkg/logger"
)

const (
	defaultMaxDimension = 2048
	defaultJPEGQuality  = 85
	jpegContentType     = "image/jpeg"
)

// Preprocessor shrinks photographed invoices before they are sent to the model.
type Preprocessor struct {
	MaxWidth  int
	MaxHeight int
	Quality   int
	Logger    *logger.Logger
}

// Prepare returns doc with images fitted inside the configured bounds and
// re-encoded as JPEG. PDFs and images the decoder cannot read pass through.
func (p *Preprocessor) Prepare(ctx context.Context, doc Document) Document {
	if p == nil || !media.IsImage(doc.ContentType) {
		return doc
	}

	img, err := imaging.Decode(bytes.NewReader(doc.Data), imaging.AutoOrientation(true))
	if err != nil {
		p.warn(ctx, doc, err)
		return doc
	}

	width, height := p.bounds()
	fitted := imaging.Fit(img, width, height, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, fitted, imaging.JPEG, imaging.JPEGQuality(p.quality())); err != nil {
		p.warn(ctx, doc, err)
		return doc
	}

	return Document{
		Filename:    doc.Filename,
		ContentType: jpegContentType,
		Data:        buf.Bytes(),
	}
}

func (p *Preprocessor) bounds() (int, int) {
	width, height := p.MaxWidth, p.MaxHeight
	if width <= 0 {
		width = defaultMaxDimension
	}
	if height <= 0 {
		height = defaultMaxDimension
	}
	return width, height
}

func (p *Preprocessor) quality() int {
	if p.Quality <= 0 || p.Quality > 100 {
		return defaultJPEGQuality
	}
	return p.Quality
}

func (p *Preprocessor) warn(ctx context.Context, doc Document, err error) {
	if p.Logger == nil {
		return
	}
	ctx = p.Logger.WithFields(ctx, map[string]any{
		"content_type": doc.ContentType,
		"reason":       err.Error(),
	})
	p.Logger.Warn(ctx, fmt.Sprintf("extraction.preprocess_skipped: %s", doc.Filename))
}
