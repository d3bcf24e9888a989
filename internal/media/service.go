package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/invoicecapture-backend/pkg/errors"
	"github.com/angelmondragon/invoicecapture-backend/pkg/logger"
	"github.com/angelmondragon/invoicecapture-backend/pkg/storage/gcs"
)

const defaultMaxUploadBytes = 10 << 20

type objectStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (*gcs.UploadedObject, error)
}

// Service stores original invoice documents.
type Service interface {
	Upload(ctx context.Context, userID uuid.UUID, filename, contentType string, body io.Reader) (*UploadResult, error)
}

// UploadResult is returned to the client after a successful upload.
type UploadResult struct {
	ImageURL    string `json:"image_url"`
	ObjectKey   string `json:"object_key"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

type service struct {
	store    objectStore
	maxBytes int64
	logg     *logger.Logger
	newID    func() uuid.UUID
}

// NewService constructs a media service backed by the provided object store.
func NewService(store objectStore, maxBytes int64, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("object store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if maxBytes <= 0 {
		maxBytes = defaultMaxUploadBytes
	}
	return &service{store: store, maxBytes: maxBytes, logg: logg, newID: uuid.New}, nil
}

func (s *service) Upload(ctx context.Context, userID uuid.UUID, filename, contentType string, body io.Reader) (*UploadResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user")
	}
	if body == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file is required")
	}

	data, err := io.ReadAll(io.LimitReader(body, s.maxBytes+1))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read upload")
	}
	normalized, err := ValidateDocument(contentType, int64(len(data)), s.maxBytes)
	if err != nil {
		return nil, err
	}

	key := ObjectKey(userID, s.newID(), filename, normalized)
	ctx = s.logg.WithFields(ctx, map[string]any{"object_key": key, "content_type": normalized})

	obj, err := s.store.Upload(ctx, key, normalized, bytes.NewReader(data))
	if err != nil {
		s.logg.Error(ctx, "media.upload_failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload document")
	}
	s.logg.Info(ctx, "media.uploaded")

	return &UploadResult{
		ImageURL:    obj.URL,
		ObjectKey:   obj.Key,
		ContentType: normalized,
		Size:        obj.Size,
	}, nil
}

// ObjectKey builds <userID>/<id>.<ext>.
func ObjectKey(userID, id uuid.UUID, filename, contentType string) string {
	return strings.Join([]string{userID.String(), id.String() + "." + ObjectExtension(filename, contentType)}, "/")
}
