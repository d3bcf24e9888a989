package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/angelmondragon/invoicecapture-backend/pkg/config"
	"github.com/angelmondragon/invoicecapture-backend/pkg/logger"
)

const pingTimeout = 5 * time.Second

var errNotInitialized = errors.New("gcs client not initialized")

type Client struct {
	client        *storage.Client
	defaultBucket string
	publicBaseURL string
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// UploadedObject describes an object written by Upload.
type UploadedObject struct {
	Bucket      string
	Key         string
	ContentType string
	Size        int64
	URL         string
}

func NewClient(ctx context.Context, cfg config.GCSConfig, gcp config.GCPConfig, logg *logger.Logger) (*Client, error) {
	if cfg.BucketName == "" {
		return nil, errors.New("gcs bucket name is required")
	}

	var opts []option.ClientOption
	if creds := strings.TrimSpace(gcp.CredentialsJSON); creds != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(creds)))
	}

	sc, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating gcs client: %w", err)
	}

	client := &Client{
		client:        sc,
		defaultBucket: cfg.BucketName,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}

	if err := client.Ping(ctx); err != nil {
		_ = sc.Close()
		return nil, fmt.Errorf("gcs health check failed: %w", err)
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "bucket", cfg.BucketName), "gcs client initialized")
	}

	return client, nil
}

func (c *Client) DefaultBucket() string {
	if c == nil {
		return ""
	}
	return c.defaultBucket
}

// Upload streams body into key on the default bucket.
func (c *Client) Upload(ctx context.Context, key, contentType string, body io.Reader) (*UploadedObject, error) {
	if c == nil || c.client == nil {
		return nil, errNotInitialized
	}
	if strings.TrimSpace(key) == "" {
		return nil, errors.New("object key is required")
	}

	w := c.client.Bucket(c.defaultBucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType

	size, err := io.Copy(w, body)
	if err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("writing object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing object %s: %w", key, err)
	}

	return &UploadedObject{
		Bucket:      c.defaultBucket,
		Key:         key,
		ContentType: contentType,
		Size:        size,
		URL:         PublicURL(c.publicBaseURL, c.defaultBucket, key),
	}, nil
}

// PublicURL joins base, bucket and an escaped object key.
func PublicURL(base, bucket, key string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		base = "https://storage.googleapis.com"
	}
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return base + "/" + url.PathEscape(bucket) + "/" + strings.Join(segments, "/")
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errNotInitialized
	}
	if c.defaultBucket == "" {
		return errors.New("gcs bucket not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if _, err := c.client.Bucket(c.defaultBucket).Attrs(ctx); err != nil {
		return fmt.Errorf("gcs bucket %q not accessible: %w", c.defaultBucket, err)
	}
	return nil
}
