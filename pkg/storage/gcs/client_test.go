package gcs

import (
	"context"
	"strings"
	"testing"
)

func TestPublicURL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		base   string
		bucket string
		key    string
		want   string
	}{
		{
			name:   "default base",
			bucket: "invoices",
			key:    "user-1/abc.jpg",
			want:   "https://storage.googleapis.com/invoices/user-1/abc.jpg",
		},
		{
			name:   "trailing slash trimmed",
			base:   "https://cdn.example.com/",
			bucket: "invoices",
			key:    "u/a.pdf",
			want:   "https://cdn.example.com/invoices/u/a.pdf",
		},
		{
			name:   "segments escaped",
			bucket: "invoices",
			key:    "u/facture mars.png",
			want:   "https://storage.googleapis.com/invoices/u/facture%20mars.png",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := PublicURL(tc.base, tc.bucket, tc.key); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestNilClientOperations(t *testing.T) {
	t.Parallel()

	var c *Client
	if err := c.Ping(context.Background()); err == nil {
		t.Fatal("expected ping error from nil client")
	}
	if _, err := c.Upload(context.Background(), "k", "image/png", strings.NewReader("x")); err == nil {
		t.Fatal("expected upload error from nil client")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close nil client: %v", err)
	}
	if c.DefaultBucket() != "" {
		t.Fatal("expected empty bucket for nil client")
	}
}
