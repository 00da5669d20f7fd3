package catalog

import (
	"context"
	"time"
)

// AllowedImageTypes is the whitelist of gallery upload content types.
// SVG is excluded because it can carry script.
var AllowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// ObjectStorageService is implemented by the S3 storage adapter
type ObjectStorageService interface {
	// GenerateUploadURL generates a presigned URL for uploading a file
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// ObjectExists checks if an object exists in storage
	ObjectExists(ctx context.Context, storageKey string) (bool, error)

	// PublicURL returns the permanent URL an uploaded object is served from
	PublicURL(storageKey string) string
}

// ListingCache stores serialized public catalog pages
type ListingCache interface {
	// Get returns the cached value and whether it was present
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// InvalidateAll drops every cached page
	InvalidateAll(ctx context.Context) error
}

// QuoteDocument is everything a printed quote shows
type QuoteDocument struct {
	DealerName string
	CarTitle   string
	Quote      QuoteResponse
	IssuedAt   time.Time
}

// QuoteRenderer turns a quote into a PDF
type QuoteRenderer interface {
	RenderQuotePDF(ctx context.Context, doc QuoteDocument) ([]byte, error)
}
