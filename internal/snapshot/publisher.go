// Package snapshot writes the derived snapshot to disk and optionally
// publishes it to S3-compatible storage with pre-signed download URLs.
// When S3 is not configured (empty bucket), the NoopPublisher is used and
// all S3 operations are skipped, keeping the system in local-only mode.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hyperengineering/plankdash/internal/config"
)

// ErrNotConfigured is returned when S3 publishing is not configured.
var ErrNotConfigured = errors.New("snapshot publishing not configured")

// Publisher uploads the snapshot file and generates pre-signed download URLs.
type Publisher interface {
	// Publish uploads the snapshot file at filePath.
	Publish(ctx context.Context, filePath string) error

	// PresignedURL returns a pre-signed URL for downloading the snapshot.
	// Returns ErrNotConfigured when S3 is not configured.
	PresignedURL(ctx context.Context) (url string, expiry time.Time, err error)
}

// s3Client defines the minimal minio.Client operations used by S3Publisher.
type s3Client interface {
	FPutObject(ctx context.Context, bucket, objectName, filePath string) error
	PresignedGetObject(ctx context.Context, bucket, objectName string, expiry time.Duration) (*url.URL, error)
}

// minioClientWrapper wraps *minio.Client to satisfy the s3Client interface.
type minioClientWrapper struct {
	client *minio.Client
}

func (w *minioClientWrapper) FPutObject(ctx context.Context, bucket, objectName, filePath string) error {
	_, err := w.client.FPutObject(ctx, bucket, objectName, filePath, minio.PutObjectOptions{
		ContentType:  "application/json",
		CacheControl: "no-cache",
	})
	return err
}

func (w *minioClientWrapper) PresignedGetObject(ctx context.Context, bucket, objectName string, expiry time.Duration) (*url.URL, error) {
	return w.client.PresignedGetObject(ctx, bucket, objectName, expiry, nil)
}

// S3Publisher uploads the snapshot to S3-compatible storage.
type S3Publisher struct {
	client    s3Client
	bucket    string
	key       string
	urlExpiry time.Duration
	now       func() time.Time
}

// Publish uploads the snapshot file at filePath under the configured key.
func (p *S3Publisher) Publish(ctx context.Context, filePath string) error {
	if err := p.client.FPutObject(ctx, p.bucket, p.key, filePath); err != nil {
		return fmt.Errorf("upload snapshot to S3: %w", err)
	}
	return nil
}

// PresignedURL returns a pre-signed GET URL for the snapshot.
func (p *S3Publisher) PresignedURL(ctx context.Context) (string, time.Time, error) {
	presigned, err := p.client.PresignedGetObject(ctx, p.bucket, p.key, p.urlExpiry)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generate pre-signed URL: %w", err)
	}
	return presigned.String(), p.now().Add(p.urlExpiry), nil
}

// NoopPublisher is used when S3 publishing is not configured.
// Publish is a no-op and PresignedURL returns ErrNotConfigured.
type NoopPublisher struct{}

// Publish is a no-op when S3 is not configured.
func (NoopPublisher) Publish(ctx context.Context, filePath string) error {
	return nil
}

// PresignedURL returns ErrNotConfigured when S3 is not configured.
func (NoopPublisher) PresignedURL(ctx context.Context) (string, time.Time, error) {
	return "", time.Time{}, ErrNotConfigured
}

// NewPublisher creates the appropriate Publisher based on configuration.
// Returns NoopPublisher when bucket is empty, S3Publisher otherwise.
func NewPublisher(cfg config.PublishConfig) (Publisher, error) {
	if cfg.Bucket == "" {
		return NoopPublisher{}, nil
	}

	useSSL := true
	if cfg.UseSSL != nil {
		useSSL = *cfg.UseSSL
	}
	endpoint := stripScheme(cfg.Endpoint, &useSSL)

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create S3 client: %w", err)
	}

	key := cfg.ObjectKey
	if key == "" {
		key = "plank-data.json"
	}

	return &S3Publisher{
		client:    &minioClientWrapper{client: client},
		bucket:    cfg.Bucket,
		key:       key,
		urlExpiry: time.Duration(cfg.URLExpiry),
		now:       time.Now,
	}, nil
}

// stripScheme removes an http:// or https:// prefix from endpoint. minio
// expects a bare host[:port]; the scheme, when present, overrides useSSL.
func stripScheme(endpoint string, useSSL *bool) string {
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		*useSSL = true
		return strings.TrimPrefix(endpoint, "https://")
	case strings.HasPrefix(endpoint, "http://"):
		*useSSL = false
		return strings.TrimPrefix(endpoint, "http://")
	}
	return endpoint
}
