package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"flex-design-backend/internal/env"
	"flex-design-backend/internal/logger"
)

var ErrNotConfigured = errors.New("object storage is not configured")

// BlobStore stores public objects and returns the URL they are served from.
type BlobStore interface {
	Upload(ctx context.Context, name, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, name string) error
	// ObjectNameFor returns the object behind a URL this store issued, or ""
	// for any other URL.
	ObjectNameFor(url string) string
}

type Config struct {
	Bucket          string
	PublicBaseURL   string
	CredentialsFile string
	EmulatorHost    string
}

func ConfigFromEnv() Config {
	return Config{
		Bucket:          env.Get(env.GCSBucket),
		PublicBaseURL:   env.Get(env.GCSPublicBaseURL),
		CredentialsFile: env.Get(env.GCSCredentialsFile),
		EmulatorHost:    env.Get(env.StorageEmulatorHost),
	}
}

// Enabled reports whether a bucket is configured at all.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.Bucket) != ""
}

type GCSStore struct {
	client        *storage.Client
	bucket        string
	publicBaseURL string
	log           *logger.Logger
}

func NewGCSStore(ctx context.Context, cfg Config, log *logger.Logger) (*GCSStore, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}
	if log == nil {
		log = logger.Nop()
	}

	var opts []option.ClientOption
	emulator := strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/")
	switch {
	case emulator != "":
		_ = os.Setenv("STORAGE_EMULATOR_HOST", emulator)
		opts = append(opts, option.WithoutAuthentication())
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile), option.WithScopes(storage.ScopeReadWrite))
	default:
		opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	base := strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")
	if base == "" && emulator != "" {
		base = emulator
	}

	log.Info("Object storage initialized", "bucket", cfg.Bucket, "emulator_host", emulator, "public_base_url", base)

	return &GCSStore{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: base,
		log:           log.With("service", "GCSStore"),
	}, nil
}

func (s *GCSStore) Upload(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return PublicURL(s.publicBaseURL, s.bucket, name), nil
}

func (s *GCSStore) Delete(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := s.client.Bucket(s.bucket).Object(name).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil
		}
		return fmt.Errorf("failed to delete GCS object %q in bucket %q: %w", name, s.bucket, err)
	}
	return nil
}

func (s *GCSStore) ObjectNameFor(url string) string {
	return ObjectName(url, s.bucket)
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}

// PublicURL is where a public object can be fetched from.
func PublicURL(baseURL, bucket, name string) string {
	name = strings.TrimLeft(strings.TrimSpace(name), "/")
	if baseURL != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(baseURL, "/"), bucket, name)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, name)
}

// ObjectName returns the object name a public URL points at, or "" when the
// URL does not belong to bucket.
func ObjectName(url, bucket string) string {
	marker := "/" + bucket + "/"
	idx := strings.Index(url, marker)
	if idx < 0 {
		return ""
	}
	return url[idx+len(marker):]
}
