package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"

	"github.com/foundry/shipit/internal/config"
)

// Store is the gateway to an S3-compatible release bucket. It implements
// services.ObjectStore.
type Store struct {
	client *minio.Client
	bucket string
	logger zerolog.Logger
}

// New creates a Store from an explicit storage configuration. No network
// I/O happens until the first operation.
func New(cfg config.StorageConfig, logger zerolog.Logger) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.KeyID, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}
	return &Store{client: client, bucket: cfg.Bucket, logger: logger}, nil
}

// Upload writes content as a publicly readable object under key. Any
// transport failure is returned as-is; the caller decides how fatal it is.
func (s *Store) Upload(ctx context.Context, key string, content []byte) error {
	opts := minio.PutObjectOptions{
		ContentType:  contentTypeFor(key),
		UserMetadata: map[string]string{"x-amz-acl": "public-read"},
	}
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(content), int64(len(content)), opts)
	if err != nil {
		return fmt.Errorf("uploading object %s: %w", key, err)
	}
	return nil
}

// Fetch returns the object's content if it exists. Absence and probe
// failure both report ok=false; a failed probe is logged so an unreachable
// bucket is visible and not mistaken for a truly empty one.
func (s *Store) Fetch(ctx context.Context, key string) ([]byte, bool) {
	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		if resp := minio.ToErrorResponse(err); resp.Code != "NoSuchKey" {
			s.logger.Warn().Err(err).Str("key", key).Msg("existence probe failed, treating object as absent")
		}
		return nil, false
	}

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("fetch failed, treating object as absent")
		return nil, false
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("fetch read failed, treating object as absent")
		return nil, false
	}
	return data, true
}

// URL returns the public path-style address for key.
func (s *Store) URL(key string) string {
	u := *s.client.EndpointURL()
	u.Path = path.Join("/", s.bucket, key)
	return u.String()
}

func contentTypeFor(key string) string {
	if strings.HasSuffix(key, ".json") {
		return "application/json"
	}
	return "application/octet-stream"
}
