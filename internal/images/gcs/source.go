// Package gcs provides an ImageSource backed by a Google Cloud Storage
// bucket: the object is fetched with credentialed access and inlined as a
// base64 data URI so crawlers need no access to the bucket.
package gcs

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
)

// Config captures the parameters required to read thumbnails from GCS.
type Config struct {
	Bucket string
}

// Source reads thumbnail objects from a configured bucket. Every failure —
// missing object, missing content type, read error — degrades to an empty
// thumbnail rather than an error; a broken image must never break the
// preview document.
type Source struct {
	client *storage.Client
	bucket string
	logger *zap.Logger
}

// New creates a GCS-backed image source.
func New(client *storage.Client, cfg Config, logger *zap.Logger) (*Source, error) {
	if client == nil {
		return nil, fmt.Errorf("storage client is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{
		client: client,
		bucket: cfg.Bucket,
		logger: logger,
	}, nil
}

// Resolve fetches objectName and returns it as a data URI, or "" on any
// storage failure.
func (s *Source) Resolve(ctx context.Context, objectName string) string {
	if strings.TrimSpace(objectName) == "" {
		return ""
	}

	reader, err := s.client.Bucket(s.bucket).Object(objectName).NewReader(ctx)
	if err != nil {
		s.logger.Warn("thumbnail object unavailable",
			zap.String("object", objectName),
			zap.Error(err),
		)
		return ""
	}
	defer func() {
		if closeErr := reader.Close(); closeErr != nil {
			s.logger.Debug("close thumbnail reader", zap.Error(closeErr))
		}
	}()

	contentType := reader.Attrs.ContentType
	if contentType == "" {
		s.logger.Warn("thumbnail object missing content type, cannot build data URI",
			zap.String("object", objectName),
		)
		return ""
	}

	payload, err := io.ReadAll(reader)
	if err != nil {
		s.logger.Warn("thumbnail object read failed",
			zap.String("object", objectName),
			zap.Error(err),
		)
		return ""
	}

	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(payload))
}
