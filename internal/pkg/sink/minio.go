package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/EthanH9977/JourneyXPro/internal/app/domain/booksync"
	"github.com/EthanH9977/JourneyXPro/internal/pkg/config"
)

// ObjectPutter is the part of *minio.Client the sink uses.
type ObjectPutter interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// MinIO stores each travel book as a JSON object at <path>.json.
type MinIO struct {
	client ObjectPutter
	bucket string
	logger *zap.Logger
}

func NewMinIO(client ObjectPutter, bucket string, logger *zap.Logger) *MinIO {
	return &MinIO{client: client, bucket: bucket, logger: logger}
}

// NewMinIOClient builds a static-credential client. Empty keys are a
// configuration error.
func NewMinIOClient(cfg config.MinIOConfig) (*minio.Client, error) {
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("%w: MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required", booksync.ErrMissingCredential)
	}
	return minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
}

// ObjectName is the object key a document is stored under.
func ObjectName(key booksync.DocumentKey) string {
	return key.Path() + ".json"
}

func (m *MinIO) Write(ctx context.Context, key booksync.DocumentKey, document map[string]any) error {
	name := ObjectName(key)
	ctx, span := otel.Tracer("MinIOSink").Start(ctx, "Write", trace.WithAttributes(
		attribute.String("storage.bucket", m.bucket),
		attribute.String("storage.object", name),
	))
	defer span.End()

	body, err := json.Marshal(document)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	_, err = m.client.PutObject(ctx, m.bucket, name, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json; charset=utf-8",
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "put object failed")
		m.logger.Warn("MinIO write failed", zap.String("object", name), zap.Error(err))
		return mapMinIOError(err)
	}
	return nil
}

func mapMinIOError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	switch minio.ToErrorResponse(err).Code {
	case "AccessDenied", "AllAccessDisabled":
		return fmt.Errorf("%w: %w", booksync.ErrPermissionDenied, err)
	case "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return fmt.Errorf("%w: %w", booksync.ErrMissingCredential, err)
	case "SlowDown", "ServiceUnavailable", "XMinioServerNotInitialized":
		return fmt.Errorf("%w: %w", booksync.ErrUnavailable, err)
	}
	if wrapped := asUnavailable(err); wrapped != nil {
		return wrapped
	}
	return err
}
