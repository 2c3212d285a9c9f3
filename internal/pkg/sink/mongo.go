package sink

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/EthanH9977/JourneyXPro/internal/app/domain/booksync"
)

// Server error codes for Unauthorized and AuthenticationFailed.
const (
	mongoCodeUnauthorized         = 13
	mongoCodeAuthenticationFailed = 18
)

// Collection is the part of *mongo.Collection the sink uses.
type Collection interface {
	ReplaceOne(ctx context.Context, filter interface{}, replacement interface{}, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error)
}

// Mongo upserts each travel book as one document whose _id is the
// document path.
type Mongo struct {
	coll   Collection
	logger *zap.Logger
}

func NewMongo(coll Collection, logger *zap.Logger) *Mongo {
	return &Mongo{coll: coll, logger: logger}
}

// ConnectMongo opens a client. The driver connects lazily, so an unreachable
// server shows up on the first write.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	return client, nil
}

func (m *Mongo) Write(ctx context.Context, key booksync.DocumentKey, document map[string]any) error {
	ctx, span := otel.Tracer("MongoSink").Start(ctx, "Write", trace.WithAttributes(
		attribute.String("db.system", "mongodb"),
		attribute.String("document.path", key.Path()),
	))
	defer span.End()

	replacement := bson.M{}
	for k, v := range document {
		replacement[k] = v
	}
	replacement["_id"] = key.Path()
	replacement["account"] = key.Account
	replacement["documentId"] = key.DocumentID

	_, err := m.coll.ReplaceOne(ctx, bson.M{"_id": key.Path()}, replacement, options.Replace().SetUpsert(true))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "replace failed")
		m.logger.Warn("Mongo write failed", zap.String("path", key.Path()), zap.Error(err))
		return mapMongoError(err)
	}
	return nil
}

func mapMongoError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	var serverErr mongo.ServerError
	if errors.As(err, &serverErr) &&
		(serverErr.HasErrorCode(mongoCodeUnauthorized) || serverErr.HasErrorCode(mongoCodeAuthenticationFailed)) {
		return fmt.Errorf("%w: %w", booksync.ErrPermissionDenied, err)
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return fmt.Errorf("%w: %w", booksync.ErrUnavailable, err)
	}
	if wrapped := asUnavailable(err); wrapped != nil {
		return wrapped
	}
	return err
}
