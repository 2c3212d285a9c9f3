package sink

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/EthanH9977/JourneyXPro/internal/app/domain/booksync"
	"github.com/EthanH9977/JourneyXPro/internal/pkg/config"
)

var testKey = booksync.DocumentKey{Account: "amy", DocumentID: "kyoto-trip"}

type fakeCollection struct {
	filter      interface{}
	replacement interface{}
	upsert      bool
	err         error
}

func (f *fakeCollection) ReplaceOne(_ context.Context, filter interface{}, replacement interface{}, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error) {
	f.filter = filter
	f.replacement = replacement
	for _, o := range opts {
		if o.Upsert != nil {
			f.upsert = *o.Upsert
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &mongo.UpdateResult{UpsertedCount: 1}, nil
}

func TestMongo_Write(t *testing.T) {
	coll := &fakeCollection{}
	doc := map[string]any{"title": "京都", "metadata": map[string]any{"members": nil}}

	require.NoError(t, NewMongo(coll, zap.NewNop()).Write(context.Background(), testKey, doc))

	assert.True(t, coll.upsert)
	assert.Equal(t, bson.M{"_id": "users/amy/itineraries/kyoto-trip"}, coll.filter)
	replacement := coll.replacement.(bson.M)
	assert.Equal(t, "users/amy/itineraries/kyoto-trip", replacement["_id"])
	assert.Equal(t, "amy", replacement["account"])
	assert.Equal(t, "kyoto-trip", replacement["documentId"])
	assert.Equal(t, "京都", replacement["title"])
	_, hasID := doc["_id"]
	assert.False(t, hasID, "input document must not be mutated")
}

func TestMongo_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want booksync.Category
	}{
		{"unauthorized", mongo.CommandError{Code: 13, Message: "not authorized on journeyxbook"}, booksync.CategoryPermission},
		{"auth failed", mongo.CommandError{Code: 18, Message: "Authentication failed."}, booksync.CategoryPermission},
		{"network label", mongo.CommandError{Code: 6, Message: "host unreachable", Labels: []string{"NetworkError"}}, booksync.CategoryNetwork},
		{"net error", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("refused")}, booksync.CategoryNetwork},
		{"deadline", context.DeadlineExceeded, booksync.CategoryTimeout},
		{"other", mongo.CommandError{Code: 2, Message: "bad value"}, booksync.CategoryGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coll := &fakeCollection{err: tt.err}
			err := NewMongo(coll, zap.NewNop()).Write(context.Background(), testKey, map[string]any{})
			require.Error(t, err)
			assert.Equal(t, tt.want, booksync.Classify(err))
		})
	}
}

type fakePutter struct {
	bucket, object string
	body           []byte
	contentType    string
	err            error
}

func (f *fakePutter) PutObject(_ context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.err != nil {
		return minio.UploadInfo{}, f.err
	}
	f.bucket, f.object, f.contentType = bucketName, objectName, opts.ContentType
	body, err := io.ReadAll(reader)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	f.body = body
	return minio.UploadInfo{Bucket: bucketName, Key: objectName, Size: objectSize}, nil
}

func TestMinIO_Write(t *testing.T) {
	putter := &fakePutter{}
	doc := map[string]any{"title": "京都", "updatedAt": "2025-01-01T00:00:00Z", "metadata": map[string]any{"members": nil}}

	require.NoError(t, NewMinIO(putter, "books", zap.NewNop()).Write(context.Background(), testKey, doc))

	assert.Equal(t, "books", putter.bucket)
	assert.Equal(t, "users/amy/itineraries/kyoto-trip.json", putter.object)
	assert.Contains(t, putter.contentType, "application/json")

	var got map[string]any
	require.NoError(t, json.Unmarshal(putter.body, &got))
	assert.Equal(t, "京都", got["title"])
	meta := got["metadata"].(map[string]any)
	v, ok := meta["members"]
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestMinIO_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want booksync.Category
	}{
		{"access denied", minio.ErrorResponse{Code: "AccessDenied", Message: "Access Denied."}, booksync.CategoryPermission},
		{"bad key", minio.ErrorResponse{Code: "InvalidAccessKeyId", Message: "The Access Key Id you provided does not exist."}, booksync.CategoryConfig},
		{"bad signature", minio.ErrorResponse{Code: "SignatureDoesNotMatch", Message: "mismatch"}, booksync.CategoryConfig},
		{"slow down", minio.ErrorResponse{Code: "SlowDown", Message: "Please reduce your request rate."}, booksync.CategoryNetwork},
		{"net error", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("refused")}, booksync.CategoryNetwork},
		{"no bucket", minio.ErrorResponse{Code: "NoSuchBucket", Message: "The specified bucket does not exist"}, booksync.CategoryGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewMinIO(&fakePutter{err: tt.err}, "books", zap.NewNop()).Write(context.Background(), testKey, map[string]any{})
			require.Error(t, err)
			assert.Equal(t, tt.want, booksync.Classify(err))
		})
	}
}

func TestNewMinIOClient_MissingKeys(t *testing.T) {
	_, err := NewMinIOClient(config.MinIOConfig{Endpoint: "localhost:9000", Bucket: "books"})
	require.Error(t, err)
	assert.ErrorIs(t, err, booksync.ErrMissingCredential)
	assert.Equal(t, booksync.CategoryConfig, booksync.Classify(err))
}

func TestUnconfigured(t *testing.T) {
	err := Unconfigured{}.Write(context.Background(), testKey, nil)
	assert.ErrorIs(t, err, booksync.ErrMissingCredential)

	custom := errors.New("boom")
	assert.Equal(t, custom, Unconfigured{Err: custom}.Write(context.Background(), testKey, nil))
}
