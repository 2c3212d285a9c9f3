package booksync

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/EthanH9977/JourneyXPro/internal/app/domain/itinerary"
	"github.com/EthanH9977/JourneyXPro/internal/app/models"
)

type MockDocumentSink struct {
	mock.Mock
}

func (m *MockDocumentSink) Write(ctx context.Context, key DocumentKey, document map[string]any) error {
	args := m.Called(ctx, key, document)
	return args.Error(0)
}

// blockingSink never finishes until released, ignoring its context.
type blockingSink struct {
	release chan struct{}
}

func (s *blockingSink) Write(context.Context, DocumentKey, map[string]any) error {
	<-s.release
	return nil
}

var fixedNow = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

func newGateway(sink DocumentSink, opts ...Option) *Gateway {
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewGateway(sink, zap.NewNop(), opts...)
}

func samplePlan() *models.TripPlan {
	plan := itinerary.SamplePlan()
	return &plan
}

func TestDocumentKeyPath(t *testing.T) {
	assert.Equal(t, "users/alice/itineraries/kyoto-trip", DocumentKey{Account: "alice", DocumentID: "kyoto-trip"}.Path())
}

func TestGateway_Upload_Success(t *testing.T) {
	sink := new(MockDocumentSink)
	sink.On("Write", mock.Anything, DocumentKey{Account: "alice", DocumentID: "kyoto-trip"}, mock.AnythingOfType("map[string]interface {}")).
		Return(nil).Once()

	req := itinerary.SampleRequest()
	result, err := newGateway(sink).Upload(context.Background(), UploadInput{
		Account: "  alice ",
		Title:   "Kyoto Trip!!",
		Plan:    samplePlan(),
		Request: &req,
	})
	require.NoError(t, err)
	assert.Equal(t, "kyoto-trip", result.FileID)
	assert.Equal(t, "Kyoto Trip!!", result.FileName)

	sink.AssertExpectations(t)
	doc := sink.Calls[0].Arguments.Get(2).(map[string]any)
	meta := doc["metadata"].(map[string]any)
	assert.Equal(t, SourceTag, meta["syncedFrom"])
	assert.Equal(t, "Kyoto Trip!!", meta["title"])
	assert.Equal(t, "京都古都巡禮五日遊", meta["tripTitle"])
	assert.Equal(t, "2位成人", meta["members"])
	assert.Equal(t, fixedNow.Format(time.RFC3339Nano), doc["updatedAt"])
	assert.Len(t, doc["data"], 3)
}

func TestGateway_Upload_EmptyAccountNeverWrites(t *testing.T) {
	sink := new(MockDocumentSink)

	for _, account := range []string{"", "   ", "\t\n"} {
		result, err := newGateway(sink).Upload(context.Background(), UploadInput{
			Account: account,
			Title:   "x",
			Plan:    samplePlan(),
		})
		require.Error(t, err)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, ErrAccountRequired)
		assert.ErrorIs(t, err, models.ErrPrecondition)
		assert.Equal(t, "請輸入使用者名稱", UserMessage(err))
	}
	sink.AssertNotCalled(t, "Write", mock.Anything, mock.Anything, mock.Anything)
}

func TestGateway_Upload_NoPlan(t *testing.T) {
	sink := new(MockDocumentSink)
	_, err := newGateway(sink).Upload(context.Background(), UploadInput{Account: "alice"})
	assert.ErrorIs(t, err, ErrNoPlan)
	sink.AssertNotCalled(t, "Write", mock.Anything, mock.Anything, mock.Anything)
}

func TestGateway_Upload_TitleFallbacks(t *testing.T) {
	tests := []struct {
		name      string
		title     string
		planTitle string
		fileName  string
		fileID    string
	}{
		{"requested title", "  My Book ", "京都", "My Book", "my-book"},
		{"plan title", "   ", "Kyoto Days", "Kyoto Days", "kyoto-days"},
		{"untitled", "", "", UntitledBook, fmt.Sprintf("journey-book-%d", fixedNow.UnixMilli())},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := new(MockDocumentSink)
			sink.On("Write", mock.Anything, mock.Anything, mock.Anything).Return(nil)

			plan := samplePlan()
			plan.TripTitle = tt.planTitle
			result, err := newGateway(sink).Upload(context.Background(), UploadInput{Account: "bob", Title: tt.title, Plan: plan})
			require.NoError(t, err)
			assert.Equal(t, tt.fileName, result.FileName)
			assert.Equal(t, tt.fileID, result.FileID)
		})
	}
}

func TestGateway_Upload_SinkFailure(t *testing.T) {
	sink := new(MockDocumentSink)
	sink.On("Write", mock.Anything, mock.Anything, mock.Anything).
		Return(fmt.Errorf("%w: mongo auth", ErrPermissionDenied))

	_, err := newGateway(sink).Upload(context.Background(), UploadInput{Account: "alice", Plan: samplePlan()})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.ErrorIs(t, err, models.ErrSyncFailed)
	assert.Equal(t, CategoryPermission, Classify(err))
}

func TestGateway_Upload_Timeout(t *testing.T) {
	sink := &blockingSink{release: make(chan struct{})}
	defer close(sink.release)

	start := time.Now()
	_, err := newGateway(sink, WithTimeout(30*time.Millisecond)).Upload(context.Background(), UploadInput{
		Account: "alice",
		Plan:    samplePlan(),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSyncTimeout)
	assert.Equal(t, CategoryTimeout, Classify(err))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestGateway_Upload_SinkReportsDeadline(t *testing.T) {
	sink := new(MockDocumentSink)
	sink.On("Write", mock.Anything, mock.Anything, mock.Anything).Return(context.DeadlineExceeded)

	_, err := newGateway(sink).Upload(context.Background(), UploadInput{Account: "alice", Plan: samplePlan()})
	assert.True(t, errors.Is(err, ErrSyncTimeout))
}

func TestBuildDocument_AbsentValuesAreExplicitNulls(t *testing.T) {
	plan := &models.TripPlan{
		TripTitle:   "t",
		Destination: "京都",
		Days: []models.DayPlan{{
			Day: 1, Date: "2025-01-01", Theme: "東山",
			Activities: []models.Activity{{Time: "09:00", Title: "散步", Description: "d", Type: models.ActivityOther}},
		}},
	}
	doc := BuildDocument("t", plan, nil, fixedNow)

	meta := doc["metadata"].(map[string]any)
	assert.Contains(t, meta, "members")
	assert.Nil(t, meta["members"])
	assert.Contains(t, meta, "preferences")
	assert.Nil(t, meta["preferences"])

	days := doc["data"].([]any)
	require.Len(t, days, 1)
	event := days[0].(map[string]any)["events"].([]any)[0].(map[string]any)
	assert.Contains(t, event, "locationUrl")
	assert.Nil(t, event["locationUrl"])
	assert.Contains(t, event, "details")
	assert.Nil(t, event["details"])
	assert.Equal(t, "WALKING", event["type"])
}
