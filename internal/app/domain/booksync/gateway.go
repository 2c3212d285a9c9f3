package booksync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/EthanH9977/JourneyXPro/internal/app/domain/itinerary"
	"github.com/EthanH9977/JourneyXPro/internal/app/models"
)

const (
	DefaultTimeout = 30 * time.Second
	SourceTag      = "JourneyXPro"
	UntitledBook   = "未命名旅遊書"
)

// DocumentKey addresses one travel book in the remote store.
type DocumentKey struct {
	Account    string
	DocumentID string
}

// Path is the slash separated location shared by every sink.
func (k DocumentKey) Path() string {
	return "users/" + k.Account + "/itineraries/" + k.DocumentID
}

// DocumentSink writes (creates or replaces) one document.
type DocumentSink interface {
	Write(ctx context.Context, key DocumentKey, document map[string]any) error
}

type UploadInput struct {
	Account string
	Title   string
	Plan    *models.TripPlan
	Request *models.TripRequest
}

type UploadResult struct {
	FileID   string `json:"fileId"`
	FileName string `json:"fileName"`
}

type Gateway struct {
	sink    DocumentSink
	logger  *zap.Logger
	timeout time.Duration
	now     func() time.Time
}

type Option func(*Gateway)

func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.timeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(g *Gateway) { g.now = now }
}

func NewGateway(sink DocumentSink, logger *zap.Logger, opts ...Option) *Gateway {
	g := &Gateway{
		sink:    sink,
		logger:  logger,
		timeout: DefaultTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Upload converts the plan into a travel book document and writes it once.
// The write races the gateway timeout; a slow sink yields ErrSyncTimeout.
func (g *Gateway) Upload(ctx context.Context, in UploadInput) (*UploadResult, error) {
	ctx, span := otel.Tracer("BookSync").Start(ctx, "Upload", trace.WithAttributes(
		attribute.Int64("sync.timeout_ms", g.timeout.Milliseconds()),
	))
	defer span.End()

	account := strings.TrimSpace(in.Account)
	if account == "" {
		span.SetStatus(codes.Error, "account required")
		return nil, ErrAccountRequired
	}
	if in.Plan == nil {
		span.SetStatus(codes.Error, "no plan")
		return nil, ErrNoPlan
	}

	now := g.now()
	title := resolveTitle(in.Title, in.Plan)
	key := DocumentKey{Account: account, DocumentID: SanitizeDocumentID(title, now)}
	span.SetAttributes(attribute.String("sync.path", key.Path()))

	document := BuildDocument(title, in.Plan, in.Request, now)

	if err := g.write(ctx, key, document); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "write failed")
		g.logger.Warn("Travel book sync failed",
			zap.String("path", key.Path()),
			zap.String("category", string(Classify(err))),
			zap.Error(err))
		return nil, err
	}

	g.logger.Info("Travel book synced",
		zap.String("path", key.Path()),
		zap.String("title", title))
	span.SetStatus(codes.Ok, "synced")
	return &UploadResult{FileID: key.DocumentID, FileName: title}, nil
}

func (g *Gateway) write(ctx context.Context, key DocumentKey, document map[string]any) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- g.sink.Write(ctx, key, document)
	}()

	select {
	case err := <-done:
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrSyncTimeout
		}
		if err != nil {
			return fmt.Errorf("write %s: %w", key.Path(), err)
		}
		return nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ErrSyncTimeout
		}
		return ctx.Err()
	}
}

func resolveTitle(requested string, plan *models.TripPlan) string {
	if t := strings.TrimSpace(requested); t != "" {
		return t
	}
	if plan.TripTitle != "" {
		return plan.TripTitle
	}
	return UntitledBook
}

// BuildDocument assembles the stored document. Every optional key is present;
// absent values are explicit nulls.
func BuildDocument(title string, plan *models.TripPlan, req *models.TripRequest, now time.Time) map[string]any {
	var members, preferences *string
	if req != nil {
		members, preferences = &req.Members, &req.Preferences
	}

	doc := map[string]any{
		"data": bookData(itinerary.ToTravelBook(plan)),
		"metadata": map[string]any{
			"title":               title,
			"destination":         plan.Destination,
			"duration":            plan.Duration,
			"totalBudgetEstimate": plan.TotalBudgetEstimate,
			"members":             members,
			"preferences":         preferences,
			"syncedFrom":          SourceTag,
			"tripTitle":           plan.TripTitle,
		},
		"updatedAt": now.UTC().Format(time.RFC3339Nano),
	}
	return NullifyAbsent(doc).(map[string]any)
}

func bookData(book []models.TravelBookDay) []map[string]any {
	days := make([]map[string]any, 0, len(book))
	for _, day := range book {
		events := make([]map[string]any, 0, len(day.Events))
		for _, ev := range day.Events {
			var details []map[string]any
			for _, d := range ev.Details {
				details = append(details, map[string]any{"title": d.Title, "content": d.Content})
			}
			events = append(events, map[string]any{
				"id":           ev.ID,
				"time":         ev.Time,
				"title":        ev.Title,
				"locationName": ev.LocationName,
				"locationUrl":  ev.LocationURL,
				"type":         string(ev.Type),
				"description":  ev.Description,
				"details":      details,
			})
		}
		days = append(days, map[string]any{
			"dayId":       day.DayID,
			"dateStr":     day.DateStr,
			"displayDate": day.DisplayDate,
			"region":      day.Region,
			"events":      events,
		})
	}
	return days
}
