package generation

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/EthanH9977/JourneyXPro/internal/app/domain/itinerary"
	"github.com/EthanH9977/JourneyXPro/internal/app/models"
	"github.com/EthanH9977/JourneyXPro/internal/app/observability/metrics"
)

const (
	DefaultModel = "gemini-2.5-flash"

	IntentItinerary  = "itinerary"
	IntentAdjustment = "adjustment"

	OutcomeOK        = "ok"
	OutcomeMalformed = "malformed"
	OutcomeSchema    = "schema"
	OutcomeTransport = "transport"
)

// ChatClient is the slice of the go-genai-sdk LLMChatClient the generator
// needs.
type ChatClient interface {
	GenerateResponse(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type sessionKey struct{}

// WithSessionID tags generation calls made with ctx for the audit log.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey{}, sessionID)
}

func sessionIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}

// GeminiGenerator produces validated itineraries from the Gemini API with
// Google Search grounding enabled.
type GeminiGenerator struct {
	client       ChatClient
	model        string
	logger       *zap.Logger
	interactions *InteractionLogger
}

func NewGeminiGenerator(client ChatClient, model string, logger *zap.Logger, interactions *InteractionLogger) *GeminiGenerator {
	if model == "" {
		model = DefaultModel
	}
	if interactions == nil {
		interactions = NewInteractionLogger(logger, nil, false)
	}
	return &GeminiGenerator{
		client:       client,
		model:        model,
		logger:       logger,
		interactions: interactions,
	}
}

// Generate runs one model call. Transport failures wrap
// models.ErrGenerationFailed; parse and schema failures come back unchanged
// from itinerary.ParseTripPlan.
func (g *GeminiGenerator) Generate(ctx context.Context, req models.TripRequest, feedback string) (*models.ItineraryResponse, error) {
	intent := IntentItinerary
	if strings.TrimSpace(feedback) != "" {
		intent = IntentAdjustment
	}

	ctx, span := otel.Tracer("GenerationService").Start(ctx, "Generate", trace.WithAttributes(
		attribute.String("destination", req.Destination),
		attribute.String("intent", intent),
		attribute.String("model", g.model),
	))
	defer span.End()

	prompt := BuildPrompt(req, feedback)
	config := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	}

	start := time.Now()
	resp, err := g.client.GenerateResponse(ctx, prompt, config)
	latency := time.Since(start)

	interaction := models.LLMInteraction{
		SessionID:   sessionIDFrom(ctx),
		Intent:      intent,
		Destination: req.Destination,
		Prompt:      prompt,
		ModelName:   g.model,
		LatencyMs:   latency.Milliseconds(),
		Timestamp:   start,
	}

	if err == nil && resp == nil {
		err = errors.New("empty response from model")
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "model call failed")
		g.record(ctx, interaction, OutcomeTransport, err, latency)
		return nil, &unavailableError{cause: err}
	}

	if usage := resp.UsageMetadata; usage != nil {
		interaction.PromptTokens = int(usage.PromptTokenCount)
		interaction.CompletionTokens = int(usage.CandidatesTokenCount)
		interaction.TotalTokens = int(usage.TotalTokenCount)
	}
	text := resp.Text()
	interaction.ResponseText = text

	plan, err := itinerary.ParseTripPlan(text)
	if err != nil {
		outcome := OutcomeSchema
		if errors.Is(err, models.ErrMalformedResponse) {
			outcome = OutcomeMalformed
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid itinerary")
		g.record(ctx, interaction, outcome, err, latency)
		return nil, err
	}

	g.record(ctx, interaction, OutcomeOK, nil, latency)
	span.SetAttributes(attribute.Int("itinerary.days", len(plan.Days)))
	span.SetStatus(codes.Ok, "itinerary generated")

	return &models.ItineraryResponse{
		Plan:            *plan,
		GroundingChunks: groundingChunks(resp),
	}, nil
}

func (g *GeminiGenerator) record(ctx context.Context, interaction models.LLMInteraction, outcome string, err error, latency time.Duration) {
	interaction.Outcome = outcome
	if err != nil {
		interaction.ErrorMessage = err.Error()
		g.logger.Warn("Itinerary generation failed",
			zap.String("intent", interaction.Intent),
			zap.String("outcome", outcome),
			zap.Error(err))
	}

	m := metrics.Get()
	attrs := metric.WithAttributes(attribute.String("outcome", outcome), attribute.String("intent", interaction.Intent))
	m.GenerationsTotal.Add(ctx, 1, attrs)
	m.GenerationDuration.Record(ctx, latency.Seconds(), attrs)
	if interaction.TotalTokens > 0 {
		m.GenerationTokensTotal.Add(ctx, int64(interaction.TotalTokens), metric.WithAttributes(attribute.String("model", interaction.ModelName)))
	}

	g.interactions.LogAsync(ctx, interaction)
}

// groundingChunks copies the web citations of the first candidate.
func groundingChunks(resp *genai.GenerateContentResponse) []models.GroundingChunk {
	chunks := []models.GroundingChunk{}
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].GroundingMetadata == nil {
		return chunks
	}
	for _, c := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		if c == nil {
			continue
		}
		chunk := models.GroundingChunk{}
		if c.Web != nil {
			chunk.Web = &models.GroundingWeb{
				URI:   optional(c.Web.URI),
				Title: optional(c.Web.Title),
			}
		}
		chunks = append(chunks, chunk)
	}
	return chunks
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// TransportErrorMessage is shown when the model call itself fails.
const TransportErrorMessage = "無法連線至 AI 服務，行程產生失敗，請稍後再試。"

// unavailableError keeps the driver error in the chain but out of the
// message users see.
type unavailableError struct {
	cause error
}

func (e *unavailableError) Error() string { return TransportErrorMessage }

func (e *unavailableError) Unwrap() []error {
	return []error{models.ErrGenerationFailed, e.cause}
}

type notConfiguredError struct{}

func (notConfiguredError) Error() string {
	return "尚未設定 Gemini API 金鑰，無法產生行程。"
}

func (notConfiguredError) Unwrap() error { return models.ErrGenerationFailed }

// ErrNotConfigured is returned by Disabled.
var ErrNotConfigured error = notConfiguredError{}

// Disabled stands in for the Gemini generator when no API key is set, so
// the rest of the service (samples, history, sync) keeps working.
type Disabled struct{}

func (Disabled) Generate(context.Context, models.TripRequest, string) (*models.ItineraryResponse, error) {
	return nil, ErrNotConfigured
}
