package generation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/EthanH9977/JourneyXPro/internal/app/models"
)

// InteractionRepository persists generation audit records.
type InteractionRepository interface {
	SaveInteraction(ctx context.Context, interaction models.LLMInteraction) (uuid.UUID, error)
}

// Gemini list prices in USD per 1M tokens.
// Source: https://ai.google.dev/pricing
var geminiPricing = map[string]struct {
	InputPer1M  float64
	OutputPer1M float64
}{
	"gemini-1.5-pro":        {InputPer1M: 3.50, OutputPer1M: 10.50},
	"gemini-1.5-flash":      {InputPer1M: 0.075, OutputPer1M: 0.30},
	"gemini-2.0-flash":      {InputPer1M: 0.10, OutputPer1M: 0.40},
	"gemini-2.5-flash":      {InputPer1M: 0.30, OutputPer1M: 2.50},
	"gemini-2.5-flash-lite": {InputPer1M: 0.10, OutputPer1M: 0.40},
	"gemini-2.5-pro":        {InputPer1M: 1.25, OutputPer1M: 10.00},
}

// CalculateCost estimates the USD cost of a call. The longest matching price
// key wins so "gemini-2.5-flash-lite" is not billed as "gemini-2.5-flash".
// Unknown models cost 0.
func CalculateCost(modelName string, promptTokens, completionTokens int) float64 {
	normalized := strings.ToLower(modelName)
	bestKey := ""
	for key := range geminiPricing {
		if strings.Contains(normalized, key) && len(key) > len(bestKey) {
			bestKey = key
		}
	}
	if bestKey == "" {
		return 0
	}
	pricing := geminiPricing[bestKey]
	inputCost := (float64(promptTokens) / 1_000_000) * pricing.InputPer1M
	outputCost := (float64(completionTokens) / 1_000_000) * pricing.OutputPer1M
	return inputCost + outputCost
}

// HashPrompt creates a SHA256 hash of the prompt for anonymized tracking.
func HashPrompt(prompt string) string {
	hash := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(hash[:])
}

// InteractionLogger records every generation call to the process log and,
// when a repository is configured, to the database.
type InteractionLogger struct {
	logger *zap.Logger
	repo   InteractionRepository
	// keepPrompt stores the full prompt text next to its hash.
	keepPrompt bool
}

func NewInteractionLogger(logger *zap.Logger, repo InteractionRepository, keepPrompt bool) *InteractionLogger {
	return &InteractionLogger{logger: logger, repo: repo, keepPrompt: keepPrompt}
}

// LogAsync records an interaction without blocking the caller. The write
// survives cancellation of the request context.
func (l *InteractionLogger) LogAsync(ctx context.Context, interaction models.LLMInteraction) <-chan error {
	done := make(chan error, 1)
	asyncCtx := context.WithoutCancel(ctx)
	go func() {
		err := l.Log(asyncCtx, interaction)
		if err != nil {
			l.logger.Error("Failed to log LLM interaction asynchronously",
				zap.String("intent", interaction.Intent),
				zap.String("session_id", interaction.SessionID),
				zap.Error(err))
		}
		done <- err
		close(done)
	}()
	return done
}

// Log fills the derived fields (hash, cost, request id) and records the
// interaction synchronously.
func (l *InteractionLogger) Log(ctx context.Context, interaction models.LLMInteraction) error {
	ctx, span := otel.Tracer("LLMLogger").Start(ctx, "logInteraction",
		trace.WithAttributes(
			attribute.String("intent", interaction.Intent),
			attribute.String("model", interaction.ModelName),
			attribute.Int64("latency_ms", interaction.LatencyMs),
			attribute.String("outcome", interaction.Outcome),
		))
	defer span.End()

	if interaction.RequestID == uuid.Nil {
		interaction.RequestID = uuid.New()
	}
	if interaction.Provider == "" {
		interaction.Provider = "google"
	}
	interaction.PromptHash = HashPrompt(interaction.Prompt)
	if !l.keepPrompt {
		interaction.Prompt = ""
	}
	interaction.CostEstimateUSD = CalculateCost(interaction.ModelName, interaction.PromptTokens, interaction.CompletionTokens)

	l.logger.Info("LLM interaction",
		zap.String("request_id", interaction.RequestID.String()),
		zap.String("session_id", interaction.SessionID),
		zap.String("intent", interaction.Intent),
		zap.String("outcome", interaction.Outcome),
		zap.String("prompt_hash", interaction.PromptHash),
		zap.Int("prompt_tokens", interaction.PromptTokens),
		zap.Int("completion_tokens", interaction.CompletionTokens),
		zap.Float64("cost_usd", interaction.CostEstimateUSD),
		zap.Int64("latency_ms", interaction.LatencyMs))

	if l.repo == nil {
		return nil
	}
	savedID, err := l.repo.SaveInteraction(ctx, interaction)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to save LLM interaction: %w", err)
	}
	span.SetAttributes(attribute.String("interaction_id", savedID.String()))
	return nil
}
