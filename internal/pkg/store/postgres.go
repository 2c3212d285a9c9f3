package store

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/EthanH9977/JourneyXPro/internal/app/models"
)

const (
	blobTable        = "saved_trip_blobs"
	interactionTable = "llm_interactions"
)

// DB is the part of pgxpool.Pool the store uses.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres stores blobs as jsonb rows keyed by history key. It also records
// generation audit rows.
type Postgres struct {
	db     DB
	logger *zap.Logger
	psql   sq.StatementBuilderType
}

func NewPostgres(db DB, logger *zap.Logger) *Postgres {
	return &Postgres{
		db:     db,
		logger: logger,
		psql:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (p *Postgres) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, span := otel.Tracer("PostgresStore").Start(ctx, "Get", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.sql.table", blobTable),
	))
	defer span.End()

	query, args, err := p.psql.Select("value").From(blobTable).Where(sq.Eq{"key": key}).ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("build select: %w", err)
	}

	var value []byte
	if err := p.db.QueryRow(ctx, query, args...).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, false, fmt.Errorf("select %s: %w", blobTable, err)
	}
	return value, true, nil
}

func (p *Postgres) Set(ctx context.Context, key string, value []byte) error {
	ctx, span := otel.Tracer("PostgresStore").Start(ctx, "Set", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.sql.table", blobTable),
		attribute.Int("blob.size", len(value)),
	))
	defer span.End()

	query, args, err := p.psql.Insert(blobTable).
		Columns("key", "value", "updated_at").
		Values(key, value, sq.Expr("NOW()")).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := p.db.Exec(ctx, query, args...); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upsert failed")
		p.logger.Error("Failed to upsert saved trips", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("upsert %s: %w", blobTable, err)
	}
	return nil
}

// SaveInteraction inserts one generation audit row.
func (p *Postgres) SaveInteraction(ctx context.Context, in models.LLMInteraction) (uuid.UUID, error) {
	query, args, err := p.psql.Insert(interactionTable).
		Columns(
			"request_id", "session_id", "intent", "destination", "prompt_hash", "prompt",
			"response_text", "model_name", "provider", "prompt_tokens", "completion_tokens",
			"total_tokens", "latency_ms", "outcome", "error_message", "cost_estimate_usd", "created_at",
		).
		Values(
			in.RequestID, in.SessionID, in.Intent, in.Destination, in.PromptHash, in.Prompt,
			in.ResponseText, in.ModelName, in.Provider, in.PromptTokens, in.CompletionTokens,
			in.TotalTokens, in.LatencyMs, in.Outcome, in.ErrorMessage, in.CostEstimateUSD, in.Timestamp,
		).
		ToSql()
	if err != nil {
		return uuid.Nil, fmt.Errorf("build insert: %w", err)
	}
	if _, err := p.db.Exec(ctx, query, args...); err != nil {
		return uuid.Nil, fmt.Errorf("insert %s: %w", interactionTable, err)
	}
	return in.RequestID, nil
}
