package server

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"time"

	generativeAI "github.com/FACorreiaa/go-genai-sdk/lib"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/EthanH9977/JourneyXPro/internal/app/domain/booksync"
	"github.com/EthanH9977/JourneyXPro/internal/app/domain/generation"
	"github.com/EthanH9977/JourneyXPro/internal/app/domain/planner"
	"github.com/EthanH9977/JourneyXPro/internal/app/models"
	database "github.com/EthanH9977/JourneyXPro/internal/db"
	"github.com/EthanH9977/JourneyXPro/internal/pkg/cache"
	"github.com/EthanH9977/JourneyXPro/internal/pkg/config"
	"github.com/EthanH9977/JourneyXPro/internal/pkg/sink"
	"github.com/EthanH9977/JourneyXPro/internal/pkg/store"
)

// Server holds the dependencies for the HTTP server
type Server struct {
	cfg      *config.Config
	logger   *zap.Logger
	dbPool   *pgxpool.Pool
	redis    *redis.Client
	mongo    *mongo.Client
	registry *planner.Registry
	router   http.Handler
}

// New wires the configured store, sink and generator into a session
// registry.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		logger: logger,
	}

	trips, interactions, err := s.setupStore(ctx)
	if err != nil {
		s.Close()
		return nil, err
	}

	documentSink := s.setupSink(ctx)
	gateway := booksync.NewGateway(documentSink, logger, booksync.WithTimeout(cfg.Sync.Timeout))
	generator := s.setupGenerator(ctx, interactions)

	s.registry = planner.NewRegistry(func(ctx context.Context, sessionID, historyKey string) *planner.Session {
		return planner.NewSession(ctx, sessionID, planner.Dependencies{
			Generator: generator,
			Uploader:  gateway,
			Store:     trips,
			Logger:    logger.With(zap.String("session_id", sessionID)),
		}, planner.Options{
			HistoryKey:        historyKey,
			BookURL:           cfg.Sync.BookURL,
			GenerationTimeout: cfg.Gemini.Timeout,
		})
	}, cfg.SessionTTL, logger)

	return s, nil
}

func (s *Server) setupStore(ctx context.Context) (planner.PersistentStore, generation.InteractionRepository, error) {
	switch s.cfg.Store {
	case config.StorePostgres:
		pool, err := s.setupDatabase(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to setup database: %w", err)
		}
		s.dbPool = pool
		pg := store.NewPostgres(pool, s.logger)
		return pg, pg, nil

	case config.StoreRedis:
		rc := s.cfg.Repositories.Redis
		s.redis = redis.NewClient(&redis.Options{
			Addr:     rc.Addr,
			Password: rc.Password,
			DB:       rc.DB,
		})
		if err := s.redis.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", rc.Addr, err)
		}
		s.logger.Info("Connected to Redis", zap.String("addr", rc.Addr))
		return store.NewRedis(s.redis, rc.Prefix), nil, nil

	default:
		s.logger.Info("Using in-memory trip store; saved trips are lost on restart")
		return store.NewMemory(), nil, nil
	}
}

// setupDatabase initializes the database connection and runs migrations
func (s *Server) setupDatabase(ctx context.Context) (*pgxpool.Pool, error) {
	s.logger.Info("Setting up database connection and migrations")

	dbConfig, err := database.NewDatabaseConfig(s.cfg, s.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database configuration: %w", err)
	}

	pool, err := database.Init(dbConfig.ConnectionURL, s.cfg.Repositories.Postgres, s.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database pool: %w", err)
	}

	if !database.WaitForDB(ctx, pool, s.logger) {
		pool.Close()
		return nil, errors.New("database did not become reachable")
	}
	s.logger.Info("Connected to Postgres",
		zap.String("host", s.cfg.Repositories.Postgres.Host),
		zap.String("port", s.cfg.Repositories.Postgres.Port),
		zap.String("database", s.cfg.Repositories.Postgres.DB))

	if err = database.RunMigrations(dbConfig.ConnectionURL, s.logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	s.logger.Info("Database setup completed successfully")
	return pool, nil
}

// setupSink never fails: a misconfigured sink is replaced by one that
// reports the problem on every sync.
func (s *Server) setupSink(ctx context.Context) booksync.DocumentSink {
	switch s.cfg.Sync.Sink {
	case config.SinkMinIO:
		mc := s.cfg.Repositories.MinIO
		client, err := sink.NewMinIOClient(mc)
		if err != nil {
			s.logger.Warn("MinIO sink is not configured", zap.Error(err))
			return sink.Unconfigured{Err: err}
		}
		s.logger.Info("Syncing travel books to MinIO", zap.String("endpoint", mc.Endpoint), zap.String("bucket", mc.Bucket))
		return sink.NewMinIO(client, mc.Bucket, s.logger)

	default:
		mc := s.cfg.Repositories.Mongo
		client, err := sink.ConnectMongo(ctx, mc.URI)
		if err != nil {
			s.logger.Warn("Mongo sink is not configured", zap.Error(err))
			return sink.Unconfigured{Err: fmt.Errorf("%w: %w", booksync.ErrMissingCredential, err)}
		}
		s.mongo = client
		s.logger.Info("Syncing travel books to MongoDB", zap.String("database", mc.Database), zap.String("collection", mc.Collection))
		return sink.NewMongo(client.Database(mc.Database).Collection(mc.Collection), s.logger)
	}
}

func (s *Server) setupGenerator(ctx context.Context, repo generation.InteractionRepository) planner.Generator {
	gc := s.cfg.Gemini
	if gc.APIKey == "" {
		s.logger.Warn("GEMINI_API_KEY is not set; itinerary generation is disabled")
		return generation.Disabled{}
	}

	// The SDK reads its model name from the "model" flag.
	if err := flag.Set("model", gc.Model); err != nil {
		s.logger.Warn("Could not select Gemini model, using SDK default", zap.String("model", gc.Model), zap.Error(err))
	}
	client, err := generativeAI.NewLLMChatClient(ctx, gc.APIKey)
	if err != nil {
		s.logger.Error("Failed to initialize AI client", zap.Error(err))
		return generation.Disabled{}
	}

	interactions := generation.NewInteractionLogger(s.logger, repo, gc.KeepPrompts)
	gemini := generation.NewGeminiGenerator(client, gc.Model, s.logger, interactions)
	if gc.CacheTTL <= 0 {
		return gemini
	}
	s.logger.Info("Itinerary response cache enabled", zap.Duration("ttl", gc.CacheTTL))
	return generation.NewCachingGenerator(gemini, cache.New[models.ItineraryResponse](gc.CacheTTL, "itineraries", s.logger), s.logger)
}

// HTTPServer creates and configures the HTTP server
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              ":" + s.cfg.ServerPort,
		Handler:           s.router,
		IdleTimeout:       time.Minute,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
}

// SetRouter sets the HTTP router/handler
func (s *Server) SetRouter(router http.Handler) {
	s.router = router
}

func (s *Server) Registry() *planner.Registry {
	return s.registry
}

// GetConfig returns the configuration
func (s *Server) GetConfig() *config.Config {
	return s.cfg
}

// Close releases every backend connection that was opened.
func (s *Server) Close() {
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Warn("Error closing redis client", zap.Error(err))
		}
	}
	if s.mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.mongo.Disconnect(ctx); err != nil {
			s.logger.Warn("Error disconnecting mongo client", zap.Error(err))
		}
	}
}
