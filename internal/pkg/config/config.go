package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"

	SinkMongo = "mongo"
	SinkMinIO = "minio"
)

type PostgresConfig struct {
	Host     string
	Port     string
	DB       string
	Username string
	Password string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type RepositoriesConfig struct {
	Postgres PostgresConfig
	Redis    RedisConfig
	Mongo    MongoConfig
	MinIO    MinIOConfig
}

type GeminiConfig struct {
	APIKey      string
	Model       string
	Timeout     time.Duration
	KeepPrompts bool
	// CacheTTL enables the response cache for identical requests when
	// positive.
	CacheTTL time.Duration
}

type SyncConfig struct {
	Sink    string
	BookURL string
	Timeout time.Duration
}

type ObservabilityConfig struct {
	ServiceName  string
	MetricsAddr  string
	OTLPEndpoint string
	PprofAddr    string
}

type Config struct {
	ServerPort    string
	GinMode       string
	LogLevel      string
	Store         string
	SessionTTL    time.Duration
	PDFFontPath   string
	Repositories  RepositoriesConfig
	Gemini        GeminiConfig
	Sync          SyncConfig
	Observability ObservabilityConfig
}

func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:  getEnvOrDefault("SERVER_PORT", "8091"),
		GinMode:     getEnvOrDefault("GIN_MODE", "release"),
		LogLevel:    getEnvOrDefault("LOG_LEVEL", "info"),
		Store:       getEnvOrDefault("TRIP_STORE", StoreMemory),
		SessionTTL:  getEnvDuration("SESSION_TTL", 24*time.Hour),
		PDFFontPath: getEnvOrDefault("PDF_FONT_PATH", ""),
		Repositories: RepositoriesConfig{
			Postgres: PostgresConfig{
				Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
				Port:     getEnvOrDefault("POSTGRES_PORT", "5454"),
				DB:       getEnvOrDefault("POSTGRES_DB", "journeyx"),
				Username: getEnvOrDefault("POSTGRES_USER", "postgres"),
				Password: getEnvOrDefault("POSTGRES_PASSWORD", ""),
				SSLMode:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
				MaxConns: int32(getEnvInt("POSTGRES_MAX_CONNS", 30)),
				MinConns: int32(getEnvInt("POSTGRES_MIN_CONNS", 5)),
			},
			Redis: RedisConfig{
				Addr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
				Password: getEnvOrDefault("REDIS_PASSWORD", ""),
				DB:       getEnvInt("REDIS_DB", 0),
				Prefix:   getEnvOrDefault("REDIS_PREFIX", "journeyx:"),
			},
			Mongo: MongoConfig{
				URI:        getEnvOrDefault("MONGO_URI", "mongodb://localhost:27017"),
				Database:   getEnvOrDefault("MONGO_DB", "journeyxbook"),
				Collection: getEnvOrDefault("MONGO_COLLECTION", "itineraries"),
			},
			MinIO: MinIOConfig{
				Endpoint:  getEnvOrDefault("MINIO_ENDPOINT", "localhost:9000"),
				AccessKey: getEnvOrDefault("MINIO_ACCESS_KEY", ""),
				SecretKey: getEnvOrDefault("MINIO_SECRET_KEY", ""),
				Bucket:    getEnvOrDefault("MINIO_BUCKET", "journeyxbook"),
				UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			},
		},
		Gemini: GeminiConfig{
			APIKey:      getEnvOrDefault("GEMINI_API_KEY", ""),
			Model:       getEnvOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),
			Timeout:     getEnvDuration("GEMINI_TIMEOUT", 2*time.Minute),
			KeepPrompts: getEnvBool("LLM_LOG_PROMPTS", false),
			CacheTTL:    getEnvDuration("GEMINI_CACHE_TTL", 0),
		},
		Sync: SyncConfig{
			Sink:    getEnvOrDefault("SYNC_SINK", SinkMongo),
			BookURL: getEnvOrDefault("JOURNEYXBOOK_URL", "https://journeyxbook.vercel.app"),
			Timeout: getEnvDuration("SYNC_TIMEOUT", 30*time.Second),
		},
		Observability: ObservabilityConfig{
			ServiceName:  getEnvOrDefault("OTEL_SERVICE_NAME", "journeyx-pro"),
			MetricsAddr:  getEnvOrDefault("METRICS_ADDR", ":9092"),
			OTLPEndpoint: getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			PprofAddr:    getEnvOrDefault("PPROF_ADDR", ":6060"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store {
	case StoreMemory, StoreRedis:
	case StorePostgres:
		if c.Repositories.Postgres.Password == "" {
			return fmt.Errorf("POSTGRES_PASSWORD environment variable is required when TRIP_STORE=postgres")
		}
	default:
		return fmt.Errorf("unsupported TRIP_STORE %q", c.Store)
	}

	switch c.Sync.Sink {
	case SinkMongo:
		if c.Repositories.Mongo.URI == "" {
			return fmt.Errorf("MONGO_URI environment variable is required when SYNC_SINK=mongo")
		}
	case SinkMinIO:
		if c.Repositories.MinIO.Bucket == "" {
			return fmt.Errorf("MINIO_BUCKET environment variable is required when SYNC_SINK=minio")
		}
	default:
		return fmt.Errorf("unsupported SYNC_SINK %q", c.Sync.Sink)
	}

	if c.Sync.Timeout <= 0 {
		return fmt.Errorf("SYNC_TIMEOUT must be positive")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return defaultValue
}
