package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type LookupFunc func(string) (string, bool)

type Profile string

const (
	ProfileDev  Profile = "dev"
	ProfileTest Profile = "test"
	ProfileProd Profile = "prod"
)

type Config struct {
	Profile       Profile
	Service       ServiceConfig
	HTTP          HTTPConfig
	Database      DatabaseConfig
	AI            AIConfig
	Embedding     EmbeddingConfig
	Retriever     RetrieverConfig
	Query         QueryConfig
	Session       SessionConfig
	Archive       ArchiveConfig
	ObjectStore   ObjectStoreConfig
	Observability ObservabilityConfig
}

type ServiceConfig struct {
	Name string
}

type HTTPConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Driver   string
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
}

type AIConfig struct {
	BaseURL      string
	APIKey       string
	Model        string
	SystemPrompt string
	Temperature  float64
	Timeout      time.Duration
}

type EmbeddingConfig struct {
	Provider   string
	Model      string
	Dimensions int
}

type RetrieverConfig struct {
	K int
}

type QueryConfig struct {
	ReadOnly bool
	Timeout  time.Duration
}

type SessionConfig struct {
	HistorySize int
	MaxSessions int
	IdleTTL     time.Duration
}

type ArchiveConfig struct {
	Enabled bool
}

type ObjectStoreConfig struct {
	Endpoint         string
	Region           string
	Bucket           string
	AccessKeyID      string
	SecretAccessKey  string
	UseSSL           bool
	Prefix           string
	AutoCreateBucket bool
}

type ObservabilityConfig struct {
	LogLevel slog.Level
	LogJSON  bool
}

func LoadFromEnv(serviceName string) (Config, error) {
	return Load(serviceName, os.LookupEnv)
}

func Load(serviceName string, lookup LookupFunc) (Config, error) {
	if lookup == nil {
		return Config{}, fmt.Errorf("lookup function is required")
	}

	profile := ProfileDev
	if raw, ok := lookup("BOOKQUERY_PROFILE"); ok {
		profile = Profile(strings.ToLower(strings.TrimSpace(raw)))
	}
	if !isValidProfile(profile) {
		return Config{}, fmt.Errorf("invalid BOOKQUERY_PROFILE: %q", profile)
	}

	cfg := defaultsForProfile(profile)
	if serviceName != "" {
		cfg.Service.Name = serviceName
	}

	appliers := []func() error{
		func() error { return applyString(lookup, "BOOKQUERY_SERVICE_NAME", &cfg.Service.Name) },
		func() error { return applyString(lookup, "BOOKQUERY_HTTP_ADDR", &cfg.HTTP.Address) },
		func() error { return applyDuration(lookup, "BOOKQUERY_HTTP_READ_TIMEOUT", &cfg.HTTP.ReadTimeout) },
		func() error { return applyDuration(lookup, "BOOKQUERY_HTTP_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout) },
		func() error { return applyDuration(lookup, "BOOKQUERY_HTTP_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout) },
		func() error { return applyString(lookup, "BOOKQUERY_DB_DRIVER", &cfg.Database.Driver) },
		func() error { return applyString(lookup, "BOOKQUERY_DB_DSN", &cfg.Database.DSN) },
		func() error { return applyString(lookup, "DB_HOST", &cfg.Database.Host) },
		func() error { return applyInt(lookup, "DB_PORT", &cfg.Database.Port) },
		func() error { return applyString(lookup, "DB_USER", &cfg.Database.User) },
		func() error { return applyRawString(lookup, "DB_PASSWORD", &cfg.Database.Password) },
		func() error { return applyString(lookup, "DB_NAME", &cfg.Database.Name) },
		func() error { return applyString(lookup, "OPENAI_API_KEY", &cfg.AI.APIKey) },
		func() error { return applyString(lookup, "BOOKQUERY_AI_BASE_URL", &cfg.AI.BaseURL) },
		func() error { return applyString(lookup, "BOOKQUERY_AI_MODEL", &cfg.AI.Model) },
		func() error { return applyString(lookup, "BOOKQUERY_AI_SYSTEM_PROMPT", &cfg.AI.SystemPrompt) },
		func() error { return applyFloat(lookup, "BOOKQUERY_AI_TEMPERATURE", &cfg.AI.Temperature) },
		func() error { return applyDuration(lookup, "BOOKQUERY_AI_TIMEOUT", &cfg.AI.Timeout) },
		func() error { return applyString(lookup, "BOOKQUERY_EMBEDDING_PROVIDER", &cfg.Embedding.Provider) },
		func() error { return applyString(lookup, "BOOKQUERY_EMBEDDING_MODEL", &cfg.Embedding.Model) },
		func() error { return applyInt(lookup, "BOOKQUERY_EMBEDDING_DIMENSIONS", &cfg.Embedding.Dimensions) },
		func() error { return applyInt(lookup, "BOOKQUERY_RETRIEVER_K", &cfg.Retriever.K) },
		func() error { return applyBool(lookup, "BOOKQUERY_QUERY_READ_ONLY", &cfg.Query.ReadOnly) },
		func() error { return applyDuration(lookup, "BOOKQUERY_QUERY_TIMEOUT", &cfg.Query.Timeout) },
		func() error { return applyInt(lookup, "BOOKQUERY_HISTORY_SIZE", &cfg.Session.HistorySize) },
		func() error { return applyInt(lookup, "BOOKQUERY_SESSION_MAX", &cfg.Session.MaxSessions) },
		func() error { return applyDuration(lookup, "BOOKQUERY_SESSION_IDLE_TTL", &cfg.Session.IdleTTL) },
		func() error { return applyBool(lookup, "BOOKQUERY_ARCHIVE_ENABLED", &cfg.Archive.Enabled) },
		func() error { return applyString(lookup, "BOOKQUERY_OBJECTSTORE_ENDPOINT", &cfg.ObjectStore.Endpoint) },
		func() error { return applyString(lookup, "BOOKQUERY_OBJECTSTORE_REGION", &cfg.ObjectStore.Region) },
		func() error { return applyString(lookup, "BOOKQUERY_OBJECTSTORE_BUCKET", &cfg.ObjectStore.Bucket) },
		func() error { return applyString(lookup, "BOOKQUERY_OBJECTSTORE_ACCESS_KEY", &cfg.ObjectStore.AccessKeyID) },
		func() error { return applyString(lookup, "BOOKQUERY_OBJECTSTORE_SECRET_KEY", &cfg.ObjectStore.SecretAccessKey) },
		func() error { return applyBool(lookup, "BOOKQUERY_OBJECTSTORE_USE_SSL", &cfg.ObjectStore.UseSSL) },
		func() error { return applyString(lookup, "BOOKQUERY_OBJECTSTORE_PREFIX", &cfg.ObjectStore.Prefix) },
		func() error { return applyBool(lookup, "BOOKQUERY_OBJECTSTORE_AUTO_CREATE_BUCKET", &cfg.ObjectStore.AutoCreateBucket) },
		func() error { return applyBool(lookup, "BOOKQUERY_LOG_JSON", &cfg.Observability.LogJSON) },
		func() error { return applyLogLevel(lookup, "BOOKQUERY_LOG_LEVEL", &cfg.Observability.LogLevel) },
	}
	for _, apply := range appliers {
		if err := apply(); err != nil {
			return Config{}, err
		}
	}

	cfg.Database.Driver = strings.ToLower(cfg.Database.Driver)
	cfg.Embedding.Provider = strings.ToLower(cfg.Embedding.Provider)

	if cfg.Service.Name == "" {
		return Config{}, fmt.Errorf("service name is required")
	}
	if cfg.HTTP.Address == "" {
		return Config{}, fmt.Errorf("http address is required")
	}
	if !isValidDriver(cfg.Database.Driver) {
		return Config{}, fmt.Errorf("invalid BOOKQUERY_DB_DRIVER: %q", cfg.Database.Driver)
	}
	if cfg.Database.Port <= 0 || cfg.Database.Port > 65535 {
		return Config{}, fmt.Errorf("invalid DB_PORT: %d", cfg.Database.Port)
	}
	if cfg.Retriever.K <= 0 {
		return Config{}, fmt.Errorf("invalid BOOKQUERY_RETRIEVER_K: %d", cfg.Retriever.K)
	}
	if cfg.Session.HistorySize <= 0 {
		return Config{}, fmt.Errorf("invalid BOOKQUERY_HISTORY_SIZE: %d", cfg.Session.HistorySize)
	}
	if cfg.Session.MaxSessions <= 0 {
		return Config{}, fmt.Errorf("invalid BOOKQUERY_SESSION_MAX: %d", cfg.Session.MaxSessions)
	}
	if cfg.Session.IdleTTL <= 0 {
		return Config{}, fmt.Errorf("invalid BOOKQUERY_SESSION_IDLE_TTL: %s", cfg.Session.IdleTTL)
	}
	if cfg.Archive.Enabled && cfg.ObjectStore.Bucket == "" {
		return Config{}, fmt.Errorf("object store bucket is required when archive is enabled")
	}
	return cfg, nil
}

func defaultsForProfile(profile Profile) Config {
	cfg := Config{
		Profile: profile,
		Service: ServiceConfig{Name: "bookquery-api"},
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:   "mysql",
			Host:     "localhost",
			Port:     3306,
			User:     "root",
			Password: "",
			Name:     "book_inventory",
		},
		AI: AIConfig{
			BaseURL:      "https://api.openai.com/v1",
			Model:        "gpt-3.5-turbo",
			SystemPrompt: "You are a helpful assistant.",
			Temperature:  0,
			Timeout:      30 * time.Second,
		},
		Embedding: EmbeddingConfig{
			Provider:   "openai",
			Model:      "text-embedding-3-small",
			Dimensions: 384,
		},
		Retriever: RetrieverConfig{
			K: 2,
		},
		Query: QueryConfig{
			ReadOnly: false,
			Timeout:  30 * time.Second,
		},
		Session: SessionConfig{
			HistorySize: 5,
			MaxSessions: 10000,
			IdleTTL:     24 * time.Hour,
		},
		Archive: ArchiveConfig{
			Enabled: false,
		},
		ObjectStore: ObjectStoreConfig{
			Endpoint:         "localhost:9000",
			Region:           "us-east-1",
			Bucket:           "bookquery",
			AccessKeyID:      "minio",
			SecretAccessKey:  "miniostorage",
			UseSSL:           false,
			Prefix:           "",
			AutoCreateBucket: true,
		},
		Observability: ObservabilityConfig{
			LogLevel: slog.LevelDebug,
			LogJSON:  true,
		},
	}

	switch profile {
	case ProfileTest:
		cfg.HTTP.Address = ":18080"
		cfg.Embedding.Provider = "hash"
		cfg.Observability.LogLevel = slog.LevelWarn
	case ProfileProd:
		cfg.Observability.LogLevel = slog.LevelInfo
		cfg.ObjectStore.UseSSL = true
		cfg.ObjectStore.AutoCreateBucket = false
	}

	return cfg
}

func isValidProfile(profile Profile) bool {
	switch profile {
	case ProfileDev, ProfileTest, ProfileProd:
		return true
	default:
		return false
	}
}

func isValidDriver(driver string) bool {
	switch driver {
	case "mysql", "postgres", "sqlite", "duckdb":
		return true
	default:
		return false
	}
}

func applyString(lookup LookupFunc, key string, dst *string) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	*dst = strings.TrimSpace(raw)
	return nil
}

// applyRawString keeps surrounding whitespace; passwords may legitimately contain it.
func applyRawString(lookup LookupFunc, key string, dst *string) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	*dst = raw
	return nil
}

func applyDuration(lookup LookupFunc, key string, dst *time.Duration) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyBool(lookup LookupFunc, key string, dst *bool) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyInt(lookup LookupFunc, key string, dst *int) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyFloat(lookup LookupFunc, key string, dst *float64) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyLogLevel(lookup LookupFunc, key string, dst *slog.Level) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	level := strings.ToLower(strings.TrimSpace(raw))
	switch level {
	case "debug":
		*dst = slog.LevelDebug
	case "info":
		*dst = slog.LevelInfo
	case "warn", "warning":
		*dst = slog.LevelWarn
	case "error":
		*dst = slog.LevelError
	default:
		return fmt.Errorf("invalid %s: %q", key, raw)
	}
	return nil
}
