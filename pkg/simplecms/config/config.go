// Package config loads server configuration from the environment and builds
// a fully wired content service from it.
package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/tendant/simple-cms/pkg/simplecms"
	"github.com/tendant/simple-cms/pkg/simplecms/cache/sturdy"
	repomemory "github.com/tendant/simple-cms/pkg/simplecms/repo/memory"
	repopg "github.com/tendant/simple-cms/pkg/simplecms/repo/postgres"
	searchelastic "github.com/tendant/simple-cms/pkg/simplecms/search/elastic"
	searchmemory "github.com/tendant/simple-cms/pkg/simplecms/search/memory"
)

// ServerConfig represents server configuration for the simple-cms service
type ServerConfig struct {
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENVIRONMENT" env-default:"development"`

	// Database configuration
	DatabaseType string `env:"DATABASE_TYPE" env-default:"memory"`
	DatabaseURL  string `env:"DATABASE_URL"`

	// Search configuration
	SearchType   string `env:"SEARCH_TYPE" env-default:"memory"`
	ElasticURL   string `env:"ELASTIC_URL"`
	ElasticIndex string `env:"ELASTIC_INDEX" env-default:"contents"`

	// Public-read cache
	CacheEnabled  bool          `env:"CACHE_ENABLED" env-default:"true"`
	CacheTTL      time.Duration `env:"CACHE_TTL" env-default:"10m"`
	CacheCapacity int           `env:"CACHE_CAPACITY" env-default:"10000"`

	// Upload event stream
	KafkaBrokers  string        `env:"KAFKA_BROKERS"`
	KafkaTopic    string        `env:"KAFKA_TOPIC" env-default:"asset-uploads"`
	KafkaGroupID  string        `env:"KAFKA_GROUP_ID" env-default:"simple-cms"`
	WorkerBackoff time.Duration `env:"WORKER_BACKOFF" env-default:"1s"`

	// Auth
	JWTSecret string `env:"JWT_SECRET"`

	EnableEventLogging bool `env:"ENABLE_EVENT_LOGGING" env-default:"true"`
}

// Load reads the configuration from environment variables.
func Load() (*ServerConfig, error) {
	var cfg ServerConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	if c.DatabaseType != "memory" && c.DatabaseType != "postgres" {
		return errors.New("database_type must be 'memory' or 'postgres'")
	}
	if c.DatabaseType == "postgres" && c.DatabaseURL == "" {
		return errors.New("database_url is required when using postgres")
	}
	if c.SearchType != "memory" && c.SearchType != "elasticsearch" && c.SearchType != "none" {
		return errors.New("search_type must be 'memory', 'elasticsearch' or 'none'")
	}
	if c.SearchType == "elasticsearch" && c.ElasticURL == "" {
		return errors.New("elastic_url is required when using elasticsearch")
	}
	return nil
}

// Brokers returns the Kafka broker list, or nil when the worker is disabled.
func (c *ServerConfig) Brokers() []string {
	if c.KafkaBrokers == "" {
		return nil
	}
	return strings.Split(c.KafkaBrokers, ",")
}

// BuildService creates a Service instance from the server configuration
func (c *ServerConfig) BuildService(logger zerolog.Logger) (simplecms.Service, error) {
	var options []simplecms.Option

	repo, err := c.buildRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to build repository: %w", err)
	}
	options = append(options, simplecms.WithRepository(repo))

	index, err := c.buildSearchIndex()
	if err != nil {
		return nil, fmt.Errorf("failed to build search index: %w", err)
	}
	if index != nil {
		options = append(options, simplecms.WithSearchIndex(index))
	}

	if c.CacheEnabled {
		// Shard count follows sturdyc's guidance of a power of two.
		cache := sturdy.New(c.CacheCapacity, 256, c.CacheTTL)
		options = append(options, simplecms.WithContentCache(cache))
	}

	if c.EnableEventLogging {
		options = append(options, simplecms.WithEventSink(simplecms.NewLoggingEventSink(logger)))
	}
	options = append(options, simplecms.WithLogger(logger))

	return simplecms.New(options...)
}

// buildRepository creates a Repository based on the configuration
func (c *ServerConfig) buildRepository() (simplecms.Repository, error) {
	switch c.DatabaseType {
	case "memory":
		return repomemory.New(), nil
	case "postgres":
		cfg, err := pgxpool.ParseConfig(c.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
		}
		pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create pgx pool: %w", err)
		}
		return repopg.NewWithPool(pool), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

// buildSearchIndex creates a SearchIndex based on the configuration. A nil
// index with nil error means search acceleration is disabled.
func (c *ServerConfig) buildSearchIndex() (simplecms.SearchIndex, error) {
	switch c.SearchType {
	case "none":
		return nil, nil
	case "memory":
		return searchmemory.New(), nil
	case "elasticsearch":
		client, err := elasticsearch.NewClient(elasticsearch.Config{
			Addresses: strings.Split(c.ElasticURL, ","),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
		}
		return searchelastic.New(client, c.ElasticIndex), nil
	default:
		return nil, fmt.Errorf("unsupported search type: %s", c.SearchType)
	}
}
