package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	MongoDB    MongoDBConfig `mapstructure:"mongodb"`
	Stores     []StoreConfig `mapstructure:"stores"`
	Comparatif ComparatifConfig
	Search     SearchConfig
	Cache      CacheConfig
	RateLimit  RateLimitConfig `mapstructure:"ratelimit"`
	Logging    LoggingConfig
	Telemetry  TelemetryConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Environment     string        `mapstructure:"environment"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// MongoDBConfig holds the shared connection string and pool options.
// Stores without their own URI use this one.
type MongoDBConfig struct {
	URI                    string        `mapstructure:"uri"`
	Database               string        `mapstructure:"database"`
	SearchIndex            string        `mapstructure:"search_index"`
	MaxPoolSize            uint64        `mapstructure:"max_pool_size"`
	MinPoolSize            uint64        `mapstructure:"min_pool_size"`
	MaxConnIdleTime        time.Duration `mapstructure:"max_conn_idle_time"`
	ServerSelectionTimeout time.Duration `mapstructure:"server_selection_timeout"`
	ConnectTimeout         time.Duration `mapstructure:"connect_timeout"`
	OperationTimeout       time.Duration `mapstructure:"operation_timeout"`
	RetryWrites            bool          `mapstructure:"retry_writes"`
}

// StoreConfig describes one retailer collection. Stores are queried and
// reported in the order they are listed.
type StoreConfig struct {
	ID         string `mapstructure:"id"`
	Name       string `mapstructure:"name"`
	SiteURL    string `mapstructure:"site_url"`
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

// ComparatifConfig holds the pre-merged cross-store collection configuration
type ComparatifConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	URI            string `mapstructure:"uri"`
	Database       string `mapstructure:"database"`
	Collection     string `mapstructure:"collection"`
	ReferenceField string `mapstructure:"reference_field"`
	// OfferOrder lists store ids in the order their offers are read
	OfferOrder []string `mapstructure:"offer_order"`
}

// SearchConfig holds search and pagination tuning
type SearchConfig struct {
	PageSize          int           `mapstructure:"page_size"`
	MaxPage           int           `mapstructure:"max_page"`
	TextFetchFactor   int           `mapstructure:"text_fetch_factor"`
	FilterFetchFactor int           `mapstructure:"filter_fetch_factor"`
	StoreTimeout      time.Duration `mapstructure:"store_timeout"`
	InStockValue      string        `mapstructure:"in_stock_value"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type            string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL        string        `mapstructure:"redis_url"`
	RedisPrefix     string        `mapstructure:"redis_prefix"`
	FacetTTL        time.Duration `mapstructure:"facet_ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
	Burst int `mapstructure:"burst"`
}

// LoggingConfig holds logger configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Endpoint    string  `mapstructure:"endpoint"`
	ServiceName string  `mapstructure:"service_name"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

// Load loads configuration from the environment, an optional .env file and
// an optional config.yaml
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file. An empty path searches the
// default locations.
func LoadFile(path string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/toprix/")
	}

	v.SetEnvPrefix("TOPRIX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	applyStoreOverrides(&config)

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads ./.env when present. Variables already set in the
// environment win.
func loadEnvFile() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error reading .env file: %w", err)
	}
	return nil
}

// DefaultStores are the retailers queried when no store list is configured
func DefaultStores() []map[string]interface{} {
	return []map[string]interface{}{
		{"id": "tunisianet", "name": "Tunisianet", "site_url": "https://www.tunisianet.com.tn"},
		{"id": "mytek", "name": "Mytek", "site_url": "https://www.mytek.tn"},
		{"id": "spacenet", "name": "Spacenet", "site_url": "https://spacenet.tn"},
	}
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("mongodb.uri", "")
	v.SetDefault("mongodb.database", "Produits")
	v.SetDefault("mongodb.search_index", "Text")
	v.SetDefault("mongodb.max_pool_size", 20)
	v.SetDefault("mongodb.min_pool_size", 2)
	v.SetDefault("mongodb.max_conn_idle_time", "30s")
	v.SetDefault("mongodb.server_selection_timeout", "5s")
	v.SetDefault("mongodb.connect_timeout", "10s")
	v.SetDefault("mongodb.operation_timeout", "20s")
	v.SetDefault("mongodb.retry_writes", true)

	v.SetDefault("stores", DefaultStores())

	v.SetDefault("comparatif.enabled", true)
	v.SetDefault("comparatif.uri", "")
	v.SetDefault("comparatif.database", "Produits")
	v.SetDefault("comparatif.collection", "DB")
	v.SetDefault("comparatif.reference_field", "Réf Mytek")
	v.SetDefault("comparatif.offer_order", []string{"mytek", "tunisianet", "spacenet"})

	v.SetDefault("search.page_size", 12)
	v.SetDefault("search.max_page", 100)
	v.SetDefault("search.text_fetch_factor", 3)
	v.SetDefault("search.filter_fetch_factor", 2)
	v.SetDefault("search.store_timeout", "5s")
	v.SetDefault("search.in_stock_value", "En stock")

	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.redis_prefix", "toprix:")
	v.SetDefault("cache.facet_ttl", "1h")
	v.SetDefault("cache.cleanup_interval", "10m")

	v.SetDefault("ratelimit.per_ip", 120)
	v.SetDefault("ratelimit.burst", 20)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.endpoint", "localhost:4317")
	v.SetDefault("telemetry.service_name", "toprix-backend")
	v.SetDefault("telemetry.sample_ratio", 1.0)
}

// applyStoreOverrides reads TOPRIX_STORE_<ID>_{URI,DATABASE,COLLECTION} and
// fills unset store and comparatif locations from the shared MongoDB section
func applyStoreOverrides(config *Config) {
	for i := range config.Stores {
		s := &config.Stores[i]
		prefix := "TOPRIX_STORE_" + strings.ToUpper(s.ID) + "_"

		if uri := os.Getenv(prefix + "URI"); uri != "" {
			s.URI = uri
		}
		if db := os.Getenv(prefix + "DATABASE"); db != "" {
			s.Database = db
		}
		if coll := os.Getenv(prefix + "COLLECTION"); coll != "" {
			s.Collection = coll
		}

		if s.URI == "" {
			s.URI = config.MongoDB.URI
		}
		if s.Database == "" {
			s.Database = config.MongoDB.Database
		}
		if s.Collection == "" {
			s.Collection = "DB"
		}
		if s.Name == "" {
			s.Name = s.ID
		}
	}

	if config.Comparatif.URI == "" {
		config.Comparatif.URI = config.MongoDB.URI
	}
}

// ComparatifLabels returns the store names used as comparatif field suffixes,
// in offer order. Unknown store ids are skipped.
func (c *Config) ComparatifLabels() []string {
	names := make(map[string]string, len(c.Stores))
	for _, s := range c.Stores {
		names[s.ID] = s.Name
	}

	labels := make([]string, 0, len(c.Comparatif.OfferOrder))
	for _, id := range c.Comparatif.OfferOrder {
		if name, ok := names[id]; ok {
			labels = append(labels, name)
		}
	}
	return labels
}

// validate validates the configuration
func validate(config *Config) error {
	if len(config.Stores) == 0 {
		return fmt.Errorf("at least one store is required")
	}

	seen := make(map[string]bool, len(config.Stores))
	for _, s := range config.Stores {
		if s.ID == "" {
			return fmt.Errorf("store id is required")
		}
		if seen[s.ID] {
			return fmt.Errorf("duplicate store id: %s", s.ID)
		}
		seen[s.ID] = true

		if s.URI == "" {
			return fmt.Errorf("MongoDB URI is required for store %s (set TOPRIX_MONGODB_URI or TOPRIX_STORE_%s_URI)", s.ID, strings.ToUpper(s.ID))
		}
	}

	if config.Comparatif.Enabled && config.Comparatif.URI == "" {
		return fmt.Errorf("comparatif URI is required when comparatif is enabled")
	}

	if config.Search.PageSize <= 0 {
		return fmt.Errorf("search page size must be positive, got: %d", config.Search.PageSize)
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	}

	if config.Logging.Format != "json" && config.Logging.Format != "console" {
		return fmt.Errorf("logging format must be 'json' or 'console', got: %s", config.Logging.Format)
	}

	return nil
}
