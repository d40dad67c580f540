package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Run("loads with defaults when only the MongoDB URI is set", func(t *testing.T) {
		t.Setenv("TOPRIX_MONGODB_URI", "mongodb://localhost:27017")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "8000" {
			t.Errorf("Server.Port = %s, want 8000", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.Cache.Type != "memory" {
			t.Errorf("Cache.Type = %s, want memory", cfg.Cache.Type)
		}
		if cfg.Cache.FacetTTL != time.Hour {
			t.Errorf("Cache.FacetTTL = %v, want 1h", cfg.Cache.FacetTTL)
		}
		if cfg.Search.PageSize != 12 {
			t.Errorf("Search.PageSize = %d, want 12", cfg.Search.PageSize)
		}
		if cfg.Search.MaxPage != 100 {
			t.Errorf("Search.MaxPage = %d, want 100", cfg.Search.MaxPage)
		}
		if cfg.Search.StoreTimeout != 5*time.Second {
			t.Errorf("Search.StoreTimeout = %v, want 5s", cfg.Search.StoreTimeout)
		}
		if cfg.MongoDB.MaxPoolSize != 20 {
			t.Errorf("MongoDB.MaxPoolSize = %d, want 20", cfg.MongoDB.MaxPoolSize)
		}
		if cfg.RateLimit.PerIP != 120 {
			t.Errorf("RateLimit.PerIP = %d, want 120", cfg.RateLimit.PerIP)
		}

		wantIDs := []string{"tunisianet", "mytek", "spacenet"}
		if len(cfg.Stores) != len(wantIDs) {
			t.Fatalf("len(Stores) = %d, want %d", len(cfg.Stores), len(wantIDs))
		}
		for i, id := range wantIDs {
			s := cfg.Stores[i]
			if s.ID != id {
				t.Errorf("Stores[%d].ID = %s, want %s", i, s.ID, id)
			}
			if s.URI != "mongodb://localhost:27017" {
				t.Errorf("Stores[%d].URI = %s, want shared URI", i, s.URI)
			}
			if s.Database != "Produits" || s.Collection != "DB" {
				t.Errorf("Stores[%d] location = %s.%s, want Produits.DB", i, s.Database, s.Collection)
			}
		}

		if cfg.Comparatif.URI != "mongodb://localhost:27017" {
			t.Errorf("Comparatif.URI = %s, want shared URI", cfg.Comparatif.URI)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		t.Setenv("TOPRIX_MONGODB_URI", "mongodb://shared:27017")
		t.Setenv("TOPRIX_STORE_MYTEK_URI", "mongodb://mytek:27017")
		t.Setenv("TOPRIX_STORE_MYTEK_COLLECTION", "produits")
		t.Setenv("TOPRIX_SERVER_PORT", "9090")
		t.Setenv("TOPRIX_SERVER_ENVIRONMENT", "production")
		t.Setenv("TOPRIX_CACHE_TYPE", "redis")
		t.Setenv("TOPRIX_CACHE_REDIS_URL", "redis://localhost:6379")
		t.Setenv("TOPRIX_CACHE_FACET_TTL", "24h")
		t.Setenv("TOPRIX_SEARCH_PAGE_SIZE", "24")
		t.Setenv("TOPRIX_LOGGING_FORMAT", "console")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Server.Environment != "production" {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		if cfg.Cache.Type != "redis" {
			t.Errorf("Cache.Type = %s, want redis", cfg.Cache.Type)
		}
		if cfg.Cache.FacetTTL != 24*time.Hour {
			t.Errorf("Cache.FacetTTL = %v, want 24h", cfg.Cache.FacetTTL)
		}
		if cfg.Search.PageSize != 24 {
			t.Errorf("Search.PageSize = %d, want 24", cfg.Search.PageSize)
		}
		if cfg.Logging.Format != "console" {
			t.Errorf("Logging.Format = %s, want console", cfg.Logging.Format)
		}

		for _, s := range cfg.Stores {
			switch s.ID {
			case "mytek":
				if s.URI != "mongodb://mytek:27017" || s.Collection != "produits" {
					t.Errorf("mytek = %s %s, want per-store override", s.URI, s.Collection)
				}
			default:
				if s.URI != "mongodb://shared:27017" {
					t.Errorf("%s.URI = %s, want shared URI", s.ID, s.URI)
				}
			}
		}
	})

	t.Run("fails validation when no MongoDB URI is configured", func(t *testing.T) {
		t.Setenv("TOPRIX_MONGODB_URI", "")

		_, err := Load()
		if err == nil {
			t.Fatal("Load() error = nil, want error for missing MongoDB URI")
		}
		want := "invalid configuration: MongoDB URI is required for store tunisianet (set TOPRIX_MONGODB_URI or TOPRIX_STORE_TUNISIANET_URI)"
		if err.Error() != want {
			t.Errorf("Load() error = %v, want %q", err, want)
		}
	})

	t.Run("fails validation for invalid cache type", func(t *testing.T) {
		t.Setenv("TOPRIX_MONGODB_URI", "mongodb://localhost:27017")
		t.Setenv("TOPRIX_CACHE_TYPE", "invalid")

		if _, err := Load(); err == nil {
			t.Error("Load() error = nil, want error for invalid cache type")
		}
	})

	t.Run("fails validation when redis URL missing for redis cache", func(t *testing.T) {
		t.Setenv("TOPRIX_MONGODB_URI", "mongodb://localhost:27017")
		t.Setenv("TOPRIX_CACHE_TYPE", "redis")

		if _, err := Load(); err == nil {
			t.Error("Load() error = nil, want error for missing Redis URL")
		}
	})
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
mongodb:
  uri: mongodb://file:27017
stores:
  - id: mytek
    name: Mytek
    site_url: https://www.mytek.tn
  - id: spacenet
    name: Spacenet
    site_url: https://spacenet.tn
    uri: mongodb://spacenet:27017
comparatif:
  enabled: false
search:
  max_page: 50
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v, want nil", err)
	}

	if len(cfg.Stores) != 2 {
		t.Fatalf("len(Stores) = %d, want 2", len(cfg.Stores))
	}
	if cfg.Stores[0].URI != "mongodb://file:27017" {
		t.Errorf("Stores[0].URI = %s, want shared URI from file", cfg.Stores[0].URI)
	}
	if cfg.Stores[1].URI != "mongodb://spacenet:27017" {
		t.Errorf("Stores[1].URI = %s, want own URI", cfg.Stores[1].URI)
	}
	if cfg.Comparatif.Enabled {
		t.Error("Comparatif.Enabled = true, want false")
	}
	if cfg.Search.MaxPage != 50 {
		t.Errorf("Search.MaxPage = %d, want 50", cfg.Search.MaxPage)
	}
	if cfg.Search.PageSize != 12 {
		t.Errorf("Search.PageSize = %d, want default 12", cfg.Search.PageSize)
	}
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("returns nil when .env file doesn't exist", func(t *testing.T) {
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)

		os.Chdir(t.TempDir())

		if err := loadEnvFile(); err != nil {
			t.Errorf("loadEnvFile() error = %v, want nil when file doesn't exist", err)
		}
	})

	t.Run("loads variables from .env file", func(t *testing.T) {
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)

		os.Chdir(t.TempDir())

		envContent := `
# Comment line
TEST_VAR_1=value1
TEST_VAR_2=value2

# TEST_COMMENTED=should_not_load
`
		if err := os.WriteFile(".env", []byte(envContent), 0644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		os.Unsetenv("TEST_VAR_1")
		os.Unsetenv("TEST_VAR_2")
		os.Unsetenv("TEST_COMMENTED")
		defer func() {
			os.Unsetenv("TEST_VAR_1")
			os.Unsetenv("TEST_VAR_2")
		}()

		if err := loadEnvFile(); err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		if os.Getenv("TEST_VAR_1") != "value1" {
			t.Errorf("TEST_VAR_1 = %s, want value1", os.Getenv("TEST_VAR_1"))
		}
		if os.Getenv("TEST_VAR_2") != "value2" {
			t.Errorf("TEST_VAR_2 = %s, want value2", os.Getenv("TEST_VAR_2"))
		}
		if os.Getenv("TEST_COMMENTED") != "" {
			t.Errorf("TEST_COMMENTED should not be loaded from comment")
		}
	})

	t.Run("doesn't override existing environment variables", func(t *testing.T) {
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)

		os.Chdir(t.TempDir())

		t.Setenv("TEST_OVERRIDE", "existing-value")

		if err := os.WriteFile(".env", []byte("TEST_OVERRIDE=new-value"), 0644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		if err := loadEnvFile(); err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		if os.Getenv("TEST_OVERRIDE") != "existing-value" {
			t.Errorf("TEST_OVERRIDE = %s, want existing-value (should not override)", os.Getenv("TEST_OVERRIDE"))
		}
	})
}

func TestComparatifLabels(t *testing.T) {
	cfg := &Config{
		Stores: []StoreConfig{
			{ID: "tunisianet", Name: "Tunisianet"},
			{ID: "mytek", Name: "Mytek"},
		},
		Comparatif: ComparatifConfig{OfferOrder: []string{"mytek", "tunisianet", "spacenet"}},
	}

	got := cfg.ComparatifLabels()
	if len(got) != 2 || got[0] != "Mytek" || got[1] != "Tunisianet" {
		t.Errorf("ComparatifLabels() = %v, want [Mytek Tunisianet]", got)
	}
}

func validConfig() *Config {
	return &Config{
		Stores:  []StoreConfig{{ID: "mytek", URI: "mongodb://localhost"}},
		Search:  SearchConfig{PageSize: 12},
		Cache:   CacheConfig{Type: "memory"},
		Logging: LoggingConfig{Format: "json"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid configuration", mutate: func(*Config) {}},
		{name: "no stores", mutate: func(c *Config) { c.Stores = nil }, wantErr: true},
		{name: "empty store id", mutate: func(c *Config) { c.Stores[0].ID = "" }, wantErr: true},
		{
			name: "duplicate store id",
			mutate: func(c *Config) {
				c.Stores = append(c.Stores, StoreConfig{ID: "mytek", URI: "mongodb://other"})
			},
			wantErr: true,
		},
		{name: "store without URI", mutate: func(c *Config) { c.Stores[0].URI = "" }, wantErr: true},
		{name: "comparatif without URI", mutate: func(c *Config) { c.Comparatif.Enabled = true }, wantErr: true},
		{
			name:   "comparatif with URI",
			mutate: func(c *Config) { c.Comparatif = ComparatifConfig{Enabled: true, URI: "mongodb://c"} },
		},
		{name: "zero page size", mutate: func(c *Config) { c.Search.PageSize = 0 }, wantErr: true},
		{name: "invalid cache type", mutate: func(c *Config) { c.Cache.Type = "invalid-type" }, wantErr: true},
		{
			name:   "redis cache with URL",
			mutate: func(c *Config) { c.Cache = CacheConfig{Type: "redis", RedisURL: "redis://localhost:6379"} },
		},
		{name: "redis cache without URL", mutate: func(c *Config) { c.Cache.Type = "redis" }, wantErr: true},
		{name: "invalid log format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
