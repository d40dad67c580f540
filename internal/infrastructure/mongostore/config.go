package mongostore

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Toprix-comparateur/toprix-backend/config"
)

// NewRegistryFromConfig connects the stores and the comparatif collection
// described by the application configuration
func NewRegistryFromConfig(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*Registry, error) {
	return NewRegistry(ctx, PoolFromConfig(cfg), StoresFromConfig(cfg), ComparatifFromConfig(cfg), logger)
}

// PoolFromConfig maps the MongoDB section to pool options
func PoolFromConfig(cfg *config.Config) PoolConfig {
	return PoolConfig{
		MaxPoolSize:            cfg.MongoDB.MaxPoolSize,
		MinPoolSize:            cfg.MongoDB.MinPoolSize,
		MaxConnIdleTime:        cfg.MongoDB.MaxConnIdleTime,
		ServerSelectionTimeout: cfg.MongoDB.ServerSelectionTimeout,
		ConnectTimeout:         cfg.MongoDB.ConnectTimeout,
		OperationTimeout:       cfg.MongoDB.OperationTimeout,
		RetryWrites:            cfg.MongoDB.RetryWrites,
	}
}

// StoresFromConfig maps the store list, in priority order
func StoresFromConfig(cfg *config.Config) []StoreConfig {
	stores := make([]StoreConfig, 0, len(cfg.Stores))
	for _, s := range cfg.Stores {
		stores = append(stores, StoreConfig{
			ID:          s.ID,
			Name:        s.Name,
			SiteURL:     s.SiteURL,
			URI:         s.URI,
			Database:    s.Database,
			Collection:  s.Collection,
			SearchIndex: cfg.MongoDB.SearchIndex,
		})
	}
	return stores
}

// ComparatifFromConfig returns nil when the comparatif is disabled
func ComparatifFromConfig(cfg *config.Config) *ComparatifConfig {
	if !cfg.Comparatif.Enabled {
		return nil
	}
	return &ComparatifConfig{
		URI:            cfg.Comparatif.URI,
		Database:       cfg.Comparatif.Database,
		Collection:     cfg.Comparatif.Collection,
		ReferenceField: cfg.Comparatif.ReferenceField,
		StoreLabels:    cfg.ComparatifLabels(),
	}
}
