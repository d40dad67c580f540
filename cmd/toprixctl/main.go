package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Toprix-comparateur/toprix-backend/config"
	"github.com/Toprix-comparateur/toprix-backend/internal/infrastructure/cache"
	"github.com/Toprix-comparateur/toprix-backend/internal/infrastructure/mongostore"
	"github.com/Toprix-comparateur/toprix-backend/internal/usecase"
)

var (
	cfgFile string
	output  string
	cfg     *config.Config
	logger  *zerolog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "toprixctl",
	Short: "Toprix CLI - query the federated product catalog",
	Long: `An operator tool that runs catalog searches and facet listings directly
against the configured store collections, using the same configuration and
ranking as the API server.`,
	SilenceUsage:      true,
	PersistentPreRunE: persistentPreRun,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml or ./config/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "Output format: table or json")
}

func persistentPreRun(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "help" || cmd.Name() == "completion" {
		return nil
	}

	if output != "table" && output != "json" {
		return fmt.Errorf("invalid output format: %s (use 'table' or 'json')", output)
	}

	var err error
	cfg, err = config.LoadFile(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger = initLogger(cfg.Logging, os.Stderr)
	return nil
}

// initLogger writes to stderr so table and JSON output stay clean
func initLogger(cfg config.LoggingConfig, out io.Writer) *zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if level < zerolog.WarnLevel {
		level = zerolog.WarnLevel
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: out}).Level(level).With().Timestamp().Logger()
	return &log
}

// openCatalog connects the stores and builds the catalog service. The returned
// function releases the connections.
func openCatalog(ctx context.Context) (*usecase.CatalogService, func(), error) {
	registry, err := mongostore.NewRegistryFromConfig(ctx, cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("store registry: %w", err)
	}

	memoryCache := cache.NewMemoryCache(cfg.Cache.CleanupInterval)

	service := usecase.NewCatalogService(
		registry,
		registry.Comparatif(),
		memoryCache,
		usecase.CatalogServiceConfig{
			PageSize:          cfg.Search.PageSize,
			MaxPage:           cfg.Search.MaxPage,
			TextFetchFactor:   cfg.Search.TextFetchFactor,
			FilterFetchFactor: cfg.Search.FilterFetchFactor,
			StoreTimeout:      cfg.Search.StoreTimeout,
			FacetCacheTTL:     cfg.Cache.FacetTTL,
			InStockValue:      cfg.Search.InStockValue,
		},
		logger,
	)

	closeFn := func() {
		_ = memoryCache.Close()
		registry.Close(context.Background())
	}
	return service, closeFn, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
