package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/Toprix-comparateur/toprix-backend/internal/domain"
)

// Store documents are addressed by 24-character hex identifiers
var objectIDPattern = regexp.MustCompile(`(?i)^[0-9a-f]{24}$`)

// CatalogServiceConfig holds configuration for the catalog service
type CatalogServiceConfig struct {
	PageSize int
	MaxPage  int

	// Over-fetch multipliers applied to the page size per store
	TextFetchFactor   int
	FilterFetchFactor int

	StoreTimeout  time.Duration
	FacetCacheTTL time.Duration
	InStockValue  string
}

// CatalogService runs federated searches and lookups across every store
type CatalogService struct {
	registry   domain.StoreRegistry
	comparatif domain.ComparatifRepository
	cache      domain.CacheRepository

	normalizer *QueryNormalizer
	builder    *PipelineBuilder
	aggregator *ResultAggregator
	relevance  *RelevanceFilter
	formatter  *ResultFormatter
	metrics    *MetricsRecorder
	logger     *zerolog.Logger

	pageSize    int
	maxPage     int
	textFetch   int
	filterFetch int
	facetTTL    time.Duration
	loadTimeout time.Duration

	facetLoads singleflight.Group
}

// NewCatalogService creates a new catalog service with dependencies.
// The comparatif repository and the cache are optional.
func NewCatalogService(
	registry domain.StoreRegistry,
	comparatif domain.ComparatifRepository,
	cache domain.CacheRepository,
	config CatalogServiceConfig,
	logger *zerolog.Logger,
) *CatalogService {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	pageSize := config.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	maxPage := config.MaxPage
	if maxPage <= 0 {
		maxPage = DefaultMaxPage
	}
	textFetch := config.TextFetchFactor
	if textFetch <= 0 {
		textFetch = 3
	}
	filterFetch := config.FilterFetchFactor
	if filterFetch <= 0 {
		filterFetch = 2
	}
	facetTTL := config.FacetCacheTTL
	if facetTTL == 0 {
		facetTTL = 1 * time.Hour
	}

	metrics := NewMetricsRecorder()
	executor := NewStoreExecutor(StoreExecutorConfig{Timeout: config.StoreTimeout}, metrics, logger)

	return &CatalogService{
		registry:    registry,
		comparatif:  comparatif,
		cache:       cache,
		normalizer:  NewQueryNormalizer(logger),
		builder:     NewPipelineBuilder(),
		aggregator:  NewResultAggregator(registry, executor),
		relevance:   NewRelevanceFilter(logger),
		formatter:   NewResultFormatter(ResultFormatterConfig{InStockValue: config.InStockValue}),
		metrics:     metrics,
		logger:      logger,
		pageSize:    pageSize,
		maxPage:     maxPage,
		textFetch:   textFetch,
		filterFetch: filterFetch,
		facetTTL:    facetTTL,
		loadTimeout: executor.timeout,
	}
}

// MaxPage returns the highest reachable page
func (s *CatalogService) MaxPage() int {
	return s.maxPage
}

// SearchProducts runs a federated search.
// Flow: normalize -> build spec -> fan out -> rank/filter -> format -> dedup -> paginate
func (s *CatalogService) SearchProducts(ctx context.Context, req domain.SearchRequest) (domain.PagedResult, error) {
	rawQuery := strings.TrimSpace(req.Query)
	if rawQuery == "" && strings.TrimSpace(req.Category) == "" && strings.TrimSpace(req.Brand) == "" {
		return EmptyPage(s.pageSize), nil
	}

	q := s.normalizer.Normalize(rawQuery, req.Category, req.Brand)
	if rawQuery != "" && q.Cleaned == "" {
		return EmptyPage(s.pageSize), nil
	}

	start := time.Now()

	limit := s.pageSize * s.textFetch
	if q.Class == domain.ClassFilter {
		limit = s.pageSize * s.filterFetch
	}

	spec := s.builder.ForQuery(q, limit)
	_, pool := s.aggregator.Collect(ctx, spec)
	if err := ctx.Err(); err != nil {
		return domain.PagedResult{}, err
	}

	switch q.Class {
	case domain.ClassReference:
		pool, _ = s.relevance.FilterExactMatches(pool)
	case domain.ClassText:
		pool = s.relevance.FilterByRelevance(pool, q.Words, q.WordCount)
		clearRanking(pool)
	default:
		clearRanking(pool)
	}

	products := Deduplicate(s.formatter.FormatProducts(pool))
	result := Paginate(products, req.Page, s.pageSize, s.maxPage)

	s.metrics.RecordSearch(string(q.Class), time.Since(start), len(products))
	s.logger.Info().
		Str("query", q.Cleaned).
		Str("class", string(q.Class)).
		Int("fetched", len(pool)).
		Int("items", len(products)).
		Dur("duration", time.Since(start)).
		Msg("Search completed")

	return result, nil
}

// GetProduct returns the detail view of a product. Hex identifiers address a
// single store document; anything else is a comparatif slug.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.ProductDetail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrInvalidRequest
	}

	if objectIDPattern.MatchString(id) {
		r, err := s.aggregator.Lookup(ctx, id)
		if err != nil {
			return nil, err
		}
		return s.formatter.StoreDetail(*r, id), nil
	}

	if s.comparatif == nil {
		return nil, domain.ErrProductNotFound
	}

	c, err := s.comparatif.FindBySlug(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return nil, domain.ErrProductNotFound
		}
		s.logger.Error().Err(err).Str("slug", id).Msg("Comparatif lookup failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrComparatifUnavailable, err)
	}

	return s.formatter.ComparatifDetail(*c, id), nil
}

// ListStores returns the configured store descriptors in priority order
func (s *CatalogService) ListStores() []domain.Store {
	handles := s.registry.Stores()
	stores := make([]domain.Store, len(handles))
	for i, h := range handles {
		stores[i] = h.Store
	}
	return stores
}
