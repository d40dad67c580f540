package usecase

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/Toprix-comparateur/toprix-backend/internal/domain"
)

// ListCategories returns the distinct categories of every store, merged by slug
func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Facet, error) {
	return s.facets(ctx, domain.FieldCategory)
}

// ListBrands returns the distinct brands of every store, merged by slug
func (s *CatalogService) ListBrands(ctx context.Context) ([]domain.Facet, error) {
	return s.facets(ctx, domain.FieldBrand)
}

// CategoryProducts returns one page of the products whose category equals slug
func (s *CatalogService) CategoryProducts(ctx context.Context, slug string, page int) (domain.PagedResult, domain.FacetRef, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return domain.PagedResult{}, domain.FacetRef{}, domain.ErrCategoryNotFound
	}

	pool, err := s.facetProducts(ctx, domain.FieldCategory, slug)
	if err != nil {
		return domain.PagedResult{}, domain.FacetRef{}, err
	}
	if len(pool) == 0 {
		return domain.PagedResult{}, domain.FacetRef{}, domain.ErrCategoryNotFound
	}

	path := ""
	for _, r := range pool {
		if r.CategoryPath != "" {
			path = r.CategoryPath
			break
		}
	}

	ref := domain.FacetRef{Slug: slug, Name: categoryName(path, slug)}
	return Paginate(s.formatter.FormatProducts(pool), page, s.pageSize, s.maxPage), ref, nil
}

// BrandProducts returns one page of the products whose brand equals name
func (s *CatalogService) BrandProducts(ctx context.Context, name string, page int) (domain.PagedResult, domain.FacetRef, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.PagedResult{}, domain.FacetRef{}, domain.ErrBrandNotFound
	}

	pool, err := s.facetProducts(ctx, domain.FieldBrand, name)
	if err != nil {
		return domain.PagedResult{}, domain.FacetRef{}, err
	}
	if len(pool) == 0 {
		return domain.PagedResult{}, domain.FacetRef{}, domain.ErrBrandNotFound
	}

	ref := domain.FacetRef{Slug: strings.ToLower(name), Name: TitleCase(name)}
	return Paginate(s.formatter.FormatProducts(pool), page, s.pageSize, s.maxPage), ref, nil
}

// facetProducts fetches the records whose field equals value in every store.
// Facet pages are not deduplicated.
func (s *CatalogService) facetProducts(ctx context.Context, field, value string) ([]domain.RawRecord, error) {
	spec := s.builder.Facet(field, value, s.pageSize*s.textFetch)
	_, pool := s.aggregator.Collect(ctx, spec)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return pool, nil
}

// facets returns cached merged facets, loading them at most once at a time.
// The shared load outlives a cancelled caller so waiting callers still get
// its result. Facets from a partial answer are served but not cached.
func (s *CatalogService) facets(ctx context.Context, field string) ([]domain.Facet, error) {
	key := "facets:" + field

	if cached, ok := s.cachedFacets(ctx, key); ok {
		s.metrics.RecordFacetCache(field, true)
		return cached, nil
	}
	s.metrics.RecordFacetCache(field, false)

	ch := s.facetLoads.DoChan(key, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.loadTimeout)
		defer cancel()

		perStore, failed := s.aggregator.Facets(loadCtx, field)
		merged := mergeFacets(field, perStore)
		if len(failed) > 0 {
			s.logger.Warn().Strs("failed_stores", failed).Str("field", field).Msg("Serving partial facets uncached")
			return merged, nil
		}

		s.storeFacets(context.WithoutCancel(ctx), key, merged)
		return merged, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]domain.Facet), nil
	}
}

func (s *CatalogService) cachedFacets(ctx context.Context, key string) ([]domain.Facet, bool) {
	if s.cache == nil {
		return nil, false
	}

	data, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, false
	}

	var facets []domain.Facet
	if err := json.Unmarshal(data, &facets); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Discarding unreadable cached facets")
		return nil, false
	}
	return facets, true
}

func (s *CatalogService) storeFacets(ctx context.Context, key string, facets []domain.Facet) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(facets)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.facetTTL); err != nil {
		// Facets are still served, only uncached
		s.logger.Warn().Err(err).Str("key", key).Msg("Failed to cache facets")
	}
}

// mergeFacets merges per-store counts by lower-cased slug, summing counts.
// The display name comes from the first store that reports the value.
func mergeFacets(field string, perStore [][]domain.FacetCount) []domain.Facet {
	index := make(map[string]int)
	merged := []domain.Facet{}

	for _, counts := range perStore {
		for _, c := range counts {
			slug := strings.ToLower(strings.TrimSpace(c.Value))
			if slug == "" {
				continue
			}

			i, ok := index[slug]
			if !ok {
				name := TitleCase(strings.TrimSpace(c.Value))
				if field == domain.FieldCategory {
					name = categoryName(c.Label, slug)
				}
				index[slug] = len(merged)
				merged = append(merged, domain.Facet{ID: slug, Slug: slug, Name: name})
				i = index[slug]
			}
			merged[i].ProductCount += c.Count
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].ProductCount != merged[j].ProductCount {
			return merged[i].ProductCount > merged[j].ProductCount
		}
		return merged[i].Slug < merged[j].Slug
	})
	return merged
}

// categoryName derives a display name from a "Accueil > ... > Name" path,
// falling back to the slug with hyphens turned into spaces
func categoryName(path, slug string) string {
	path = strings.TrimSpace(path)
	if strings.Contains(path, ">") {
		segments := strings.Split(path, ">")
		if last := strings.TrimSpace(segments[len(segments)-1]); last != "" {
			return last
		}
	}
	if path != "" && !strings.Contains(path, ">") {
		return path
	}
	return TitleCase(strings.ReplaceAll(slug, "-", " "))
}
