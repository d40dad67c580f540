package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Toprix-comparateur/toprix-backend/internal/domain"
)

var errBackendDown = errors.New("connection refused")

// fakeBackend is a hand-written StoreBackend double
type fakeBackend struct {
	mu sync.Mutex

	records  []domain.RawRecord
	fallback []domain.RawRecord
	err      error
	textErr  error
	delay    time.Duration

	byID     map[string]domain.RawRecord
	idErr    error
	facets     map[string][]domain.FacetCount
	facetErr   error
	facetDelay time.Duration

	calls []domain.QuerySpec
}

func (f *fakeBackend) Execute(ctx context.Context, spec *domain.QuerySpec) ([]domain.RawRecord, error) {
	f.mu.Lock()
	f.calls = append(f.calls, *spec)
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if f.err != nil {
		return nil, f.err
	}
	if spec.Kind == domain.SpecText && f.textErr != nil {
		return nil, f.textErr
	}
	if spec.Kind == domain.SpecFilter && f.fallback != nil {
		return cloneRecords(f.fallback), nil
	}
	return cloneRecords(f.records), nil
}

func (f *fakeBackend) FindByID(ctx context.Context, id string) (*domain.RawRecord, error) {
	if f.idErr != nil {
		return nil, f.idErr
	}
	rec, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return &rec, nil
}

func (f *fakeBackend) Facets(ctx context.Context, field string) ([]domain.FacetCount, error) {
	if f.facetDelay > 0 {
		select {
		case <-time.After(f.facetDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.facetErr != nil {
		return nil, f.facetErr
	}
	return f.facets[field], nil
}

func (f *fakeBackend) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeBackend) lastCall() domain.QuerySpec {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func cloneRecords(in []domain.RawRecord) []domain.RawRecord {
	if in == nil {
		return nil
	}
	out := make([]domain.RawRecord, len(in))
	copy(out, in)
	return out
}

// fakeRegistry is a fixed StoreRegistry
type fakeRegistry struct {
	handles []domain.StoreHandle
}

func (r *fakeRegistry) Stores() []domain.StoreHandle {
	return r.handles
}

func newFakeRegistry(backends map[string]*fakeBackend, order ...string) *fakeRegistry {
	reg := &fakeRegistry{}
	for _, id := range order {
		reg.handles = append(reg.handles, domain.StoreHandle{
			Store:   domain.Store{ID: id, Name: storeNames[id], SiteURL: "https://" + id + ".tn"},
			Backend: backends[id],
		})
	}
	return reg
}

var storeNames = map[string]string{
	"mytek":      "Mytek",
	"tunisianet": "Tunisianet",
	"spacenet":   "Spacenet",
}

// fakeComparatif is a hand-written ComparatifRepository double
type fakeComparatif struct {
	records map[string]domain.ComparatifRecord
	err     error
}

func (f *fakeComparatif) FindBySlug(ctx context.Context, slug string) (*domain.ComparatifRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	rec, ok := f.records[slug]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return &rec, nil
}

// memoryCache is a minimal CacheRepository double
type memoryCache struct {
	mu    sync.Mutex
	items map[string][]byte
	sets  int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[string][]byte)}
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return v, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
	c.sets++
	return nil
}

func (c *memoryCache) setCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sets
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

func (c *memoryCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[key]
	return ok, nil
}

func rec(id, title, price, reference string) domain.RawRecord {
	return domain.RawRecord{ID: id, Title: title, Price: price, Reference: reference}
}
