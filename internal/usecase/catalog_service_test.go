package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Toprix-comparateur/toprix-backend/internal/domain"
)

func newTestService(reg domain.StoreRegistry, comparatif domain.ComparatifRepository, cache domain.CacheRepository) *CatalogService {
	return NewCatalogService(reg, comparatif, cache, CatalogServiceConfig{StoreTimeout: time.Second}, nil)
}

func TestCatalogService_SearchProducts_EmptyRequests(t *testing.T) {
	backend := &fakeBackend{records: []domain.RawRecord{rec("1", "x", "1", "")}}
	svc := newTestService(newFakeRegistry(map[string]*fakeBackend{"mytek": backend}, "mytek"), nil, nil)

	testCases := []struct {
		name string
		req  domain.SearchRequest
	}{
		{name: "no parameters", req: domain.SearchRequest{}},
		{name: "blank parameters", req: domain.SearchRequest{Query: "  ", Category: " "}},
		{name: "query cleans to nothing", req: domain.SearchRequest{Query: "?!*"}},
		{name: "query cleans to nothing with a brand", req: domain.SearchRequest{Query: "///", Brand: "hp"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.SearchProducts(context.Background(), tc.req)
			require.NoError(t, err)
			assert.Empty(t, got.Data)
			assert.Equal(t, domain.PageMeta{Page: 1, TotalPages: 0, TotalItems: 0, PerPage: 12}, got.Meta)
		})
	}
	assert.Zero(t, backend.callCount())
}

func TestCatalogService_SearchProducts_EndToEnd(t *testing.T) {
	var indexed []domain.RawRecord
	for i := 0; i < 20; i++ {
		indexed = append(indexed, rec(fmt.Sprintf("a%02d", i), fmt.Sprintf("Apple iPhone 13 Pro %d Go", 128*(i+1)), fmt.Sprintf("%d", 3000+i), fmt.Sprintf("REF%d", i)))
	}
	indexed = append(indexed, rec("a-noise", "Coque silicone", "20", ""))

	backends := map[string]*fakeBackend{
		"mytek": {records: indexed},
		"tunisianet": {
			textErr:  errors.New("$search index Text not found"),
			fallback: []domain.RawRecord{rec("b1", "iPhone 13 Pro reconditionné", "2500", "REF0")},
		},
		"spacenet": {textErr: errors.New("$search index Text not found")},
	}
	reg := newFakeRegistry(backends, "mytek", "tunisianet", "spacenet")
	svc := newTestService(reg, nil, nil)

	got, err := svc.SearchProducts(context.Background(), domain.SearchRequest{Query: "iphone 13 pro", Page: 1})
	require.NoError(t, err)

	assert.Len(t, got.Data, 12)
	assert.Equal(t, 20, got.Meta.TotalItems, "noise dropped and REF0 merged")
	assert.Equal(t, 2, got.Meta.TotalPages)

	assert.Equal(t, "b1", got.Data[0].ID, "cheaper duplicate replaces the first-seen record in place")
	assert.Equal(t, "Tunisianet", got.Data[0].Store)

	assert.Equal(t, domain.SpecText, backends["mytek"].lastCall().Kind)
	assert.Equal(t, 36, backends["mytek"].lastCall().Limit)
	assert.Equal(t, domain.SpecFilter, backends["tunisianet"].lastCall().Kind)
	assert.Equal(t, 2, backends["spacenet"].callCount())
}

func TestCatalogService_SearchProducts_Reference(t *testing.T) {
	backends := map[string]*fakeBackend{
		"mytek": {records: []domain.RawRecord{
			{ID: "m1", Title: "Clim TCL", Price: "1500", Reference: "TAC-12CHSA", Ranking: domain.Ranking{ExactMatch: true}},
			{ID: "m2", Title: "Clim TCL bis", Price: "1400", Reference: "TAC-12CHSAB"},
		}},
		"spacenet": {records: []domain.RawRecord{
			{ID: "s1", Title: "TCL", Price: "1450", Reference: "TAC-12CHSA", Ranking: domain.Ranking{ExactMatch: true}},
		}},
	}
	svc := newTestService(newFakeRegistry(backends, "mytek", "spacenet"), nil, nil)

	got, err := svc.SearchProducts(context.Background(), domain.SearchRequest{Query: "TAC-12CHSA"})
	require.NoError(t, err)

	require.Len(t, got.Data, 1)
	assert.Equal(t, "s1", got.Data[0].ID)
	assert.Equal(t, domain.SpecReference, backends["mytek"].lastCall().Kind)
}

func TestCatalogService_SearchProducts_Filter(t *testing.T) {
	backends := map[string]*fakeBackend{
		"mytek": {records: []domain.RawRecord{rec("m1", "Split", "999", ""), rec("m2", "Split 2", "", "")}},
	}
	svc := newTestService(newFakeRegistry(backends, "mytek"), nil, nil)

	got, err := svc.SearchProducts(context.Background(), domain.SearchRequest{Query: "split", Category: "climatiseur", Page: 1})
	require.NoError(t, err)
	assert.Len(t, got.Data, 2)

	call := backends["mytek"].lastCall()
	assert.Equal(t, domain.SpecFilter, call.Kind)
	assert.Equal(t, 24, call.Limit)
	assert.Len(t, call.Filters, 2)
}

func TestCatalogService_SearchProducts_AllStoresDown(t *testing.T) {
	backends := map[string]*fakeBackend{
		"mytek":    {err: errBackendDown},
		"spacenet": {err: errBackendDown},
	}
	svc := newTestService(newFakeRegistry(backends, "mytek", "spacenet"), nil, nil)

	got, err := svc.SearchProducts(context.Background(), domain.SearchRequest{Query: "ecran"})
	require.NoError(t, err)
	assert.Empty(t, got.Data)
	assert.Equal(t, 1, got.Meta.TotalPages)
}

func TestCatalogService_SearchProducts_CancelledContext(t *testing.T) {
	backends := map[string]*fakeBackend{"mytek": {delay: time.Second}}
	svc := newTestService(newFakeRegistry(backends, "mytek"), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.SearchProducts(ctx, domain.SearchRequest{Query: "ecran"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCatalogService_GetProduct(t *testing.T) {
	hexID := "64b7f0c2a1b2c3d4e5f60718"

	backends := map[string]*fakeBackend{
		"mytek":      {},
		"tunisianet": {byID: map[string]domain.RawRecord{hexID: {ID: hexID, Title: "PC HP", Price: "1200", Brand: "hp"}}},
		"spacenet":   {idErr: errBackendDown},
	}
	comparatif := &fakeComparatif{records: map[string]domain.ComparatifRecord{"lenovo-ideapad-3": comparatifFixture()}}
	svc := newTestService(newFakeRegistry(backends, "mytek", "tunisianet", "spacenet"), comparatif, nil)

	t.Run("hex id found in one store", func(t *testing.T) {
		d, err := svc.GetProduct(context.Background(), hexID)
		require.NoError(t, err)
		assert.Equal(t, "PC HP", d.Name)
		assert.Equal(t, "Hp", d.Brand)
		assert.Equal(t, "Tunisianet", d.Store)
		assert.Equal(t, hexID, d.Slug)
		require.Len(t, d.Offers, 1)
	})

	t.Run("uppercase hex id is still an identifier", func(t *testing.T) {
		_, err := svc.GetProduct(context.Background(), "64B7F0C2A1B2C3D4E5F60719")
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})

	t.Run("comparatif slug", func(t *testing.T) {
		d, err := svc.GetProduct(context.Background(), "lenovo-ideapad-3")
		require.NoError(t, err)
		assert.Equal(t, "lenovo-ideapad-3", d.Slug)
		assert.Len(t, d.Offers, 2)
	})

	t.Run("unknown slug", func(t *testing.T) {
		_, err := svc.GetProduct(context.Background(), "nope")
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})

	t.Run("empty id", func(t *testing.T) {
		_, err := svc.GetProduct(context.Background(), " ")
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})
}

func TestCatalogService_GetProduct_Errors(t *testing.T) {
	t.Run("invalid identifier from a store", func(t *testing.T) {
		backends := map[string]*fakeBackend{"mytek": {idErr: domain.ErrInvalidIdentifier}}
		svc := newTestService(newFakeRegistry(backends, "mytek"), nil, nil)

		_, err := svc.GetProduct(context.Background(), "64b7f0c2a1b2c3d4e5f60718")
		assert.ErrorIs(t, err, domain.ErrInvalidIdentifier)
	})

	t.Run("comparatif backend down", func(t *testing.T) {
		svc := newTestService(&fakeRegistry{}, &fakeComparatif{err: errBackendDown}, nil)

		_, err := svc.GetProduct(context.Background(), "some-slug")
		assert.ErrorIs(t, err, domain.ErrComparatifUnavailable)
	})

	t.Run("no comparatif configured", func(t *testing.T) {
		svc := newTestService(&fakeRegistry{}, nil, nil)

		_, err := svc.GetProduct(context.Background(), "some-slug")
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})
}

func TestCatalogService_ListStores(t *testing.T) {
	reg := newFakeRegistry(map[string]*fakeBackend{"mytek": {}, "spacenet": {}}, "mytek", "spacenet")
	stores := newTestService(reg, nil, nil).ListStores()

	require.Len(t, stores, 2)
	assert.Equal(t, "mytek", stores[0].ID)
	assert.Equal(t, "Spacenet", stores[1].Name)
}
