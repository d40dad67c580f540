package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Toprix-comparateur/toprix-backend/internal/domain"
)

func TestResultAggregator_Collect(t *testing.T) {
	backends := map[string]*fakeBackend{
		"tunisianet": {records: []domain.RawRecord{rec("t1", "a", "10", "")}},
		"mytek":      {records: []domain.RawRecord{rec("m1", "b", "20", ""), rec("m2", "c", "30", "")}},
		"spacenet":   {err: errBackendDown},
	}
	reg := newFakeRegistry(backends, "tunisianet", "mytek", "spacenet")
	agg := NewResultAggregator(reg, NewStoreExecutor(StoreExecutorConfig{Timeout: time.Second}, nil, nil))

	results, pool := agg.Collect(context.Background(), NewPipelineBuilder().Reference("X1", 0, 36))

	require.Len(t, results, 3)
	assert.Equal(t, StatusSuccess, results[0].Status)
	assert.Equal(t, StatusSuccess, results[1].Status)
	assert.Equal(t, StatusFailed, results[2].Status)

	require.Len(t, pool, 3)
	assert.Equal(t, "t1", pool[0].ID)
	assert.Equal(t, "tunisianet", pool[0].Origin.ID)
	assert.Equal(t, "m1", pool[1].ID)
	assert.Equal(t, "mytek", pool[2].Origin.ID)
}

func TestResultAggregator_RunsStoresConcurrently(t *testing.T) {
	delay := 100 * time.Millisecond
	backends := map[string]*fakeBackend{
		"tunisianet": {delay: delay, records: []domain.RawRecord{rec("t1", "a", "1", "")}},
		"mytek":      {delay: delay, records: []domain.RawRecord{rec("m1", "a", "1", "")}},
		"spacenet":   {delay: delay, records: []domain.RawRecord{rec("s1", "a", "1", "")}},
	}
	reg := newFakeRegistry(backends, "tunisianet", "mytek", "spacenet")
	agg := NewResultAggregator(reg, NewStoreExecutor(StoreExecutorConfig{Timeout: time.Second}, nil, nil))

	start := time.Now()
	_, pool := agg.Collect(context.Background(), NewPipelineBuilder().Filter("a", "", "", 24))

	assert.Len(t, pool, 3)
	assert.Less(t, time.Since(start), 3*delay)
}

func TestResultAggregator_SlowStoreDoesNotBlockOthers(t *testing.T) {
	backends := map[string]*fakeBackend{
		"tunisianet": {records: []domain.RawRecord{rec("t1", "a", "1", "")}},
		"mytek":      {delay: time.Second, records: []domain.RawRecord{rec("m1", "a", "1", "")}},
	}
	reg := newFakeRegistry(backends, "tunisianet", "mytek")
	agg := NewResultAggregator(reg, NewStoreExecutor(StoreExecutorConfig{Timeout: 30 * time.Millisecond}, nil, nil))

	results, pool := agg.Collect(context.Background(), NewPipelineBuilder().Reference("X1", 0, 36))

	require.Len(t, pool, 1)
	assert.Equal(t, "t1", pool[0].ID)
	assert.Equal(t, StatusFailed, results[1].Status)
}

func TestResultAggregator_NoStores(t *testing.T) {
	agg := NewResultAggregator(&fakeRegistry{}, NewStoreExecutor(StoreExecutorConfig{}, nil, nil))
	results, pool := agg.Collect(context.Background(), NewPipelineBuilder().Reference("X1", 0, 36))

	assert.Empty(t, results)
	assert.Empty(t, pool)
}

func TestResultAggregator_FacetsReportsFailedStores(t *testing.T) {
	backends := map[string]*fakeBackend{
		"tunisianet": {facets: map[string][]domain.FacetCount{domain.FieldCategory: {{Value: "tv", Count: 3}}}},
		"mytek":      {facetErr: errBackendDown},
		"spacenet":   {},
	}
	reg := newFakeRegistry(backends, "tunisianet", "mytek", "spacenet")
	agg := NewResultAggregator(reg, NewStoreExecutor(StoreExecutorConfig{Timeout: time.Second}, nil, nil))

	perStore, failed := agg.Facets(context.Background(), domain.FieldCategory)

	require.Len(t, perStore, 3)
	assert.Len(t, perStore[0], 1)
	assert.Nil(t, perStore[1])
	assert.Empty(t, perStore[2])
	assert.Equal(t, []string{"mytek"}, failed)
}
