package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/Toprix-comparateur/toprix-backend/internal/domain"
)

// StoreStatus is the outcome of one store query
type StoreStatus string

const (
	StatusSuccess StoreStatus = "success"
	StatusEmpty   StoreStatus = "empty"
	StatusFailed  StoreStatus = "failed"
)

// StoreResult is the typed outcome of running a spec against one store.
// A failed store carries its error and no records.
type StoreResult struct {
	Store    domain.Store
	Records  []domain.RawRecord
	Status   StoreStatus
	Degraded bool
	Err      error
}

// StoreExecutorConfig holds configuration for the store executor
type StoreExecutorConfig struct {
	// Timeout bounds each attempt against a store
	Timeout time.Duration
}

// StoreExecutor runs query specifications against a single store with
// fallback and error isolation
type StoreExecutor struct {
	timeout time.Duration
	metrics *MetricsRecorder
	logger  *zerolog.Logger
}

// NewStoreExecutor creates a new store executor
func NewStoreExecutor(config StoreExecutorConfig, metrics *MetricsRecorder, logger *zerolog.Logger) *StoreExecutor {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if metrics == nil {
		metrics = NewMetricsRecorder()
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &StoreExecutor{
		timeout: timeout,
		metrics: metrics,
		logger:  logger,
	}
}

// Execute runs spec against the store. It never returns an error: failures are
// logged and reported through the result status.
func (e *StoreExecutor) Execute(ctx context.Context, handle domain.StoreHandle, spec *domain.QuerySpec) StoreResult {
	result := StoreResult{Store: handle.Store}

	records, err := e.attempt(ctx, handle, spec)
	if err != nil && spec.Kind == domain.SpecText && ctx.Err() == nil {
		e.logger.Warn().
			Err(err).
			Str("store", handle.Store.ID).
			Str("query", spec.Text).
			Msg("Text search unavailable, falling back to substring match")

		e.metrics.RecordFallback(handle.Store.ID)
		result.Degraded = true
		records, err = e.attempt(ctx, handle, spec.SubstringFallback())
	}

	if err != nil {
		e.logger.Error().
			Err(err).
			Str("store", handle.Store.ID).
			Str("kind", spec.Kind.String()).
			Bool("degraded", result.Degraded).
			Msg("Store query failed")

		result.Status = StatusFailed
		result.Err = err
		e.metrics.RecordStoreResult(handle.Store.ID, result.Status)
		return result
	}

	for i := range records {
		records[i].Origin = handle.Store
	}
	result.Records = records

	if len(records) == 0 {
		result.Status = StatusEmpty
	} else {
		result.Status = StatusSuccess
	}
	e.metrics.RecordStoreResult(handle.Store.ID, result.Status)

	e.logger.Debug().
		Str("store", handle.Store.ID).
		Str("kind", spec.Kind.String()).
		Int("records", len(records)).
		Bool("degraded", result.Degraded).
		Msg("Store query completed")

	return result
}

// attempt runs one query under the per-store timeout
func (e *StoreExecutor) attempt(ctx context.Context, handle domain.StoreHandle, spec *domain.QuerySpec) ([]domain.RawRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	records, err := handle.Backend.Execute(ctx, spec)
	e.metrics.RecordStoreQuery(handle.Store.ID, spec.Kind.String(), time.Since(start))

	return records, err
}

// Lookup fetches one record by identifier under the per-store timeout.
// A found record is tagged with the store.
func (e *StoreExecutor) Lookup(ctx context.Context, handle domain.StoreHandle, id string) (*domain.RawRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	r, err := handle.Backend.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrProductNotFound) {
			e.logger.Error().Err(err).Str("store", handle.Store.ID).Str("id", id).Msg("Product lookup failed")
		}
		return nil, err
	}

	r.Origin = handle.Store
	return r, nil
}

// Facets counts distinct field values in one store. Failures are logged and
// returned so callers can tell an outage from a store without values.
func (e *StoreExecutor) Facets(ctx context.Context, handle domain.StoreHandle, field string) ([]domain.FacetCount, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	counts, err := handle.Backend.Facets(ctx, field)
	e.metrics.RecordStoreQuery(handle.Store.ID, "facet_"+field, time.Since(start))
	if err != nil {
		e.logger.Error().Err(err).Str("store", handle.Store.ID).Str("field", field).Msg("Facet aggregation failed")
		e.metrics.RecordStoreResult(handle.Store.ID, StatusFailed)
		return nil, err
	}
	return counts, nil
}
