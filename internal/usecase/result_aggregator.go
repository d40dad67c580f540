package usecase

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/Toprix-comparateur/toprix-backend/internal/domain"
)

const tracerName = "github.com/Toprix-comparateur/toprix-backend/internal/usecase"

// ResultAggregator fans a query out to every configured store and collects
// the tagged records into one pool
type ResultAggregator struct {
	registry domain.StoreRegistry
	executor *StoreExecutor
	tracer   trace.Tracer
}

// NewResultAggregator creates a new result aggregator
func NewResultAggregator(registry domain.StoreRegistry, executor *StoreExecutor) *ResultAggregator {
	return &ResultAggregator{
		registry: registry,
		executor: executor,
		tracer:   otel.Tracer(tracerName),
	}
}

// Collect runs spec on every store concurrently and returns the per-store
// results in store order, plus all records concatenated in that order.
func (a *ResultAggregator) Collect(ctx context.Context, spec *domain.QuerySpec) ([]StoreResult, []domain.RawRecord) {
	ctx, span := a.tracer.Start(ctx, "catalog.collect",
		trace.WithAttributes(attribute.String("spec.kind", spec.Kind.String())))
	defer span.End()

	results := fanOut(ctx, a.registry.Stores(), func(ctx context.Context, h domain.StoreHandle) StoreResult {
		ctx, span := a.tracer.Start(ctx, "catalog.store_query",
			trace.WithAttributes(attribute.String("store", h.Store.ID)))
		defer span.End()

		res := a.executor.Execute(ctx, h, spec)
		span.SetAttributes(
			attribute.String("status", string(res.Status)),
			attribute.Bool("degraded", res.Degraded),
			attribute.Int("records", len(res.Records)),
		)
		if res.Err != nil {
			span.RecordError(res.Err)
			span.SetStatus(codes.Error, res.Err.Error())
		}
		return res
	})

	total := 0
	for _, r := range results {
		total += len(r.Records)
	}
	pool := make([]domain.RawRecord, 0, total)
	for _, r := range results {
		pool = append(pool, r.Records...)
	}

	span.SetAttributes(attribute.Int("records", total))
	return results, pool
}

type lookupResult struct {
	record *domain.RawRecord
	err    error
}

// Lookup asks every store for the record with the given identifier. The first
// hit in store order wins. A malformed identifier is reported as is.
func (a *ResultAggregator) Lookup(ctx context.Context, id string) (*domain.RawRecord, error) {
	ctx, span := a.tracer.Start(ctx, "catalog.lookup", trace.WithAttributes(attribute.String("id", id)))
	defer span.End()

	results := fanOut(ctx, a.registry.Stores(), func(ctx context.Context, h domain.StoreHandle) lookupResult {
		r, err := a.executor.Lookup(ctx, h, id)
		return lookupResult{record: r, err: err}
	})

	for _, r := range results {
		if r.err == nil && r.record != nil {
			return r.record, nil
		}
		if errors.Is(r.err, domain.ErrInvalidIdentifier) {
			return nil, r.err
		}
	}
	return nil, domain.ErrProductNotFound
}

type facetResult struct {
	counts []domain.FacetCount
	err    error
}

// Facets collects the per-store value counts of field, in store order, and
// the ids of the stores that failed to answer
func (a *ResultAggregator) Facets(ctx context.Context, field string) ([][]domain.FacetCount, []string) {
	ctx, span := a.tracer.Start(ctx, "catalog.facets", trace.WithAttributes(attribute.String("field", field)))
	defer span.End()

	handles := a.registry.Stores()
	results := fanOut(ctx, handles, func(ctx context.Context, h domain.StoreHandle) facetResult {
		counts, err := a.executor.Facets(ctx, h, field)
		return facetResult{counts: counts, err: err}
	})

	perStore := make([][]domain.FacetCount, len(results))
	var failed []string
	for i, r := range results {
		if r.err != nil {
			failed = append(failed, handles[i].Store.ID)
			continue
		}
		perStore[i] = r.counts
	}

	if len(failed) > 0 {
		span.SetAttributes(attribute.StringSlice("failed_stores", failed))
	}
	return perStore, failed
}

// fanOut calls fn once per store with one worker per store. Each worker writes
// only its own slot, so the returned slice keeps store order. Workers never
// return errors, so one store cannot cancel the others.
func fanOut[T any](ctx context.Context, handles []domain.StoreHandle, fn func(context.Context, domain.StoreHandle) T) []T {
	out := make([]T, len(handles))
	if len(handles) == 0 {
		return out
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(len(handles))

	for i, h := range handles {
		i, h := i, h
		g.Go(func() error {
			out[i] = fn(gctx, h)
			return nil
		})
	}
	_ = g.Wait()

	return out
}
