package mongostore

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"golang.org/x/sync/errgroup"

	"github.com/Toprix-comparateur/toprix-backend/internal/domain"
)

// PoolConfig holds the connection pool settings shared by every client
type PoolConfig struct {
	MaxPoolSize            uint64
	MinPoolSize            uint64
	MaxConnIdleTime        time.Duration
	ServerSelectionTimeout time.Duration
	ConnectTimeout         time.Duration
	OperationTimeout       time.Duration
	RetryWrites            bool
}

// StoreConfig locates one store's product collection
type StoreConfig struct {
	ID          string
	Name        string
	SiteURL     string
	URI         string
	Database    string
	Collection  string
	SearchIndex string
}

// ComparatifConfig locates the comparatif collection
type ComparatifConfig struct {
	URI            string
	Database       string
	Collection     string
	ReferenceField string
	StoreLabels    []string
}

// Registry owns one client per distinct URI and exposes the configured stores
// in priority order. It implements domain.StoreRegistry.
type Registry struct {
	clients    map[string]*mongo.Client
	stores     []domain.StoreHandle
	comparatif *ComparatifCollection
	logger     *zerolog.Logger
}

// NewRegistry connects to every configured store. Stores sharing a URI share a
// client. An unreachable server is logged and left to fail per query.
func NewRegistry(ctx context.Context, pool PoolConfig, stores []StoreConfig, comparatif *ComparatifConfig, logger *zerolog.Logger) (*Registry, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	pool = withPoolDefaults(pool)

	r := &Registry{
		clients: make(map[string]*mongo.Client),
		logger:  logger,
	}

	for _, s := range stores {
		client, err := r.client(ctx, pool, s.URI)
		if err != nil {
			r.Close(ctx)
			return nil, fmt.Errorf("store %s: %w", s.ID, err)
		}

		coll := client.Database(orDefault(s.Database, "Produits")).Collection(orDefault(s.Collection, "DB"))
		r.stores = append(r.stores, domain.StoreHandle{
			Store:   domain.Store{ID: s.ID, Name: s.Name, SiteURL: s.SiteURL},
			Backend: NewCollection(coll, s.SearchIndex),
		})
	}

	if comparatif != nil && comparatif.URI != "" {
		client, err := r.client(ctx, pool, comparatif.URI)
		if err != nil {
			r.Close(ctx)
			return nil, fmt.Errorf("comparatif: %w", err)
		}
		coll := client.Database(orDefault(comparatif.Database, "Produits")).Collection(orDefault(comparatif.Collection, "DB"))
		r.comparatif = NewComparatifCollection(coll, comparatif.ReferenceField, comparatif.StoreLabels)
	}

	return r, nil
}

func withPoolDefaults(pool PoolConfig) PoolConfig {
	if pool.MaxPoolSize == 0 {
		pool.MaxPoolSize = 20
	}
	if pool.MinPoolSize == 0 {
		pool.MinPoolSize = 2
	}
	if pool.MaxConnIdleTime <= 0 {
		pool.MaxConnIdleTime = 30 * time.Second
	}
	if pool.ServerSelectionTimeout <= 0 {
		pool.ServerSelectionTimeout = 5 * time.Second
	}
	if pool.ConnectTimeout <= 0 {
		pool.ConnectTimeout = 10 * time.Second
	}
	if pool.OperationTimeout <= 0 {
		pool.OperationTimeout = 20 * time.Second
	}
	return pool
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func (r *Registry) client(ctx context.Context, pool PoolConfig, uri string) (*mongo.Client, error) {
	if uri == "" {
		return nil, fmt.Errorf("missing connection uri")
	}
	if c, ok := r.clients[uri]; ok {
		return c, nil
	}

	opts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(pool.MaxPoolSize).
		SetMinPoolSize(pool.MinPoolSize).
		SetMaxConnIdleTime(pool.MaxConnIdleTime).
		SetServerSelectionTimeout(pool.ServerSelectionTimeout).
		SetConnectTimeout(pool.ConnectTimeout).
		SetTimeout(pool.OperationTimeout).
		SetRetryWrites(pool.RetryWrites)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pool.ServerSelectionTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		r.logger.Warn().Err(err).Str("host", redactURI(uri)).Msg("MongoDB not reachable at startup")
	} else {
		r.logger.Info().Str("host", redactURI(uri)).Msg("MongoDB connected")
	}

	r.clients[uri] = client
	return client, nil
}

// Stores returns the configured stores in priority order
func (r *Registry) Stores() []domain.StoreHandle {
	out := make([]domain.StoreHandle, len(r.stores))
	copy(out, r.stores)
	return out
}

// Comparatif returns the comparatif repository, or nil when none is configured
func (r *Registry) Comparatif() domain.ComparatifRepository {
	if r.comparatif == nil {
		return nil
	}
	return r.comparatif
}

// Ping checks every server once, concurrently, and reports the outcome per
// store id. Stores sharing a client share its result.
func (r *Registry) Ping(ctx context.Context) map[string]error {
	groups := make(map[*mongo.Client][]string)
	for _, h := range r.stores {
		coll, ok := h.Backend.(*Collection)
		if !ok {
			continue
		}
		client := coll.coll.Database().Client()
		groups[client] = append(groups[client], h.Store.ID)
	}

	return pingGroups(ctx, groups, func(ctx context.Context, c *mongo.Client) error {
		return c.Ping(ctx, readpref.Primary())
	})
}

func pingGroups[K comparable](ctx context.Context, groups map[K][]string, ping func(context.Context, K) error) map[string]error {
	status := make(map[string]error)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for key, ids := range groups {
		key, ids := key, ids
		g.Go(func() error {
			err := ping(gctx, key)
			mu.Lock()
			for _, id := range ids {
				status[id] = err
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return status
}

// Close disconnects every client
func (r *Registry) Close(ctx context.Context) {
	for uri, c := range r.clients {
		if err := c.Disconnect(ctx); err != nil {
			r.logger.Warn().Err(err).Str("host", redactURI(uri)).Msg("MongoDB disconnect failed")
		}
	}
	r.clients = map[string]*mongo.Client{}
}

// redactURI keeps only the host part of a connection string for logs
func redactURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Host
}
