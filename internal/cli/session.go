package cli

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.trai.ch/zerr"

	"github.com/matzehuels/catup/internal/config"
	"github.com/matzehuels/catup/pkg/cache"
	"github.com/matzehuels/catup/pkg/catalog"
	"github.com/matzehuels/catup/pkg/catalogs/ghrepos"
	"github.com/matzehuels/catup/pkg/integrations"
	"github.com/matzehuels/catup/pkg/integrations/github"
	"github.com/matzehuels/catup/pkg/observability"
	"github.com/matzehuels/catup/pkg/prefetch"
)

// session holds the resources of one add or update run.
type session struct {
	cfg    *config.Config
	logger *log.Logger
	runID  string

	// cache persists prefetch results across runs.
	cache *cache.Store
	// runCache memoizes mutable upstream state for this run only.
	runCache *cache.Store
	stats    *cacheStats

	kind    *ghrepos.Kind
	catalog catalog.Store[ghrepos.Entry]

	closers []func(context.Context) error
}

// openSession builds the cache, catalog and fetchers described by the
// configuration.
func (c *CLI) openSession(ctx context.Context) (_ *session, err error) {
	runID := uuid.NewString()[:8]
	s := &session{
		cfg:    c.cfg,
		runID:  runID,
		logger: c.logger.With("run", runID),
		stats:  &cacheStats{},
	}
	defer func() {
		if err != nil {
			_ = s.Close(context.WithoutCancel(ctx))
		}
	}()

	if s.cache, err = openCache(ctx, s.cfg, s.logger, s.stats); err != nil {
		return nil, err
	}
	s.closers = append(s.closers, s.cache.Close)
	s.runCache = cache.Open(cache.NewNullBackend(),
		cache.WithLogger(s.logger),
		cache.WithHooks(s.stats),
	)

	store, closeCatalog, err := openCatalog(ctx, s.cfg)
	if err != nil {
		return nil, err
	}
	s.catalog = store
	if closeCatalog != nil {
		s.closers = append(s.closers, closeCatalog)
	}

	httpOpts := []integrations.ClientOption{
		integrations.WithLogger(s.logger),
		integrations.WithHTTPHooks(observability.LogHTTPHooks{Logger: s.logger}),
	}
	if c.HTTPClient != nil {
		httpOpts = append(httpOpts, integrations.WithHTTPClient(c.HTTPClient))
	}
	gh := github.NewClient(s.runCache.Namespace(github.Namespace), github.Config{
		Token:   s.cfg.GitHubToken,
		BaseURL: s.cfg.GitHubAPIURL,
	}, httpOpts...)

	prefetchOpts := []prefetch.Option{prefetch.WithLogger(s.logger)}
	if c.Runner != nil {
		prefetchOpts = append(prefetchOpts, prefetch.WithRunner(c.Runner))
	}
	pf := prefetch.New(s.cache, prefetchOpts...)

	s.kind = ghrepos.NewKind(s.cfg.InputFile, gh, pf)
	s.logger.Debug("session ready",
		"manifest", s.cfg.InputFile,
		"catalog", s.cfg.CatalogBackend,
		"cache", cacheLabel(s.cfg),
		"graphql", s.cfg.GitHubToken != "")
	return s, nil
}

// Close flushes the caches and releases every backend, in reverse order of
// opening.
func (s *session) Close(ctx context.Context) error {
	if s.stats != nil {
		s.logger.Debug("cache summary", "hits", s.stats.hits.Load(), "misses", s.stats.misses.Load(), "corrupt", s.stats.corrupt.Load())
	}
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

func cacheLabel(cfg *config.Config) string {
	if cfg.NoCache {
		return "disabled"
	}
	return cfg.CacheBackend
}

// openCacheBackend returns the configured persistent cache backend.
func openCacheBackend(ctx context.Context, cfg *config.Config) (cache.Backend, error) {
	if cfg.NoCache {
		return cache.NewNullBackend(), nil
	}
	switch cfg.CacheBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, zerr.With(zerr.Wrap(err, "connect to redis"), "addr", cfg.RedisAddr)
		}
		return cache.NewRedisBackend(client, cache.DefaultRedisPrefix), nil
	case "bolt":
		dir, err := cfg.ResolvedCacheDir()
		if err != nil {
			return nil, zerr.Wrap(err, "resolve cache directory")
		}
		return cache.OpenBolt(filepath.Join(dir, cache.BoltFileName))
	default:
		dir, err := cfg.ResolvedCacheDir()
		if err != nil {
			return nil, zerr.Wrap(err, "resolve cache directory")
		}
		return cache.NewFileBackend(dir)
	}
}

func openCache(ctx context.Context, cfg *config.Config, logger *log.Logger, stats *cacheStats) (*cache.Store, error) {
	backend, err := openCacheBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	opts := []cache.Option{
		cache.WithLogger(logger),
		cache.WithHooks(observability.MultiCacheHooks(
			observability.LogCacheHooks{Logger: logger},
			stats,
		)),
	}
	if cfg.SingleFlight {
		opts = append(opts, cache.WithSingleFlight())
	}
	return cache.Open(backend, opts...), nil
}

// openCatalog returns the configured catalog store and, for remote stores,
// a function releasing the connection.
func openCatalog(ctx context.Context, cfg *config.Config) (catalog.Store[ghrepos.Entry], func(context.Context) error, error) {
	if cfg.CatalogBackend != "mongo" {
		return catalog.NewJSONFile[ghrepos.Entry](cfg.OutputFile), nil, nil
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, nil, zerr.Wrap(err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, nil, zerr.Wrap(err, "ping mongodb")
	}
	coll := client.Database(cfg.MongoDatabase).Collection(cfg.MongoCollection)
	return catalog.NewMongo[ghrepos.Entry](coll), client.Disconnect, nil
}

// cacheStats counts cache lookups across the stores of one session.
type cacheStats struct {
	hits, misses, corrupt atomic.Int64
}

func (s *cacheStats) OnCacheHit(context.Context, string) {
	s.hits.Add(1)
}

func (s *cacheStats) OnCacheMiss(context.Context, string) {
	s.misses.Add(1)
}

func (s *cacheStats) OnCacheSet(context.Context, string, int) {}

func (s *cacheStats) OnCacheCorrupt(context.Context, string, string, error) {
	s.corrupt.Add(1)
}

var _ observability.CacheHooks = (*cacheStats)(nil)
