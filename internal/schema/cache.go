package schema

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/roach88/termstore/internal/errs"
	"github.com/roach88/termstore/internal/ids"
)

// Default cache capacities.
const (
	DefaultDynamicCapacity = 3000
	DefaultStaticCapacity  = 1000
)

// CacheOption configures a Cache.
type CacheOption func(*cacheOptions)

type cacheOptions struct {
	dynamicCapacity int
	staticCapacity  int
	logger          *slog.Logger
}

// WithCapacity sets the sizes of the dynamic and static tiers.
func WithCapacity(dynamic, static int) CacheOption {
	return func(o *cacheOptions) {
		o.dynamicCapacity = dynamic
		o.staticCapacity = static
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) CacheOption {
	return func(o *cacheOptions) {
		o.logger = logger
	}
}

// Cache holds usage descriptions in two bounded tiers: authoritative
// descriptions of dynamic assemblages, and descriptions mocked for
// fixed-shape ones. A missing key is computed at most once however many
// callers ask for it concurrently.
//
// Thread-safety: all methods are safe for concurrent use.
type Cache struct {
	src    Source
	logger *slog.Logger

	dynamic *lru.Cache[ids.Nid, *UsageDescription]
	static  *lru.Cache[ids.Nid, *UsageDescription]
	flight  singleflight.Group

	// generation advances on Invalidate; loads started under an older
	// generation are not stored.
	mu         sync.Mutex
	generation atomic.Uint64
}

// NewCache creates a cache reading from src.
func NewCache(src Source, opts ...CacheOption) (*Cache, error) {
	o := cacheOptions{
		dynamicCapacity: DefaultDynamicCapacity,
		staticCapacity:  DefaultStaticCapacity,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	dynamic, err := lru.New[ids.Nid, *UsageDescription](o.dynamicCapacity)
	if err != nil {
		return nil, errs.WrapConfiguration(err, "dynamic cache capacity %d", o.dynamicCapacity)
	}
	static, err := lru.New[ids.Nid, *UsageDescription](o.staticCapacity)
	if err != nil {
		return nil, errs.WrapConfiguration(err, "static cache capacity %d", o.staticCapacity)
	}
	return &Cache{src: src, logger: o.logger, dynamic: dynamic, static: static}, nil
}

// Get returns the description of assemblage, trying in order the
// authoritative read, a mock from the assemblage's type metadata, and a mock
// from an existing instance. Only ErrUndescribed moves on to the next
// strategy; the last strategy's failure is returned. Concurrent callers for
// the same assemblage share one computation.
func (c *Cache) Get(ctx context.Context, assemblage ids.Nid) (*UsageDescription, error) {
	if d, ok := c.cached(assemblage); ok {
		return d, nil
	}
	gen := c.generation.Load()
	key := strconv.FormatUint(gen, 10) + "/" + strconv.FormatInt(int64(assemblage), 10)
	// The flight runs detached from any one caller's cancellation; each
	// caller stops waiting on its own ctx.
	ch := c.flight.DoChan(key, func() (interface{}, error) {
		return c.load(context.WithoutCancel(ctx), assemblage, gen)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*UsageDescription), nil
	}
}

func (c *Cache) cached(assemblage ids.Nid) (*UsageDescription, bool) {
	if d, ok := c.dynamic.Get(assemblage); ok {
		return d, true
	}
	return c.static.Get(assemblage)
}

func (c *Cache) load(ctx context.Context, assemblage ids.Nid, gen uint64) (*UsageDescription, error) {
	// A flight for this key may have finished between the caller's cache
	// check and this one starting.
	if d, ok := c.cached(assemblage); ok {
		return d, nil
	}
	c.logger.Debug("schema cache miss", "assemblage", assemblage)

	strategies := []struct {
		name string
		read func(context.Context, Source, ids.Nid) (*UsageDescription, error)
	}{
		{"definition", Read},
		{"type metadata", MockFromMetadata},
		{"instance", MockFromInstance},
	}
	var err error
	for _, s := range strategies {
		var d *UsageDescription
		d, err = s.read(ctx, c.src, assemblage)
		if err == nil {
			c.logger.Debug("schema described",
				"assemblage", assemblage,
				"strategy", s.name,
				"version_type", d.VersionType.String(),
				"columns", len(d.Columns))
			c.store(assemblage, d, gen)
			return d, nil
		}
		if !errs.Is(err, ErrUndescribed) {
			return nil, err
		}
	}
	return nil, err
}

func (c *Cache) store(assemblage ids.Nid, d *UsageDescription, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation.Load() != gen {
		return
	}
	if d.Dynamic() {
		c.dynamic.Add(assemblage, d)
	} else {
		c.static.Add(assemblage, d)
	}
}

// IsDynamic reports whether assemblage defines a dynamic semantic, reading
// and caching its description when needed. Absence of any description is
// false, not an error.
func (c *Cache) IsDynamic(ctx context.Context, assemblage ids.Nid) (bool, error) {
	d, err := c.Get(ctx, assemblage)
	if err != nil {
		if errs.Is(err, ErrUndescribed) {
			return false, nil
		}
		return false, err
	}
	return d.Dynamic(), nil
}

// IsDynamicFast answers from the warm cache, falling back to a scan of the
// assemblage's descriptions. It never reads columns and never fills the
// cache, so it is safe to call while metadata is still being loaded.
func (c *Cache) IsDynamicFast(ctx context.Context, assemblage ids.Nid) (bool, error) {
	if _, ok := c.dynamic.Peek(assemblage); ok {
		return true, nil
	}
	if _, ok := c.static.Peek(assemblage); ok {
		return false, nil
	}
	return hasDefinition(ctx, c.src, assemblage)
}

// Invalidate drops every cached description in both tiers.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation.Add(1)
	c.dynamic.Purge()
	c.static.Purge()
	c.logger.Info("schema cache invalidated")
}

// Len returns the number of cached dynamic and static descriptions.
func (c *Cache) Len() (dynamic, static int) {
	return c.dynamic.Len(), c.static.Len()
}
