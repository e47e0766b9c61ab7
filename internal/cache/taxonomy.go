// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// taxonomy.go caches the flat category list in Valkey. Every category
// mutation invalidates the whole entry; the list is small and read far
// more often than it changes.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"annotadmin/internal/models"
)

const (
	// categoriesKey is the Valkey key holding the JSON category list.
	categoriesKey = "taxonomy:categories"

	// DefaultTaxonomyTTL is how long the cached list lives without an
	// invalidation.
	DefaultTaxonomyTTL = 10 * time.Minute
)

// LoadFunc reads the category list from the database.
type LoadFunc func() ([]models.Category, error)

// TaxonomyCache is a read-through cache for the category list. A nil
// Valkey client disables caching but still collapses concurrent loads.
//
// Every Invalidate bumps a generation. A load only writes its list back
// when no invalidation happened while it ran, so a list read before a
// mutation committed never outlives that mutation.
type TaxonomyCache struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
	gen    atomic.Uint64

	store func(ctx context.Context, cats []models.Category)
}

// NewTaxonomyCache creates a cache backed by the given Valkey client.
func NewTaxonomyCache(client *redis.Client, ttl time.Duration) *TaxonomyCache {
	if ttl == 0 {
		ttl = DefaultTaxonomyTTL
	}
	tc := &TaxonomyCache{client: client, ttl: ttl}
	tc.store = tc.set
	return tc
}

// Categories returns the cached list, calling load on a miss. Concurrent
// misses share a single load. Cache errors are logged and fall through
// to load.
func (tc *TaxonomyCache) Categories(ctx context.Context, load LoadFunc) ([]models.Category, error) {
	if cats, ok := tc.get(ctx); ok {
		return cats, nil
	}

	v, err, shared := tc.group.Do(categoriesKey, func() (any, error) {
		gen := tc.gen.Load()
		cats, err := load()
		if err != nil {
			return nil, err
		}
		if tc.gen.Load() != gen {
			slog.Debug("taxonomy cache fill skipped after invalidation")
			return cats, nil
		}
		tc.store(ctx, cats)
		return cats, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		slog.Debug("taxonomy cache load shared")
	}

	// Callers may modify the slice; hand each its own copy.
	src := v.([]models.Category)
	out := make([]models.Category, len(src))
	copy(out, src)
	return out, nil
}

// Invalidate drops the cached list. Call after every category mutation.
func (tc *TaxonomyCache) Invalidate(ctx context.Context) {
	tc.gen.Add(1)
	tc.group.Forget(categoriesKey)
	if tc.client == nil {
		return
	}
	if err := tc.client.Del(ctx, categoriesKey).Err(); err != nil {
		slog.Warn("taxonomy cache invalidate error", "error", err)
		return
	}
	slog.Debug("taxonomy cache invalidated")
}

func (tc *TaxonomyCache) get(ctx context.Context) ([]models.Category, bool) {
	if tc.client == nil {
		return nil, false
	}
	val, err := tc.client.Get(ctx, categoriesKey).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("taxonomy cache get error", "error", err)
		return nil, false
	}

	var cats []models.Category
	if err := json.Unmarshal(val, &cats); err != nil {
		slog.Warn("taxonomy cache decode error", "error", err)
		return nil, false
	}
	slog.Debug("taxonomy cache hit", "categories", len(cats))
	return cats, true
}

func (tc *TaxonomyCache) set(ctx context.Context, cats []models.Category) {
	if tc.client == nil {
		return
	}
	payload, err := json.Marshal(cats)
	if err != nil {
		slog.Warn("taxonomy cache encode error", "error", err)
		return
	}
	if err := tc.client.Set(ctx, categoriesKey, payload, tc.ttl).Err(); err != nil {
		slog.Warn("taxonomy cache set error", "error", err)
	}
}
