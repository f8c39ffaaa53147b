package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vitorf997/packing-creator/internal/cache"
	"github.com/vitorf997/packing-creator/internal/labels"
)

const (
	layoutKeyPrefix = "layout:client:"
	layoutGenKey    = "layout:gen"
)

// LayoutCache keeps the resolved layout of each client. A template write can
// change the layout of any client, so those bump a generation counter instead
// of deleting keys one by one. A nil *LayoutCache disables caching.
type LayoutCache struct {
	store cache.Store
	ttl   time.Duration
}

type cachedLayout struct {
	Gen    int64         `json:"gen"`
	Layout labels.Layout `json:"layout"`
}

func NewLayoutCache(store cache.Store, ttl time.Duration) *LayoutCache {
	return &LayoutCache{store: store, ttl: ttl}
}

func (c *LayoutCache) gen(ctx context.Context) int64 {
	var g int64
	if _, err := c.store.Get(ctx, layoutGenKey, &g); err != nil {
		log.Warn().Err(err).Msg("layout cache: read generation")
	}
	return g
}

func (c *LayoutCache) get(ctx context.Context, clientID uuid.UUID) (labels.Layout, bool) {
	if c == nil {
		return labels.Layout{}, false
	}
	var v cachedLayout
	ok, err := c.store.Get(ctx, layoutKeyPrefix+clientID.String(), &v)
	if err != nil {
		log.Warn().Err(err).Str("client_id", clientID.String()).Msg("layout cache: get")
		return labels.Layout{}, false
	}
	if !ok || v.Gen != c.gen(ctx) {
		return labels.Layout{}, false
	}
	return v.Layout, true
}

func (c *LayoutCache) set(ctx context.Context, clientID uuid.UUID, l labels.Layout) {
	if c == nil {
		return
	}
	v := cachedLayout{Gen: c.gen(ctx), Layout: l}
	if err := c.store.Set(ctx, layoutKeyPrefix+clientID.String(), v, c.ttl); err != nil {
		log.Warn().Err(err).Str("client_id", clientID.String()).Msg("layout cache: set")
	}
}

// Invalidate drops the cached layout of one client.
func (c *LayoutCache) Invalidate(ctx context.Context, clientID uuid.UUID) {
	if c == nil {
		return
	}
	if err := c.store.Delete(ctx, layoutKeyPrefix+clientID.String()); err != nil {
		log.Warn().Err(err).Str("client_id", clientID.String()).Msg("layout cache: delete")
	}
}

// InvalidateAll makes every cached layout stale.
func (c *LayoutCache) InvalidateAll(ctx context.Context) {
	if c == nil {
		return
	}
	next := time.Now().UnixNano()
	if err := c.store.Set(ctx, layoutGenKey, next, 0); err != nil {
		log.Warn().Err(err).Int64("generation", next).Msg("layout cache: bump generation")
	}
}
