// Package cache keeps read-through copies of catalog entries and list pages in Redis.
// Cached entries carry counters, so every ledger change invalidates them and the TTL
// bounds how long a write racing that invalidation can serve stale counts.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/catalog"
	"github.com/fekuna/omnipos-catalog-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/cache"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/metrics"
	"go.uber.org/zap"
)

const (
	DefaultTTL = 5 * time.Second
	MaxTTL     = 30 * time.Second
)

type EntryCache struct {
	redis   *cache.RedisClient
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  logger.ZapLogger
}

func NewEntryCache(redis *cache.RedisClient, ttl time.Duration, m *metrics.Metrics, log logger.ZapLogger) *EntryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if ttl > MaxTTL {
		log.Warn("catalog cache ttl capped", zap.Duration("requested", ttl), zap.Duration("ttl", MaxTTL))
		ttl = MaxTTL
	}
	return &EntryCache{redis: redis, ttl: ttl, metrics: m, logger: log}
}

var _ catalog.Cache = (*EntryCache)(nil)

func entryKey(tenantID, id string) string {
	return fmt.Sprintf("catalog:entry:%s:%s", tenantID, id)
}

func listPrefix(tenantID string) string {
	return fmt.Sprintf("catalog:list:%s", tenantID)
}

type listPage struct {
	Entries []model.CatalogEntry `json:"entries"`
	Count   int                  `json:"count"`
}

func (c *EntryCache) GetEntry(ctx context.Context, tenantID, id string) (*model.CatalogEntry, bool) {
	var e model.CatalogEntry
	hit, err := c.redis.GetJSON(ctx, entryKey(tenantID, id), &e)
	if err != nil {
		c.logger.Warn("entry cache read failed", zap.String("entry_id", id), zap.Error(err))
		return nil, false
	}
	c.metrics.RecordCacheLookup(hit)
	if !hit {
		return nil, false
	}
	return &e, true
}

func (c *EntryCache) SetEntry(ctx context.Context, e *model.CatalogEntry) {
	if err := c.redis.SetJSON(ctx, entryKey(e.TenantID, e.ID), e, c.ttl); err != nil {
		c.logger.Warn("entry cache write failed", zap.String("entry_id", e.ID), zap.Error(err))
	}
}

func (c *EntryCache) GetList(ctx context.Context, f *dto.EntryFilters) ([]model.CatalogEntry, int, bool) {
	key, err := cache.HashKey(listPrefix(f.TenantID), f)
	if err != nil {
		return nil, 0, false
	}
	var page listPage
	hit, err := c.redis.GetJSON(ctx, key, &page)
	if err != nil {
		c.logger.Warn("list cache read failed", zap.String("key", key), zap.Error(err))
		return nil, 0, false
	}
	c.metrics.RecordCacheLookup(hit)
	if !hit {
		return nil, 0, false
	}
	return page.Entries, page.Count, true
}

func (c *EntryCache) SetList(ctx context.Context, f *dto.EntryFilters, entries []model.CatalogEntry, count int) {
	key, err := cache.HashKey(listPrefix(f.TenantID), f)
	if err != nil {
		return
	}
	if err := c.redis.SetJSON(ctx, key, listPage{Entries: entries, Count: count}, c.ttl); err != nil {
		c.logger.Warn("list cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// InvalidateEntry drops the entry and every cached list page of its tenant.
func (c *EntryCache) InvalidateEntry(ctx context.Context, tenantID, id string) error {
	if err := c.redis.Delete(ctx, entryKey(tenantID, id)); err != nil {
		return err
	}
	return c.redis.DeletePattern(ctx, listPrefix(tenantID)+":*")
}
