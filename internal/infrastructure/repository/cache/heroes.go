package cache

import (
	"context"

	"github.com/riskibarqy/mlbb-squad-tracker/internal/domain/hero"
	basecache "github.com/riskibarqy/mlbb-squad-tracker/internal/platform/cache"
)

const heroListKey = "hero:list"

// HeroCatalog caches the hero list of the wrapped catalog.
type HeroCatalog struct {
	next  hero.Catalog
	cache *basecache.Store[[]hero.Hero]
}

func NewHeroCatalog(next hero.Catalog, cache *basecache.Store[[]hero.Hero]) *HeroCatalog {
	return &HeroCatalog{next: next, cache: cache}
}

func (c *HeroCatalog) ListHeroes(ctx context.Context) ([]hero.Hero, error) {
	items, err := c.cache.GetOrLoad(ctx, heroListKey, func(ctx context.Context) ([]hero.Hero, error) {
		items, err := c.next.ListHeroes(ctx)
		if err != nil {
			return nil, err
		}
		return append([]hero.Hero(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	return append([]hero.Hero(nil), items...), nil
}
