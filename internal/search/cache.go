// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
)

// Cache memoizes successful searches in a fixed-size LRU keyed by
// Query.Key. Failed searches are not cached.
type Cache struct {
	next   Searcher
	lru    *lru.Cache
	logger *zap.Logger
}

// NewCache wraps next with an LRU of the given size.
func NewCache(next Searcher, size int, logger *zap.Logger) (*Cache, error) {
	if size <= 0 {
		size = 100
	}
	c, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("creating search cache: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{next: next, lru: c, logger: logger}, nil
}

// Search implements Searcher.
func (c *Cache) Search(ctx context.Context, query Query) (SearchOutput, error) {
	key := query.Key()
	if v, ok := c.lru.Get(key); ok {
		c.logger.Debug("search cache hit", zap.String("query", key))
		return v.(SearchOutput), nil
	}
	out, err := c.next.Search(ctx, query)
	if err != nil {
		return out, err
	}
	c.lru.Add(key, out)
	return out, nil
}

// Len returns the number of cached queries.
func (c *Cache) Len() int { return c.lru.Len() }
