// Package store holds the in-memory FeedResult cache shared by the feed view
// and the synchronizer.
package store

import (
	"errors"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"Linkfeed/internal/core/links"
)

// ErrInvalidCacheSize is returned when the cache size is not positive
var ErrInvalidCacheSize = errors.New("feed cache size must be positive")

// FeedCache stores FeedResults keyed by the exact fetch parameters.
// The least recently used page is evicted once size entries are held;
// an evicted page is simply refetched the next time it is viewed.
type FeedCache struct {
	entries *lru.Cache[links.FeedKey, *links.FeedResult]
	logger  *slog.Logger
}

var _ links.Cache = (*FeedCache)(nil)

// NewFeedCache creates a cache holding at most size feed results
func NewFeedCache(size int, logger *slog.Logger) (*FeedCache, error) {
	if size <= 0 {
		return nil, ErrInvalidCacheSize
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &FeedCache{logger: logger}
	entries, err := lru.NewWithEvict(size, func(key links.FeedKey, _ *links.FeedResult) {
		c.logger.Debug("feed cache evicted", "key", key.String())
	})
	if err != nil {
		return nil, err
	}
	c.entries = entries
	return c, nil
}

// Read returns the result cached under key
func (c *FeedCache) Read(key links.FeedKey) (*links.FeedResult, bool) {
	return c.entries.Get(key)
}

// Write replaces the result cached under key
func (c *FeedCache) Write(key links.FeedKey, result *links.FeedResult) {
	if result == nil {
		return
	}
	c.entries.Add(key, result)

	c.logger.Debug("feed cache updated",
		"key", key.String(),
		"links", len(result.Links),
		"count", result.Count)
}

// Len returns the number of cached feed results
func (c *FeedCache) Len() int {
	return c.entries.Len()
}
