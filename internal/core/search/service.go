// Package search runs one-shot feed searches on explicit request.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"Linkfeed/internal/core/links"
)

// Result is the list currently displayed for the last executed search
type Result struct {
	Filter string
	Links  []links.Link
}

// Executor issues search queries and holds the displayed result list.
// Each search replaces the list wholesale; results are never merged.
type Executor struct {
	fetcher links.Fetcher
	logger  *slog.Logger
	current Result
	mu      sync.RWMutex
}

// NewExecutor creates a search executor backed by fetcher
func NewExecutor(fetcher links.Fetcher, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		fetcher: fetcher,
		logger:  logger,
	}
}

// Search fetches links matching filter and replaces the displayed list with them.
// Matching semantics belong to the server. On error the displayed list is left as it was.
func (e *Executor) Search(ctx context.Context, filter string) ([]links.Link, error) {
	found, err := e.fetcher.SearchFeed(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", filter, err)
	}

	replaced := make([]links.Link, len(found))
	for i := range found {
		replaced[i] = found[i].Clone()
	}

	e.mu.Lock()
	e.current = Result{Filter: filter, Links: replaced}
	e.mu.Unlock()

	e.logger.Debug("search executed", "filter", filter, "results", len(replaced))
	return replaced, nil
}

// Current returns the displayed search result
func (e *Executor) Current() Result {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.current
}
