// Package feedsync keeps cached feed results consistent with vote mutations
// and server push events without refetching the whole list.
//
// The Synchronizer is the only writer of the feed cache. Every operation loads
// the cached result for a key, builds a new result value, and writes it back
// under the same key; values read from the cache are never modified in place.
//
// Synchronization misses (nothing cached for the key, or the link lies outside
// the materialized window) are expected and tolerated: the next fetch of the
// page re-establishes consistency.
package feedsync

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"Linkfeed/internal/core/links"
)

// Synchronizer merges vote confirmations and push events into cached feed results
type Synchronizer struct {
	cache    links.Cache
	logger   *slog.Logger
	focused  links.FeedKey
	mu       sync.Mutex
	hasFocus bool
}

// NewSynchronizer creates a synchronizer that owns writes to cache
func NewSynchronizer(cache links.Cache, logger *slog.Logger) *Synchronizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Synchronizer{
		cache:  cache,
		logger: logger,
	}
}

// Focus makes key the target of subsequent push events.
// Results cached under previously focused keys stay cached but stop receiving pushes.
func (s *Synchronizer) Focus(key links.FeedKey) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasFocus && s.focused != key {
		s.logger.Debug("feed focus changed", "from", s.focused.String(), "to", key.String())
	}
	s.focused = key
	s.hasFocus = true
}

// FocusedKey returns the key push events are currently applied to
func (s *Synchronizer) FocusedKey() (links.FeedKey, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.focused, s.hasFocus
}

// Store writes a freshly fetched result, superseding whatever was cached under key
func (s *Synchronizer) Store(key links.FeedKey, result *links.FeedResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Write(key, result)
}

// ApplyVoteConfirmation replaces the vote set of linkID in the result cached
// under key with the server-confirmed votes.
//
// Returns ErrNotCached when nothing is cached for key, and the unchanged
// cached result with ErrLinkNotFound when linkID is outside the window.
func (s *Synchronizer) ApplyVoteConfirmation(key links.FeedKey, linkID string, votes []links.Vote) (*links.FeedResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replaceVotes(key, linkID, votes)
}

// ApplyNewLink prepends link to the result cached under key and increments its count.
// A link already present is treated as applied and skipped.
func (s *Synchronizer) ApplyNewLink(key links.FeedKey, link links.Link) (*links.FeedResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyNewLink(key, link)
}

// applyNewLink must be called with mu held
func (s *Synchronizer) applyNewLink(key links.FeedKey, link links.Link) (*links.FeedResult, error) {
	if link.ID == "" {
		return nil, fmt.Errorf("%w: new link without id", links.ErrMalformedPayload)
	}

	prev, ok := s.cache.Read(key)
	if !ok {
		return nil, links.ErrNotCached
	}

	next := MergeNewLink(prev, link)
	if next == prev {
		s.logger.Debug("new link already applied", "key", key.String(), "link_id", link.ID)
		return prev, nil
	}

	s.cache.Write(key, next)
	return next, nil
}

// ApplyNewVote reconciles a pushed vote. The pushed payload carries the voted
// link with its full vote set, which replaces the cached vote set in place.
func (s *Synchronizer) ApplyNewVote(key links.FeedKey, link links.Link) (*links.FeedResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyNewVote(key, link)
}

// applyNewVote must be called with mu held
func (s *Synchronizer) applyNewVote(key links.FeedKey, link links.Link) (*links.FeedResult, error) {
	if link.ID == "" {
		return nil, fmt.Errorf("%w: voted link without id", links.ErrMalformedPayload)
	}
	return s.replaceVotes(key, link.ID, link.Votes)
}

// replaceVotes must be called with mu held
func (s *Synchronizer) replaceVotes(key links.FeedKey, linkID string, votes []links.Vote) (*links.FeedResult, error) {
	prev, ok := s.cache.Read(key)
	if !ok {
		return nil, links.ErrNotCached
	}

	next, err := MergeVotes(prev, linkID, votes)
	if err != nil {
		return prev, err
	}

	s.cache.Write(key, next)
	return next, nil
}

// HandleEvent applies a push event to the focused key.
// The focus is read and the merge applied under one hold of the lock, so a
// concurrent Focus never lets an event land on the page just left.
// Synchronization misses are logged and swallowed; only malformed events return an error.
func (s *Synchronizer) HandleEvent(ctx context.Context, event *links.PushEvent) error {
	if event == nil || event.Link == nil {
		return fmt.Errorf("%w: push event without link", links.ErrMalformedPayload)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasFocus {
		s.logger.Debug("push event ignored: no feed in view", "kind", event.Kind, "link_id", event.Link.ID)
		return nil
	}
	key := s.focused

	var err error
	switch event.Kind {
	case links.EventNewLink:
		_, err = s.applyNewLink(key, *event.Link)
	case links.EventNewVote:
		_, err = s.applyNewVote(key, *event.Link)
	default:
		// Silently ignore other channels
		return nil
	}

	return s.tolerate(err, key, event.Kind, event.Link.ID)
}

// tolerate swallows synchronization misses
func (s *Synchronizer) tolerate(err error, key links.FeedKey, kind links.EventKind, linkID string) error {
	if err == nil {
		return nil
	}
	if links.IsSyncMiss(err) {
		s.logger.Debug("push event not applied",
			"kind", kind,
			"key", key.String(),
			"link_id", linkID,
			"reason", err)
		return nil
	}
	return err
}
