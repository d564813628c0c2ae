// Package feedview turns navigation state into a rendered feed page:
// plan the fetch, read the cache or fetch, then derive the display rows.
package feedview

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"Linkfeed/internal/core/feed"
	"Linkfeed/internal/core/feedsync"
	"Linkfeed/internal/core/links"
)

// Status is the state of the list region
type Status int

const (
	// StatusLoading means the fetch did not resolve before the request was abandoned
	StatusLoading Status = iota
	// StatusError means the fetch failed; the list is replaced by a generic error
	StatusError
	// StatusData means Rows holds the rendered feed
	StatusData
)

func (s Status) String() string {
	switch s {
	case StatusError:
		return "error"
	case StatusData:
		return "data"
	default:
		return "loading"
	}
}

// Row is one display line of the feed
type Row struct {
	ID          string
	URL         string
	Description string
	Author      string
	Age         string
	Number      int
	Votes       int
}

// Page is everything a feed template needs for one navigation state
type Page struct {
	Err      error
	PrevPath string
	NextPath string
	Rows     []Row
	Key      links.FeedKey
	Mode     feed.Mode
	Status   Status
	Page     int
	Count    int
	CanPrev  bool
	CanNext  bool
}

// Service loads and renders feed pages
type Service struct {
	fetcher links.Fetcher
	cache   links.CacheReader
	sync    *feedsync.Synchronizer
	voter   links.Voter
	logger  *slog.Logger
	now     func() time.Time
}

// NewService creates a feed view service.
// The cache is only read here; writes go through sync.
func NewService(fetcher links.Fetcher, cache links.CacheReader, sync *feedsync.Synchronizer, voter links.Voter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		fetcher: fetcher,
		cache:   cache,
		sync:    sync,
		voter:   voter,
		logger:  logger,
		now:     time.Now,
	}
}

// Load renders the feed page for path and pageParam.
// A cached result for the planned key is reused; otherwise the feed is fetched
// and stored. The key becomes the synchronizer's focus either way.
func (s *Service) Load(ctx context.Context, path, pageParam string) *Page {
	return s.load(ctx, path, pageParam, false)
}

// Refresh is Load without the cache read: the feed is always fetched and the
// result replaces whatever was cached under the key.
func (s *Service) Refresh(ctx context.Context, path, pageParam string) *Page {
	return s.load(ctx, path, pageParam, true)
}

func (s *Service) load(ctx context.Context, path, pageParam string, refresh bool) *Page {
	mode := feed.ModeForPath(path)
	key := feed.Plan(path, pageParam)

	p := &Page{
		Mode: mode,
		Key:  key,
		Page: feed.ParsePage(pageParam),
	}

	var (
		result *links.FeedResult
		ok     bool
	)
	if !refresh {
		result, ok = s.cache.Read(key)
	}
	if !ok {
		fetched, err := s.fetcher.FetchFeed(ctx, key)
		if err != nil {
			if ctx.Err() != nil {
				p.Status = StatusLoading
				return p
			}
			s.logger.Error("failed to fetch feed", "key", key.String(), "refresh", refresh, "error", err)
			p.Status = StatusError
			p.Err = err
			return p
		}
		s.sync.Store(key, fetched)
		result = fetched
	}
	s.sync.Focus(key)

	p.Status = StatusData
	p.Count = result.Count
	p.Rows = s.rows(feed.Render(result, mode, feed.PageOffset(path, pageParam)))

	if mode == feed.ModeChronological {
		if next, ok := feed.Next(p.Page, result.Count); ok {
			p.CanNext = true
			p.NextPath = feed.PagePath(next)
		}
		if prev, ok := feed.Previous(p.Page); ok {
			p.CanPrev = true
			p.PrevPath = feed.PagePath(prev)
		}
	}

	return p
}

// Rows renders an unpaginated link list, such as search results, in the order given
func (s *Service) Rows(ls []links.Link) []Row {
	return s.rows(feed.Render(&links.FeedResult{Links: ls}, feed.ModeChronological, 0))
}

func (s *Service) rows(ranked []feed.RankedLink) []Row {
	now := s.now()
	rows := make([]Row, len(ranked))
	for i, r := range ranked {
		rows[i] = Row{
			ID:          r.Link.ID,
			URL:         r.Link.URL,
			Description: r.Link.Description,
			Author:      r.Link.AuthorName(),
			Age:         TimeAgo(r.Link.CreatedAt, now),
			Number:      r.Rank + 1,
			Votes:       r.Link.VoteCount(),
		}
	}
	return rows
}

// Vote casts a vote on linkID from the page at path/pageParam and reconciles
// the confirmed vote set into that page's cached result.
// Only the mutation can fail; reconciliation misses are logged and ignored.
func (s *Service) Vote(ctx context.Context, path, pageParam, linkID string) error {
	if linkID == "" {
		return links.NewValidationError("linkId", "required")
	}

	votes, err := s.voter.Vote(ctx, linkID)
	if err != nil {
		return fmt.Errorf("failed to vote on %s: %w", linkID, err)
	}

	key := feed.Plan(path, pageParam)
	if _, err := s.sync.ApplyVoteConfirmation(key, linkID, votes); err != nil {
		if links.IsSyncMiss(err) {
			s.logger.Debug("vote confirmation not applied", "key", key.String(), "link_id", linkID, "reason", err)
			return nil
		}
		return err
	}
	return nil
}
