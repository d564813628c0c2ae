package links

import "context"

// CacheReader is the read-only view of the FeedResult cache.
// Components other than the synchronizer only ever receive this.
type CacheReader interface {
	// Read returns the FeedResult stored under key, or false when absent.
	// Callers must not mutate the returned value.
	Read(key FeedKey) (*FeedResult, bool)
}

// Cache is the read/write FeedResult cache handle.
// The synchronizer is the only component granted write access.
type Cache interface {
	CacheReader

	// Write stores result under key, replacing any previous value
	Write(key FeedKey, result *FeedResult)
}

// Fetcher executes feed queries against the backend
type Fetcher interface {
	// FetchFeed runs the feed query for key and returns the decoded result
	FetchFeed(ctx context.Context, key FeedKey) (*FeedResult, error)

	// SearchFeed runs the search query with filter as its only parameter
	SearchFeed(ctx context.Context, filter string) ([]Link, error)
}

// Voter executes the vote mutation
type Voter interface {
	// Vote casts a vote on linkID and returns the link's authoritative vote set after the mutation
	Vote(ctx context.Context, linkID string) ([]Vote, error)
}

// Poster executes the link submission mutation
type Poster interface {
	PostLink(ctx context.Context, description, url string) (*Link, error)
}
