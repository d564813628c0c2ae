package links

import (
	"fmt"
	"time"
)

const (
	// PageSize is the number of links shown per page of the chronological feed
	PageSize = 5

	// RankedWindow is the size of the single window fetched for the ranked feed.
	// It is larger than a page so client-side ranking has something to sort.
	RankedWindow = 100
)

// OrderBy is the server-side sort key sent with a feed query
type OrderBy string

const (
	// OrderNone leaves ordering to the server (ranked feed, sorted client-side)
	OrderNone OrderBy = ""
	// OrderCreatedAtDesc sorts newest first (chronological feed)
	OrderCreatedAtDesc OrderBy = "createdAt_DESC"
)

// UserRef is a reference to a user. Name is only populated for link authors.
type UserRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Vote is a single upvote on a link
type Vote struct {
	ID   string  `json:"id"`
	User UserRef `json:"user"`
}

// Link is a submitted item in the feed
type Link struct {
	CreatedAt   time.Time `json:"createdAt"`
	PostedBy    *UserRef  `json:"postedBy,omitempty"` // nil when the author is unknown
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Description string    `json:"description"`
	Votes       []Vote    `json:"votes"`
}

// AuthorName returns the author's display name, or "Unknown" when absent
func (l *Link) AuthorName() string {
	if l.PostedBy == nil || l.PostedBy.Name == "" {
		return "Unknown"
	}
	return l.PostedBy.Name
}

// VoteCount returns the number of votes on the link
func (l *Link) VoteCount() int {
	return len(l.Votes)
}

// Clone returns a copy of the link that shares no mutable state with l
func (l Link) Clone() Link {
	out := l
	if l.PostedBy != nil {
		author := *l.PostedBy
		out.PostedBy = &author
	}
	out.Votes = CloneVotes(l.Votes)
	return out
}

// CloneVotes copies a vote slice. A nil input yields an empty, non-nil slice.
func CloneVotes(votes []Vote) []Vote {
	out := make([]Vote, len(votes))
	copy(out, votes)
	return out
}

// EventKind names the push channel an event arrived on
type EventKind string

const (
	// EventNewLink is delivered when a link is created
	EventNewLink EventKind = "newLink"
	// EventNewVote is delivered when a vote is recorded; it carries the voted link
	EventNewVote EventKind = "newVote"
)

// PushEvent is a decoded server push. Link is the created link for
// EventNewLink, and the voted link with its full vote set for EventNewVote.
type PushEvent struct {
	Link *Link
	Kind EventKind
}

// FeedKey identifies one materialized FeedResult in the cache.
// Two keys with any differing field are distinct cache entries.
type FeedKey struct {
	OrderBy OrderBy
	Offset  int
	Limit   int
}

// String renders the key for logs
func (k FeedKey) String() string {
	order := string(k.OrderBy)
	if order == "" {
		order = "none"
	}
	return fmt.Sprintf("feed(skip=%d,first=%d,orderBy=%s)", k.Offset, k.Limit, order)
}

// Variables returns the GraphQL variables for a FeedQuery with this key.
// orderBy is sent as null when no server ordering is requested.
func (k FeedKey) Variables() map[string]any {
	vars := map[string]any{
		"first":   k.Limit,
		"skip":    k.Offset,
		"orderBy": nil,
	}
	if k.OrderBy != OrderNone {
		vars["orderBy"] = string(k.OrderBy)
	}
	return vars
}

// FeedResult is the cached response of one feed query.
// Links are in fetch order, which is not necessarily display order.
// Count is the server's total for the unpaginated query.
type FeedResult struct {
	Links []Link `json:"links"`
	Count int    `json:"count"`
}

// Clone returns a deep copy of the result
func (r *FeedResult) Clone() *FeedResult {
	if r == nil {
		return nil
	}
	out := &FeedResult{
		Links: make([]Link, len(r.Links)),
		Count: r.Count,
	}
	for i := range r.Links {
		out.Links[i] = r.Links[i].Clone()
	}
	return out
}

// IndexOf returns the position of the link with the given id, or -1
func (r *FeedResult) IndexOf(linkID string) int {
	for i := range r.Links {
		if r.Links[i].ID == linkID {
			return i
		}
	}
	return -1
}
