package feedsync

import (
	"Linkfeed/internal/core/links"
)

// MergeNewLink returns prev with link prepended and Count incremented by one.
// If a link with the same id is already present, prev is returned as-is so
// redelivered events are harmless. prev is never modified.
func MergeNewLink(prev *links.FeedResult, link links.Link) *links.FeedResult {
	if prev.IndexOf(link.ID) >= 0 {
		return prev
	}

	next := &links.FeedResult{
		Links: make([]links.Link, 0, len(prev.Links)+1),
		Count: prev.Count + 1,
	}
	next.Links = append(next.Links, link.Clone())
	next.Links = append(next.Links, prev.Links...)
	return next
}

// MergeVotes returns prev with the vote set of linkID replaced by votes.
// Every other link keeps its position and contents. prev is never modified;
// when linkID is outside the window, prev is returned with ErrLinkNotFound.
func MergeVotes(prev *links.FeedResult, linkID string, votes []links.Vote) (*links.FeedResult, error) {
	idx := prev.IndexOf(linkID)
	if idx < 0 {
		return prev, links.ErrLinkNotFound
	}

	next := &links.FeedResult{
		Links: make([]links.Link, len(prev.Links)),
		Count: prev.Count,
	}
	copy(next.Links, prev.Links)

	updated := prev.Links[idx].Clone()
	updated.Votes = dedupeVotes(votes)
	next.Links[idx] = updated
	return next, nil
}

// dedupeVotes copies votes, dropping repeated vote ids (first occurrence wins)
func dedupeVotes(votes []links.Vote) []links.Vote {
	seen := make(map[string]struct{}, len(votes))
	out := make([]links.Vote, 0, len(votes))
	for _, v := range votes {
		if _, dup := seen[v.ID]; dup {
			continue
		}
		seen[v.ID] = struct{}{}
		out = append(out, v)
	}
	return out
}
