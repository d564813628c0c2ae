// Package feed derives feed query parameters from navigation state and
// derives display order from cached feed results. Everything here is pure:
// no I/O and no access to the cache.
package feed

import (
	"strconv"
	"strings"

	"Linkfeed/internal/core/links"
)

// Mode is the feed display strategy
type Mode int

const (
	// ModeRanked shows a single window sorted client-side by vote count
	ModeRanked Mode = iota
	// ModeChronological shows server-sorted pages, newest first
	ModeChronological
)

func (m Mode) String() string {
	if m == ModeChronological {
		return "new"
	}
	return "top"
}

// chronologicalSegment is the first path segment of the chronological view (/new/{page})
const chronologicalSegment = "new"

// ModeForPath returns the feed mode a navigation path denotes.
// Any path whose first segment is "new" is chronological; everything else is ranked.
func ModeForPath(path string) Mode {
	first, _, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	if first == chronologicalSegment {
		return ModeChronological
	}
	return ModeRanked
}

// ParsePage reads the leading base-10 integer of a page parameter, so "2abc"
// is page 2. Leading spaces and a sign are allowed. Absent, digitless or
// non-positive values yield page 1.
func ParsePage(pageParam string) int {
	s := strings.TrimLeft(pageParam, " \t\n\r")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 1
	}

	page, err := strconv.Atoi(s[:end])
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// Plan maps navigation state to concrete fetch parameters
func Plan(path, pageParam string) links.FeedKey {
	if ModeForPath(path) == ModeChronological {
		page := ParsePage(pageParam)
		return links.FeedKey{
			Offset:  (page - 1) * links.PageSize,
			Limit:   links.PageSize,
			OrderBy: links.OrderCreatedAtDesc,
		}
	}

	return links.FeedKey{
		Offset:  0,
		Limit:   links.RankedWindow,
		OrderBy: links.OrderNone,
	}
}

// PageOffset is the display-rank offset for the given navigation state.
// It is always 0 for the ranked feed.
func PageOffset(path, pageParam string) int {
	if ModeForPath(path) != ModeChronological {
		return 0
	}
	return (ParsePage(pageParam) - 1) * links.PageSize
}
