package feed

import (
	"slices"

	"Linkfeed/internal/core/links"
)

// RankedLink pairs a link with its zero-based display rank
type RankedLink struct {
	Link links.Link
	Rank int
}

// Render derives the display sequence for result.
//
// Chronological mode keeps fetch order and offsets ranks by pageOffset.
// Ranked mode sorts a copy by descending vote count; equal counts keep their
// fetch order so repeated renders of the same result are identical. pageOffset
// is ignored in ranked mode.
//
// result.Links is never reordered or modified.
func Render(result *links.FeedResult, mode Mode, pageOffset int) []RankedLink {
	if result == nil || len(result.Links) == 0 {
		return nil
	}

	ordered := slices.Clone(result.Links)
	if mode == ModeRanked {
		pageOffset = 0
		slices.SortStableFunc(ordered, func(a, b links.Link) int {
			return len(b.Votes) - len(a.Votes)
		})
	}

	out := make([]RankedLink, len(ordered))
	for i := range ordered {
		out[i] = RankedLink{
			Link: ordered[i],
			Rank: i + pageOffset,
		}
	}
	return out
}
