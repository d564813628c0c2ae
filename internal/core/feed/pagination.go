package feed

import (
	"fmt"

	"Linkfeed/internal/core/links"
)

// CanAdvance reports whether a next page may be requested.
//
// The bound uses integer division and is inclusive, so a total that is an exact
// multiple of PageSize permits one advance onto an empty page.
func CanAdvance(currentPage, totalCount int) bool {
	return currentPage <= totalCount/links.PageSize
}

// Next returns the next page number, or false when advancing is not allowed
func Next(currentPage, totalCount int) (int, bool) {
	if !CanAdvance(currentPage, totalCount) {
		return currentPage, false
	}
	return currentPage + 1, true
}

// Previous returns the previous page number, or false on the first page
func Previous(currentPage int) (int, bool) {
	if currentPage <= 1 {
		return currentPage, false
	}
	return currentPage - 1, true
}

// PagePath is the navigation target for a chronological page
func PagePath(page int) string {
	return fmt.Sprintf("/%s/%d", chronologicalSegment, page)
}
