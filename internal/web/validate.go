package web

import (
	"fmt"
	"net/url"

	"github.com/rivo/uniseg"

	"Linkfeed/internal/core/links"
)

// MaxDescriptionGraphemes bounds the submitted link description
const MaxDescriptionGraphemes = 300

// ValidateSubmission checks a new link's description and URL.
// Length is counted in grapheme clusters so emoji and combined characters count once.
func ValidateSubmission(description, rawURL string) error {
	n := uniseg.GraphemeClusterCount(description)
	if n == 0 {
		return links.NewValidationError("description", "A description is required")
	}
	if n > MaxDescriptionGraphemes {
		return links.NewValidationError("description",
			fmt.Sprintf("Description must be at most %d characters", MaxDescriptionGraphemes))
	}

	if rawURL == "" {
		return links.NewValidationError("url", "A URL is required")
	}
	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return links.NewValidationError("url", "URL must be an absolute http or https address")
	}
	return nil
}
