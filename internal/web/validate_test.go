package web

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"Linkfeed/internal/core/links"
)

func TestValidateSubmission(t *testing.T) {
	tests := []struct {
		name        string
		description string
		url         string
		wantErr     bool
	}{
		{"valid", "The Go blog", "https://go.dev/blog", false},
		{"http ok", "plain", "http://example.com", false},
		{"empty description", "", "https://go.dev", true},
		{"too long", strings.Repeat("a", MaxDescriptionGraphemes+1), "https://go.dev", true},
		{"emoji counted as graphemes", strings.Repeat("👍🏽", MaxDescriptionGraphemes), "https://go.dev", false},
		{"missing url", "desc", "", true},
		{"relative url", "desc", "/local", true},
		{"ftp scheme", "desc", "ftp://files.test", true},
		{"javascript", "desc", "javascript:alert(1)", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSubmission(tt.description, tt.url)
			if tt.wantErr {
				assert.True(t, links.IsValidationError(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
