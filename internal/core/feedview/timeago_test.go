package feedview

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeAgo(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		ago      time.Duration
		expected string
	}{
		{10 * time.Second, "just now"},
		{5 * time.Minute, "5 min ago"},
		{3 * time.Hour, "3 h ago"},
		{26 * time.Hour, "1 day ago"},
		{2 * 24 * time.Hour, "2 days ago"},
		{45 * 24 * time.Hour, "1 mo ago"},
		{400 * 24 * time.Hour, "1 year ago"},
		{800 * 24 * time.Hour, "2 years ago"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, TimeAgo(now.Add(-tt.ago), now))
		})
	}

	assert.Empty(t, TimeAgo(time.Time{}, now))
}
