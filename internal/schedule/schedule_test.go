package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextRun(t *testing.T) {
	hours := []int{8, 12, 14, 18}
	day := func(h, m int) time.Time {
		return time.Date(2026, 3, 10, h, m, 0, 0, time.UTC)
	}

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "midday picks next hour",
			now:  day(13, 0),
			want: day(14, 0),
		},
		{
			name: "after last hour wraps to tomorrow",
			now:  day(19, 0),
			want: time.Date(2026, 3, 11, 8, 0, 0, 0, time.UTC),
		},
		{
			name: "before first hour",
			now:  day(3, 30),
			want: day(8, 0),
		},
		{
			name: "exactly on a trigger hour skips it",
			now:  day(14, 0),
			want: day(18, 0),
		},
		{
			name: "just before a trigger hour",
			now:  day(11, 59),
			want: day(12, 0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextRun(tt.now, hours)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.After(tt.now))
		})
	}
}

func TestNextRunUnsortedHours(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	got := NextRun(now, []int{18, 8, 14, 12})
	assert.Equal(t, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC), got)
}

func TestNextRunNoHours(t *testing.T) {
	got := NextRun(time.Now(), nil)
	assert.True(t, got.IsZero())
}

func TestLabels(t *testing.T) {
	got := Labels([]int{14, 8})
	assert.Equal(t, []string{"8:00 AM UTC", "2:00 PM UTC"}, got)
}
