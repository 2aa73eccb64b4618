package data

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartOfDay(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Moscow")
	assert.NoError(t, err)

	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "mid day",
			in:   time.Date(2025, 6, 1, 15, 42, 7, 123, time.UTC),
			want: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "already midnight",
			in:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			want: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "just before midnight",
			in:   time.Date(2025, 6, 1, 23, 59, 59, 999999999, time.UTC),
			want: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "keeps location",
			in:   time.Date(2025, 6, 2, 1, 30, 0, 0, loc),
			want: time.Date(2025, 6, 2, 0, 0, 0, 0, loc),
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := StartOfDay(tc.in)
			assert.True(t, tc.want.Equal(got), "want %v, got %v", tc.want, got)
			assert.Equal(t, tc.want.Location(), got.Location())
		})
	}
}

func TestFixedTimeProvider(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := NewFixedTimeProvider(base)
	assert.Equal(t, base, clock.Now())

	clock.AddTime(time.Hour)
	assert.Equal(t, base.Add(time.Hour), clock.Now())

	clock.SetTime(base)
	assert.Equal(t, base, clock.Now())
}
