package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/varkes/adshort/internal/app/model"
)

func TestStatsFoldsClicks(t *testing.T) {
	clicks := newMemClickRepo()
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	addClick := func(age time.Duration, country, referer, device, browser string) {
		require.NoError(t, clicks.Create(context.Background(), &model.Click{
			LinkID:    1,
			Timestamp: now.Add(-age),
			Country:   country,
			Referer:   referer,
			Device:    device,
			Browser:   browser,
		}))
	}

	addClick(1*time.Hour, "DE", "https://news.example.com/a", "Desktop", "Firefox")
	addClick(2*time.Hour, "DE", "https://news.example.com/b", "Mobile", "Chrome")
	addClick(25*time.Hour, "US", "", "Desktop", "Chrome")

	agg := NewAggregator(clicks)
	agg.now = func() time.Time { return now }

	link := &model.Link{ID: 1, ClickCount: 42}
	stats, err := agg.Stats(context.Background(), link, DefaultStatsWindow)
	require.NoError(t, err)

	// TotalClicks is the all-time counter, not the window size.
	assert.Equal(t, int64(42), stats.TotalClicks)

	assert.Equal(t, map[string]int{"2026-08-30": 2, "2026-08-29": 1}, stats.Daily)
	assert.Equal(t, map[string]int{"DE": 2, "US": 1}, stats.Countries)
	assert.Equal(t, map[string]int{"news.example.com": 2, "Direct": 1}, stats.Referrers)
	assert.Equal(t, map[string]int{"Desktop": 2, "Mobile": 1}, stats.Devices)
	assert.Equal(t, map[string]int{"Firefox": 1, "Chrome": 2}, stats.Browsers)
}

func TestStatsWindowExcludesOldClicks(t *testing.T) {
	clicks := newMemClickRepo()
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	require.NoError(t, clicks.Create(context.Background(), &model.Click{
		LinkID: 1, Timestamp: now.Add(-31 * 24 * time.Hour), Country: "JP",
	}))
	require.NoError(t, clicks.Create(context.Background(), &model.Click{
		LinkID: 1, Timestamp: now.Add(-29 * 24 * time.Hour), Country: "JP",
	}))

	agg := NewAggregator(clicks)
	agg.now = func() time.Time { return now }

	stats, err := agg.Stats(context.Background(), &model.Link{ID: 1}, DefaultStatsWindow)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Countries["JP"])
}

func TestStatsEmpty(t *testing.T) {
	agg := NewAggregator(newMemClickRepo())
	stats, err := agg.Stats(context.Background(), &model.Link{ID: 1}, DefaultStatsWindow)
	require.NoError(t, err)

	assert.Zero(t, stats.TotalClicks)
	assert.Empty(t, stats.Daily)
	assert.Empty(t, stats.Countries)
}

func TestStatsBucketsMissingDimensionsAsUnknown(t *testing.T) {
	clicks := newMemClickRepo()
	now := time.Now()
	require.NoError(t, clicks.Create(context.Background(), &model.Click{
		LinkID: 1, Timestamp: now,
	}))

	agg := NewAggregator(clicks)
	stats, err := agg.Stats(context.Background(), &model.Link{ID: 1}, DefaultStatsWindow)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Countries["Unknown"])
	assert.Equal(t, 1, stats.Devices["Unknown"])
	assert.Equal(t, 1, stats.Browsers["Unknown"])
	assert.Equal(t, 1, stats.Referrers["Direct"])
}

func TestReferrerKey(t *testing.T) {
	tests := []struct {
		name    string
		referer string
		want    string
	}{
		{name: "empty", referer: "", want: "Direct"},
		{name: "already direct", referer: "Direct", want: "Direct"},
		{name: "hostname extracted", referer: "https://News.Example.com/some/path?q=1", want: "news.example.com"},
		{name: "localhost", referer: "http://localhost:3000/dev", want: "Direct"},
		{name: "loopback", referer: "http://127.0.0.1/x", want: "Direct"},
		{name: "malformed", referer: "::::not-a-url", want: "Direct"},
		{name: "no host", referer: "/relative/path", want: "Direct"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, referrerKey(tt.referer))
		})
	}
}
