package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/varkes/adshort/internal/app/model"
	"github.com/varkes/adshort/internal/app/repository"
)

// DefaultStatsWindow bounds the trailing analytics window.
const DefaultStatsWindow = 30 * 24 * time.Hour

// LinkStats holds the folded analytics for one link. TotalClicks is
// the all-time counter; the maps cover the trailing window only.
type LinkStats struct {
	TotalClicks int64          `json:"totalClicks"`
	Daily       map[string]int `json:"dailyClicks"`
	Countries   map[string]int `json:"countryCounts"`
	Referrers   map[string]int `json:"referrerCounts"`
	Devices     map[string]int `json:"deviceCounts"`
	Browsers    map[string]int `json:"browserCounts"`
}

// Aggregator folds recorded clicks into frequency maps. It loads all
// clicks in the window into memory; the window bound keeps that sane.
type Aggregator struct {
	clicks repository.ClickRepository
	now    func() time.Time
}

// NewAggregator returns an Aggregator over the given click store.
func NewAggregator(clicks repository.ClickRepository) *Aggregator {
	return &Aggregator{clicks: clicks, now: time.Now}
}

// Stats aggregates link's clicks over the trailing window. Days are
// keyed by UTC calendar date.
func (a *Aggregator) Stats(ctx context.Context, link *model.Link, window time.Duration) (*LinkStats, error) {
	if window <= 0 {
		window = DefaultStatsWindow
	}

	since := a.now().Add(-window)
	clicks, err := a.clicks.ListSince(ctx, link.ID, since)
	if err != nil {
		return nil, fmt.Errorf("load clicks: %w", err)
	}

	stats := &LinkStats{
		TotalClicks: link.ClickCount,
		Daily:       make(map[string]int),
		Countries:   make(map[string]int),
		Referrers:   make(map[string]int),
		Devices:     make(map[string]int),
		Browsers:    make(map[string]int),
	}

	for _, click := range clicks {
		stats.Daily[click.Timestamp.UTC().Format("2006-01-02")]++
		stats.Countries[orUnknown(click.Country)]++
		stats.Referrers[referrerKey(click.Referer)]++
		stats.Devices[orUnknown(click.Device)]++
		stats.Browsers[orUnknown(click.Browser)]++
	}

	return stats, nil
}

// referrerKey reduces a raw referer to its hostname. Absent, loopback
// and unparseable referers all count as "Direct"; a malformed value
// must never break aggregation.
func referrerKey(referer string) string {
	if referer == "" || referer == "Direct" {
		return "Direct"
	}

	u, err := url.Parse(referer)
	if err != nil || u.Hostname() == "" {
		return "Direct"
	}

	host := strings.ToLower(u.Hostname())
	if host == "localhost" || host == "127.0.0.1" || host == "::1" {
		return "Direct"
	}
	return host
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
