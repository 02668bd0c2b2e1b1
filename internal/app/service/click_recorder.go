package service

import (
	"context"
	"fmt"
	"time"

	"github.com/varkes/adshort/internal/app/model"
	"github.com/varkes/adshort/internal/app/repository"
	infraprom "github.com/varkes/adshort/internal/infra/prometheus"
)

// ClickMeta carries the request metadata attached to a click.
type ClickMeta struct {
	IP        string
	UserAgent string
	Referer   string
	Country   string
	Timestamp time.Time
}

// ClickRecorder stores click records and bumps the link counter.
//
// Recording must never fail a redirect: callers log and swallow the
// returned error. The counter increment is a single atomic add at the
// store level, so concurrent clicks never lose updates.
type ClickRecorder struct {
	links  repository.LinkRepository
	clicks repository.ClickRepository
}

// NewClickRecorder returns a recorder over the given stores.
func NewClickRecorder(links repository.LinkRepository, clicks repository.ClickRepository) *ClickRecorder {
	return &ClickRecorder{links: links, clicks: clicks}
}

// Record appends one Click for linkID and increments its ClickCount.
func (r *ClickRecorder) Record(ctx context.Context, linkID uint, meta ClickMeta) error {
	ts := meta.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	country := meta.Country
	if country == "" {
		country = "Unknown"
	}

	click := &model.Click{
		LinkID:    linkID,
		Timestamp: ts,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
		Referer:   meta.Referer,
		Country:   country,
		Device:    DeviceFromUserAgent(meta.UserAgent),
		Browser:   BrowserFromUserAgent(meta.UserAgent),
	}

	if err := r.clicks.Create(ctx, click); err != nil {
		return fmt.Errorf("store click: %w", err)
	}

	if err := r.links.IncrementClickCount(ctx, linkID); err != nil {
		return fmt.Errorf("increment click count: %w", err)
	}

	infraprom.ClicksRecordedTotal.Inc()
	return nil
}
