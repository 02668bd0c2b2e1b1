package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/varkes/adshort/internal/app/model"
)

func TestRecordStoresClickAndIncrements(t *testing.T) {
	links := newMemLinkRepo()
	clicks := newMemClickRepo()
	link := seedLink(t, links, &model.Link{Code: "abc1234", Enabled: true})

	recorder := NewClickRecorder(links, clicks)
	err := recorder.Record(context.Background(), link.ID, ClickMeta{
		IP:        "203.0.113.9",
		UserAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Safari/604.1",
		Referer:   "https://News.Example.com/article",
		Country:   "FR",
	})
	require.NoError(t, err)

	stored, err := clicks.ListSince(context.Background(), link.ID, time.Time{})
	require.NoError(t, err)
	require.Len(t, stored, 1)

	click := stored[0]
	assert.Equal(t, "FR", click.Country)
	assert.Equal(t, "Mobile", click.Device)
	assert.Equal(t, "Safari", click.Browser)
	assert.False(t, click.Timestamp.IsZero())

	assert.Equal(t, int64(1), links.clickCount(link.ID))
}

func TestRecordDefaultsCountryToUnknown(t *testing.T) {
	links := newMemLinkRepo()
	clicks := newMemClickRepo()
	link := seedLink(t, links, &model.Link{Code: "abc1234", Enabled: true})

	recorder := NewClickRecorder(links, clicks)
	require.NoError(t, recorder.Record(context.Background(), link.ID, ClickMeta{IP: "203.0.113.9"}))

	stored, err := clicks.ListSince(context.Background(), link.ID, time.Time{})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "Unknown", stored[0].Country)
}

func TestRecordUnknownLink(t *testing.T) {
	recorder := NewClickRecorder(newMemLinkRepo(), newMemClickRepo())
	err := recorder.Record(context.Background(), 999, ClickMeta{})
	assert.Error(t, err)
}

func TestRecordConcurrentCountsExact(t *testing.T) {
	links := newMemLinkRepo()
	clicks := newMemClickRepo()
	link := seedLink(t, links, &model.Link{Code: "abc1234", Enabled: true})

	recorder := NewClickRecorder(links, clicks)

	const n = 100
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_ = recorder.Record(context.Background(), link.ID, ClickMeta{IP: "203.0.113.9"})
		}()
	}
	wg.Wait()

	// The increment is an atomic server-side add, so no update is lost.
	assert.Equal(t, int64(n), links.clickCount(link.ID))
	assert.Equal(t, n, clicks.count(link.ID))
}

func TestDeviceFromUserAgent(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want string
	}{
		{name: "desktop linux", ua: "Mozilla/5.0 (X11; Linux x86_64) Chrome/120.0", want: "Desktop"},
		{name: "iphone", ua: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)", want: "Mobile"},
		{name: "android phone", ua: "Mozilla/5.0 (Linux; Android 14; Pixel 8) Mobile Safari/537.36", want: "Mobile"},
		{name: "ipad", ua: "Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X)", want: "Tablet"},
		{name: "googlebot", ua: "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)", want: "Bot"},
		{name: "curl spider", ua: "some-crawler/1.0", want: "Bot"},
		{name: "empty", ua: "", want: "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeviceFromUserAgent(tt.ua))
		})
	}
}

func TestBrowserFromUserAgent(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want string
	}{
		{name: "chrome", ua: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 Chrome/120.0 Safari/537.36", want: "Chrome"},
		{name: "edge before chrome", ua: "Mozilla/5.0 Chrome/120.0 Safari/537.36 Edg/120.0", want: "Edge"},
		{name: "opera before chrome", ua: "Mozilla/5.0 Chrome/120.0 OPR/106.0", want: "Opera"},
		{name: "firefox", ua: "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0", want: "Firefox"},
		{name: "safari", ua: "Mozilla/5.0 (Macintosh) AppleWebKit/605.1.15 Version/17.0 Safari/605.1.15", want: "Safari"},
		{name: "empty", ua: "", want: "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BrowserFromUserAgent(tt.ua))
		})
	}
}
