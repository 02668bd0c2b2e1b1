package service

import "strings"

// Coarse user-agent classification. Substring matching is deliberate:
// the analytics buckets only need device families and browser names,
// not full fidelity parsing.

// DeviceFromUserAgent buckets a raw user agent into
// Bot / Tablet / Mobile / Desktop, or Unknown when empty.
func DeviceFromUserAgent(ua string) string {
	if ua == "" {
		return "Unknown"
	}
	lower := strings.ToLower(ua)
	switch {
	case strings.Contains(lower, "bot"),
		strings.Contains(lower, "crawler"),
		strings.Contains(lower, "spider"):
		return "Bot"
	case strings.Contains(lower, "ipad"),
		strings.Contains(lower, "tablet"):
		return "Tablet"
	case strings.Contains(lower, "mobi"),
		strings.Contains(lower, "iphone"),
		strings.Contains(lower, "android"):
		return "Mobile"
	default:
		return "Desktop"
	}
}

// BrowserFromUserAgent extracts a browser family name. Order matters:
// Chrome ships "Safari" in its UA, Edge and Opera ship "Chrome".
func BrowserFromUserAgent(ua string) string {
	if ua == "" {
		return "Unknown"
	}
	lower := strings.ToLower(ua)
	switch {
	case strings.Contains(lower, "edg/"), strings.Contains(lower, "edge/"):
		return "Edge"
	case strings.Contains(lower, "opr/"), strings.Contains(lower, "opera"):
		return "Opera"
	case strings.Contains(lower, "firefox/"):
		return "Firefox"
	case strings.Contains(lower, "chrome/"), strings.Contains(lower, "chromium/"):
		return "Chrome"
	case strings.Contains(lower, "safari/"):
		return "Safari"
	case strings.Contains(lower, "msie"), strings.Contains(lower, "trident/"):
		return "IE"
	default:
		return "Other"
	}
}
