package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedirectsTotal counts redirect resolutions by outcome:
	// direct, interstitial, not_found, disabled, expired,
	// password_required, error.
	RedirectsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "adshort",
		Name:      "redirects_total",
		Help:      "Redirect resolutions by outcome.",
	}, []string{"outcome"})

	// ClicksRecordedTotal counts clicks persisted by the recorder.
	ClicksRecordedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "adshort",
		Name:      "clicks_recorded_total",
		Help:      "Click records written to the store.",
	})

	// ClicksDroppedTotal counts click events that failed to publish
	// or persist and were swallowed.
	ClicksDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "adshort",
		Name:      "clicks_dropped_total",
		Help:      "Click events lost to publish or store failures.",
	})
)
