package handler

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/varkes/adshort/internal/app/service"
	infraprom "github.com/varkes/adshort/internal/infra/prometheus"
	"go.uber.org/zap"
)

// clickMetaFrom extracts click metadata from the request. The IP
// prefers the first X-Forwarded-For element (one trusted proxy hop,
// no multi-hop parsing) over the socket address; the country comes
// from an edge-provided header when present.
func clickMetaFrom(c *fiber.Ctx) service.ClickMeta {
	ip := c.IP()
	if fwd := c.Get("X-Forwarded-For"); fwd != "" {
		ip = strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
	}

	country := c.Get("CF-IPCountry")
	if country == "" {
		country = c.Get("X-Country")
	}

	return service.ClickMeta{
		IP:        ip,
		UserAgent: c.Get("User-Agent"),
		Referer:   c.Get("Referer"),
		Country:   country,
		Timestamp: time.Now(),
	}
}

// ClickRegistrar funnels clicks into the pipeline: through JetStream
// when wired, synchronously through the recorder otherwise. Failures
// are logged and swallowed so a redirect is never degraded by
// analytics trouble.
type ClickRegistrar struct {
	Publisher *service.ClickPublisher
	Recorder  *service.ClickRecorder
	Logger    *zap.Logger
}

// Register captures one click for linkID before the caller responds.
func (r *ClickRegistrar) Register(ctx context.Context, linkID uint, meta service.ClickMeta) {
	if r.Publisher != nil {
		err := r.Publisher.Publish(linkID, meta)
		if err == nil {
			return
		}
		r.Logger.Error("failed to publish click event",
			zap.Uint("link_id", linkID), zap.Error(err))
	}

	if r.Recorder != nil {
		if err := r.Recorder.Record(ctx, linkID, meta); err != nil {
			infraprom.ClicksDroppedTotal.Inc()
			r.Logger.Error("failed to record click",
				zap.Uint("link_id", linkID), zap.Error(err))
		}
		return
	}

	infraprom.ClicksDroppedTotal.Inc()
}
