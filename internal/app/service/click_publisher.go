package service

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/varkes/adshort/internal/app/model"
)

// ClickPublisher publishes click events to NATS JetStream. The
// publish is synchronous: once it returns nil the event is in the
// stream, so a redirect issued afterwards is guaranteed a click.
type ClickPublisher struct {
	js nats.JetStreamContext
}

// NewClickPublisher creates a click event publisher.
func NewClickPublisher(js nats.JetStreamContext) *ClickPublisher {
	return &ClickPublisher{js: js}
}

// Publish appends one click event for linkID to the stream.
func (p *ClickPublisher) Publish(linkID uint, meta ClickMeta) error {
	ts := meta.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	event := model.ClickEvent{
		ID:        uuid.New().String(),
		LinkID:    linkID,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
		Referer:   meta.Referer,
		Country:   meta.Country,
		Timestamp: ts,
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	_, err = p.js.Publish(model.ClickStreamSubject, data)
	return err
}
