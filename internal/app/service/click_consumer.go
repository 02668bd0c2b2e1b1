package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/varkes/adshort/internal/app/model"
	"go.uber.org/zap"
)

// ClickConsumer drains click events from JetStream and hands them to
// the ClickRecorder. Failed events are NAKed for redelivery; the
// redirect that produced them has long since completed.
type ClickConsumer struct {
	js       nats.JetStreamContext
	logger   *zap.Logger
	recorder *ClickRecorder
	stop     chan struct{}
}

// NewClickConsumer creates a click event consumer.
func NewClickConsumer(js nats.JetStreamContext, logger *zap.Logger, recorder *ClickRecorder) *ClickConsumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClickConsumer{js: js, logger: logger, recorder: recorder, stop: make(chan struct{})}
}

// Start ensures the stream and durable consumer exist and begins
// pulling messages in the background.
func (c *ClickConsumer) Start() error {
	if _, err := c.js.StreamInfo(model.ClickStreamName); err != nil {
		_, err = c.js.AddStream(&nats.StreamConfig{
			Name:     model.ClickStreamName,
			Subjects: []string{model.ClickStreamSubject},
			MaxBytes: model.ClickStreamMaxBytes,
		})
		if err != nil {
			return fmt.Errorf("create stream: %w", err)
		}
	}

	if _, err := c.js.ConsumerInfo(model.ClickStreamName, model.ClickConsumerName); err != nil {
		_, err = c.js.AddConsumer(model.ClickStreamName, &nats.ConsumerConfig{
			Durable:   model.ClickConsumerName,
			AckPolicy: nats.AckExplicitPolicy,
		})
		if err != nil {
			return fmt.Errorf("create consumer: %w", err)
		}
	}

	sub, err := c.js.PullSubscribe(model.ClickStreamSubject, model.ClickConsumerName)
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	go c.consume(sub)
	return nil
}

// Stop terminates the consume loop.
func (c *ClickConsumer) Stop() {
	close(c.stop)
}

func (c *ClickConsumer) consume(sub *nats.Subscription) {
	ctx := context.Background()
	for {
		select {
		case <-c.stop:
			return
		default:
		}

		msgs, err := sub.Fetch(10, nats.MaxWait(5*time.Second))
		if err != nil && err != nats.ErrTimeout {
			c.logger.Error("failed to fetch click events", zap.Error(err))
			continue
		}

		for _, msg := range msgs {
			var event model.ClickEvent
			if err := json.Unmarshal(msg.Data, &event); err != nil {
				c.logger.Error("failed to unmarshal click event", zap.Error(err))
				msg.Nak()
				continue
			}

			err := c.recorder.Record(ctx, event.LinkID, ClickMeta{
				IP:        event.IP,
				UserAgent: event.UserAgent,
				Referer:   event.Referer,
				Country:   event.Country,
				Timestamp: event.Timestamp,
			})
			if err != nil {
				c.logger.Error("failed to record click",
					zap.String("event_id", event.ID),
					zap.Uint("link_id", event.LinkID),
					zap.Error(err))
				msg.Nak()
				continue
			}

			msg.Ack()
		}
	}
}
