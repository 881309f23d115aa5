package nats

import (
	"context"
	"fmt"

	"github.com/abgdnv/gocatalog/pkg/messaging"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

var _ messaging.Publisher = (*NatsPublisher)(nil)

// NatsPublisher writes events to JetStream. The subject must be covered by a stream,
// see EnsureStream, otherwise Publish fails with no responders.
type NatsPublisher struct {
	js jetstream.JetStream
}

func NewNatsPublisher(js jetstream.JetStream) *NatsPublisher {
	return &NatsPublisher{js: js}
}

// Publish sends the event payload and waits for the stream ack.
// Events implementing messaging.HeaderCarrier also have their headers set on the message.
func (p *NatsPublisher) Publish(ctx context.Context, event messaging.Event) error {
	data, err := event.Payload()
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event.Subject(), err)
	}
	msg := nats.NewMsg(event.Subject())
	msg.Data = data
	if hc, ok := event.(messaging.HeaderCarrier); ok {
		for k, v := range hc.Headers() {
			msg.Header.Set(k, v)
		}
	}
	if _, err := p.js.PublishMsg(ctx, msg); err != nil {
		return fmt.Errorf("publish to %s: %w", event.Subject(), err)
	}
	return nil
}
