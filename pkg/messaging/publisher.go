// Package messaging defines the events the catalog emits and the publisher abstraction used to send them.
package messaging

import (
	"context"
)

// Subjects of the product change events. ProductsSubjects matches all of them.
const (
	ProductsSubjects      = "catalog.products.>"
	ProductCreatedSubject = "catalog.products.created"
	ProductUpdatedSubject = "catalog.products.updated"
	ProductDeletedSubject = "catalog.products.deleted"
)

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

// HeaderCarrier is implemented by events that travel with message headers, such as a trace context.
type HeaderCarrier interface {
	Headers() map[string]string
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops every event. It is used when event publishing is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error {
	return nil
}
