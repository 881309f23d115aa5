package events

import (
	"encoding/json"
	"time"

	"github.com/abgdnv/gocatalog/pkg/messaging"
)

var (
	_ messaging.Event         = ProductChangedEvent{}
	_ messaging.HeaderCarrier = ProductChangedEvent{}
)

// ProductAction is the kind of change a ProductChangedEvent reports.
type ProductAction string

const (
	ProductCreated ProductAction = "created"
	ProductUpdated ProductAction = "updated"
	ProductDeleted ProductAction = "deleted"
)

// ProductChangedEvent is published after a product was created, updated or deleted.
// Name, Price and Category are empty for deletions. Carrier holds the trace context of the request that made the change.
type ProductChangedEvent struct {
	Action     ProductAction     `json:"action"`
	ProductID  int64             `json:"product_id"`
	Name       string            `json:"name,omitempty"`
	Price      float64           `json:"price,omitempty"`
	Category   string            `json:"category,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
	Carrier    map[string]string `json:"carrier,omitempty"`
}

func (e ProductChangedEvent) Subject() string {
	switch e.Action {
	case ProductCreated:
		return messaging.ProductCreatedSubject
	case ProductUpdated:
		return messaging.ProductUpdatedSubject
	default:
		return messaging.ProductDeletedSubject
	}
}

// Headers exposes the trace context so consumers can continue the trace without decoding the payload.
func (e ProductChangedEvent) Headers() map[string]string {
	return e.Carrier
}

func (e ProductChangedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}
