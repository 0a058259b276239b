// Package events defines the domain events emitted after order, table and
// menu mutations, and the Publisher fan-out used to deliver them.
package events

import (
	"context"
	"errors"
	"time"
)

// Event types
const (
	OrderPlaced          = "order.placed"
	OrderStatusChanged   = "order.status_changed"
	OrderPaymentSettled  = "order.payment_settled"
	OrderItemReady       = "order.item_ready"
	TableUpdated         = "table.updated"
	MenuItemAvailability = "menu_item.availability_changed"
)

type Event struct {
	Type       string      `json:"event"`
	Data       interface{} `json:"data"`
	OccurredAt time.Time   `json:"occurredAt"`
}

func New(eventType string, data interface{}) Event {
	return Event{Type: eventType, Data: data, OccurredAt: time.Now().UTC()}
}

type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// Multi publishes to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, evt Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
